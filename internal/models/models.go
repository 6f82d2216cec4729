package models

import (
	"encoding/json"
	"strings"
)

// QuestionType tags a recognized question with its answer shape
type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	FillBlank      QuestionType = "FILL_BLANK"
	Essay          QuestionType = "ESSAY"
)

// IsChoice reports whether the type carries an option list
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultipleChoice
}

// ParseQuestionType maps a loose type tag to a known QuestionType.
// Unrecognized tags collapse to SINGLE_CHOICE.
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(strings.ToUpper(strings.TrimSpace(s))) {
	case SingleChoice:
		return SingleChoice
	case MultipleChoice:
		return MultipleChoice
	case FillBlank:
		return FillBlank
	case Essay:
		return Essay
	default:
		return SingleChoice
	}
}

// Answer holds the answer to a question. Choice answers are option labels,
// everything else is free text. On the wire the value may be null, a string
// or an array of strings; accessors keep read sites free of type sniffing.
type Answer struct {
	Labels []string
	Text   string
}

// IsEmpty reports whether no answer has been recognized or entered yet
func (a Answer) IsEmpty() bool {
	return len(a.Labels) == 0 && strings.TrimSpace(a.Text) == ""
}

// String renders the answer for display and persistence
func (a Answer) String() string {
	if len(a.Labels) > 0 {
		return strings.Join(a.Labels, ", ")
	}
	return a.Text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch {
	case len(a.Labels) == 1:
		return json.Marshal(a.Labels[0])
	case len(a.Labels) > 1:
		return json.Marshal(a.Labels)
	case strings.TrimSpace(a.Text) != "":
		return json.Marshal(a.Text)
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	*a = Answer{}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		a.Text = text
		return nil
	}

	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	a.Labels = labels
	return nil
}

// QuestionCandidate is a recognized-but-not-yet-saved question awaiting
// human review. Order is a creation-order token used purely for list
// keying; it never reaches the question bank.
type QuestionCandidate struct {
	Content     string            `json:"content"`
	Type        QuestionType      `json:"type"`
	Options     map[string]string `json:"options,omitempty"`
	Answer      Answer            `json:"answer"`
	Explanation string            `json:"explanation,omitempty"`
	Difficulty  int               `json:"difficulty,omitempty"`
	Order       int64             `json:"order"`
}

// Normalize canonicalizes the loose wire shape against the type tag:
// choice answers become labels, non-choice questions drop options.
func (q *QuestionCandidate) Normalize() {
	q.Type = ParseQuestionType(string(q.Type))

	if q.Type.IsChoice() {
		if len(q.Answer.Labels) == 0 && strings.TrimSpace(q.Answer.Text) != "" {
			for _, label := range strings.Split(q.Answer.Text, ",") {
				if label = strings.TrimSpace(label); label != "" {
					q.Answer.Labels = append(q.Answer.Labels, label)
				}
			}
			q.Answer.Text = ""
		}
		if len(q.Options) == 0 {
			q.Options = nil
		}
		return
	}

	q.Options = nil
	if len(q.Answer.Labels) > 0 {
		q.Answer.Text = strings.Join(q.Answer.Labels, ", ")
		q.Answer.Labels = nil
	}
}

// UploadedImage is an ephemeral, session-held upload. Data always holds the
// original bytes; the preview encoder never replaces them.
type UploadedImage struct {
	Data     []byte
	MIME     string
	Filename string
	Size     int64
}

// IsImage reports whether the declared MIME type is an image type
func (u UploadedImage) IsImage() bool {
	return strings.HasPrefix(u.MIME, "image/")
}
