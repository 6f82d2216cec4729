package recognition

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/learnmore-edu/extractor/internal/models"
)

// wireQuestion is the loose shape the collaborator returns per question
type wireQuestion struct {
	Content     string            `json:"content"`
	Type        string            `json:"type"`
	Options     map[string]string `json:"options"`
	Answer      models.Answer     `json:"answer"`
	Explanation *string           `json:"explanation"`
	Difficulty  *float64          `json:"difficulty"`
}

// mapResponse parses the model output into question candidates, assigning
// each a distinct, increasing creation-order token. Candidate order follows
// the collaborator's order exactly.
func mapResponse(raw string) ([]models.QuestionCandidate, *Error) {
	items, err := decodeItems(trimCodeFences(raw))
	if err != nil {
		return nil, &Error{Kind: CollaboratorError, Message: badJSONMessage, cause: err}
	}

	if len(items) == 0 {
		return nil, NoQuestions()
	}

	base := time.Now().UnixMilli()
	candidates := make([]models.QuestionCandidate, 0, len(items))
	for i, item := range items {
		candidate := models.QuestionCandidate{
			Content: strings.TrimSpace(item.Content),
			Type:    models.QuestionType(item.Type),
			Options: item.Options,
			Answer:  item.Answer,
			Order:   base + int64(i),
		}
		if item.Explanation != nil {
			candidate.Explanation = strings.TrimSpace(*item.Explanation)
		}
		if item.Difficulty != nil {
			candidate.Difficulty = clampDifficulty(int(*item.Difficulty))
		}
		candidate.Normalize()
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// decodeItems accepts either a JSON array or a single object
func decodeItems(raw string) ([]wireQuestion, error) {
	var items []wireQuestion
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		return items, nil
	}

	var single wireQuestion
	if err := json.Unmarshal([]byte(raw), &single); err != nil {
		return nil, err
	}
	return []wireQuestion{single}, nil
}

// trimCodeFences strips markdown code blocks some models wrap around JSON
func trimCodeFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

func clampDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 5 {
		return 5
	}
	return d
}
