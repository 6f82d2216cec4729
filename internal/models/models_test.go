package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseQuestionType(t *testing.T) {
	tests := []struct {
		input string
		want  QuestionType
	}{
		{"SINGLE_CHOICE", SingleChoice},
		{"multiple_choice", MultipleChoice},
		{" fill_blank ", FillBlank},
		{"ESSAY", Essay},
		{"true_false", SingleChoice},
		{"", SingleChoice},
	}

	for _, tt := range tests {
		if got := ParseQuestionType(tt.input); got != tt.want {
			t.Errorf("ParseQuestionType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestAnswerUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Answer
	}{
		{"null", `null`, Answer{}},
		{"string", `"Paris"`, Answer{Text: "Paris"}},
		{"single element array", `["A"]`, Answer{Labels: []string{"A"}}},
		{"multi element array", `["A", "C"]`, Answer{Labels: []string{"A", "C"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Answer
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}

	var got Answer
	if err := json.Unmarshal([]byte(`{"bad": "shape"}`), &got); err == nil {
		t.Error("Expected error for object-shaped answer")
	}
}

func TestAnswerMarshal(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   string
	}{
		{"empty", Answer{}, `null`},
		{"whitespace text", Answer{Text: "  "}, `null`},
		{"text", Answer{Text: "Paris"}, `"Paris"`},
		{"one label", Answer{Labels: []string{"B"}}, `"B"`},
		{"many labels", Answer{Labels: []string{"A", "C"}}, `["A","C"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.answer)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal(%+v) = %s, want %s", tt.answer, data, tt.want)
			}
		})
	}
}

func TestAnswerAccessors(t *testing.T) {
	if !(Answer{}).IsEmpty() {
		t.Error("Zero answer should be empty")
	}
	if (Answer{Text: "x"}).IsEmpty() {
		t.Error("Text answer should not be empty")
	}
	if (Answer{Labels: []string{"A"}}).IsEmpty() {
		t.Error("Label answer should not be empty")
	}

	if got := (Answer{Labels: []string{"A", "C"}}).String(); got != "A, C" {
		t.Errorf("String() = %q", got)
	}
	if got := (Answer{Text: "Paris"}).String(); got != "Paris" {
		t.Errorf("String() = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   QuestionCandidate
		want QuestionCandidate
	}{
		{
			name: "choice text answer splits into labels",
			in: QuestionCandidate{
				Type:    MultipleChoice,
				Options: map[string]string{"A": "2", "C": "5"},
				Answer:  Answer{Text: "A, C"},
			},
			want: QuestionCandidate{
				Type:    MultipleChoice,
				Options: map[string]string{"A": "2", "C": "5"},
				Answer:  Answer{Labels: []string{"A", "C"}},
			},
		},
		{
			name: "non-choice drops options and joins labels",
			in: QuestionCandidate{
				Type:    Essay,
				Options: map[string]string{"A": "stale"},
				Answer:  Answer{Labels: []string{"part one", "part two"}},
			},
			want: QuestionCandidate{
				Type:   Essay,
				Answer: Answer{Text: "part one, part two"},
			},
		},
		{
			name: "unknown type collapses to single choice",
			in: QuestionCandidate{
				Type:   QuestionType("TRUE_FALSE"),
				Answer: Answer{Text: "A"},
			},
			want: QuestionCandidate{
				Type:   SingleChoice,
				Answer: Answer{Labels: []string{"A"}},
			},
		},
		{
			name: "empty options map becomes nil",
			in: QuestionCandidate{
				Type:    SingleChoice,
				Options: map[string]string{},
				Answer:  Answer{Labels: []string{"B"}},
			},
			want: QuestionCandidate{
				Type:   SingleChoice,
				Answer: Answer{Labels: []string{"B"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Normalize()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUploadedImageIsImage(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"image/heic", true},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		img := UploadedImage{MIME: tt.mime}
		if got := img.IsImage(); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}
