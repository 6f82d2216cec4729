package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Writing dataset: %v", err)
	}
	return path
}

func TestLoadJSONL(t *testing.T) {
	path := writeJSONL(t,
		`{"id": "q-001", "image_path": "images/q1.png", "content": "What is 2+2?", "type": "SINGLE_CHOICE", "answer": "B", "difficulty": 1}`,
		``,
		`{"id": "q-002", "image_path": "images/q2.png", "content": "Name the capital of France.", "type": "FILL_BLANK", "answer": "Paris", "difficulty": 2}`,
	)

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "q-001" || first.Content != "What is 2+2?" || first.Answer != "B" {
		t.Errorf("First record: %+v", first)
	}
	if records[1].Type != "FILL_BLANK" || records[1].Difficulty != 2 {
		t.Errorf("Second record: %+v", records[1])
	}
}

func TestLoadSampleLimits(t *testing.T) {
	path := writeJSONL(t,
		`{"id": "q-001", "content": "a", "answer": "1"}`,
		`{"id": "q-002", "content": "b", "answer": "2"}`,
		`{"id": "q-003", "content": "c", "answer": "3"}`,
	)

	records, err := NewLoader(path).LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := writeJSONL(t, `{"id": "q-001"`, `{}`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for malformed JSONL line")
	}
}

func TestLoadRejectsUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.csv")
	if err := os.WriteFile(path, []byte("id,content\n"), 0644); err != nil {
		t.Fatalf("Writing file: %v", err)
	}

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestResolveImagePath(t *testing.T) {
	record := LabeledQuestion{ImagePath: "images/q1.png"}
	if got := record.ResolveImagePath("/data"); got != filepath.Join("/data", "images/q1.png") {
		t.Errorf("ResolveImagePath = %q", got)
	}

	absolute := LabeledQuestion{ImagePath: "/abs/q1.png"}
	if got := absolute.ResolveImagePath("/data"); got != "/abs/q1.png" {
		t.Errorf("Absolute path must pass through, got %q", got)
	}
}
