package dataset

import (
	"path/filepath"
)

// LabeledQuestion is one ground-truth record in a recognition evaluation
// dataset: a question image plus the fields a perfect recognizer would
// extract from it
type LabeledQuestion struct {
	ID         string `json:"id" parquet:"id"`
	ImagePath  string `json:"image_path" parquet:"image_path"`
	Content    string `json:"content" parquet:"content"`
	Type       string `json:"type" parquet:"type"`
	Answer     string `json:"answer" parquet:"answer"`
	Difficulty int    `json:"difficulty" parquet:"difficulty"`
}

// ResolveImagePath resolves the record's image path against a base
// directory. Absolute paths are returned unchanged.
func (r *LabeledQuestion) ResolveImagePath(baseDir string) string {
	if baseDir == "" || filepath.IsAbs(r.ImagePath) {
		return r.ImagePath
	}
	return filepath.Join(baseDir, r.ImagePath)
}
