package review

import (
	"errors"
	"strings"

	"github.com/learnmore-edu/extractor/internal/models"
)

var (
	// ErrInvalidFileType rejects non-image uploads before any work happens
	ErrInvalidFileType = errors.New("Please upload an image file (JPG, PNG, WEBP)")
	// ErrBusy rejects a new image while a workflow is already active
	ErrBusy = errors.New("a parse workflow is already active for this session")
	// ErrNotReviewing rejects review operations outside the Review state
	ErrNotReviewing = errors.New("no question is under review")
	// ErrSaveInFlight rejects duplicate saves and discards while a save is
	// awaiting the collaborator
	ErrSaveInFlight = errors.New("a save is already in progress")
	// ErrOutOfRange rejects a cursor seek outside the queue
	ErrOutOfRange = errors.New("question index out of range")
)

// Edit is a partial, field-level mutation of the candidate under review.
// Nil fields are left untouched.
type Edit struct {
	Content     *string              `json:"content,omitempty"`
	Type        *models.QuestionType `json:"type,omitempty"`
	Options     *map[string]string   `json:"options,omitempty"`
	Answer      *models.Answer       `json:"answer,omitempty"`
	Explanation *string              `json:"explanation,omitempty"`
	Difficulty  *int                 `json:"difficulty,omitempty"`
}

// ValidationError is a save rejected locally, before the persistence
// collaborator is called. Field names the offending field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Field {
	case "answer":
		return "Answer is required. Please fill in the answer field before saving."
	case "content":
		return "Question content is required. Please fill in the question body before saving."
	default:
		return e.Field + " is required"
	}
}

// PersistenceError is a save the collaborator rejected. The queue and the
// user's edits are untouched when this is returned.
type PersistenceError struct {
	Message string
	cause   error
}

func (e *PersistenceError) Error() string {
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.cause
}

// saveMessage maps a collaborator rejection to a user-facing message,
// matching a small set of known substrings and falling back to the raw
// message otherwise
func saveMessage(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "answer is required"):
		return "Save failed: the answer is empty. Fill in the correct answer, then save again."
	case strings.Contains(lower, "content is required"):
		return "Save failed: the question body is empty. Make sure the question content is filled in."
	default:
		return "Save failed: " + msg
	}
}
