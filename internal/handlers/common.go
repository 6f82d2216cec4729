package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/learnmore-edu/extractor/internal/questionbank"
	"github.com/learnmore-edu/extractor/internal/review"
	"github.com/learnmore-edu/extractor/internal/storage"
)

// QuestionBank is the durable store behind the review workflow: sessions
// save into it, and the questions endpoint reads the result back.
type QuestionBank interface {
	review.Saver
	ListQuestions(ctx context.Context) ([]questionbank.SavedQuestion, error)
}

type Handler struct {
	sessionStore *storage.SessionStore
	recognizer   review.Recognizer
	bank         QuestionBank
}

func New(recognizer review.Recognizer, bank QuestionBank) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		recognizer:   recognizer,
		bank:         bank,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*storage.ParseSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// statusFor maps session errors onto HTTP status codes. Validation keeps
// the client at fault; a collaborator rejection is a gateway problem.
func statusFor(err error) int {
	var vErr *review.ValidationError
	var pErr *review.PersistenceError
	switch {
	case errors.Is(err, review.ErrInvalidFileType), errors.Is(err, review.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, review.ErrBusy), errors.Is(err, review.ErrSaveInFlight), errors.Is(err, review.ErrNotReviewing):
		return http.StatusConflict
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &pErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
