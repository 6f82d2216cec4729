package handlers

import (
	"net/http"

	"github.com/learnmore-edu/extractor/internal/questionbank"
)

// HandleQuestions lists the questions saved to the bank so far
func (h *Handler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	questions, err := h.bank.ListQuestions(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list questions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if questions == nil {
		questions = []questionbank.SavedQuestion{}
	}

	h.writeJSON(w, questions)
}
