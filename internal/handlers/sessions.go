package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/learnmore-edu/extractor/internal/review"
	"github.com/learnmore-edu/extractor/internal/storage"
)

// sessionSummary is the list view of a parse session
type sessionSummary struct {
	ID        string       `json:"id"`
	Filename  string       `json:"filename"`
	CreatedAt time.Time    `json:"created_at"`
	State     review.State `json:"state"`
	Questions int          `json:"questions"`
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		summaries := make([]sessionSummary, 0, len(sessions))
		for _, s := range sessions {
			view := s.Session.View()
			summaries = append(summaries, sessionSummary{
				ID:        s.ID,
				Filename:  s.Filename,
				CreatedAt: s.CreatedAt,
				State:     view.State,
				Questions: view.Questions,
			})
		}
		h.writeJSON(w, summaries)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail routes /api/sessions/{id} and /api/sessions/{id}/{action}
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, action, _ := strings.Cut(rest, "/")

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch action {
	case "":
		switch r.Method {
		case "GET":
			h.writeJSON(w, session.Session.View())
		case "DELETE":
			h.sessionStore.Delete(sessionID)
			w.WriteHeader(http.StatusNoContent)
		default:
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "preview":
		h.handlePreview(w, r, session)
	case "question":
		h.handleQuestionEdit(w, r, session)
	case "next", "prev", "seek", "save", "discard":
		h.handleAction(w, r, session, action)
	default:
		h.writeError(w, "Unknown session action: "+action, http.StatusNotFound)
	}
}

// handlePreview serves the preview image for the session's upload
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request, session *storage.ParseSession) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, mime, ok := session.Session.PreviewData()
	if !ok {
		h.writeError(w, "No preview available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mime)
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Failed to write preview", http.StatusInternalServerError)
	}
}

// handleQuestionEdit applies field-level edits to the candidate under review
func (h *Handler) handleQuestionEdit(w http.ResponseWriter, r *http.Request, session *storage.ParseSession) {
	if r.Method != "PUT" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var edit review.Edit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := session.Session.UpdateCurrent(edit); err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	h.writeJSON(w, session.Session.View())
}

// handleAction runs a navigation or terminal operation on the session.
// Failed saves answer with both the error and the (unchanged) session view
// so clients can re-render without a second round trip.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, session *storage.ParseSession, action string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var err error
	switch action {
	case "next":
		err = session.Session.Next()
	case "prev":
		err = session.Session.Prev()
	case "seek":
		var body struct {
			Index int `json:"index"`
		}
		if derr := json.NewDecoder(r.Body).Decode(&body); derr != nil {
			h.writeError(w, "Invalid JSON: "+derr.Error(), http.StatusBadRequest)
			return
		}
		err = session.Session.Seek(body.Index)
	case "save":
		err = session.Session.Save(r.Context())
	case "discard":
		err = session.Session.Discard()
	}

	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusFor(err))
		if encErr := json.NewEncoder(w).Encode(map[string]any{
			"error":   err.Error(),
			"session": session.Session.View(),
		}); encErr != nil {
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, session.Session.View())
}
