package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/learnmore-edu/extractor/internal/models"
	"github.com/learnmore-edu/extractor/internal/review"
	"github.com/learnmore-edu/extractor/internal/storage"
)

const maxUploadBytes = 10 * 1024 * 1024

// HandleUpload accepts a question image, creates a parse session for it and
// runs intake plus recognition. Non-image files are rejected synchronously,
// before any recognition call. A recognition failure still answers 200: the
// session view carries the Idle state and the failure message, exactly what
// a client needs to offer a retry.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	// Limit file size to 10MB
	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if len(fileData) >= maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(fileData)
	}

	img := models.UploadedImage{
		Data:     fileData,
		MIME:     mimeType,
		Filename: header.Filename,
		Size:     int64(len(fileData)),
	}

	session := review.NewSession(h.recognizer, h.bank)
	if err := session.SelectImage(r.Context(), img); err != nil {
		if errors.Is(err, review.ErrInvalidFileType) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		// Recognition failed; the session is back in Idle with the message
		// attached. Register it anyway so the client keeps its handle.
	}

	// Use filename (without extension) as session name, with timestamp for uniqueness
	baseFilename := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	sessionID := fmt.Sprintf("%s_%d", baseFilename, time.Now().Unix())

	h.sessionStore.Set(sessionID, &storage.ParseSession{
		ID:        sessionID,
		Filename:  header.Filename,
		CreatedAt: time.Now(),
		Session:   session,
	})

	h.writeJSON(w, map[string]any{
		"session_id": sessionID,
		"session":    session.View(),
	})
}
