package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/learnmore-edu/extractor/internal/models"
	"github.com/learnmore-edu/extractor/internal/questionbank"
	"github.com/learnmore-edu/extractor/internal/review"
)

type stubRecognizer struct {
	candidates []models.QuestionCandidate
	err        error
}

func (r *stubRecognizer) Recognize(ctx context.Context, img models.UploadedImage) ([]models.QuestionCandidate, error) {
	return r.candidates, r.err
}

type stubSaver struct {
	saved []models.QuestionCandidate
	err   error
}

func (s *stubSaver) SaveQuestion(ctx context.Context, q models.QuestionCandidate) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, q)
	return nil
}

func (s *stubSaver) ListQuestions(ctx context.Context) ([]questionbank.SavedQuestion, error) {
	rows := make([]questionbank.SavedQuestion, 0, len(s.saved))
	for i, q := range s.saved {
		rows = append(rows, questionbank.SavedQuestion{
			ID:         int64(i + 1),
			Content:    q.Content,
			Type:       string(q.Type),
			Answer:     q.Answer,
			Difficulty: q.Difficulty,
		})
	}
	return rows, nil
}

func candidate(content string) models.QuestionCandidate {
	return models.QuestionCandidate{
		Content: content,
		Type:    models.FillBlank,
		Answer:  models.Answer{Text: "42"},
	}
}

// uploadRequest builds a multipart upload with an explicit part MIME type
func uploadRequest(t *testing.T, filename, mimeType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Writing part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type uploadResponse struct {
	SessionID string      `json:"session_id"`
	Session   review.View `json:"session"`
}

func doUpload(t *testing.T, h *Handler, filename, mimeType string, data []byte) uploadResponse {
	t.Helper()

	rec := httptest.NewRecorder()
	h.HandleUpload(rec, uploadRequest(t, filename, mimeType, data))

	if rec.Code != http.StatusOK {
		t.Fatalf("Upload returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp uploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Decoding upload response: %v", err)
	}
	return resp
}

func postAction(t *testing.T, h *Handler, sessionID, action, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/sessions/"+sessionID+"/"+action, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)
	return rec
}

func TestUploadStartsReview(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1"), candidate("q2")}}, &stubSaver{})

	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	if resp.SessionID == "" {
		t.Fatal("Expected a session id")
	}
	if resp.Session.State != review.StateReview {
		t.Errorf("Expected REVIEW state, got %s", resp.Session.State)
	}
	if resp.Session.Questions != 2 {
		t.Errorf("Expected 2 questions, got %d", resp.Session.Questions)
	}
	if resp.Session.Current == nil || resp.Session.Current.Content != "q1" {
		t.Errorf("Expected q1 under review, got %+v", resp.Session.Current)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1")}}, &stubSaver{})

	rec := httptest.NewRecorder()
	h.HandleUpload(rec, uploadRequest(t, "scan.pdf", "application/pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for non-image upload, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please upload an image file") {
		t.Errorf("Expected file-type message, got %q", rec.Body.String())
	}
}

func TestUploadKeepsSessionOnRecognitionFailure(t *testing.T) {
	h := New(&stubRecognizer{err: errors.New("model exploded")}, &stubSaver{})

	resp := doUpload(t, h, "quiz.jpg", "image/jpeg", []byte("image bytes"))

	if resp.Session.State != review.StateIdle {
		t.Errorf("Expected IDLE after recognition failure, got %s", resp.Session.State)
	}
	if resp.Session.Message == "" {
		t.Error("Expected a failure message in the session view")
	}

	// The session handle still resolves
	req := httptest.NewRequest("GET", "/api/sessions/"+resp.SessionID, nil)
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected session lookup to succeed, got %d", rec.Code)
	}
}

func TestSessionsList(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1")}}, &stubSaver{})
	doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	req := httptest.NewRequest("GET", "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.HandleSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var summaries []sessionSummary
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatalf("Decoding list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(summaries))
	}
	if summaries[0].Filename != "quiz.png" {
		t.Errorf("Filename: %q", summaries[0].Filename)
	}
	if summaries[0].State != review.StateReview {
		t.Errorf("State: %s", summaries[0].State)
	}
}

func TestSessionNotFound(t *testing.T) {
	h := New(&stubRecognizer{}, &stubSaver{})

	req := httptest.NewRequest("GET", "/api/sessions/nope", nil)
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestNavigationAndSaveFlow(t *testing.T) {
	saver := &stubSaver{}
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1"), candidate("q2")}}, saver)
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	rec := postAction(t, h, resp.SessionID, "next", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("next returned %d: %s", rec.Code, rec.Body.String())
	}
	var view review.View
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("Decoding view: %v", err)
	}
	if view.Cursor != 1 {
		t.Errorf("Expected cursor 1 after next, got %d", view.Cursor)
	}

	rec = postAction(t, h, resp.SessionID, "save", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("save returned %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("Decoding view: %v", err)
	}
	if view.Questions != 1 {
		t.Errorf("Expected 1 remaining question, got %d", view.Questions)
	}
	if len(saver.saved) != 1 || saver.saved[0].Content != "q2" {
		t.Errorf("Expected q2 persisted, got %+v", saver.saved)
	}
}

func TestSeekOutOfRangeAnswersWithView(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1")}}, &stubSaver{})
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	rec := postAction(t, h, resp.SessionID, "seek", `{"index": 99}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for out-of-range seek, got %d", rec.Code)
	}

	var body struct {
		Error   string      `json:"error"`
		Session review.View `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Decoding error body: %v", err)
	}
	if body.Error == "" {
		t.Error("Expected an error message")
	}
	if body.Session.State != review.StateReview {
		t.Errorf("Failed seek must not change state, got %s", body.Session.State)
	}
}

func TestQuestionEditEndpoint(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1")}}, &stubSaver{})
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	req := httptest.NewRequest("PUT", "/api/sessions/"+resp.SessionID+"/question",
		strings.NewReader(`{"content": "Edited body", "answer": "edited answer"}`))
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("question edit returned %d: %s", rec.Code, rec.Body.String())
	}

	var view review.View
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("Decoding view: %v", err)
	}
	if view.Current == nil || view.Current.Content != "Edited body" {
		t.Errorf("Edit not reflected in view: %+v", view.Current)
	}
}

func TestSaveValidationFailureStatus(t *testing.T) {
	saver := &stubSaver{}
	empty := candidate("q1")
	empty.Answer = models.Answer{}
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{empty}}, saver)
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	rec := postAction(t, h, resp.SessionID, "save", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for validation failure, got %d", rec.Code)
	}
	if len(saver.saved) != 0 {
		t.Error("Validation failure must not persist anything")
	}
}

func TestSaveCollaboratorFailureStatus(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1")}},
		&stubSaver{err: errors.New("disk full")})
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	rec := postAction(t, h, resp.SessionID, "save", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502 for collaborator failure, got %d", rec.Code)
	}
}

func TestQuestionsEndpoint(t *testing.T) {
	saver := &stubSaver{}
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1")}}, saver)

	// Empty bank answers with an empty list, not null
	req := httptest.NewRequest("GET", "/api/questions", nil)
	rec := httptest.NewRecorder()
	h.HandleQuestions(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("questions returned %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("Expected empty array body, got %q", got)
	}

	// Save a question through the review flow and read it back
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))
	if rec := postAction(t, h, resp.SessionID, "save", ""); rec.Code != http.StatusOK {
		t.Fatalf("save returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleQuestions(rec, httptest.NewRequest("GET", "/api/questions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("questions returned %d", rec.Code)
	}

	var questions []questionbank.SavedQuestion
	if err := json.NewDecoder(rec.Body).Decode(&questions); err != nil {
		t.Fatalf("Decoding questions: %v", err)
	}
	if len(questions) != 1 || questions[0].Content != "q1" {
		t.Errorf("Expected the saved question back, got %+v", questions)
	}

	rec = httptest.NewRecorder()
	h.HandleQuestions(rec, httptest.NewRequest("POST", "/api/questions", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST, got %d", rec.Code)
	}
}

func TestDiscardEndpoint(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1"), candidate("q2")}}, &stubSaver{})
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	rec := postAction(t, h, resp.SessionID, "discard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("discard returned %d: %s", rec.Code, rec.Body.String())
	}

	var view review.View
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("Decoding view: %v", err)
	}
	if view.State != review.StateIdle || view.Questions != 0 {
		t.Errorf("Expected empty IDLE session after discard, got %+v", view)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	h := New(&stubRecognizer{candidates: []models.QuestionCandidate{candidate("q1")}}, &stubSaver{})
	resp := doUpload(t, h, "quiz.png", "image/png", []byte("image bytes"))

	req := httptest.NewRequest("GET", "/api/sessions/"+resp.SessionID+"/preview", nil)
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preview returned %d", rec.Code)
	}
	// Undecodable bytes keep their original MIME on the degraded path
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type: %s", got)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected preview bytes")
	}
}
