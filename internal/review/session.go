package review

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/learnmore-edu/extractor/internal/models"
	"github.com/learnmore-edu/extractor/internal/preview"
	"github.com/learnmore-edu/extractor/internal/recognition"
)

// State is the review session lifecycle state
type State string

const (
	StateIdle       State = "IDLE"
	StateProcessing State = "PROCESSING"
	StateReview     State = "REVIEW"
	StateSuccess    State = "SUCCESS"
)

// DefaultResetDelay is how long the Success acknowledgment is shown before
// the session clears itself back to Idle
const DefaultResetDelay = 3 * time.Second

// Recognizer produces question candidates from an uploaded image
type Recognizer interface {
	Recognize(ctx context.Context, img models.UploadedImage) ([]models.QuestionCandidate, error)
}

// Saver persists one finalized question candidate
type Saver interface {
	SaveQuestion(ctx context.Context, q models.QuestionCandidate) error
}

// Session owns one parse workflow: the uploaded bytes, the preview, and the
// ordered queue of candidates under review. All candidate state lives here
// until the saver accepts a candidate; nothing is durable before that.
type Session struct {
	mu         sync.Mutex
	state      State
	message    string
	epoch      int
	upload     models.UploadedImage
	preview    preview.Representation
	queue      []models.QuestionCandidate
	cursor     int
	saving     bool
	recognizer Recognizer
	saver      Saver
	encoder    *preview.Encoder
	resetDelay time.Duration
	resetTimer *time.Timer
}

// NewSession creates an idle session with the given collaborators
func NewSession(recognizer Recognizer, saver Saver) *Session {
	return &Session{
		state:      StateIdle,
		recognizer: recognizer,
		saver:      saver,
		encoder:    preview.NewEncoder(),
		resetDelay: DefaultResetDelay,
	}
}

// SetResetDelay overrides how long Success is shown before self-reset
func (s *Session) SetResetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetDelay = d
}

// SelectImage runs intake and recognition for a newly selected file. A
// non-image MIME type fails with ErrInvalidFileType before any other work.
// On recognition failure the session returns to Idle with the failure
// message attached; no partial candidate list is ever kept.
func (s *Session) SelectImage(ctx context.Context, img models.UploadedImage) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	if !img.IsImage() {
		s.mu.Unlock()
		return ErrInvalidFileType
	}
	s.state = StateProcessing
	s.message = ""
	s.upload = img
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	// The preview is an independent copy for display only; recognition
	// always receives the original bytes.
	rep := s.encoder.Encode(img)

	candidates, err := s.recognizer.Recognize(ctx, img)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.state != StateProcessing {
		// Session was reset while recognition was in flight; drop the result.
		return nil
	}

	if err != nil {
		s.resetLocked()
		s.message = recognitionMessage(err)
		return err
	}

	// Review requires a non-empty queue. A recognizer that reports zero
	// candidates without an error is treated as an empty result.
	if len(candidates) == 0 {
		rerr := recognition.NoQuestions()
		s.resetLocked()
		s.message = rerr.Message
		return rerr
	}

	s.preview = rep
	s.queue = candidates
	s.cursor = 0
	s.state = StateReview
	return nil
}

// Current returns the candidate at the cursor
func (s *Session) Current() (models.QuestionCandidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReview || len(s.queue) == 0 {
		return models.QuestionCandidate{}, false
	}
	return s.queue[s.cursor], true
}

// Next moves the cursor forward. Pure navigation: no candidate is mutated
// and nothing is persisted. Moving past the last candidate is a no-op.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReview {
		return ErrNotReviewing
	}
	if s.cursor < len(s.queue)-1 {
		s.cursor++
	}
	return nil
}

// Prev moves the cursor backward. Moving before the first candidate is a
// no-op.
func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReview {
		return ErrNotReviewing
	}
	if s.cursor > 0 {
		s.cursor--
	}
	return nil
}

// Seek jumps the cursor to an explicit index
func (s *Session) Seek(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReview {
		return ErrNotReviewing
	}
	if index < 0 || index >= len(s.queue) {
		return ErrOutOfRange
	}
	s.cursor = index
	return nil
}

// UpdateCurrent applies field-level edits to the candidate at the cursor.
// Edits live in session memory only until the candidate is saved.
func (s *Session) UpdateCurrent(edit Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReview || len(s.queue) == 0 {
		return ErrNotReviewing
	}

	q := &s.queue[s.cursor]
	if edit.Content != nil {
		q.Content = *edit.Content
	}
	if edit.Type != nil {
		q.Type = *edit.Type
	}
	if edit.Options != nil {
		q.Options = *edit.Options
	}
	if edit.Answer != nil {
		q.Answer = *edit.Answer
	}
	if edit.Explanation != nil {
		q.Explanation = *edit.Explanation
	}
	if edit.Difficulty != nil {
		q.Difficulty = *edit.Difficulty
	}
	q.Normalize()
	return nil
}

// Save validates the candidate at the cursor and hands it to the saver.
// Validation failures never reach the saver and leave everything in place.
// On success exactly the saved candidate is removed by position and the
// cursor is re-clamped; on saver failure the queue, cursor and edits are
// all untouched so the user can fix and retry.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReview || len(s.queue) == 0 {
		s.mu.Unlock()
		return ErrNotReviewing
	}
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}

	q := s.queue[s.cursor]
	if strings.TrimSpace(q.Content) == "" {
		s.message = (&ValidationError{Field: "content"}).Error()
		s.mu.Unlock()
		return &ValidationError{Field: "content"}
	}
	if q.Answer.IsEmpty() {
		s.message = (&ValidationError{Field: "answer"}).Error()
		s.mu.Unlock()
		return &ValidationError{Field: "answer"}
	}

	s.saving = true
	index := s.cursor
	s.mu.Unlock()

	err := s.saver.SaveQuestion(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false

	if err != nil {
		s.message = saveMessage(err)
		return &PersistenceError{Message: s.message, cause: err}
	}

	s.message = ""
	s.queue = append(s.queue[:index], s.queue[index+1:]...)

	if len(s.queue) == 0 {
		s.state = StateSuccess
		s.scheduleResetLocked()
		return nil
	}

	if s.cursor > index {
		s.cursor--
	}
	if s.cursor >= len(s.queue) {
		s.cursor = len(s.queue) - 1
	}
	return nil
}

// Discard abandons the entire remaining queue and the preview. It is
// all-or-nothing: there is no per-candidate discard. Refused while a save
// is awaiting the collaborator so a late success cannot outlive the queue
// it belongs to.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReview {
		return ErrNotReviewing
	}
	if s.saving {
		return ErrSaveInFlight
	}
	s.resetLocked()
	return nil
}

// View is a snapshot of the session for API responses
type View struct {
	State     State                     `json:"state"`
	Message   string                    `json:"message,omitempty"`
	Preview   *preview.Representation   `json:"preview,omitempty"`
	Questions int                       `json:"questions"`
	Cursor    int                       `json:"cursor"`
	Current   *models.QuestionCandidate `json:"current,omitempty"`
}

// View returns a copy of the observable session state
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:     s.state,
		Message:   s.message,
		Questions: len(s.queue),
		Cursor:    s.cursor,
	}
	if s.state == StateReview || s.state == StateSuccess {
		rep := s.preview
		v.Preview = &rep
	}
	if s.state == StateReview && len(s.queue) > 0 {
		q := s.queue[s.cursor]
		v.Current = &q
	}
	return v
}

// PreviewData returns the preview bytes and MIME type for serving
func (s *Session) PreviewData() ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.preview.Data) == 0 {
		return nil, "", false
	}
	return s.preview.Data, s.preview.MIME, true
}

func (s *Session) resetLocked() {
	s.epoch++
	s.state = StateIdle
	s.message = ""
	s.upload = models.UploadedImage{}
	s.preview = preview.Representation{}
	s.queue = nil
	s.cursor = 0
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func (s *Session) scheduleResetLocked() {
	s.resetTimer = time.AfterFunc(s.resetDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateSuccess {
			s.resetLocked()
		}
	})
}

// recognitionMessage picks the user-facing message for a recognition failure
func recognitionMessage(err error) string {
	if rerr, ok := err.(*recognition.Error); ok {
		return rerr.Message
	}
	return err.Error()
}
