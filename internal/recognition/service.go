package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/learnmore-edu/extractor/internal/gemini"
	"github.com/learnmore-edu/extractor/internal/models"
	"github.com/learnmore-edu/extractor/internal/ollama"
	"github.com/learnmore-edu/extractor/internal/openai"
	"github.com/learnmore-edu/extractor/internal/providers"
)

// Service invokes a vision-capable LLM to recognize questions in an image.
// It is stateless across calls and never retries; a failed recognition is
// retried only by the user uploading again.
type Service struct{}

// NewService creates a new recognition service
func NewService() *Service {
	return &Service{}
}

// Recognize extracts question candidates from an uploaded image using the
// provider and model configured through the environment
func (s *Service) Recognize(ctx context.Context, img models.UploadedImage) ([]models.QuestionCandidate, error) {
	return s.RecognizeWith(ctx, img, "", "")
}

// RecognizeWith extracts question candidates using an explicit provider and
// model, falling back to environment defaults for empty values. The original
// upload bytes are always sent, never a preview.
func (s *Service) RecognizeWith(ctx context.Context, img models.UploadedImage, provider, model string) ([]models.QuestionCandidate, error) {
	if provider == "" {
		provider = os.Getenv("EXTRACTOR_PROVIDER")
		if provider == "" {
			provider = "gemini"
		}
	}
	if model == "" {
		model = defaultModel(provider)
	}

	p, err := providerFor(provider)
	if err != nil {
		return nil, &Error{Kind: CollaboratorError, Message: err.Error()}
	}

	config := providers.Config{
		Model:       model,
		Temperature: 0.1,
		Prompt:      buildExtractionPrompt(),
		ImageData:   img.Data,
		ImageMIME:   img.MIME,
	}

	slog.Info("Recognizing questions", "provider", provider, "model", model, "filename", img.Filename, "bytes", len(img.Data))
	start := time.Now()

	raw, err := p.ExtractQuestions(ctx, config)
	if err != nil {
		slog.Error("Recognition call failed", "provider", provider, "error", err)
		return nil, classify(err)
	}

	candidates, rerr := mapResponse(raw)
	if rerr != nil {
		slog.Warn("Recognition response rejected", "provider", provider, "kind", rerr.Kind, "raw_prefix", prefix(raw, 200))
		return nil, rerr
	}

	slog.Info("Recognition complete", "provider", provider, "model", model, "questions", len(candidates), "elapsed", time.Since(start))
	return candidates, nil
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-2.0-flash"
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

func providerFor(name string) (providers.Provider, error) {
	switch name {
	case "gemini":
		return gemini.New(), nil
	case "openai":
		return openai.New(), nil
	case "ollama":
		return ollama.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// classify converts a raw provider error into the recognition taxonomy.
// Timeouts and transport failures get distinct user-facing messages; any
// other failure surfaces the collaborator's message verbatim.
func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: TimeoutFailure, Message: timeoutMessage, cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: TimeoutFailure, Message: timeoutMessage, cause: err}
		}
		return &Error{Kind: TransportFailure, Message: transportMessage, cause: err}
	}

	return &Error{Kind: CollaboratorError, Message: err.Error(), cause: err}
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
