package providers

import (
	"context"
)

// Config represents a single vision extraction request
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	ImageData   []byte
	ImageMIME   string
}

// Provider defines the interface for a vision-capable LLM provider
type Provider interface {
	ExtractQuestions(ctx context.Context, config Config) (string, error)
}
