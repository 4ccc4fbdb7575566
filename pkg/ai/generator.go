package ai

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/pkg/config"
)

// TextGenerator turns a system instruction and a prompt into generated text
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Message is one turn of a chat request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const defaultTimeout = 60 * time.Second

// NewTextGenerator builds the backend selected in cfg
func NewTextGenerator(cfg config.LLMConfig) (TextGenerator, error) {
	switch cfg.Backend {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "groq":
		return NewGroqClient(cfg), nil
	case "ollama":
		return NewOllamaClient(cfg), nil
	default:
		return nil, apperrors.ErrInvalidArgument(fmt.Sprintf("unknown LLM backend %q", cfg.Backend))
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func messages(system, prompt string) []Message {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: "system", Content: system})
	}
	return append(msgs, Message{Role: "user", Content: prompt})
}

// statusError classifies a non-2xx response. Rate limits and server errors
// are reported as an unavailable service so callers can retry them.
func statusError(backend string, status int, body []byte) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		return apperrors.ErrAIServiceUnavailable(backend).
			WithDetail("status", strconv.Itoa(status))
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return apperrors.ErrAISummaryFailed(fmt.Errorf("%s returned status %d: %s", backend, status, body))
}
