package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/pkg/config"
)

// OllamaClient calls a local Ollama server's chat endpoint
type OllamaClient struct {
	endpoint    string
	model       string
	temperature float64
	client      *http.Client
}

// NewOllamaClient creates an Ollama client, defaulting to llama3.2 on localhost
func NewOllamaClient(cfg config.LLMConfig) *OllamaClient {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}

	return &OllamaClient{
		endpoint:    strings.TrimRight(base, "/") + "/api/chat",
		model:       model,
		temperature: cfg.Temperature,
		client:      newHTTPClient(cfg.Timeout),
	}
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// Name returns the backend name
func (c *OllamaClient) Name() string {
	return "ollama"
}

// Generate sends one non-streaming chat request
func (c *OllamaClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:    c.model,
		Messages: messages(system, prompt),
		Stream:   false,
		Options:  map[string]any{"temperature": c.temperature},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", statusError(c.Name(), resp.StatusCode, body)
	}

	var or ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}
	if or.Error != "" {
		return "", apperrors.ErrAISummaryFailed(errors.New(or.Error))
	}
	content := strings.TrimSpace(or.Message.Content)
	if content == "" {
		return "", apperrors.ErrAISummaryFailed(errors.New("empty response from ollama"))
	}
	return content, nil
}
