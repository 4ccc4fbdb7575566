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

// ChatClient talks to OpenAI-compatible chat completion APIs (OpenAI, Groq)
type ChatClient struct {
	name        string
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewOpenAIClient creates a chat client for the OpenAI API
func NewOpenAIClient(cfg config.LLMConfig) *ChatClient {
	return newChatClient("openai", "https://api.openai.com", "/v1/chat/completions", "gpt-4", cfg)
}

// NewGroqClient creates a chat client for Groq's OpenAI-compatible API
func NewGroqClient(cfg config.LLMConfig) *ChatClient {
	return newChatClient("groq", "https://api.groq.com", "/openai/v1/chat/completions", "llama-3.1-70b-versatile", cfg)
}

func newChatClient(name, defaultBase, path, defaultModel string, cfg config.LLMConfig) *ChatClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBase
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &ChatClient{
		name:        name,
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimRight(base, "/") + path,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      newHTTPClient(cfg.Timeout),
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Name returns the backend name
func (c *ChatClient) Name() string {
	return c.name
}

// Generate sends one chat completion request and returns the trimmed
// assistant content
func (c *ChatClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages(system, prompt),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", statusError(c.name, resp.StatusCode, body)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", apperrors.ErrAISummaryFailed(err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", apperrors.ErrAISummaryFailed(errors.New("empty response from " + c.name))
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
