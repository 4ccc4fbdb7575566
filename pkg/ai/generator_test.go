package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/pkg/config"
)

func TestChatClient_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if req.Model != "gpt-4" || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  Great focus!  \n"}},
			},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient(config.LLMConfig{BaseURL: ts.URL, APIKey: "sk-test"})
	got, err := client.Generate(context.Background(), "be kind", "summary")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Great focus!" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestGroqClient_UsesOpenAIPrefix(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer ts.Close()

	client := NewGroqClient(config.LLMConfig{BaseURL: ts.URL + "/", APIKey: "gsk"})
	if _, err := client.Generate(context.Background(), "", "p"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestChatClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   apperrors.ErrorCode
	}{
		{http.StatusTooManyRequests, apperrors.ErrorCode_AI_SERVICE_UNAVAILABLE},
		{http.StatusBadGateway, apperrors.ErrorCode_AI_SERVICE_UNAVAILABLE},
		{http.StatusUnauthorized, apperrors.ErrorCode_AI_SUMMARY_FAILED},
	}

	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":"nope"}`))
		}))

		client := NewOpenAIClient(config.LLMConfig{BaseURL: ts.URL, APIKey: "k"})
		_, err := client.Generate(context.Background(), "", "p")
		ts.Close()

		if got := apperrors.CodeOf(err); got != tt.want {
			t.Errorf("status %d: code = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestChatClient_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	client := NewOpenAIClient(config.LLMConfig{BaseURL: ts.URL, APIKey: "k"})
	_, err := client.Generate(context.Background(), "", "p")
	if apperrors.CodeOf(err) != apperrors.ErrorCode_AI_SUMMARY_FAILED {
		t.Fatalf("error = %v", err)
	}
}

func TestOllamaClient_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if req.Stream || req.Model != "llama3.2" {
			t.Fatalf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "Keep it up"},
			"done":    true,
		})
	}))
	defer ts.Close()

	client := NewOllamaClient(config.LLMConfig{BaseURL: ts.URL})
	got, err := client.Generate(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Keep it up" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestNewTextGenerator(t *testing.T) {
	for _, backend := range []string{"openai", "groq", "ollama"} {
		gen, err := NewTextGenerator(config.LLMConfig{Backend: backend, APIKey: "k"})
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		if gen.Name() != backend {
			t.Fatalf("Name() = %s, want %s", gen.Name(), backend)
		}
	}

	if _, err := NewTextGenerator(config.LLMConfig{Backend: "bard"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
