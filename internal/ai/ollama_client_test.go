package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestOllamaGenerateSuccess(t *testing.T) {
	var got ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": `{"summary":"ok"}`},
			"done":    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Generate(ctx, GenerateRequest{Model: "llama3:latest", Messages: hello, MaxTokens: 16, ResponseFormat: JSONObject})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content() != `{"summary":"ok"}` {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RequestID == "" {
		t.Fatalf("expected simulated request id")
	}
	if got.Format != "json" || got.Stream {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestOllamaGenerateErrors(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusBadRequest, func(err error) bool { var e *BadRequestError; return errors.As(err, &e) }},
		{http.StatusNotFound, func(err error) bool { var e *ModelNotFoundError; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *ServerError; return errors.As(err, &e) }},
	}
	for _, c := range cases {
		srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "boom"})
		}))
		cl := NewOllamaClient(srv.URL, 2*time.Second, 2, time.Millisecond)
		_, err := cl.Generate(context.Background(), GenerateRequest{Model: "llama3:latest", Messages: hello})
		if !c.check(err) {
			t.Errorf("status %d: unexpected error %T: %v", c.status, err, err)
		}
		srv.Close()
	}
}

func TestOllamaGenerateEmptyMessages(t *testing.T) {
	c := NewOllamaClient("http://localhost:11434", 2*time.Second, 1, 0)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest", Messages: []Message{}})
	if err == nil || err.Error() != "messages cannot be empty" {
		t.Fatalf("expected 'messages cannot be empty' error, got: %v", err)
	}
}

func TestOllamaUnreachable(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1", time.Second, 1, 0)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: hello})
	var ue *UnreachableError
	if !errors.As(err, &ue) || ue.Host != "http://127.0.0.1:1" {
		t.Fatalf("expected UnreachableError, got %T: %v", err, err)
	}
}
