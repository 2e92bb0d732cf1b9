package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medical-analyzer/internal/config"
)

// newChatServer mocks POST /v1/chat/completions.  The handler receives the
// decoded request body.
func newChatServer(t *testing.T, handle func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handle(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeCompletion(w http.ResponseWriter, contents ...string) {
	choices := make([]map[string]any, 0, len(contents))
	for i, c := range contents {
		choices = append(choices, map[string]any{
			"index":         i,
			"message":       map[string]any{"role": "assistant", "content": c},
			"finish_reason": "stop",
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"model":   "gpt-4o-mini",
		"choices": choices,
	})
}

func testOptions(baseURL string) Options {
	return Options{
		APIKey:      "sk-test",
		BaseURL:     baseURL + "/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		Timeout:     5 * time.Second,
		JSONMode:    true,
	}
}

func TestNewOpenAIClient_MissingAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIClient(Options{Model: "gpt-4o-mini"})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if cfgErr.Key != "OPENAI_API_KEY" {
		t.Errorf("expected key OPENAI_API_KEY, got %s", cfgErr.Key)
	}
}

func TestNewOpenAIClient_MissingModel(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIClient(Options{APIKey: "sk-test"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestOpenAIClient_Generate_Success(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := newChatServer(t, func(w http.ResponseWriter, body map[string]any) {
		gotBody = body
		writeCompletion(w, `{"summary":"ok"}`)
	})

	c, err := NewOpenAIClient(testOptions(srv.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	out, err := c.Generate(context.Background(), "fever for 2 days")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != `{"summary":"ok"}` {
		t.Errorf("unexpected completion %q", out)
	}

	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %v", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	msg, _ := msgs[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "fever for 2 days" {
		t.Errorf("unexpected message %v", msg)
	}
	format, _ := gotBody["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", gotBody["response_format"])
	}
}

func TestOpenAIClient_Generate_JSONModeOff(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := newChatServer(t, func(w http.ResponseWriter, body map[string]any) {
		gotBody = body
		writeCompletion(w, "plain")
	})

	opts := testOptions(srv.URL)
	opts.JSONMode = false
	c, err := NewOpenAIClient(opts)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if _, err := c.Generate(context.Background(), "hi"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, ok := gotBody["response_format"]; ok {
		t.Errorf("expected no response_format, got %v", gotBody["response_format"])
	}
}

func TestOpenAIClient_Generate_ServerError(t *testing.T) {
	t.Parallel()

	srv := newChatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`)) //nolint:errcheck
	})

	c, err := NewOpenAIClient(testOptions(srv.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for 429 response, got nil")
	}
}

func TestOpenAIClient_Generate_EmptyChoices(t *testing.T) {
	t.Parallel()

	srv := newChatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		writeCompletion(w)
	})

	c, err := NewOpenAIClient(testOptions(srv.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	_, err = c.Generate(context.Background(), "hi")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenAIClient_Generate_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewOpenAIClient(testOptions(url))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts := OptionsFromConfig(&config.Config{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: "http://llm.internal/v1",
		OpenAIModel:   "gpt-4o-mini",
		Temperature:   0.3,
		Timeout:       time.Minute,
		JSONMode:      true,
	})
	if opts.APIKey != "sk-test" || opts.BaseURL != "http://llm.internal/v1" || opts.Model != "gpt-4o-mini" {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.Timeout != time.Minute || !opts.JSONMode || opts.Temperature != 0.3 {
		t.Errorf("unexpected options %+v", opts)
	}
}
