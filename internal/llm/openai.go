package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"medical-analyzer/internal/config"
)

// ErrMissingAPIKey is wrapped in a *ConfigError when no credential is set.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrEmptyResponse is returned when the provider answers without choices.
var ErrEmptyResponse = errors.New("empty completion")

// ConfigError is a fatal construction-time error.  No call can succeed
// without a valid configuration, so callers should stop the process.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Client is the text generation service used by the analyzer and the
// verifier: one prompt in, one completion out.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures an OpenAIClient.  BaseURL may point at any
// OpenAI-compatible endpoint; empty means api.openai.com.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	JSONMode    bool
}

// OptionsFromConfig maps the process configuration onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		JSONMode:    cfg.JSONMode,
	}
}

// OpenAIClient calls the chat completion API with a single user message.
// It holds no per-call state and is safe for concurrent use.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	jsonMode    bool
}

// NewOpenAIClient constructs the client.  It fails with a *ConfigError when
// the API key is missing.  The timeout applies to the whole HTTP exchange.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, &ConfigError{Key: "OPENAI_API_KEY", Err: ErrMissingAPIKey}
	}
	if opts.Model == "" {
		return nil, &ConfigError{Key: "OPENAI_MODEL", Err: errors.New("model is required")}
	}

	oaCfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		oaCfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		oaCfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oaCfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		jsonMode:    opts.JSONMode,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// Generate sends prompt as a user message and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
