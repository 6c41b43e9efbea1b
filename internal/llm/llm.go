package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/examprep/internal/model"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"

	DefaultHFBaseURL = "https://api-inference.huggingface.co/models"
	DefaultModel     = "mistralai/Mistral-7B-Instruct-v0.2"

	DefaultMaxAttempts    = 4
	DefaultServiceBackoff = 1200 * time.Millisecond
	DefaultOutputBackoff  = 500 * time.Millisecond
	DefaultTimeout        = 90 * time.Second
	DefaultTemperature    = 0.4
	DefaultMaxTokens      = 900
)

// Completer turns a prompt into raw model text. Implementations report HTTP
// failures as *ServiceError.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config selects and tunes the inference backend.
type Config struct {
	Provider       string // huggingface (default) or openai
	BaseURL        string
	Model          string
	APIKey         string
	Timeout        time.Duration
	MaxAttempts    int
	ServiceBackoff time.Duration // per-attempt wait for capacity errors without a server hint
	OutputBackoff  time.Duration // per-attempt wait for unusable replies and transport errors
	Temperature    float32
	MaxTokens      int
}

func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderHuggingFace
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.ServiceBackoff <= 0 {
		c.ServiceBackoff = DefaultServiceBackoff
	}
	if c.OutputBackoff <= 0 {
		c.OutputBackoff = DefaultOutputBackoff
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// Client asks the model for question batches and retries until it gets a
// schema-conformant reply or runs out of attempts.
type Client struct {
	completer      Completer
	maxAttempts    int
	serviceBackoff time.Duration
	outputBackoff  time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// New creates a client for the configured provider.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}

	var completer Completer
	switch strings.ToLower(cfg.Provider) {
	case ProviderHuggingFace:
		completer = NewHuggingFace(cfg)
	case ProviderOpenAI:
		completer = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	return NewWithCompleter(completer, cfg), nil
}

// NewWithCompleter creates a client around an existing backend.
func NewWithCompleter(completer Completer, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		completer:      completer,
		maxAttempts:    cfg.MaxAttempts,
		serviceBackoff: cfg.ServiceBackoff,
		outputBackoff:  cfg.OutputBackoff,
		sleep:          sleepCtx,
	}
}

// Call sends prompt and returns the validated questions of the reply.
// Capacity errors wait for the server's estimate or attempt × ServiceBackoff,
// unusable replies and transport errors wait attempt × OutputBackoff, and any
// other HTTP status ends the call at once. After MaxAttempts the last error
// is returned.
func (c *Client) Call(ctx context.Context, prompt string) ([]model.RawQuestion, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		questions, err := c.once(ctx, prompt)
		if err == nil {
			return questions, nil
		}
		lastErr = err

		wait, retry := c.backoff(err, attempt)
		if !retry {
			return nil, err
		}
		if attempt == c.maxAttempts {
			break
		}

		slog.Warn("inference call retrying",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"wait", wait.String(),
			"error", err,
		)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("inference failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) once(ctx context.Context, prompt string) ([]model.RawQuestion, error) {
	text, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	slog.Debug("LLM response", "raw", text)
	return ParseQuestions(text)
}

func (c *Client) backoff(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, ErrMissingCredential) {
		return 0, false
	}
	var se *ServiceError
	if errors.As(err, &se) {
		if !se.Retryable() {
			return 0, false
		}
		if se.EstimatedTime > 0 {
			return se.EstimatedTime, true
		}
		return time.Duration(attempt) * c.serviceBackoff, true
	}
	return time.Duration(attempt) * c.outputBackoff, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
