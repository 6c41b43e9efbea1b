package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// MaxEstimatedWait caps the server's estimated_time retry hint.
const MaxEstimatedWait = 60 * time.Second

// HuggingFace calls the hosted text-generation inference API.
type HuggingFace struct {
	httpClient *http.Client
	url        string
	apiKey     string
	params     hfParameters
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	Temperature    float32 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	ReturnFullText bool    `json:"return_full_text"`
}

// NewHuggingFace builds a completer for cfg.Model under cfg.BaseURL.
func NewHuggingFace(cfg Config) *HuggingFace {
	cfg = cfg.withDefaults()
	base := cfg.BaseURL
	if base == "" {
		base = DefaultHFBaseURL
	}
	return &HuggingFace{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        strings.TrimRight(base, "/") + "/" + cfg.Model,
		apiKey:     cfg.APIKey,
		params: hfParameters{
			Temperature:    cfg.Temperature,
			MaxNewTokens:   cfg.MaxTokens,
			ReturnFullText: false,
		},
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func (h *HuggingFace) WithHTTPClient(c *http.Client) *HuggingFace {
	h.httpClient = c
	return h
}

// Complete posts the prompt and returns the generated text.
func (h *HuggingFace) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(h.apiKey) == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(hfRequest{Inputs: prompt, Parameters: h.params})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	// Error bodies are not guaranteed to be JSON, so decoding is best effort.
	var data any
	_ = json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &ServiceError{StatusCode: resp.StatusCode}
		if obj, ok := data.(map[string]any); ok {
			if msg, ok := obj["error"].(string); ok {
				se.Message = msg
			}
			if secs, ok := obj["estimated_time"].(float64); ok && secs > 0 {
				se.EstimatedTime = MaxEstimatedWait
				if secs*1000 < float64(MaxEstimatedWait/time.Millisecond) {
					se.EstimatedTime = time.Duration(math.Ceil(secs*1000)) * time.Millisecond
				}
			}
		}
		return "", se
	}

	text, ok := generatedText(data)
	if !ok || text == "" {
		return "", &OutputError{Kind: OutputEmpty}
	}
	return text, nil
}

// generatedText reads generated_text from either [{"generated_text": ...}]
// or {"generated_text": ...}.
func generatedText(data any) (string, bool) {
	switch v := data.(type) {
	case []any:
		if len(v) == 0 {
			return "", false
		}
		first, ok := v[0].(map[string]any)
		if !ok {
			return "", false
		}
		s, ok := first["generated_text"].(string)
		return s, ok
	case map[string]any:
		s, ok := v["generated_text"].(string)
		return s, ok
	}
	return "", false
}
