package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

const validBatch = `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"C","explanation":"x"}]`

type step struct {
	text string
	err  error
}

// scriptedCompleter replays a fixed sequence of results.
type scriptedCompleter struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.steps) {
		return "", errors.New("script exhausted")
	}
	return s.steps[i].text, s.steps[i].err
}

func newTestClient(c Completer) (*Client, *[]time.Duration) {
	var waits []time.Duration
	client := NewWithCompleter(c, Config{})
	client.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return client, &waits
}

func TestCallSucceedsFirstTry(t *testing.T) {
	sc := &scriptedCompleter{steps: []step{{text: validBatch}}}
	client, waits := newTestClient(sc)

	qs, err := client.Call(context.Background(), "p")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(qs) != 1 || sc.calls != 1 || len(*waits) != 0 {
		t.Errorf("questions=%d calls=%d waits=%v", len(qs), sc.calls, *waits)
	}
}

func TestCallRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		steps     []step
		wantCalls int
		wantWaits []time.Duration
		wantErr   bool
	}{
		{
			name: "cold start without hint",
			steps: []step{
				{err: &ServiceError{StatusCode: 503}},
				{err: &ServiceError{StatusCode: 429}},
				{text: validBatch},
			},
			wantCalls: 3,
			wantWaits: []time.Duration{1200 * time.Millisecond, 2400 * time.Millisecond},
		},
		{
			name: "server estimate honored",
			steps: []step{
				{err: &ServiceError{StatusCode: 503, EstimatedTime: 12 * time.Second}},
				{text: validBatch},
			},
			wantCalls: 2,
			wantWaits: []time.Duration{12 * time.Second},
		},
		{
			name: "malformed output uses short backoff",
			steps: []step{
				{text: "no json here"},
				{text: `[{"question":"q"}]`},
				{text: validBatch},
			},
			wantCalls: 3,
			wantWaits: []time.Duration{500 * time.Millisecond, 1000 * time.Millisecond},
		},
		{
			name: "transport error retried",
			steps: []step{
				{err: errors.New("connection reset")},
				{text: validBatch},
			},
			wantCalls: 2,
			wantWaits: []time.Duration{500 * time.Millisecond},
		},
		{
			name: "terminal status stops at once",
			steps: []step{
				{err: &ServiceError{StatusCode: 401, Message: "Invalid credentials"}},
				{text: validBatch},
			},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name: "exhausted",
			steps: []step{
				{err: &ServiceError{StatusCode: 500}},
				{text: ""},
				{err: &ServiceError{StatusCode: 503}},
				{text: "nope"},
				{text: validBatch},
			},
			wantCalls: 4,
			wantWaits: []time.Duration{1200 * time.Millisecond, 1000 * time.Millisecond, 3600 * time.Millisecond},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &scriptedCompleter{steps: tt.steps}
			client, waits := newTestClient(sc)

			_, err := client.Call(context.Background(), "p")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Call() error = %v, wantErr %v", err, tt.wantErr)
			}
			if sc.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", sc.calls, tt.wantCalls)
			}
			if len(*waits) != len(tt.wantWaits) {
				t.Fatalf("waits = %v, want %v", *waits, tt.wantWaits)
			}
			for i, w := range tt.wantWaits {
				if (*waits)[i] != w {
					t.Errorf("wait[%d] = %v, want %v", i, (*waits)[i], w)
				}
			}
		})
	}
}

func TestCallReturnsLastError(t *testing.T) {
	sc := &scriptedCompleter{steps: []step{
		{err: &ServiceError{StatusCode: 503}},
		{err: &ServiceError{StatusCode: 503}},
		{err: &ServiceError{StatusCode: 503}},
		{text: "[{]"},
	}}
	client, _ := newTestClient(sc)

	_, err := client.Call(context.Background(), "p")
	var oe *OutputError
	if !errors.As(err, &oe) || oe.Kind != OutputMalformed {
		t.Errorf("expected last error to be malformed output, got %v", err)
	}
}

func TestCallHonorsCancellation(t *testing.T) {
	sc := &scriptedCompleter{steps: []step{{err: &ServiceError{StatusCode: 503}}, {text: validBatch}}}
	client := NewWithCompleter(sc, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx(ctx, d)
	}

	_, err := client.Call(ctx, "p")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if sc.calls != 1 {
		t.Errorf("calls = %d, want 1", sc.calls)
	}
}

func TestNewRequiresCredential(t *testing.T) {
	if _, err := New(Config{APIKey: "  "}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	if _, err := New(Config{APIKey: "hf_abcdefghijkl", Provider: "bard"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := New(Config{APIKey: "hf_abcdefghijkl", Provider: ProviderOpenAI}); err != nil {
		t.Errorf("openai provider: %v", err)
	}
}

func TestServiceErrorRetryable(t *testing.T) {
	for code, want := range map[int]bool{500: true, 503: true, 429: true, 400: false, 401: false, 404: false, 502: false} {
		if got := (&ServiceError{StatusCode: code}).Retryable(); got != want {
			t.Errorf("Retryable(%d) = %v, want %v", code, got, want)
		}
	}
}
