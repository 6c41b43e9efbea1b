package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pavelanni/examprep/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedis(mr.Addr(), "", 0, "")
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, mr
}

// backends runs fn against every KV implementation.
func backends(t *testing.T, fn func(t *testing.T, kv KV)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestStore(t)) })
	t.Run("redis", func(t *testing.T) {
		r, _ := newTestRedis(t)
		fn(t, r)
	})
}

func TestKV(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()

		v, err := kv.Get(ctx, "missing")
		if err != nil || v != "" {
			t.Fatalf("Get missing = %q, %v", v, err)
		}

		if err := kv.Set(ctx, "k", "one"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := kv.Set(ctx, "k", "two"); err != nil {
			t.Fatalf("Set overwrite: %v", err)
		}
		if v, _ := kv.Get(ctx, "k"); v != "two" {
			t.Errorf("expected two, got %q", v)
		}

		if err := kv.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if v, _ := kv.Get(ctx, "k"); v != "" {
			t.Errorf("expected empty after delete, got %q", v)
		}
		if err := kv.Delete(ctx, "k"); err != nil {
			t.Errorf("Delete of missing key: %v", err)
		}
	})
}

func TestCredentials(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		c := NewCredentials(kv)

		if v, err := c.Get(ctx); err != nil || v != "" {
			t.Fatalf("empty Get = %q, %v", v, err)
		}

		// Legacy slot is read when the primary is empty.
		_ = kv.Set(ctx, LegacyCredentialKey, "legacy-key-123")
		if v, _ := c.Get(ctx); v != "legacy-key-123" {
			t.Errorf("expected legacy fallback, got %q", v)
		}

		if err := c.Save(ctx, "  short  "); !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("expected ErrInvalidCredential, got %v", err)
		}
		if err := c.Save(ctx, "1234567890"); !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("10 characters should be rejected, got %v", err)
		}

		if err := c.Save(ctx, "  hf_abcdefghijk \n"); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if v, _ := kv.Get(ctx, CredentialKey); v != "hf_abcdefghijk" {
			t.Errorf("expected trimmed key, got %q", v)
		}
		if v, _ := kv.Get(ctx, LegacyCredentialKey); v != "" {
			t.Errorf("legacy slot should be cleared, got %q", v)
		}

		_ = kv.Set(ctx, LegacyCredentialKey, "legacy-key-123")
		if err := c.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if v, _ := c.Get(ctx); v != "" {
			t.Errorf("expected no credential after Clear, got %q", v)
		}
	})
}

func TestMask(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abcd", "****"},
		{"hf_abcdefghijk", "hf_a******hijk"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHistoryCap(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		h := NewHistory(kv)

		items, err := h.List(ctx)
		if err != nil || items == nil || len(items) != 0 {
			t.Fatalf("empty List = %v, %v", items, err)
		}

		for i := 0; i < MaxHistory+1; i++ {
			if err := h.Add(ctx, model.HistoryItem{ID: fmt.Sprintf("r%d", i), ExamType: model.ExamGKGY, Net: float64(i)}); err != nil {
				t.Fatalf("Add %d: %v", i, err)
			}
		}

		items, err = h.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(items) != MaxHistory {
			t.Fatalf("expected %d items, got %d", MaxHistory, len(items))
		}
		if items[0].ID != "r50" {
			t.Errorf("newest first: expected r50, got %s", items[0].ID)
		}
		if items[len(items)-1].ID != "r1" {
			t.Errorf("oldest entry should be evicted, last is %s", items[len(items)-1].ID)
		}
	})
}

func TestHistoryRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		h := NewHistory(kv)
		ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		in := model.HistoryItem{ID: "a", Timestamp: ts, ExamType: model.ExamAGroup, DurationMs: 1500, Total: 10, Correct: 6, Incorrect: 2, Empty: 2, Net: 5.5}
		if err := h.Add(ctx, in); err != nil {
			t.Fatalf("Add: %v", err)
		}
		items, _ := h.List(ctx)
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		got := items[0]
		if got.ID != in.ID || !got.Timestamp.Equal(ts) || got.Net != 5.5 || got.Duration() != 1500*time.Millisecond {
			t.Errorf("round trip = %+v", got)
		}

		if err := h.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if items, _ := h.List(ctx); len(items) != 0 {
			t.Errorf("expected empty history after Clear, got %d", len(items))
		}
	})
}

func TestHistoryCorruptValue(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		_ = kv.Set(ctx, HistoryKey, "{not json")
		h := NewHistory(kv)

		items, err := h.List(ctx)
		if err != nil || len(items) != 0 {
			t.Fatalf("corrupt history should read as empty, got %v, %v", items, err)
		}
		if err := h.Add(ctx, model.HistoryItem{ID: "x"}); err != nil {
			t.Fatalf("Add after corrupt: %v", err)
		}
		if items, _ := h.List(ctx); len(items) != 1 {
			t.Errorf("expected 1 item, got %d", len(items))
		}
	})
}

func TestHistoryExport(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemory())
	_ = h.Add(ctx, model.HistoryItem{ID: "1", ExamType: model.ExamGKGY, Net: 4})
	_ = h.Add(ctx, model.HistoryItem{ID: "2", ExamType: model.ExamGKGY, Net: 8})

	exp, err := h.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exp.Count != 2 || len(exp.Summary) != 1 || exp.Summary[0].BestNet != 8 || exp.Summary[0].AvgNet != 6 {
		t.Errorf("export = %+v", exp)
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	if _, err := NewRedis("127.0.0.1:1", "", 0, ""); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestSQLitePragmas(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "examprep.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	var mode string
	if err := s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := s.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	if err := NewCredentials(r).Save(ctx, "hf_abcdefghijk"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := mr.Get(DefaultRedisPrefix + CredentialKey)
	if err != nil || got != "hf_abcdefghijk" {
		t.Errorf("raw key = %q, %v", got, err)
	}
	if mr.Exists(CredentialKey) {
		t.Error("key stored without prefix")
	}

	other := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "other:")
	t.Cleanup(func() { other.Close() })
	if v, _ := other.Get(ctx, CredentialKey); v != "" {
		t.Errorf("prefixes should isolate installs, got %q", v)
	}
}
