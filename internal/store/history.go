package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/examprep/internal/model"
)

const (
	HistoryKey = "kpss_exam_history"
	// MaxHistory is how many results are kept; older ones are evicted.
	MaxHistory = 50
)

// History stores finished attempts newest first.
type History struct {
	kv KV
}

func NewHistory(kv KV) *History {
	return &History{kv: kv}
}

// List returns the stored results. A missing or unreadable value reads as
// an empty list.
func (h *History) List(ctx context.Context) ([]model.HistoryItem, error) {
	raw, err := h.kv.Get(ctx, HistoryKey)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if raw == "" {
		return []model.HistoryItem{}, nil
	}
	var items []model.HistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("discarding unreadable history", "error", err)
		return []model.HistoryItem{}, nil
	}
	if items == nil {
		items = []model.HistoryItem{}
	}
	return items, nil
}

// Add prepends item and trims the list to MaxHistory.
func (h *History) Add(ctx context.Context, item model.HistoryItem) error {
	items, err := h.List(ctx)
	if err != nil {
		return err
	}
	items = append([]model.HistoryItem{item}, items...)
	if len(items) > MaxHistory {
		items = items[:MaxHistory]
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := h.kv.Set(ctx, HistoryKey, string(data)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (h *History) Clear(ctx context.Context) error {
	if err := h.kv.Delete(ctx, HistoryKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Export builds an export-ready snapshot of the stored results.
func (h *History) Export(ctx context.Context) (model.HistoryExport, error) {
	items, err := h.List(ctx)
	if err != nil {
		return model.HistoryExport{}, err
	}
	return model.NewHistoryExport(items, time.Now().UTC()), nil
}
