package model

import "time"

// HistoryExport is the top-level JSON structure for a history export.
type HistoryExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Count      int               `json:"count"`
	Summary    []ExamTypeSummary `json:"summary"`
	Results    []HistoryItem     `json:"results"`
}

// ExamTypeSummary aggregates the stored results of one exam type.
type ExamTypeSummary struct {
	ExamType ExamType `json:"exam_type"`
	Attempts int      `json:"attempts"`
	BestNet  float64  `json:"best_net"`
	AvgNet   float64  `json:"avg_net"`
}

// NewHistoryExport builds an export with per-exam-type summaries in first-seen order.
func NewHistoryExport(items []HistoryItem, now time.Time) HistoryExport {
	byType := make(map[ExamType]*ExamTypeSummary)
	var order []ExamType
	for _, it := range items {
		s, ok := byType[it.ExamType]
		if !ok {
			s = &ExamTypeSummary{ExamType: it.ExamType, BestNet: it.Net}
			byType[it.ExamType] = s
			order = append(order, it.ExamType)
		}
		s.Attempts++
		s.AvgNet += it.Net
		if it.Net > s.BestNet {
			s.BestNet = it.Net
		}
	}

	summary := make([]ExamTypeSummary, 0, len(order))
	for _, t := range order {
		s := byType[t]
		s.AvgNet /= float64(s.Attempts)
		summary = append(summary, *s)
	}

	if items == nil {
		items = []HistoryItem{}
	}
	return HistoryExport{
		ExportedAt: now,
		Count:      len(items),
		Summary:    summary,
		Results:    items,
	}
}
