package model

import (
	"testing"
	"time"
)

func TestNetScore(t *testing.T) {
	tests := []struct {
		correct, incorrect int
		want               float64
	}{
		{6, 2, 5.5},
		{0, 0, 0},
		{0, 4, -1},
		{10, 0, 10},
	}
	for _, tt := range tests {
		if got := NetScore(tt.correct, tt.incorrect); got != tt.want {
			t.Errorf("NetScore(%d, %d) = %v, want %v", tt.correct, tt.incorrect, got, tt.want)
		}
	}
}

func TestQuestionComplete(t *testing.T) {
	full := map[OptionLabel]string{"A": "a", "B": "b", "C": "c", "D": "d", "E": "e"}
	tests := []struct {
		name string
		q    Question
		want bool
	}{
		{"complete", Question{Text: "q", Options: full, Answer: OptionC}, true},
		{"no text", Question{Options: full, Answer: OptionC}, false},
		{"no options", Question{Text: "q", Answer: OptionC}, false},
		{"bad label", Question{Text: "q", Options: full, Answer: "F"}, false},
		{"answer missing from options", Question{Text: "q", Options: map[OptionLabel]string{"A": "a"}, Answer: OptionB}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHistoryExport(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	items := []HistoryItem{
		{ID: "3", ExamType: ExamAGroup, Net: 10},
		{ID: "2", ExamType: ExamGKGY, Net: 4},
		{ID: "1", ExamType: ExamAGroup, Net: 20},
	}
	exp := NewHistoryExport(items, now)
	if exp.Count != 3 || !exp.ExportedAt.Equal(now) {
		t.Fatalf("unexpected header: %+v", exp)
	}
	if len(exp.Summary) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(exp.Summary))
	}
	a := exp.Summary[0]
	if a.ExamType != ExamAGroup || a.Attempts != 2 || a.BestNet != 20 || a.AvgNet != 15 {
		t.Errorf("A-GRUBU summary = %+v", a)
	}
	if exp.Summary[1].ExamType != ExamGKGY {
		t.Errorf("expected GK-GY second, got %q", exp.Summary[1].ExamType)
	}

	empty := NewHistoryExport(nil, now)
	if empty.Results == nil || empty.Count != 0 || len(empty.Summary) != 0 {
		t.Errorf("empty export = %+v", empty)
	}
}
