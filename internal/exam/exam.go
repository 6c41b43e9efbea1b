// Package exam tracks a single exam attempt: answers, running stats and the
// final score.
package exam

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/examprep/internal/model"
)

var (
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrInvalidOption   = errors.New("invalid option")
	ErrFinished        = errors.New("attempt already finished")
)

// Attempt is one run through a generated question set. It is safe for
// concurrent use.
type Attempt struct {
	ID        string
	ExamType  model.ExamType
	Questions []model.Question
	StartedAt time.Time

	mu         sync.Mutex
	answers    map[string]model.OptionLabel
	finishedAt time.Time
	result     model.HistoryItem
}

// NewAttempt starts an attempt at now.
func NewAttempt(examType model.ExamType, questions []model.Question, now time.Time) *Attempt {
	return &Attempt{
		ID:        uuid.NewString(),
		ExamType:  examType,
		Questions: questions,
		StartedAt: now,
		answers:   make(map[string]model.OptionLabel),
	}
}

// Answer records the chosen option. Answers are locked once given.
func (a *Attempt) Answer(questionID string, label model.OptionLabel) error {
	if !label.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOption, label)
	}
	q, ok := a.question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if _, ok := q.Options[label]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidOption, label)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.finishedAt.IsZero() {
		return ErrFinished
	}
	if _, done := a.answers[questionID]; done {
		return ErrAlreadyAnswered
	}
	a.answers[questionID] = label
	return nil
}

// Selected returns the recorded answer for a question, if any.
func (a *Attempt) Selected(questionID string) (model.OptionLabel, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.answers[questionID]
	return l, ok
}

// Answers returns a copy of the recorded answers keyed by question id.
func (a *Attempt) Answers() map[string]model.OptionLabel {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]model.OptionLabel, len(a.answers))
	for k, v := range a.answers {
		out[k] = v
	}
	return out
}

// Stats returns the running tally.
func (a *Attempt) Stats() model.Score {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ScoreAnswers(a.Questions, a.answers)
}

// Finished reports whether Finish has been called.
func (a *Attempt) Finished() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.finishedAt.IsZero()
}

// Result returns the history record once the attempt is finished.
func (a *Attempt) Result() (model.HistoryItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, !a.finishedAt.IsZero()
}

// Finish scores the attempt and returns its history record. The boolean is
// true only on the first call; later calls return the same record.
func (a *Attempt) Finish(now time.Time) (model.HistoryItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.finishedAt.IsZero() {
		return a.result, false
	}

	a.finishedAt = now
	score := ScoreAnswers(a.Questions, a.answers)
	a.result = model.HistoryItem{
		ID:         a.ID,
		Timestamp:  now,
		ExamType:   a.ExamType,
		DurationMs: now.Sub(a.StartedAt).Milliseconds(),
		Total:      score.Total,
		Correct:    score.Correct,
		Incorrect:  score.Incorrect,
		Empty:      score.Empty,
		Net:        score.Net,
	}
	return a.result, true
}

func (a *Attempt) question(id string) (model.Question, bool) {
	for _, q := range a.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// ScoreAnswers tallies answers keyed by question id. Unanswered questions
// count as empty.
func ScoreAnswers(questions []model.Question, answers map[string]model.OptionLabel) model.Score {
	s := model.Score{Total: len(questions)}
	for _, q := range questions {
		got, ok := answers[q.ID]
		switch {
		case !ok:
			s.Empty++
		case got == q.Answer:
			s.Correct++
		default:
			s.Incorrect++
		}
	}
	s.Net = model.NetScore(s.Correct, s.Incorrect)
	return s
}
