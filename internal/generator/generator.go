// Package generator walks an exam syllabus and collects model-authored
// questions batch by batch.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/examprep/internal/llm/prompts"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/syllabus"
)

const (
	DefaultBatchSize  = 2
	DefaultBatchDelay = 900 * time.Millisecond
)

// ErrNoQuestions is returned when every batch failed.
var ErrNoQuestions = errors.New("no questions could be generated")

// Source answers a prompt with validated raw questions. *llm.Client satisfies it.
type Source interface {
	Call(ctx context.Context, prompt string) ([]model.RawQuestion, error)
}

// Generator builds full question sets for an exam type.
type Generator struct {
	source   Source
	cfg      model.ExamConfig
	sleep    func(ctx context.Context, d time.Duration) error
	newID    func() string
	syllabus func(model.ExamType) ([]model.SyllabusItem, error)
}

// New creates a generator. Zero config values fall back to the defaults,
// except BatchDelay where zero means no pause.
func New(source Source, cfg model.ExamConfig) *Generator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize > prompts.MaxBatch {
		cfg.BatchSize = prompts.MaxBatch
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if cfg.QuestionLang == "" {
		cfg.QuestionLang = prompts.DefaultLanguage
	}
	return &Generator{
		source:   source,
		cfg:      cfg,
		sleep:    sleepCtx,
		newID:    uuid.NewString,
		syllabus: syllabus.For,
	}
}

// Generate asks for every lesson of examType in order, two or so questions at a
// time, and returns the questions that passed validation, capped at the
// syllabus total. A failed batch is logged and skipped; the result may be
// shorter than the total but is never empty without ErrNoQuestions.
//
// Progress events are sent on progress (which may be nil) and the channel is
// closed when Generate returns.
func (g *Generator) Generate(ctx context.Context, examType model.ExamType, progress chan<- model.Progress) ([]model.Question, error) {
	if progress != nil {
		defer close(progress)
	}

	items, err := g.syllabus(examType)
	if err != nil {
		return nil, err
	}
	total := syllabus.Total(items)

	var questions []model.Question
	for _, item := range items {
		if err := g.emit(ctx, progress, model.Progress{
			Subject: item.Subject,
			Message: fmt.Sprintf("Generating %s questions...", item.Subject),
			Percent: percent(len(questions), total),
		}); err != nil {
			return nil, err
		}
		slog.Info("generating lesson", "exam_type", examType, "subject", item.Subject, "count", item.QuestionCount)

		for remaining := item.QuestionCount; remaining > 0; remaining -= g.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			count := min(g.cfg.BatchSize, remaining)

			batch, err := g.batch(ctx, examType, item, count)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				slog.Error("question batch failed", "subject", item.Subject, "count", count, "error", err)
			} else {
				questions = append(questions, batch...)
			}

			if err := g.sleep(ctx, g.cfg.BatchDelay); err != nil {
				return nil, err
			}
		}
	}

	if err := g.emit(ctx, progress, model.Progress{Message: "Finishing...", Percent: 100, Done: true}); err != nil {
		return nil, err
	}

	questions = finalize(questions, total)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	slog.Info("exam generated", "exam_type", examType, "questions", len(questions), "requested", total)
	return questions, nil
}

func (g *Generator) batch(ctx context.Context, examType model.ExamType, item model.SyllabusItem, count int) ([]model.Question, error) {
	isMath := syllabus.IsMath(item.Subject)
	prompt, err := prompts.Build(prompts.BatchRequest{
		Subject:       item.Subject,
		Topics:        item.Topics,
		Count:         count,
		ExamType:      string(examType),
		StepSolutions: isMath,
		Language:      g.cfg.QuestionLang,
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	raw, err := g.source.Call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	defaultTopic := ""
	if len(item.Topics) > 0 {
		defaultTopic = item.Topics[0]
	}
	out := make([]model.Question, 0, len(raw))
	for _, r := range raw {
		q := model.Question{
			ID:          g.newID(),
			ExamType:    examType,
			Subject:     item.Subject,
			Topic:       r.Topic,
			Difficulty:  r.Difficulty,
			Text:        r.Question,
			Options:     r.Options,
			Answer:      r.Answer,
			Explanation: r.Explanation,
		}
		if q.Topic == "" {
			q.Topic = defaultTopic
		}
		if q.Difficulty == "" {
			q.Difficulty = model.DifficultyMedium
		}
		if isMath {
			q.StepSolution = r.StepSolution
		}
		out = append(out, q)
	}
	return out, nil
}

func (g *Generator) emit(ctx context.Context, ch chan<- model.Progress, p model.Progress) error {
	if ch == nil {
		return nil
	}
	select {
	case ch <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finalize drops incomplete questions and caps the list at limit.
func finalize(questions []model.Question, limit int) []model.Question {
	kept := questions[:0]
	for _, q := range questions {
		if q.Complete() {
			kept = append(kept, q)
		}
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	return min(p, 100)
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
