package handler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pavelanni/examprep/internal/exam"
	"github.com/pavelanni/examprep/internal/generator"
	"github.com/pavelanni/examprep/internal/model"
)

// job is a background exam generation.
type job struct {
	id       string
	examType model.ExamType
	created  time.Time

	mu        sync.Mutex
	progress  model.Progress
	failed    bool
	attemptID string
}

type jobSnapshot struct {
	progress  model.Progress
	failed    bool
	attemptID string
}

func (j *job) snapshot() jobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return jobSnapshot{progress: j.progress, failed: j.failed, attemptID: j.attemptID}
}

func (j *job) setProgress(p model.Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = p
}

func (j *job) finish(attemptID string, failed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.attemptID = attemptID
	j.failed = failed
}

// startJob registers a job and runs the generator in its own goroutine. The
// job goroutine is the only consumer of the progress channel.
func (h *Handler) startJob(examType model.ExamType, gen *generator.Generator) *job {
	now := h.now()
	j := &job{id: newID(), examType: examType, created: now}

	h.mu.Lock()
	h.pruneLocked(now)
	h.jobs[j.id] = j
	h.mu.Unlock()

	slog.Info("exam generation started", "job_id", j.id, "exam_type", examType)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		progress := make(chan model.Progress, 1)
		var (
			questions []model.Question
			err       error
		)
		done := make(chan struct{})
		go func() {
			defer close(done)
			questions, err = gen.Generate(h.ctx, examType, progress)
		}()
		for p := range progress {
			j.setProgress(p)
		}
		<-done

		if err != nil {
			slog.Error("exam generation failed", "job_id", j.id, "exam_type", examType, "error", err)
			j.finish("", true)
			return
		}

		a := exam.NewAttempt(examType, questions, h.now())
		h.addAttempt(a)
		j.finish(a.ID, false)
		slog.Info("exam generation finished", "job_id", j.id, "attempt_id", a.ID, "questions", len(questions))
	}()
	return j
}

// pruneLocked drops jobs and attempts older than retention. h.mu must be held.
func (h *Handler) pruneLocked(now time.Time) {
	for id, j := range h.jobs {
		if now.Sub(j.created) > retention {
			delete(h.jobs, id)
		}
	}
	for id, a := range h.attempts {
		if now.Sub(a.StartedAt) > retention {
			delete(h.attempts, id)
		}
	}
}
