package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavelanni/examprep/internal/exam"
	"github.com/pavelanni/examprep/internal/generator"
	"github.com/pavelanni/examprep/internal/handler/views"
	appI18n "github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/llm"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/store"
	"github.com/pavelanni/examprep/internal/syllabus"
)

// retention is how long jobs and attempts stay in memory.
const retention = 6 * time.Hour

// SourceFactory builds a question source for an API key.
type SourceFactory func(apiKey string) (generator.Source, error)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	creds       *store.Credentials
	history     *store.History
	newSource   SourceFactory
	config      model.ExamConfig
	fallbackKey string
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	jobs     map[string]*job
	attempts map[string]*exam.Attempt
	wg       sync.WaitGroup
}

// New creates a new Handler.
func New(kv store.KV, newSource SourceFactory, cfg model.ExamConfig) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		creds:     store.NewCredentials(kv),
		history:   store.NewHistory(kv),
		newSource: newSource,
		config:    cfg,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]*job),
		attempts:  make(map[string]*exam.Attempt),
	}
}

// SetFallbackKey sets the key used when none is stored, typically from the
// environment. Keys that fail the stored-key check are ignored.
func (h *Handler) SetFallbackKey(key string) {
	h.fallbackKey = ""
	if key == "" {
		return
	}
	valid, err := store.ValidateCredential(key)
	if err != nil {
		slog.Warn("ignoring fallback API key", "error", err)
		return
	}
	h.fallbackKey = valid
}

// Close cancels running generation jobs and waits for them to stop.
func (h *Handler) Close() {
	h.cancel()
	h.wg.Wait()
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/", h.handleIndex)
		r.Get("/settings", h.handleSettingsPage)
		r.Post("/settings", h.handleSaveSettings)
		r.Post("/settings/clear", h.handleClearSettings)
		r.Post("/history/clear", h.handleClearHistory)
		r.Post("/exam/start", h.handleStartExam)
		r.Get("/generate/{jobID}", h.handleGeneratePage)
		r.Get("/exam/{attemptID}", h.handleExamPage)
		r.Post("/exam/{attemptID}/answer", h.handleAnswer)
		r.Post("/exam/{attemptID}/finish", h.handleFinish)
		r.Get("/result/{attemptID}", h.handleResult)
	})
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msgID string) {
	render(w, r, http.StatusNotFound, views.MessagePage(appI18n.T(r.Context(), "AppTitle"), msgID))
}

func (h *Handler) apiKey(ctx context.Context) (string, error) {
	key, err := h.creds.Get(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		key = h.fallbackKey
	}
	return key, nil
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	key, err := h.apiKey(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	items, err := h.history.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, views.HomePage(views.HomeData{
		Exams:   syllabus.Exams(),
		HasKey:  key != "",
		History: items,
	}))
}

func (h *Handler) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	data := views.SettingsData{}
	switch {
	case r.URL.Query().Has("saved"):
		data.Notice = "KeySaved"
	case r.URL.Query().Has("cleared"):
		data.Notice = "KeyCleared"
	}
	h.renderSettings(w, r, http.StatusOK, data)
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, status int, data views.SettingsData) {
	key, err := h.creds.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if key != "" {
		data.MaskedKey = store.Mask(key)
	}
	render(w, r, status, views.SettingsPage(data))
}

func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	err := h.creds.Save(r.Context(), r.FormValue("api_key"))
	if errors.Is(err, store.ErrInvalidCredential) {
		h.renderSettings(w, r, http.StatusBadRequest, views.SettingsData{Error: "KeyInvalid"})
		return
	}
	if err != nil {
		slog.Error("failed to save API key", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("API key saved")
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

func (h *Handler) handleClearSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.creds.Clear(r.Context()); err != nil {
		slog.Error("failed to clear API key", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("API key cleared")
	http.Redirect(w, r, "/settings?cleared=1", http.StatusSeeOther)
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleStartExam(w http.ResponseWriter, r *http.Request) {
	examType, err := syllabus.ParseExamType(r.FormValue("exam_type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key, err := h.apiKey(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if key == "" {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	source, err := h.newSource(key)
	if errors.Is(err, llm.ErrMissingCredential) {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("failed to create inference client", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	j := h.startJob(examType, generator.New(source, h.config))
	http.Redirect(w, r, "/generate/"+j.id, http.StatusSeeOther)
}

func (h *Handler) handleGeneratePage(w http.ResponseWriter, r *http.Request) {
	j := h.job(chi.URLParam(r, "jobID"))
	if j == nil {
		h.notFound(w, r, "JobNotFound")
		return
	}
	snap := j.snapshot()
	if snap.attemptID != "" {
		http.Redirect(w, r, "/exam/"+snap.attemptID, http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, views.ProgressPage(views.ProgressData{
		Progress: snap.progress,
		Failed:   snap.failed,
	}))
}

func (h *Handler) handleExamPage(w http.ResponseWriter, r *http.Request) {
	a := h.attempt(chi.URLParam(r, "attemptID"))
	if a == nil {
		h.notFound(w, r, "AttemptNotFound")
		return
	}
	if a.Finished() {
		http.Redirect(w, r, "/result/"+a.ID, http.StatusSeeOther)
		return
	}

	idx := questionIndex(r.URL.Query().Get("q"), len(a.Questions))
	q := a.Questions[idx]
	selected, answered := a.Selected(q.ID)
	render(w, r, http.StatusOK, views.ExamPage(views.ExamData{
		AttemptID: a.ID,
		Index:     idx,
		Total:     len(a.Questions),
		Question:  q,
		Selected:  selected,
		Answered:  answered,
		Stats:     a.Stats(),
	}))
}

// questionIndex parses ?q= and clamps it to the question list.
func questionIndex(raw string, total int) int {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0
	}
	if idx >= total {
		return total - 1
	}
	return idx
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	a := h.attempt(chi.URLParam(r, "attemptID"))
	if a == nil {
		h.notFound(w, r, "AttemptNotFound")
		return
	}

	err := a.Answer(r.FormValue("question_id"), model.OptionLabel(r.FormValue("answer")))
	switch {
	case errors.Is(err, exam.ErrAlreadyAnswered):
		// Answers are locked; show the question as it stands.
	case errors.Is(err, exam.ErrFinished):
		http.Redirect(w, r, "/result/"+a.ID, http.StatusSeeOther)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	idx := questionIndex(r.FormValue("q"), len(a.Questions))
	http.Redirect(w, r, fmt.Sprintf("/exam/%s?q=%d", a.ID, idx), http.StatusSeeOther)
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	a := h.attempt(chi.URLParam(r, "attemptID"))
	if a == nil {
		h.notFound(w, r, "AttemptNotFound")
		return
	}

	item, first := a.Finish(h.now())
	if first {
		if err := h.history.Add(r.Context(), item); err != nil {
			slog.Error("failed to save result", "attempt_id", a.ID, "error", err)
		} else {
			slog.Info("exam finished",
				"attempt_id", a.ID,
				"exam_type", item.ExamType,
				"correct", item.Correct,
				"incorrect", item.Incorrect,
				"empty", item.Empty,
				"net", item.Net,
			)
		}
	}
	http.Redirect(w, r, "/result/"+a.ID, http.StatusSeeOther)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	a := h.attempt(chi.URLParam(r, "attemptID"))
	if a == nil {
		h.notFound(w, r, "AttemptNotFound")
		return
	}
	item, ok := a.Result()
	if !ok {
		http.Redirect(w, r, "/exam/"+a.ID, http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, views.ResultPage(views.ResultData{
		Item:      item,
		Questions: a.Questions,
		Answers:   a.Answers(),
	}))
}

func (h *Handler) attempt(id string) *exam.Attempt {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts[id]
}

func (h *Handler) job(id string) *job {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jobs[id]
}

func (h *Handler) addAttempt(a *exam.Attempt) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts[a.ID] = a
}

func newID() string {
	return uuid.NewString()
}
