package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
)

// ExamData is one question of an attempt in progress.
type ExamData struct {
	AttemptID string
	Index     int // zero-based
	Total     int
	Question  model.Question
	Selected  model.OptionLabel
	Answered  bool
	Stats     model.Score
}

func ExamPage(data ExamData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := i18n.Td(ctx, "QuestionN", map[string]any{"N": data.Index + 1, "Total": data.Total})
		return layout(title, 0, examBody(data)).Render(ctx, w)
	})
}

func examBody(data ExamData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		q := data.Question
		base := "/exam/" + data.AttemptID

		h.raw(`<p><strong>`)
		h.text(i18n.Td(ctx, "QuestionN", map[string]any{"N": data.Index + 1, "Total": data.Total}))
		h.raw(`</strong> · `)
		h.text(q.Subject)
		if q.Topic != "" {
			h.raw(` · `)
			h.text(i18n.T(ctx, "Topic"))
			h.raw(`: `)
			h.text(q.Topic)
		}
		h.raw(` · `)
		h.text(i18n.T(ctx, "Difficulty"))
		h.raw(`: `)
		h.text(difficultyLabel(ctx, q.Difficulty))
		h.raw(`</p><p><small>`)
		h.text(i18n.Td(ctx, "RunningScore", map[string]any{
			"Correct":   data.Stats.Correct,
			"Incorrect": data.Stats.Incorrect,
			"Empty":     data.Stats.Empty,
			"Net":       formatNet(data.Stats.Net),
		}))
		h.raw(`</small></p><div class="card"><p class="question">`)
		h.text(q.Text)
		h.raw(`</p>`)

		if !data.Answered {
			h.raw(`<form method="post" action="`)
			h.text(base + "/answer")
			h.raw(`">`)
			h.csrfField(ctx)
			h.raw(`<input type="hidden" name="question_id" value="`)
			h.text(q.ID)
			h.raw(`"><input type="hidden" name="q" value="`)
			h.textf("%d", data.Index)
			h.raw(`">`)
			for _, l := range model.OptionLabels {
				text, ok := q.Options[l]
				if !ok {
					continue
				}
				h.raw(`<label class="option"><input type="radio" name="answer" required value="`)
				h.text(string(l))
				h.raw(`"> <strong>`)
				h.text(string(l))
				h.raw(`)</strong> `)
				h.text(text)
				h.raw(`</label>`)
			}
			h.raw(`<button type="submit">`)
			h.text(i18n.T(ctx, "SubmitAnswer"))
			h.raw(`</button></form>`)
		} else {
			h.component(ctx, answeredQuestion(q, data.Selected, true))
		}
		h.raw(`</div><p>`)

		if data.Index > 0 {
			h.raw(`<a href="`)
			h.text(fmt.Sprintf("%s?q=%d", base, data.Index-1))
			h.raw(`">`)
			h.text(i18n.T(ctx, "Previous"))
			h.raw(`</a> `)
		}
		if data.Index < data.Total-1 {
			h.raw(`<a href="`)
			h.text(fmt.Sprintf("%s?q=%d", base, data.Index+1))
			h.raw(`">`)
			h.text(i18n.T(ctx, "Next"))
			h.raw(`</a>`)
		}
		h.raw(`</p><form method="post" action="`)
		h.text(base + "/finish")
		h.raw(`">`)
		h.csrfField(ctx)
		h.raw(`<button type="submit">`)
		h.text(i18n.T(ctx, "FinishExam"))
		h.raw(`</button></form>`)
		return h.err
	})
}

// answeredQuestion marks the correct option and the chosen one, then shows
// the explanation and, for math, the worked solution.
func answeredQuestion(q model.Question, selected model.OptionLabel, feedback bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		for _, l := range model.OptionLabels {
			text, ok := q.Options[l]
			if !ok {
				continue
			}
			h.raw(`<div`)
			h.class("option", templ.KV("correct", l == q.Answer), templ.KV("wrong", l == selected && l != q.Answer))
			h.raw(`><strong>`)
			h.text(string(l))
			h.raw(`)</strong> `)
			h.text(text)
			h.raw(`</div>`)
		}

		if feedback {
			if selected == q.Answer {
				h.raw(`<p class="ok">`)
				h.text(i18n.T(ctx, "AnswerCorrect"))
			} else {
				h.raw(`<p class="err">`)
				h.text(i18n.Td(ctx, "AnswerWrong", map[string]any{"Answer": string(q.Answer)}))
			}
			h.raw(`</p>`)
		}

		if q.Explanation != "" {
			h.raw(`<h3>`)
			h.text(i18n.T(ctx, "Explanation"))
			h.raw(`</h3><p class="question">`)
			h.text(q.Explanation)
			h.raw(`</p>`)
		}
		if q.StepSolution != "" {
			h.raw(`<h3>`)
			h.text(i18n.T(ctx, "StepSolution"))
			h.raw(`</h3><p class="question">`)
			h.text(q.StepSolution)
			h.raw(`</p>`)
		}
		return h.err
	})
}
