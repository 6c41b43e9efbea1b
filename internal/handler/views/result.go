package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
)

// ResultData is a finished attempt with its answers for review.
type ResultData struct {
	Item      model.HistoryItem
	Questions []model.Question
	Answers   map[string]model.OptionLabel
}

func ResultPage(data ResultData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(i18n.T(ctx, "ResultTitle"), 0, resultBody(data)).Render(ctx, w)
	})
}

func resultBody(data ResultData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		it := data.Item
		h.raw(`<h1>`)
		h.text(i18n.T(ctx, "ResultTitle"))
		h.raw(` · `)
		h.text(string(it.ExamType))
		h.raw(`</h1><div class="card"><p>`)
		h.text(i18n.T(ctx, "NetScore"))
		h.raw(`: <strong id="net">`)
		h.text(formatNet(it.Net))
		h.raw(`</strong></p><p>`)
		h.text(i18n.T(ctx, "TimeSpent"))
		h.raw(`: `)
		h.text(formatDuration(it.Duration()))
		h.raw(`</p>`)
		h.component(ctx, historyTable([]model.HistoryItem{it}))
		h.raw(`</div><h2>`)
		h.text(i18n.T(ctx, "ReviewAnswers"))
		h.raw(`</h2>`)

		for i, q := range data.Questions {
			selected, answered := data.Answers[q.ID]
			h.raw(`<div class="card"><p><strong>`)
			h.text(i18n.Td(ctx, "QuestionN", map[string]any{"N": i + 1, "Total": len(data.Questions)}))
			h.raw(`</strong> · `)
			h.text(q.Subject)
			h.raw(`</p><p class="question">`)
			h.text(q.Text)
			h.raw(`</p><p>`)
			h.text(i18n.T(ctx, "YourAnswer"))
			h.raw(`: `)
			if answered {
				h.text(string(selected))
			} else {
				h.text(i18n.T(ctx, "NotAnswered"))
			}
			h.raw(`</p>`)
			h.component(ctx, answeredQuestion(q, selected, false))
			h.raw(`</div>`)
		}
		h.raw(`<p><a href="/">`)
		h.text(i18n.T(ctx, "BackHome"))
		h.raw(`</a></p>`)
		return h.err
	})
}
