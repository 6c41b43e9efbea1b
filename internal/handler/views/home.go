package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/syllabus"
)

// HomeData is everything the landing page shows.
type HomeData struct {
	Exams   []syllabus.Exam
	HasKey  bool
	History []model.HistoryItem
}

func HomePage(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(i18n.T(ctx, "NavHome"), 0, homeBody(data)).Render(ctx, w)
	})
}

func homeBody(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		if !data.HasKey {
			h.raw(`<p class="warn">`)
			h.text(i18n.T(ctx, "KeyMissing"))
			h.raw(` <a href="/settings">`)
			h.text(i18n.T(ctx, "NavSettings"))
			h.raw(`</a></p>`)
		}

		h.raw(`<h1>`)
		h.text(i18n.T(ctx, "ChooseExam"))
		h.raw(`</h1>`)
		for _, e := range data.Exams {
			h.raw(`<div class="card"><h2>`)
			h.text(e.Title)
			h.raw(`</h2><p>`)
			h.text(e.Description)
			h.raw(`</p><p>`)
			h.text(i18n.Tp(ctx, "QuestionCount", e.Total))
			h.raw(`</p><form method="post" action="/exam/start">`)
			h.csrfField(ctx)
			h.raw(`<input type="hidden" name="exam_type" value="`)
			h.text(string(e.Type))
			h.raw(`"><button type="submit">`)
			h.text(i18n.T(ctx, "StartExam"))
			h.raw(`</button></form></div>`)
		}

		h.raw(`<h2>`)
		h.text(i18n.T(ctx, "RecentResults"))
		h.raw(`</h2>`)
		if len(data.History) == 0 {
			h.raw(`<p>`)
			h.text(i18n.T(ctx, "NoResults"))
			h.raw(`</p>`)
			return h.err
		}
		h.component(ctx, historyTable(data.History))
		h.raw(`<form method="post" action="/history/clear">`)
		h.csrfField(ctx)
		h.raw(`<button type="submit">`)
		h.text(i18n.T(ctx, "ClearHistory"))
		h.raw(`</button></form>`)
		return h.err
	})
}

func historyTable(items []model.HistoryItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<table><thead><tr>`)
		for _, col := range []string{"ColDate", "ColExam", "ColDuration", "ColCorrect", "ColIncorrect", "ColEmpty", "ColNet"} {
			h.raw(`<th>`)
			h.text(i18n.T(ctx, col))
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, it := range items {
			h.raw(`<tr><td>`)
			h.text(it.Timestamp.Local().Format("2006-01-02 15:04"))
			h.raw(`</td><td>`)
			h.text(string(it.ExamType))
			h.raw(`</td><td>`)
			h.text(formatDuration(it.Duration()))
			h.raw(`</td><td>`)
			h.textf("%d", it.Correct)
			h.raw(`</td><td>`)
			h.textf("%d", it.Incorrect)
			h.raw(`</td><td>`)
			h.textf("%d", it.Empty)
			h.raw(`</td><td><strong>`)
			h.text(formatNet(it.Net))
			h.raw(`</strong></td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}
