package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
)

// ProgressData is a snapshot of a running generation job.
type ProgressData struct {
	Progress model.Progress
	Failed   bool
}

// ProgressPage refreshes itself every two seconds until the job is over.
func ProgressPage(data ProgressData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		refresh := 2
		if data.Failed {
			refresh = 0
		}
		return layout(i18n.T(ctx, "GeneratingTitle"), refresh, progressBody(data)).Render(ctx, w)
	})
}

func progressBody(data ProgressData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<h1>`)
		h.text(i18n.T(ctx, "GeneratingTitle"))
		h.raw(`</h1>`)
		if data.Failed {
			h.raw(`<p class="err">`)
			h.text(i18n.T(ctx, "GenerationFailed"))
			h.raw(`</p><p><a href="/">`)
			h.text(i18n.T(ctx, "BackHome"))
			h.raw(`</a></p>`)
			return h.err
		}

		p := data.Progress
		var status string
		switch {
		case p.Done:
			status = i18n.T(ctx, "Finishing")
		case p.Subject != "":
			status = i18n.Td(ctx, "GeneratingSubject", map[string]any{"Subject": p.Subject})
		default:
			status = i18n.T(ctx, "Starting")
		}
		h.raw(`<p>`)
		h.text(status)
		h.raw(`</p><div class="bar" role="progressbar" aria-valuemin="0" aria-valuemax="100" aria-valuenow="`)
		h.textf("%d", p.Percent)
		h.raw(`"><div style="width:`)
		h.textf("%d", p.Percent)
		h.raw(`%"></div></div><p>`)
		h.textf("%d%%", p.Percent)
		h.raw(`</p><p><small>`)
		h.text(i18n.T(ctx, "GeneratingHint"))
		h.raw(`</small></p>`)
		return h.err
	})
}
