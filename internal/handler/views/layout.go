// Package views renders the HTML pages as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
)

// html accumulates the first write error so components can render
// without checking every call.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) textf(format string, args ...any) {
	h.text(fmt.Sprintf(format, args...))
}

// class writes an escaped class attribute built by templ.Classes.
func (h *html) class(classes ...any) {
	h.raw(` class="`)
	h.text(templ.Classes(classes...).String())
	h.raw(`"`)
}

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func (h *html) csrfField(ctx context.Context) {
	h.raw(`<input type="hidden" name="csrf_token" value="`)
	h.text(model.CSRFTokenFromContext(ctx))
	h.raw(`">`)
}

const styles = `
body{font-family:system-ui,sans-serif;max-width:52rem;margin:0 auto;padding:1rem;color:#1f2933}
nav{display:flex;gap:1rem;align-items:center;border-bottom:1px solid #d9e2ec;padding-bottom:.5rem;margin-bottom:1rem}
nav .spacer{flex:1}
.card{border:1px solid #d9e2ec;border-radius:6px;padding:1rem;margin:.5rem 0}
.warn{background:#fff3c4;padding:.75rem;border-radius:6px}
.ok{background:#e3f9e5;padding:.75rem;border-radius:6px}
.err{background:#ffe3e3;padding:.75rem;border-radius:6px}
.bar{background:#d9e2ec;border-radius:4px;height:1rem}
.bar div{background:#2186eb;height:100%;border-radius:4px}
.question{white-space:pre-wrap}
.option{display:block;padding:.4rem;margin:.25rem 0;border:1px solid #d9e2ec;border-radius:4px}
.option.correct{background:#e3f9e5;border-color:#57ae5b}
.option.wrong{background:#ffe3e3;border-color:#e12d39}
table{border-collapse:collapse;width:100%}
th,td{text-align:left;padding:.3rem;border-bottom:1px solid #d9e2ec}
`

// layout wraps body in the page shell. refresh > 0 adds a meta refresh.
func layout(title string, refresh int, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="`)
		h.text(i18n.Lang(ctx))
		h.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		if refresh > 0 {
			h.raw(fmt.Sprintf(`<meta http-equiv="refresh" content="%d">`, refresh))
		}
		h.raw(`<title>`)
		h.text(title)
		h.raw(` | `)
		h.text(i18n.T(ctx, "AppTitle"))
		h.raw(`</title><style>` + styles + `</style></head><body><nav><a href="/"><strong>`)
		h.text(i18n.T(ctx, "AppTitle"))
		h.raw(`</strong></a><a href="/">`)
		h.text(i18n.T(ctx, "NavHome"))
		h.raw(`</a><a href="/settings">`)
		h.text(i18n.T(ctx, "NavSettings"))
		h.raw(`</a><span class="spacer"></span><span>`)
		h.text(i18n.T(ctx, "Language"))
		h.raw(`: <a href="?lang=tr">TR</a> / <a href="?lang=en">EN</a></span></nav><main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// MessagePage shows a single notice with a link back home.
func MessagePage(title, msgID string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1><p class="err">`)
		h.text(i18n.T(ctx, msgID))
		h.raw(`</p><p><a href="/">`)
		h.text(i18n.T(ctx, "BackHome"))
		h.raw(`</a></p>`)
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(title, 0, body).Render(ctx, w)
	})
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

func formatNet(net float64) string {
	return fmt.Sprintf("%.2f", net)
}

func difficultyLabel(ctx context.Context, d model.Difficulty) string {
	if d == "" {
		return ""
	}
	return i18n.T(ctx, "Difficulty_"+string(d))
}
