package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pavelanni/examprep/internal/i18n"
)

// SettingsData drives the API key form. Notice and Error are message IDs.
type SettingsData struct {
	MaskedKey string
	Notice    string
	Error     string
}

func SettingsPage(data SettingsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(i18n.T(ctx, "SettingsTitle"), 0, settingsBody(data)).Render(ctx, w)
	})
}

func settingsBody(data SettingsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<h1>`)
		h.text(i18n.T(ctx, "SettingsTitle"))
		h.raw(`</h1>`)
		if data.Notice != "" {
			h.raw(`<p class="ok">`)
			h.text(i18n.T(ctx, data.Notice))
			h.raw(`</p>`)
		}
		if data.Error != "" {
			h.raw(`<p class="err">`)
			h.text(i18n.T(ctx, data.Error))
			h.raw(`</p>`)
		}

		h.raw(`<p>`)
		if data.MaskedKey != "" {
			h.text(i18n.Td(ctx, "CurrentKey", map[string]any{"Key": data.MaskedKey}))
		} else {
			h.text(i18n.T(ctx, "NoKey"))
		}
		h.raw(`</p><form method="post" action="/settings">`)
		h.csrfField(ctx)
		h.raw(`<label for="api_key">`)
		h.text(i18n.T(ctx, "APIKeyLabel"))
		h.raw(`</label><br><input type="password" id="api_key" name="api_key" autocomplete="off" size="48"> <button type="submit">`)
		h.text(i18n.T(ctx, "SaveKey"))
		h.raw(`</button><p><small>`)
		h.text(i18n.T(ctx, "APIKeyHelp"))
		h.raw(`</small></p></form>`)

		if data.MaskedKey != "" {
			h.raw(`<form method="post" action="/settings/clear">`)
			h.csrfField(ctx)
			h.raw(`<button type="submit">`)
			h.text(i18n.T(ctx, "ClearKey"))
			h.raw(`</button></form>`)
		}
		return h.err
	})
}
