package i18n

import "net/http"

// CookieName remembers an explicit language choice made with ?lang=.
const CookieName = "lang"

type langCtxKey struct{}

// Middleware picks the request language from ?lang=, the lang cookie or
// Accept-Language, in that order, and injects a localizer for it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lang string
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = Match(q)
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    lang,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				SameSite: http.SameSiteLaxMode,
			})
		} else if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			lang = Match(c.Value)
		} else {
			lang = Match(r.Header.Get("Accept-Language"))
		}

		ctx := WithLocalizer(r.Context(), NewLocalizer(lang))
		ctx = withLang(ctx, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
