package i18n

import (
	"context"
	"net/http"
)

type localizerContextKey struct{}

// WithLocalizer stores l in ctx.
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, localizerContextKey{}, l)
}

// LocalizerFromContext returns the Localizer stored by Middleware, if any.
func LocalizerFromContext(ctx context.Context) (*Localizer, bool) {
	l, ok := ctx.Value(localizerContextKey{}).(*Localizer)
	return l, ok
}

// LocaleResolver returns the locale for a request, or "" when it has no
// opinion.
type LocaleResolver func(r *http.Request) string

// FromCookie resolves the locale from a cookie value.
func FromCookie(name string) LocaleResolver {
	return func(r *http.Request) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return c.Value
	}
}

// FromAcceptLanguage resolves the locale from the Accept-Language header,
// restricted to the translator's languages.
func FromAcceptLanguage(tr *Translator) LocaleResolver {
	return func(r *http.Request) string {
		return ParseAcceptLanguage(r.Header.Get("Accept-Language"), tr.Languages(), "")
	}
}

// Middleware attaches a Localizer to every request. Resolvers are tried in
// order; fallback is used when none returns a locale.
func Middleware(tr *Translator, fallback string, resolvers ...LocaleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := fallback
			for _, resolve := range resolvers {
				if v := resolve(r); v != "" {
					locale = v
					break
				}
			}
			ctx := WithLocalizer(r.Context(), NewLocalizer(tr, locale))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
