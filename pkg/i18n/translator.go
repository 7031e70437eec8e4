package i18n

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Translator resolves keys against a Catalog.
type Translator struct {
	catalog     Catalog
	defaultLang string
	logMissing  bool
	logger      *slog.Logger
}

// NewTranslator creates a Translator over a private copy of catalog.
func NewTranslator(catalog Catalog, opts ...Option) *Translator {
	t := &Translator{
		catalog:     Merge(catalog),
		defaultLang: DefaultLanguage,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// T returns the translation of key for lang. A regional tag such as "ar-SA"
// falls back to its base language, then to the default language, and
// finally to key itself.
func (t *Translator) T(lang, key string) string {
	if v, ok := t.Lookup(lang, key); ok {
		return v
	}
	if t.logMissing {
		t.logger.Debug("translation not found", slog.String("lang", lang), slog.String("key", key))
	}
	return key
}

// Lookup is like T but reports whether a translation was found instead of
// falling back to the key.
func (t *Translator) Lookup(lang, key string) (string, bool) {
	for _, candidate := range t.chain(lang) {
		if v, ok := t.catalog[candidate][key]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Has reports whether lang itself, without fallbacks, defines key.
func (t *Translator) Has(lang, key string) bool {
	_, ok := t.catalog[normalizeLang(lang)][key]
	return ok
}

// Languages returns the sorted language codes present in the catalog.
func (t *Translator) Languages() []string {
	return slices.Sorted(maps.Keys(t.catalog))
}

// DefaultLanguage returns the fallback language.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

func (t *Translator) chain(lang string) []string {
	lang = normalizeLang(lang)
	out := make([]string, 0, 3)
	if lang != "" {
		out = append(out, lang)
		if base, _, ok := strings.Cut(lang, "-"); ok && base != "" {
			out = append(out, base)
		}
	}
	if !slices.Contains(out, t.defaultLang) {
		out = append(out, t.defaultLang)
	}
	return out
}
