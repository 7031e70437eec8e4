package i18n

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// DefaultLanguage is the fallback language of a Translator.
const DefaultLanguage = "ar"

// maxAcceptLanguageLength bounds the header work done per request.
const maxAcceptLanguageLength = 4096

type langWithQ struct {
	lang string
	q    float64
}

func parseAcceptLanguageHeader(header string) []langWithQ {
	if header == "" {
		return nil
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	var languages []langWithQ
	for part := range strings.SplitSeq(header, ",") {
		tag, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		tag = normalizeLang(tag)
		if tag == "" || tag == "*" {
			continue
		}
		q := 1.0
		if qv, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if parsed, err := strconv.ParseFloat(qv, 64); err == nil && parsed >= 0 && parsed <= 1 {
				q = parsed
			}
		}
		languages = append(languages, langWithQ{lang: tag, q: q})
	}

	slices.SortStableFunc(languages, func(a, b langWithQ) int {
		return cmp.Compare(b.q, a.q)
	})
	return languages
}

// ParseAcceptLanguage picks the best supported language for an
// Accept-Language header. Exact tags are preferred over base-language
// matches; defaultLang is returned when nothing matches.
func ParseAcceptLanguage(header string, supported []string, defaultLang string) string {
	if header == "" || len(supported) == 0 {
		return defaultLang
	}
	normalized := make([]string, len(supported))
	for i, lang := range supported {
		normalized[i] = normalizeLang(lang)
	}

	languages := parseAcceptLanguageHeader(header)
	for _, lq := range languages {
		if lq.q > 0 && slices.Contains(normalized, lq.lang) {
			return lq.lang
		}
	}
	for _, lq := range languages {
		if base, _, ok := strings.Cut(lq.lang, "-"); ok && lq.q > 0 && slices.Contains(normalized, base) {
			return base
		}
	}
	return defaultLang
}
