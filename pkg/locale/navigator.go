package locale

import (
	"net/url"
	"strings"
)

// DefaultLanguage is used when the current language is unknown.
const DefaultLanguage = "ar"

// Navigator computes locale switch URLs for one request.
type Navigator struct {
	DefaultCountry  string `json:"default_country"`
	CurrentLanguage string `json:"current_language"`
	CurrentCountry  string `json:"current_country"`
}

// Locale returns the locale segment for language and country. The country
// is omitted when it is the store's default country.
func (n Navigator) Locale(country, language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" || country == strings.ToLower(n.DefaultCountry) {
		return language
	}
	return language + "-" + country
}

// URL returns the address that switches the storefront to country and
// language and then sends the visitor back to currentPath under the new
// locale prefix. Empty arguments keep the current values.
func (n Navigator) URL(currentPath, country, language string) string {
	if country == "" {
		country = n.CurrentCountry
	}
	if language == "" {
		language = n.currentLanguage()
	}
	next := n.Locale(country, language)

	if currentPath == "" || currentPath[0] != '/' {
		currentPath = "/" + currentPath
	}
	parts := strings.Split(currentPath, "/")
	if len(parts) > 1 && n.isCurrentPrefix(parts[1]) {
		parts[1] = next
	} else {
		parts = append([]string{parts[0], next}, parts[1:]...)
	}

	redirect := (&url.URL{Path: strings.Join(parts, "/")}).EscapedPath()
	return "/locales/" + url.PathEscape(next) + "?redirect_to=" + redirect
}

func (n Navigator) currentLanguage() string {
	if n.CurrentLanguage == "" {
		return DefaultLanguage
	}
	return n.CurrentLanguage
}

func (n Navigator) isCurrentPrefix(segment string) bool {
	segment = strings.ToLower(segment)
	lang := strings.ToLower(n.currentLanguage())
	return segment == lang || segment == lang+"-"+strings.ToLower(n.CurrentCountry)
}
