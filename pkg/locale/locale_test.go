package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshtarek/storefront/pkg/locale"
)

func TestNavigatorURL(t *testing.T) {
	t.Parallel()

	nav := locale.Navigator{DefaultCountry: "sa", CurrentLanguage: "ar", CurrentCountry: "sa"}

	tests := []struct {
		name     string
		nav      locale.Navigator
		path     string
		country  string
		language string
		want     string
	}{
		{
			name: "replaces current language prefix",
			nav:  nav, path: "/ar/products/42", country: "ae", language: "en",
			want: "/locales/en-ae?redirect_to=/en-ae/products/42",
		},
		{
			name: "replaces current locale prefix",
			nav:  locale.Navigator{DefaultCountry: "sa", CurrentLanguage: "en", CurrentCountry: "ae"},
			path: "/en-ae/cart", country: "sa", language: "ar",
			want: "/locales/ar?redirect_to=/ar/cart",
		},
		{
			name: "inserts locale when path has no prefix",
			nav:  nav, path: "/products/42", country: "sa", language: "en",
			want: "/locales/en?redirect_to=/en/products/42",
		},
		{
			name: "root path",
			nav:  nav, path: "/", country: "kw", language: "ar",
			want: "/locales/ar-kw?redirect_to=/ar-kw/",
		},
		{
			name: "prefix match is case insensitive",
			nav:  nav, path: "/AR/x", country: "SA", language: "EN",
			want: "/locales/en?redirect_to=/en/x",
		},
		{
			name: "empty arguments keep current values",
			nav:  nav, path: "/ar/x",
			want: "/locales/ar?redirect_to=/ar/x",
		},
		{
			name: "current language defaults to arabic",
			nav:  locale.Navigator{DefaultCountry: "sa"}, path: "/ar/x", country: "sa", language: "en",
			want: "/locales/en?redirect_to=/en/x",
		},
		{
			name: "escapes the redirect path",
			nav:  nav, path: "/ar/search results", country: "sa", language: "en",
			want: "/locales/en?redirect_to=/en/search%20results",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.nav.URL(tt.path, tt.country, tt.language))
		})
	}
}

func TestHeaderState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, locale.Header{ShowLogin: true}, locale.HeaderState(nil))
	assert.Equal(t, locale.Header{ShowLogin: true}, locale.HeaderState(&locale.Customer{Name: "  "}))

	h := locale.HeaderState(&locale.Customer{Name: "Sara"})
	assert.False(t, h.ShowLogin)
	assert.True(t, h.ShowProfile)
	assert.True(t, h.MobileLoggedIn)
	assert.Equal(t, "Sara", h.CustomerName)
}

func TestProfileURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, locale.DefaultProfileURL, locale.ProfileURL(""))
	assert.Equal(t, "/me", locale.ProfileURL(" /me "))
}
