package i18n_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshtarek/storefront/pkg/i18n"
)

func TestLocalizer(t *testing.T) {
	t.Parallel()

	tr := i18n.NewTranslator(i18n.Builtin())

	t.Run("defaults to ar-SA", func(t *testing.T) {
		t.Parallel()
		l := i18n.NewLocalizer(tr, "")
		assert.Equal(t, i18n.DefaultLocale, l.Locale())
		assert.Equal(t, "ar", l.Language())
		assert.Equal(t, "الأكثر طلباً", l.T("mostPopular"))
	})

	t.Run("country and direction", func(t *testing.T) {
		t.Parallel()
		ar := i18n.NewLocalizer(tr, "ar-SA")
		assert.Equal(t, "sa", ar.Country())
		assert.Equal(t, "rtl", ar.Direction())

		en := i18n.NewLocalizer(tr, "en")
		assert.Empty(t, en.Country())
		assert.Equal(t, "ltr", en.Direction())
	})

	t.Run("invalid locale falls back", func(t *testing.T) {
		t.Parallel()
		l := i18n.NewLocalizer(tr, "!!")
		assert.Equal(t, i18n.DefaultLocale, l.Locale())
	})

	t.Run("formats known currencies with standard decimals", func(t *testing.T) {
		t.Parallel()
		l := i18n.NewLocalizer(tr, "en")
		assert.Contains(t, l.FormatPrice(99.5, "SAR"), "99.50")
		assert.Contains(t, l.FormatPrice(10, "usd"), "10.00")
		assert.Equal(t, l.FormatPrice(5, "SAR"), l.FormatPrice(5, ""))
	})

	t.Run("unknown currency falls back to plain text", func(t *testing.T) {
		t.Parallel()
		l := i18n.NewLocalizer(tr, "en")
		assert.Equal(t, "99.5 XYZ", l.FormatPrice(99.5, "XYZ"))
	})

	t.Run("frequency labels", func(t *testing.T) {
		t.Parallel()
		l := i18n.NewLocalizer(tr, "en")
		tests := map[string]string{
			"daily":         "/day",
			"weekly":        "/week",
			"biweekly":      "Every 2 weeks",
			"monthly":       "/month",
			"bimonthly":     "Every 2 months",
			"quarterly":     "Every 3 months",
			"yearly":        "/year",
			"every_10_days": "every_10_days",
		}
		for value, want := range tests {
			assert.Equal(t, want, l.FormatFrequency(value), value)
		}
	})

	t.Run("frequency labels fall back when the catalog lacks keys", func(t *testing.T) {
		t.Parallel()
		l := i18n.NewLocalizer(i18n.NewTranslator(i18n.Catalog{}), "en")
		assert.Equal(t, "/month", l.FormatFrequency("monthly"))
		assert.Equal(t, "every 3 months", l.FormatFrequency("quarterly"))
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tr := i18n.NewTranslator(i18n.Builtin())
	var got string
	h := i18n.Middleware(tr, "ar-SA", i18n.FromCookie("locale"), i18n.FromAcceptLanguage(tr))(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			l, ok := i18n.LocalizerFromContext(r.Context())
			require.True(t, ok)
			got = l.Locale()
		}),
	)

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"cookie wins", "en-SA", "ar", "en-SA"},
		{"accept language", "", "en-US,en;q=0.9", "en"},
		{"fallback", "", "", "ar-SA"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.cookie != "" {
			req.AddCookie(&http.Cookie{Name: "locale", Value: tt.cookie})
		}
		if tt.accept != "" {
			req.Header.Set("Accept-Language", tt.accept)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
