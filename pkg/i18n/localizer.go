package i18n

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultLocale is used when a page declares no locale.
	DefaultLocale = "ar-SA"
	// DefaultCurrency is used when a plan carries no currency code.
	DefaultCurrency = "SAR"
)

// Localizer binds a Translator to one page locale.
type Localizer struct {
	tr      *Translator
	locale  string
	printer *message.Printer
}

// NewLocalizer creates a Localizer for locale, e.g. "ar-SA" or "en".
// An empty or unparsable locale falls back to DefaultLocale.
func NewLocalizer(tr *Translator, locale string) *Localizer {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		locale = DefaultLocale
		tag = language.MustParse(DefaultLocale)
	}
	return &Localizer{
		tr:      tr,
		locale:  locale,
		printer: message.NewPrinter(tag),
	}
}

// Locale returns the locale the Localizer formats for.
func (l *Localizer) Locale() string { return l.locale }

// Language returns the base language of the locale.
func (l *Localizer) Language() string {
	base, _, _ := strings.Cut(normalizeLang(l.locale), "-")
	return base
}

// Country returns the lower-cased region named by the locale, or "" when
// the locale names none.
func (l *Localizer) Country() string {
	tag, err := language.Parse(l.locale)
	if err != nil {
		return ""
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return ""
	}
	return strings.ToLower(region.String())
}

// Direction returns "rtl" for right-to-left languages and "ltr" otherwise.
func (l *Localizer) Direction() string {
	switch l.Language() {
	case "ar", "fa", "he", "ur":
		return "rtl"
	default:
		return "ltr"
	}
}

// T translates key for the page locale.
func (l *Localizer) T(key string) string {
	return l.tr.T(l.locale, key)
}

// FormatPrice renders amount in currency code for the page locale with the
// currency's standard number of decimals. Unknown codes print as
// "<amount> <code>".
func (l *Localizer) FormatPrice(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return strconv.FormatFloat(amount, 'f', -1, 64) + " " + code
	}
	return l.printer.Sprint(currency.Symbol(unit.Amount(amount)))
}

// FormatFrequency maps a billing frequency value to a display label.
// Unknown values are returned unchanged.
func (l *Localizer) FormatFrequency(value string) string {
	switch value {
	case "daily":
		return l.or("perDay", "/day")
	case "weekly":
		return l.or("perWeek", "/week")
	case "biweekly":
		return l.or("every", "every") + " 2 " + l.or("weeks", "weeks")
	case "monthly":
		return l.or("perMonth", "/month")
	case "bimonthly":
		return l.or("every", "every") + " 2 " + l.or("months", "months")
	case "quarterly":
		return l.or("every", "every") + " 3 " + l.or("months", "months")
	case "yearly":
		return l.or("perYear", "/year")
	default:
		return value
	}
}

func (l *Localizer) or(key, fallback string) string {
	if v, ok := l.tr.Lookup(l.locale, key); ok {
		return v
	}
	return fallback
}
