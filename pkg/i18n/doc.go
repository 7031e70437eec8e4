// Package i18n looks up storefront strings and formats prices and billing
// frequencies for a page locale.
//
// Catalogs are documents shaped {lang: {key: value}}. Nested maps are
// flattened with dots, so YAML like
//
//	en:
//	  plans:
//	    retry: Try again
//
// is available as "plans.retry". English and Arabic catalogs are embedded;
// Load reads additional YAML or JSON files that override them key by key.
//
// # Usage
//
//	cat, err := i18n.Load(ctx, os.DirFS("."), "translations.yaml")
//	if err != nil {
//		return err
//	}
//	tr := i18n.NewTranslator(i18n.Merge(i18n.Builtin(), cat), i18n.WithDefaultLanguage("ar"))
//
//	loc := i18n.NewLocalizer(tr, "ar-SA")
//	loc.T("mostPopular")
//	loc.FormatPrice(99.5, "SAR")
//	loc.FormatFrequency("quarterly")
//
// Lookups never fail: a missing key falls back to the default language and
// then to the key itself, and an unknown currency is printed as
// "<amount> <code>".
//
// A Translator is immutable after construction and safe for concurrent use.
package i18n
