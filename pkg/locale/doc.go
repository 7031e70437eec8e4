// Package locale builds the locale switch URLs and the account header state
// shared by every storefront page.
//
// A Navigator is configured from the store's defaults and the language and
// country of the current request:
//
//	nav := locale.Navigator{DefaultCountry: "sa", CurrentLanguage: "ar", CurrentCountry: "sa"}
//	nav.URL("/ar/products/42", "ae", "en")
//	// "/locales/en-ae?redirect_to=/en-ae/products/42"
//
// The first path segment is treated as a locale prefix when it matches the
// current language or the current language-country pair. It is replaced by
// the new locale; otherwise the new locale is inserted in front of the path.
package locale
