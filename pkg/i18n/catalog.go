package i18n

import (
	"embed"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Catalog maps a language code to its flattened key/value translations.
type Catalog map[string]map[string]string

//go:embed locales/*.yaml
var builtinFS embed.FS

// Builtin returns a fresh copy of the embedded English and Arabic catalogs.
func Builtin() Catalog {
	cat := make(Catalog)
	for _, name := range []string{"locales/en.yaml", "locales/ar.yaml"} {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			panic(fmt.Sprintf("i18n: missing embedded catalog %s: %v", name, err))
		}
		parsed, err := NewYAMLParser().Parse(data)
		if err != nil {
			panic(fmt.Sprintf("i18n: invalid embedded catalog %s: %v", name, err))
		}
		cat = Merge(cat, parsed)
	}
	return cat
}

// Merge returns a new catalog holding every entry of the given catalogs.
// Later catalogs win on conflicting keys.
func Merge(catalogs ...Catalog) Catalog {
	out := make(Catalog)
	for _, cat := range catalogs {
		for lang, entries := range cat {
			lang = normalizeLang(lang)
			if out[lang] == nil {
				out[lang] = make(map[string]string, len(entries))
			}
			maps.Copy(out[lang], entries)
		}
	}
	return out
}

// fromDocument converts a decoded {lang: {...}} document into a Catalog.
func fromDocument(doc map[string]any) (Catalog, error) {
	cat := make(Catalog, len(doc))
	for lang, val := range doc {
		if strings.TrimSpace(lang) == "" {
			return nil, fmt.Errorf("%w: empty language code", ErrInvalidCatalog)
		}
		tree, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: language %q: expected map, got %T", ErrInvalidCatalog, lang, val)
		}
		entries := make(map[string]string)
		if err := flatten("", tree, entries); err != nil {
			return nil, fmt.Errorf("%w: language %q: %w", ErrInvalidCatalog, lang, err)
		}
		cat[normalizeLang(lang)] = entries
	}
	return cat, nil
}

func flatten(prefix string, tree map[string]any, out map[string]string) error {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case bool:
			out[key] = strconv.FormatBool(val)
		case int:
			out[key] = strconv.Itoa(val)
		case float64:
			out[key] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			out[key] = ""
		default:
			return fmt.Errorf("key %q: unsupported value type %T", key, v)
		}
	}
	return nil
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
}
