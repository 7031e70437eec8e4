package i18n

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Parser decodes a translation document into a Catalog.
type Parser interface {
	Parse(content []byte) (Catalog, error)
}

// ParserForFile picks a parser by file extension.
func ParserForFile(filename string) (Parser, error) {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")) {
	case "json":
		return NewJSONParser(), nil
	case "yaml", "yml":
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// Load reads and merges the named files from fsys. Later files override
// earlier ones.
func Load(ctx context.Context, fsys fs.FS, names ...string) (Catalog, error) {
	out := make(Catalog)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrLoadingCancelled, err)
		}
		parser, err := ParserForFile(name)
		if err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Join(ErrFailedToReadFile, err)
		}
		cat, err := parser.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = Merge(out, cat)
	}
	return out, nil
}
