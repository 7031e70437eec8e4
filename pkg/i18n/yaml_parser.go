package i18n

import (
	"errors"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses YAML translation documents.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Parse(content []byte) (Catalog, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, errors.Join(ErrFailedToParseYAML, err)
	}
	return fromDocument(doc)
}
