package i18n

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported translation file format")
	ErrFailedToParseJSON = errors.New("failed to parse JSON content")
	ErrFailedToParseYAML = errors.New("failed to parse YAML content")
	ErrFailedToReadFile  = errors.New("failed to read translation file")
	ErrInvalidCatalog    = errors.New("invalid translation catalog")
	ErrLoadingCancelled  = errors.New("loading translations cancelled")
)
