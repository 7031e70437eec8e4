package binder

import (
	"fmt"
	"net/http"
)

// DefaultMaxFormSize caps urlencoded bodies.
const DefaultMaxFormSize = 64 << 10

// Form binds `form` tags from an application/x-www-form-urlencoded body.
// Requests without a body method return ErrNotApplicable.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			return ErrNotApplicable
		}
		if mt := mediaType(r); mt != "application/x-www-form-urlencoded" {
			return fmt.Errorf("%w: got %q, expected application/x-www-form-urlencoded", ErrUnsupportedMediaType, mt)
		}

		r.Body = http.MaxBytesReader(nil, r.Body, DefaultMaxFormSize)
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
		return bindToStruct(v, "form", func(name string) []string {
			return r.PostForm[name]
		}, ErrFailedToParseForm)
	}
}
