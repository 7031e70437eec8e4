package handler

import (
	"errors"
	"net/http"
)

// HTTPError carries a status code and a message key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest  = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound    = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict    = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnavailable = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}

	// ErrNilResponse is reported when a handler returns no Response.
	ErrNilResponse = errors.New("handler returned nil response")
	// ErrNotDataStar is returned by SSE responses to plain requests.
	ErrNotDataStar = HTTPError{Code: http.StatusBadRequest, Key: "datastar_required"}
)
