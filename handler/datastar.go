package handler

import (
	"net/http"
	"strings"
)

// IsDataStar reports whether r was issued by the Datastar client.
func IsDataStar(r *http.Request) bool {
	switch {
	case r.Header.Get("Datastar-Request") == "true":
		return true
	case strings.Contains(r.Header.Get("Accept"), "text/event-stream"):
		return true
	case r.URL.Query().Has("datastar"):
		return true
	default:
		return false
	}
}
