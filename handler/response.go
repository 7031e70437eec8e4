package handler

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

type templResponse struct {
	patch   templ.Component
	full    templ.Component
	options []datastar.PatchElementOption
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) && t.patch != nil {
		return datastar.NewSSE(w, r).PatchElementTempl(t.patch, t.options...)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.full.Render(r.Context(), w)
}

// Templ renders c as HTML, or as an element patch for Datastar requests.
func Templ(c templ.Component, opts ...datastar.PatchElementOption) Response {
	return templResponse{patch: c, full: c, options: opts}
}

// TemplPartial patches partial for Datastar requests and renders full
// otherwise.
func TemplPartial(partial, full templ.Component, opts ...datastar.PatchElementOption) Response {
	return templResponse{patch: partial, full: full, options: opts}
}

// Page renders a full document and is never patched.
func Page(c templ.Component) Response {
	return templResponse{full: c}
}

type redirectResponse struct {
	url  string
	code int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		return datastar.NewSSE(w, r).Redirect(rr.url)
	}
	http.Redirect(w, r, rr.url, rr.code)
	return nil
}

// Redirect sends the browser to url: an SSE redirect for Datastar requests,
// a 303 otherwise.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

type emptyResponse struct{ status int }

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty answers 204 No Content.
func Empty() Response { return emptyResponse{status: http.StatusNoContent} }

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON encodes v with status 200.
func JSON(v any) Response { return jsonResponse{status: http.StatusOK, body: v} }

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error hands err to the error handler.
func Error(err error) Response { return errorResponse{err: err} }
