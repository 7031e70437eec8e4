package handler

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// Stream pushes patches over an open Datastar SSE connection.
type Stream interface {
	Context
	Patch(c templ.Component, opts ...datastar.PatchElementOption) error
	Signals(signals map[string]any) error
	Redirect(url string) error
}

// StreamHandler runs for the lifetime of the connection.
type StreamHandler func(stream Stream) error

type stream struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (s *stream) Patch(c templ.Component, opts ...datastar.PatchElementOption) error {
	return s.sse.PatchElementTempl(c, opts...)
}

func (s *stream) Signals(signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return s.sse.PatchSignals(data)
}

func (s *stream) Redirect(url string) error {
	return s.sse.Redirect(url)
}

type sseResponse struct {
	handler StreamHandler
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return ErrNotDataStar
	}
	return s.handler(&stream{Context: NewContext(w, r), sse: datastar.NewSSE(w, r)})
}

// SSE opens a Datastar event stream and runs h on it.
func SSE(h StreamHandler) Response {
	return sseResponse{handler: h}
}
