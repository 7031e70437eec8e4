// Package handler turns typed request handlers into http.HandlerFuncs.
//
// A handler receives a Context and a request struct filled by binders and
// returns a Response that renders itself:
//
//	r.Post("/pages/{pageID}/plans/{planID}/select", handler.Wrap(m.selectPlan,
//		handler.WithBinders[selectPlanRequest](binder.Path(chi.URLParam)),
//		handler.WithErrorHandler[selectPlanRequest](errorHandler),
//	))
//
// Responses understand Datastar: Templ renders a full document for regular
// requests and an element patch for Datastar ones, Redirect uses an SSE
// redirect when the browser is listening for events, and SSE keeps a stream
// open for server-pushed patches.
package handler
