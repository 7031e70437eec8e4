// Package binder fills request structs from path parameters, form values
// and JSON bodies.
//
// Each binder reads only its own struct tag:
//
//	type selectRequest struct {
//		PageID string `path:"pageID"`
//		PlanID string `path:"planID"`
//		Note   string `form:"note"`
//	}
//
// Fields without a tag use the lower-cased field name; a "-" tag skips the
// field. Supported field kinds are strings, integers, floats, bools, slices
// of those and pointers to them.
//
// Binders that do not apply to a request, such as Form on a GET, return
// ErrNotApplicable so callers can skip them.
package binder
