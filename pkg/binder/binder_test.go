package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshtarek/storefront/pkg/binder"
)

type selectRequest struct {
	PageID   string   `path:"pageID"`
	PlanID   string   `path:"planID" form:"plan"`
	Count    int      `form:"count"`
	Gift     bool     `form:"gift"`
	Tags     []string `form:"tag"`
	Note     *string  `form:"note"`
	Internal string   `form:"-" path:"-"`
}

func params(values map[string]string) func(*http.Request, string) string {
	return func(_ *http.Request, name string) string { return values[name] }
}

func TestPath(t *testing.T) {
	t.Parallel()

	t.Run("binds tagged fields", func(t *testing.T) {
		t.Parallel()
		bind := binder.Path(params(map[string]string{"pageID": "pg-1", "planID": "p-2", "-": "x"}))

		var req selectRequest
		require.NoError(t, bind(httptest.NewRequest(http.MethodGet, "/", nil), &req))
		assert.Equal(t, "pg-1", req.PageID)
		assert.Equal(t, "p-2", req.PlanID)
		assert.Empty(t, req.Internal)
	})

	t.Run("rejects non struct targets", func(t *testing.T) {
		t.Parallel()
		bind := binder.Path(params(nil))
		var s string
		err := bind(httptest.NewRequest(http.MethodGet, "/", nil), &s)
		assert.ErrorIs(t, err, binder.ErrInvalidTarget)
		assert.ErrorIs(t, err, binder.ErrFailedToParsePath)
	})

	t.Run("nil extractor panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { binder.Path(nil) })
	})
}

func formRequest(method, body string) *http.Request {
	r := httptest.NewRequest(method, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	return r
}

func TestForm(t *testing.T) {
	t.Parallel()

	t.Run("binds scalars, slices and pointers", func(t *testing.T) {
		t.Parallel()
		var req selectRequest
		err := binder.Form()(formRequest(http.MethodPost, "plan=p1&count=3&gift=on&tag=a&tag=b&note=hi"), &req)
		require.NoError(t, err)

		assert.Equal(t, "p1", req.PlanID)
		assert.Equal(t, 3, req.Count)
		assert.True(t, req.Gift)
		assert.Equal(t, []string{"a", "b"}, req.Tags)
		require.NotNil(t, req.Note)
		assert.Equal(t, "hi", *req.Note)
	})

	t.Run("get is not applicable", func(t *testing.T) {
		t.Parallel()
		var req selectRequest
		err := binder.Form()(httptest.NewRequest(http.MethodGet, "/?plan=p1", nil), &req)
		assert.ErrorIs(t, err, binder.ErrNotApplicable)
	})

	t.Run("wrong media type", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json")
		var req selectRequest
		assert.ErrorIs(t, binder.Form()(r, &req), binder.ErrUnsupportedMediaType)
	})

	t.Run("invalid number", func(t *testing.T) {
		t.Parallel()
		var req selectRequest
		err := binder.Form()(formRequest(http.MethodPost, "count=many"), &req)
		assert.ErrorIs(t, err, binder.ErrFailedToParseForm)
		assert.Contains(t, err.Error(), "Count")
	})
}

type message struct {
	Origin string         `json:"origin"`
	Data   map[string]any `json:"data"`
}

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     *http.Request
		wantErr error
	}{
		{"valid", jsonRequest(`{"origin":"https://a","data":{"status":"success"}}`), nil},
		{"unknown field", jsonRequest(`{"origin":"x","extra":1}`), binder.ErrFailedToParseJSON},
		{"empty body", jsonRequest(``), binder.ErrFailedToParseJSON},
		{"trailing data", jsonRequest(`{} {}`), binder.ErrFailedToParseJSON},
		{"malformed", jsonRequest(`{"origin":`), binder.ErrFailedToParseJSON},
		{"get", httptest.NewRequest(http.MethodGet, "/", nil), binder.ErrNotApplicable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var msg message
			err := binder.JSON()(tt.req, &msg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://a", msg.Origin)
			assert.Equal(t, "success", msg.Data["status"])
		})
	}
}
