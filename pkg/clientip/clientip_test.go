package clientip_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshtarek/storefront/pkg/clientip"
	"github.com/eshtarek/storefront/pkg/logger"
)

func TestResolverIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []clientip.Option
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "cloudflare header wins",
			headers: map[string]string{"CF-Connecting-IP": "203.0.113.1", "X-Forwarded-For": "198.51.100.7"},
			remote:  "10.0.0.1:4000",
			want:    "203.0.113.1",
		},
		{
			name:    "first valid forwarded entry",
			headers: map[string]string{"X-Forwarded-For": "invalid, 198.51.100.7, 10.0.0.2"},
			remote:  "10.0.0.1:4000",
			want:    "198.51.100.7",
		},
		{
			name:    "invalid headers fall back to remote addr",
			headers: map[string]string{"CF-Connecting-IP": "evil.com", "X-Real-IP": "nope"},
			remote:  "192.0.2.10:4000",
			want:    "192.0.2.10",
		},
		{
			name:   "remote addr without port",
			remote: "2001:db8::1",
			want:   "2001:db8::1",
		},
		{
			name:    "headers ignored when none are trusted",
			opts:    []clientip.Option{clientip.WithHeaders()},
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7"},
			remote:  "192.0.2.10:4000",
			want:    "192.0.2.10",
		},
		{
			name:   "garbage remote addr",
			remote: "not-an-ip",
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.New(tt.opts...).IP(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.New().Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.9")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.9", got)
	assert.Empty(t, clientip.FromContext(context.Background()))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(buf), logger.WithContextExtractors(clientip.LoggerExtractor()))

	log.InfoContext(clientip.WithContext(context.Background(), "198.51.100.9"), "hello")
	assert.Contains(t, buf.String(), `"client_ip":"198.51.100.9"`)

	buf.Reset()
	log.InfoContext(context.Background(), "hello")
	assert.NotContains(t, buf.String(), "client_ip")
}
