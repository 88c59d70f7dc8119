package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/progressive/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, mutate func(*config.Config), opts ...Option) *Server {
	t.Helper()
	cfg := config.New()
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, nil, nil, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestNewDefaults(t *testing.T) {
	s := New(nil, nil, nil, WithLogger(quietLogger()))
	assert.NotNil(t, s.Renderer())
	assert.Equal(t, config.DefaultPort, s.Config().Server.Port)
	assert.NotNil(t, s.Handler())
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin", "", "example.com", true},
		{"same host", "http://example.com", "example.com", true},
		{"same host and port", "https://example.com:8443", "example.com:8443", true},
		{"different host", "http://evil.example", "example.com", false},
		{"different port", "http://example.com:1", "example.com:2", false},
		{"bad origin", "://", "example.com", false},
		{"no host", "http://example.com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/deep", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, SameOriginCheck(r))
		})
	}
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.ShutdownTimeout = time.Second
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestShutdownWithoutServe(t *testing.T) {
	s := newTestServer(t, nil)
	assert.NoError(t, s.Shutdown(context.Background()))
}
