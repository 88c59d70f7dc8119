package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordingProvider hands out a tracer that keeps every span it starts.
type recordingProvider struct {
	embedded.TracerProvider
	tracer *recordingTracer
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

type recordingTracer struct {
	embedded.Tracer
	mu    sync.Mutex
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, kind: cfg.SpanKind(), attrs: map[attribute.Key]attribute.Value{}}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

type recordingSpan struct {
	noop.Span
	name   string
	kind   trace.SpanKind
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordingSpan) SetName(name string) { s.name = name }

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func TestOpenTelemetryNamesSpanByRoute(t *testing.T) {
	tp := newRecordingProvider()

	r := chi.NewRouter()
	r.Use(OpenTelemetry(
		WithTracerProvider(tp),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))
	r.Get("/render/{name}", func(w http.ResponseWriter, r *http.Request) {
		_, ok := SpanFromContext(r.Context()).(*recordingSpan)
		assert.True(t, ok, "handler should see the request span")
		RecordRender(r.Context(), 3, 42, nil)
		RecordChecksum(r.Context(), 7)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/render/page", nil))

	require.Len(t, tp.tracer.spans, 1)
	span := tp.tracer.spans[0]
	assert.Equal(t, "progressive /render/{name}", span.name)
	assert.Equal(t, trace.SpanKindServer, span.kind)
	assert.True(t, span.ended)
	assert.Equal(t, "/render/page", span.attrs["http.target"].AsString())
	assert.Equal(t, "/render/{name}", span.attrs["http.route"].AsString())
	assert.Equal(t, int64(200), span.attrs["http.status_code"].AsInt64())
	assert.Equal(t, "ok", span.attrs["test.attr"].AsString())
	assert.Equal(t, int64(3), span.attrs["progressive.chunks"].AsInt64())
	assert.Equal(t, int64(42), span.attrs["progressive.bytes"].AsInt64())
	assert.Equal(t, int64(7), span.attrs["progressive.checksum"].AsInt64())
	assert.Equal(t, codes.Unset, span.status)
}

func TestOpenTelemetryRecordsFailures(t *testing.T) {
	tp := newRecordingProvider()
	renderErr := errors.New("boom")

	h := OpenTelemetry(WithTracerProvider(tp))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RecordRender(r.Context(), 0, 0, renderErr)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Len(t, tp.tracer.spans, 1)
	span := tp.tracer.spans[0]
	assert.Equal(t, "progressive /x", span.name)
	assert.Equal(t, codes.Error, span.status)
	assert.Equal(t, []error{renderErr}, span.errs)
	assert.Equal(t, int64(500), span.attrs["http.status_code"].AsInt64())
}

func TestOpenTelemetryFilter(t *testing.T) {
	tp := newRecordingProvider()
	called := false

	h := OpenTelemetry(
		WithTracerProvider(tp),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.True(t, called)
	assert.Empty(t, tp.tracer.spans)
}

func TestOpenTelemetryDefaults(t *testing.T) {
	config := defaultOTelConfig()
	assert.Equal(t, "progressive", config.TracerName)
	assert.Nil(t, config.Filter)

	// The global provider is a no-op by default; requests still pass through.
	rec := httptest.NewRecorder()
	OpenTelemetry()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
