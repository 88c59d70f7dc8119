// Package middleware provides observability middleware for the rendering
// server.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics for requests, streams and the transaction pool
//
// Both are plain net/http middleware and mount on a chi router.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry opens a server span per request, named after the matched
// route. Handlers annotate it with RecordRender and RecordChecksum.
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// # Prometheus Metrics
//
//	m := middleware.NewMetrics(middleware.WithNamespace("pages"))
//	m.ObservePool(renderer.Pool())
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.Handler())
//
// Streaming handlers report delivery through StreamStarted and
// StreamFinished so abandoned streams show up as cancellations.
package middleware
