package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/progressive/internal/config"
	"github.com/vango-dev/progressive/internal/demo"
	"github.com/vango-dev/progressive/pkg/middleware"
	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/vdom"
)

// Registry resolves a tree by name. demo.Tree is the default.
type Registry func(name string, p demo.Params) (*vdom.VNode, error)

// Server serves rendered trees over HTTP and WebSocket.
type Server struct {
	// Configuration
	config *config.Config

	// Rendering
	renderer *render.Renderer
	trees    Registry

	// HTTP routing
	router chi.Router

	// Observability
	metrics        *middleware.Metrics
	registry       *prometheus.Registry
	tracerProvider trace.TracerProvider

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server

	// baseCtx parents every request and is cancelled when shutdown times out.
	baseCtx context.Context
	cancel  context.CancelFunc

	// Logger
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsRegistry sets the Prometheus registry metrics are registered
// with and served from. By default each server gets its own registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithTracerProvider sets the tracer provider used when tracing is enabled.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// New creates a Server. Nil arguments are replaced by defaults: config.New(),
// a renderer built from the config and demo.Tree.
func New(cfg *config.Config, renderer *render.Renderer, trees Registry, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Server{
		config: cfg,
		trees:  trees,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	base := s.logger
	s.logger = base.With("component", "server")

	if renderer == nil {
		renderer = NewRenderer(cfg, base)
	}
	s.renderer = renderer
	if s.trees == nil {
		s.trees = demo.Tree
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	s.metrics = middleware.NewMetrics(middleware.WithRegistry(s.registry))
	s.metrics.ObservePool(renderer.Pool())

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		CheckOrigin:     SameOriginCheck,
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	s.router = s.routes()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	return s
}

// NewRenderer builds a renderer from the render section of cfg.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *render.Renderer {
	rc := render.RendererConfig{
		Logger:   logger,
		PoolSize: cfg.Render.PoolSize,
		Checksum: cfg.Render.Checksum,
	}
	if cfg.Render.ValidateNesting {
		rc.Validator = render.NewLogValidator(logger)
	}
	return render.NewRenderer(rc)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.config.Server.Tracing {
		r.Use(middleware.OpenTelemetry(
			middleware.WithTracerProvider(s.tracerProvider),
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" && r.URL.Path != s.config.Server.MetricsPath
			}),
		))
	}
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.Handler)

	r.Get("/healthz", s.handleHealth)
	if path := s.config.Server.MetricsPath; path != "" {
		r.Method(http.MethodGet, path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get("/trees", s.handleTrees)
	r.Get("/render/{tree}", s.handleRender(false))
	r.Get("/static/{tree}", s.handleRender(true))
	r.Get("/stream/{tree}", s.handleStream)
	r.Get("/ws/{tree}", s.handleWebSocket)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Renderer returns the server's renderer.
func (s *Server) Renderer() *render.Renderer {
	return s.renderer
}

// Config returns the server configuration.
func (s *Server) Config() *config.Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Run starts the server and blocks until it fails or receives SIGINT or
// SIGTERM, in which case it shuts down gracefully.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return err
	}

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("server starting", "address", ln.Addr().String())
	if err := s.httpServer.Serve(ln); !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server. In-flight streams that are
// still running when the shutdown timeout expires are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()
	defer s.cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		s.cancel()
		_ = s.httpServer.Close()
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// logRequests logs every request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// SameOriginCheck validates that the WebSocket request origin matches the
// host. Requests without an Origin header are allowed.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
