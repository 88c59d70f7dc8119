package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/progressive/internal/demo"
	"github.com/vango-dev/progressive/internal/errors"
	"github.com/vango-dev/progressive/pkg/middleware"
	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/vdom"
)

// ChecksumTrailer carries the checksum of a streamed render. It is sent as
// an HTTP trailer because the checksum is known only after the last chunk.
const ChecksumTrailer = "X-Render-Checksum"

// Default tree parameters used when a query leaves them out.
const (
	DefaultDepth   = 4
	DefaultBreadth = 4
	DefaultCount   = 100
)

const contentTypeHTML = "text/html; charset=utf-8"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleTrees(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(demo.Names())
}

// handleRender renders the whole tree into one buffer before responding.
func (s *Server) handleRender(static bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		node, ok := s.resolveTree(w, r)
		if !ok {
			return
		}
		html, err := s.renderer.RenderToStringContext(r.Context(), node, static || s.config.Render.Static)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		html = s.config.Render.Header + html

		w.Header().Set("Content-Type", contentTypeHTML)
		w.Header().Set("Content-Length", strconv.Itoa(len(html)))
		io.WriteString(w, html)
		middleware.RecordRender(r.Context(), 1, int64(len(html)), nil)
	}
}

// handleStream writes each chunk as soon as it is produced and flushes it.
// Production follows the client: a slow reader blocks the writer, which
// stops the render until the connection drains.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	node, ok := s.resolveTree(w, r)
	if !ok {
		return
	}
	static := s.static(r)
	stream, err := s.renderer.RenderStream(r.Context(), node, s.streamOptions(static)...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if !static {
		w.Header().Set("Trailer", ChecksumTrailer)
	}

	s.metrics.StreamStarted()
	_, err = stream.WriteTo(w)
	chunks, bytes := stream.Stats()
	s.metrics.StreamFinished(chunks, bytes, cancelled(err))

	if err != nil && chunks == 0 {
		s.writeError(w, r, err)
		return
	}
	middleware.RecordRender(r.Context(), chunks, bytes, err)
	if err != nil {
		s.logStreamError(r, err, chunks)
		return
	}
	if sum, ok := stream.Checksum(); ok {
		w.Header().Set(ChecksumTrailer, strconv.FormatUint(sum, 10))
		middleware.RecordChecksum(r.Context(), sum)
	}
}

// resolveTree builds the tree named in the URL from the query parameters.
// On failure the error response has been written.
func (s *Server) resolveTree(w http.ResponseWriter, r *http.Request) (*vdom.VNode, bool) {
	p, err := treeParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	node, err := s.trees(chi.URLParam(r, "tree"), p)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return node, true
}

func (s *Server) static(r *http.Request) bool {
	if s.config.Render.Static {
		return true
	}
	v, _ := strconv.ParseBool(r.URL.Query().Get("static"))
	return v
}

func (s *Server) streamOptions(static bool) []render.StreamOption {
	var opts []render.StreamOption
	if static {
		opts = append(opts, render.WithStatic())
	}
	if h := s.config.Render.Header; h != "" {
		opts = append(opts, render.WithHeader(h))
	}
	return opts
}

func treeParams(q url.Values) (demo.Params, error) {
	p := demo.Params{Depth: DefaultDepth, Breadth: DefaultBreadth, Count: DefaultCount}
	fields := []struct {
		name string
		dst  *int
	}{
		{"depth", &p.Depth},
		{"breadth", &p.Breadth},
		{"count", &p.Count},
	}
	for _, f := range fields {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.Newf(errors.CategoryUsage, "invalid %s %q", f.name, v)
		}
		*f.dst = n
	}
	return p, nil
}

// statusFor maps an error to an HTTP status. Usage errors are the
// client's fault; everything else is a server failure.
func statusFor(err error) int {
	var coded *errors.Error
	if stderrors.As(err, &coded) && coded.Category == errors.CategoryUsage {
		return http.StatusBadRequest
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.metrics.RecordRenderError(r, err)
	middleware.RecordRender(r.Context(), 0, 0, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("render failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("bad request", "path", r.URL.Path, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) logStreamError(r *http.Request, err error, chunks int) {
	if cancelled(err) {
		s.logger.Debug("stream cancelled", "path", r.URL.Path, "chunks", chunks, "error", err)
		return
	}
	s.metrics.RecordRenderError(r, err)
	s.logger.Error("stream failed", "path", r.URL.Path, "chunks", chunks, "error", err)
}

// cancelled reports whether err ended a stream because the client went
// away, as opposed to a render failure.
func cancelled(err error) bool {
	if err == nil {
		return false
	}
	var coded *errors.Error
	return !stderrors.As(err, &coded)
}
