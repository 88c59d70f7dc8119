package render

import (
	"context"
	"io"
	"net/http"

	"github.com/vango-dev/progressive/pkg/vdom"
)

type streamOptions struct {
	static bool
	header string
}

// StreamOption configures RenderStream.
type StreamOption func(*streamOptions)

// WithStatic streams static markup: no markers, no checksum.
func WithStatic() StreamOption {
	return func(o *streamOptions) { o.static = true }
}

// WithHeader queues markup, such as a doctype, to be sent in front of the
// first chunk. The header is not part of the checksum and is never sent when
// the render produces no output.
func WithHeader(header string) StreamOption {
	return func(o *streamOptions) { o.header = header }
}

// Sink receives pushed chunks. Push accepts the chunk and reports whether
// the sink has room for more.
type Sink interface {
	Push(chunk []byte) bool
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(chunk []byte) bool

// Push implements Sink.
func (f SinkFunc) Push(chunk []byte) bool { return f(chunk) }

// Stream is a pull-driven render. Chunks are produced only when the consumer
// asks for them; nothing is rendered ahead of demand.
//
// Unlike RenderToString, the checksum is not embedded in the output. It is
// available from Checksum once the stream is exhausted.
//
// A Stream must be consumed by one goroutine at a time. It holds a pooled
// transaction until it is exhausted, fails or is closed, so consumers that
// stop early must call Close.
type Stream struct {
	r      *Renderer
	ctx    context.Context
	tx     *Transaction
	seq    *Sequence
	atomic string

	done   bool
	err    error
	sum    uint64
	hasSum bool

	pending string
	chunks  int
	bytes   int64
}

// RenderStream mounts node and returns a stream over its markup. The root is
// mounted immediately, so its first chunk is ready before the first read.
// Cancelling ctx stops the stream at the next chunk boundary.
func (r *Renderer) RenderStream(ctx context.Context, node *vdom.VNode, opts ...StreamOption) (*Stream, error) {
	var o streamOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !node.Valid() {
		return nil, invalidElement(node)
	}

	tx := r.pool.Acquire(o.static)
	if o.header != "" {
		tx.EnqueueHeader(o.header)
	}
	m, err := r.mountRoot(ctx, tx, node)
	if err != nil {
		r.pool.Release(tx)
		return nil, err
	}

	s := &Stream{r: r, ctx: ctx, tx: tx}
	if m.IsLazy() {
		s.seq = m.Sequence()
	} else {
		s.atomic = m.String()
	}
	return s, nil
}

// Next returns the next chunk of output. ok is false once the stream is
// exhausted or closed.
func (s *Stream) Next() (chunk string, ok bool, err error) {
	if s.err != nil {
		return "", false, s.err
	}
	if s.done {
		return "", false, nil
	}
	if err := s.ctx.Err(); err != nil {
		s.fail(err)
		return "", false, err
	}

	if s.seq != nil {
		chunk, ok, err = s.seq.Next()
		if err != nil {
			s.fail(err)
			return "", false, err
		}
	} else {
		chunk, ok = s.atomic, s.atomic != ""
		s.atomic = ""
	}
	if !ok {
		if !s.tx.Static() {
			s.sum, s.hasSum = s.tx.Checksum(), true
		}
		s.finish()
		return "", false, nil
	}

	s.tx.Write(chunk)
	out := s.tx.Flush()
	s.chunks++
	s.bytes += int64(len(out))
	return out, true, nil
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	for s.pending == "" {
		chunk, ok, err := s.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, io.EOF
		}
		s.pending = chunk
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// WriteTo implements io.WriterTo. Each chunk is written separately and, if
// w is an http.Flusher, flushed. On a write error the stream is closed.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	flusher, _ := w.(http.Flusher)
	var total int64
	for {
		chunk := s.pending
		s.pending = ""
		if chunk == "" {
			var ok bool
			var err error
			chunk, ok, err = s.Next()
			if err != nil {
				return total, err
			}
			if !ok {
				return total, nil
			}
		}
		n, err := io.WriteString(w, chunk)
		total += int64(n)
		if err != nil {
			s.Close()
			return total, err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// Pump pushes chunks into sink until the sink reports it is full or the
// stream ends. It returns done once the stream is exhausted; otherwise call
// Pump again when the sink has room.
func (s *Stream) Pump(sink Sink) (done bool, err error) {
	for {
		chunk := s.pending
		s.pending = ""
		if chunk == "" {
			var ok bool
			chunk, ok, err = s.Next()
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		if !sink.Push([]byte(chunk)) {
			return false, nil
		}
	}
}

// Checksum returns the checksum of the streamed body. ok is false until the
// stream has been exhausted. Static streams never report one.
func (s *Stream) Checksum() (sum uint64, ok bool) {
	return s.sum, s.hasSum
}

// Stats returns the number of chunks and bytes produced so far.
func (s *Stream) Stats() (chunks int, bytes int64) {
	return s.chunks, s.bytes
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

// Close stops the stream and returns its transaction to the pool. Pending
// output is discarded. Close is idempotent.
func (s *Stream) Close() error {
	s.done = true
	s.pending = ""
	s.release()
	return nil
}

func (s *Stream) fail(err error) {
	s.err = err
	s.release()
}

func (s *Stream) finish() {
	s.done = true
	s.release()
}

func (s *Stream) release() {
	if s.tx == nil {
		return
	}
	s.r.pool.Release(s.tx)
	s.tx = nil
	s.seq = nil
}
