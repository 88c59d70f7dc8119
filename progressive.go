// Package progressive provides the public API for the progressive renderer.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/progressive"
//
// Usage:
//
//	tree := vdom.Div(vdom.H1("Hello"), vdom.P("World"))
//	html, err := progressive.RenderToString(tree)
//
//	stream, err := progressive.RenderStream(ctx, tree, progressive.WithStatic())
//	defer stream.Close()
//	_, err = stream.WriteTo(w)
package progressive

import (
	"context"
	"sync"

	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/vdom"
)

// =============================================================================
// Tree types (re-export from pkg/vdom)
// =============================================================================

// VNode is a node of the element tree.
type VNode = vdom.VNode

// Component renders to a VNode when mounted.
type Component = vdom.Component

// =============================================================================
// Renderer (re-export from pkg/render)
// =============================================================================

// Renderer renders trees into one buffer or as a stream of chunks.
type Renderer = render.Renderer

// RendererConfig configures a Renderer.
type RendererConfig = render.RendererConfig

// Stream is a pull-driven render in progress.
type Stream = render.Stream

// StreamOption configures a Stream.
type StreamOption = render.StreamOption

// Sink receives chunks pushed by Stream.Pump.
type Sink = render.Sink

// SinkFunc adapts a function to a Sink.
type SinkFunc = render.SinkFunc

// NewRenderer creates a renderer with its own transaction pool.
var NewRenderer = render.NewRenderer

// WithStatic streams markup without identity markers or checksum.
var WithStatic = render.WithStatic

// WithHeader prepends a header to the first chunk of a stream.
var WithHeader = render.WithHeader

// AddChecksumToMarkup inserts a stream's checksum into its root element.
var AddChecksumToMarkup = render.AddChecksumToMarkup

// =============================================================================
// Default renderer
// =============================================================================

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns the process-wide renderer used by the functions below.
func Default() *Renderer {
	defaultOnce.Do(func() {
		defaultRenderer = render.NewRenderer(render.RendererConfig{})
	})
	return defaultRenderer
}

// RenderToString renders node with identity markers and a checksum.
func RenderToString(node *VNode) (string, error) {
	return Default().RenderToString(node)
}

// RenderToStaticMarkup renders node as plain markup.
func RenderToStaticMarkup(node *VNode) (string, error) {
	return Default().RenderToStaticMarkup(node)
}

// RenderStream starts a pull-driven stream over node. The caller must Close
// the stream or drain it.
func RenderStream(ctx context.Context, node *VNode, opts ...StreamOption) (*Stream, error) {
	return Default().RenderStream(ctx, node, opts...)
}
