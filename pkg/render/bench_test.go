package render

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/vango-dev/progressive/pkg/vdom"
)

func benchTree(depth, breadth int) *vdom.VNode {
	if depth == 0 {
		return vdom.Div("abcdefghij")
	}
	children := make([]any, breadth)
	for i := range children {
		children[i] = benchTree(depth-1, breadth).WithKey(fmt.Sprint(i))
	}
	return vdom.Div(children)
}

func BenchmarkRenderToString(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})
	node := benchTree(4, 4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := renderer.RenderToString(node); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderToStaticMarkup(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})
	node := benchTree(4, 4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := renderer.RenderToStaticMarkup(node); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderStream(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})
	node := benchTree(4, 4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := renderer.RenderStream(context.Background(), node)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := s.WriteTo(io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStreamFirstChunk(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})
	node := benchTree(6, 4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := renderer.RenderStream(context.Background(), node)
		if err != nil {
			b.Fatal(err)
		}
		if _, _, err := s.Next(); err != nil {
			b.Fatal(err)
		}
		s.Close()
	}
}

func BenchmarkDeepTree(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})
	node := vdom.Div()
	for i := 0; i < 100; i++ {
		node = vdom.Div(node, vdom.Span())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := renderer.RenderToStaticMarkup(node); err != nil {
			b.Fatal(err)
		}
	}
}
