package vtest

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/vdom"
)

// StreamResult is everything a drained stream produced.
type StreamResult struct {
	Chunks   []string
	Checksum uint64
	// HasChecksum is false for static streams.
	HasChecksum bool
}

// Body joins the chunks.
func (r StreamResult) Body() string {
	return strings.Join(r.Chunks, "")
}

// Markup is the body with the checksum put back on the root element, which
// makes it comparable with RenderToString.
func (r StreamResult) Markup() string {
	if !r.HasChecksum {
		return r.Body()
	}
	return render.AddChecksumToMarkup(r.Body(), r.Checksum)
}

// RenderToString renders a VNode and returns the HTML string.
// Render errors yield "".
//
// Example:
//
//	html := vtest.RenderToString(MyTree())
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// RenderToStaticMarkup renders a VNode without identity markers.
func RenderToStaticMarkup(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToStaticMarkup(node)
	if err != nil {
		return ""
	}
	return html
}

// DrainStream pulls every chunk from a new stream over node and fails the
// test on any error or empty chunk.
//
// Example:
//
//	res := vtest.DrainStream(t, r, tree, render.WithStatic())
//	if len(res.Chunks) < 2 {
//	    t.Error("expected a progressive render")
//	}
func DrainStream(t testing.TB, r *render.Renderer, node *vdom.VNode, opts ...render.StreamOption) StreamResult {
	t.Helper()
	s, err := r.RenderStream(context.Background(), node, opts...)
	if err != nil {
		t.Fatalf("start stream: %v", err)
	}
	defer s.Close()

	var res StreamResult
	for {
		chunk, ok, err := s.Next()
		if err != nil {
			t.Fatalf("stream failed after %d chunks: %v", len(res.Chunks), err)
		}
		if !ok {
			break
		}
		if chunk == "" {
			t.Fatalf("empty chunk at position %d", len(res.Chunks))
		}
		res.Chunks = append(res.Chunks, chunk)
	}
	res.Checksum, res.HasChecksum = s.Checksum()
	return res
}

// ExpectStreamMatches asserts that streaming node yields the same markup as
// rendering it into one buffer, in both checksummed and static mode.
//
// Example:
//
//	vtest.ExpectStreamMatches(t, demo.Page("x", body))
func ExpectStreamMatches(t testing.TB, node *vdom.VNode) {
	t.Helper()
	r := render.NewRenderer(render.RendererConfig{})

	want, err := r.RenderToString(node)
	if err != nil {
		t.Fatalf("buffered render: %v", err)
	}
	if got := DrainStream(t, r, node).Markup(); got != want {
		t.Errorf("streamed markup differs from buffered render:\n got: %s\nwant: %s", truncate(got, 500), truncate(want, 500))
	}

	want, err = r.RenderToStaticMarkup(node)
	if err != nil {
		t.Fatalf("buffered static render: %v", err)
	}
	if got := DrainStream(t, r, node, render.WithStatic()).Body(); got != want {
		t.Errorf("streamed static markup differs from buffered render:\n got: %s\nwant: %s", truncate(got, 500), truncate(want, 500))
	}
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, tree, "abcdefghij")
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
//
// Example:
//
//	vtest.ExpectElement(t, tree, "title")
func ExpectElement(t testing.TB, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, tree, "charSet", "utf-8")
func ExpectAttribute(t testing.TB, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
