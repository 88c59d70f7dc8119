package demo

import (
	"strings"
	"testing"

	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/vdom"
	"github.com/vango-dev/progressive/pkg/vtest"
)

func TestRecursiveDivs(t *testing.T) {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToStaticMarkup(mustTree(t, "recursive", Params{Depth: 2, Breadth: 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leaf := "<div>abcdefghij</div>"
	want := "<div><div>" + leaf + leaf + "</div><div>" + leaf + leaf + "</div></div>"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestDeepAndWide(t *testing.T) {
	r := render.NewRenderer(render.RendererConfig{})

	deep, err := r.RenderToStaticMarkup(mustTree(t, "deep", Params{Depth: 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deep != "<div><div><div><div></div></div></div></div>" {
		t.Errorf("deep: got %q", deep)
	}

	wide, err := r.RenderToStaticMarkup(mustTree(t, "wide", Params{Count: 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wide != "<div><div></div><div></div><div></div></div>" {
		t.Errorf("wide: got %q", wide)
	}
}

func TestPage(t *testing.T) {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToStaticMarkup(mustTree(t, "page", Params{Depth: 0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<html><head><meta charSet="utf-8"/><title>RecursiveDivs</title></head>` +
		`<body><div>abcdefghij</div></body></html>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestTreesStream(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			tree := mustTree(t, name, Params{Depth: 3, Breadth: 3, Count: 5})
			vtest.ExpectStreamMatches(t, tree)
		})
	}

	page := mustTree(t, "page", Params{Depth: 1, Breadth: 2})
	vtest.ExpectElement(t, page, "title")
	vtest.ExpectAttribute(t, page, "charSet", "utf-8")
	vtest.ExpectContains(t, page, "abcdefghij")
}

func TestTreeErrors(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"nope", Params{}, "unknown tree"},
		{"recursive", Params{Depth: -1}, "must not be negative"},
		{"deep", Params{Depth: MaxDepth + 1}, "exceeds"},
		{"recursive", Params{Depth: 30, Breadth: 2}, "too large"},
		{"wide", Params{Count: MaxNodes}, "too large"},
	}
	for _, tt := range tests {
		_, err := Tree(tt.name, tt.params)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Tree(%q, %+v): got %v, want %q", tt.name, tt.params, err, tt.want)
		}
	}
}

func TestNodes(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   int
	}{
		{"recursive", Params{Depth: 0, Breadth: 1000}, 1},
		{"recursive", Params{Depth: 2, Breadth: 3}, 13},
		{"recursive", Params{Depth: 3, Breadth: 0}, 1},
		{"deep", Params{Depth: 5}, 6},
		{"wide", Params{Count: 10}, 11},
	}
	for _, tt := range tests {
		if got := tt.params.Nodes(tt.name); got != tt.want {
			t.Errorf("%s %+v: got %d, want %d", tt.name, tt.params, got, tt.want)
		}
	}
}

func TestNames(t *testing.T) {
	if got := strings.Join(Names(), ","); got != "deep,page,recursive,wide" {
		t.Errorf("got %q", got)
	}
}

func mustTree(t *testing.T, name string, p Params) *vdom.VNode {
	t.Helper()
	node, err := Tree(name, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return node
}
