package render

import (
	"bytes"
	"errors"
	"hash/adler32"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/vango-dev/progressive/pkg/vdom"
)

func renderStatic(t *testing.T, node *vdom.VNode) string {
	t.Helper()
	html, err := NewRenderer(RendererConfig{}).RenderToStaticMarkup(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return html
}

// stripChecksum removes the checksum attribute and returns the markup it was
// computed over along with the embedded value.
func stripChecksum(t *testing.T, html string) (string, uint64) {
	t.Helper()
	attr := " " + ChecksumAttr + `="`
	i := strings.Index(html, attr)
	if i < 0 {
		t.Fatalf("no checksum in %q", html)
	}
	rest := html[i+len(attr):]
	end := strings.IndexByte(rest, '"')
	sum, err := strconv.ParseUint(rest[:end], 10, 64)
	if err != nil {
		t.Fatalf("bad checksum in %q: %v", html, err)
	}
	return html[:i] + rest[end+1:], sum
}

func TestRenderTextStaticStripsMarkers(t *testing.T) {
	if got := renderStatic(t, vdom.Text("hi")); got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestRenderTextMarkers(t *testing.T) {
	html, err := NewRenderer(RendererConfig{}).RenderToString(vdom.Text("hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<!-- react-text: 1 -->hi<!-- /react-text -->"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderTextEscaping(t *testing.T) {
	got := renderStatic(t, vdom.Text("<script>alert('xss')</script>"))
	want := "&lt;script&gt;alert(&#x27;xss&#x27;)&lt;/script&gt;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := renderStatic(t, vdom.Empty()); got != "" {
		t.Errorf("static empty: got %q, want empty", got)
	}
	html, err := NewRenderer(RendererConfig{}).RenderToString(vdom.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "<!-- react-empty: 1 -->" {
		t.Errorf("got %q", html)
	}
}

func TestRenderStaticElements(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "inline text content",
			node: vdom.Div(vdom.Class("card"), "a < b"),
			want: `<div class="card">a &lt; b</div>`,
		},
		{
			name: "number content",
			node: vdom.Span(42),
			want: `<span>42</span>`,
		},
		{
			name: "void element",
			node: vdom.Img(vdom.Src("x")),
			want: `<img src="x"/>`,
		},
		{
			name: "empty non-void element",
			node: vdom.Div(),
			want: `<div></div>`,
		},
		{
			name: "nested children",
			node: vdom.El("a", vdom.El("b"), vdom.Text("x"), vdom.El("c")),
			want: `<a><b></b>x<c></c></a>`,
		},
		{
			name: "children that render nothing",
			node: vdom.Div(vdom.Empty(), vdom.Empty()),
			want: `<div></div>`,
		},
		{
			name: "bool children dropped",
			node: vdom.Div(true),
			want: `<div></div>`,
		},
		{
			name: "fragment child flattened",
			node: vdom.Ul(vdom.Fragment(vdom.Li("a"), vdom.Li("b")), vdom.Li("c")),
			want: `<ul><li>a</li><li>b</li><li>c</li></ul>`,
		},
		{
			name: "pre keeps leading newline",
			node: vdom.Pre("\nfoo"),
			want: "<pre>\n\nfoo</pre>",
		},
		{
			name: "pre keeps leading newline of its first child",
			node: vdom.Pre([]any{"\nfoo", "bar"}),
			want: "<pre>\n\nfoobar</pre>",
		},
		{
			name: "pre without leading newline",
			node: vdom.Pre([]any{"foo", "\nbar"}),
			want: "<pre>foo\nbar</pre>",
		},
		{
			name: "textarea keeps leading newline",
			node: vdom.Textarea("\nx"),
			want: "<textarea>\n\nx</textarea>",
		},
		{
			name: "raw html is not escaped",
			node: vdom.Div(vdom.DangerouslySetInnerHTML("<b>x</b>")),
			want: `<div><b>x</b></div>`,
		},
		{
			name: "event handlers skipped",
			node: vdom.Button(vdom.On("Click", func() {}), "go"),
			want: `<button>go</button>`,
		},
		{
			name: "boolean attributes",
			node: vdom.Input(vdom.Disabled(), vdom.Type("text"), vdom.Prop("readOnly", false)),
			want: `<input disabled="" type="text"/>`,
		},
		{
			name: "nil props skipped",
			node: vdom.Div(vdom.Prop("title", nil), vdom.ID("main")),
			want: `<div id="main"></div>`,
		},
		{
			name: "htmlFor renamed",
			node: vdom.Label(vdom.Prop("htmlFor", "name"), "Name"),
			want: `<label for="name">Name</label>`,
		},
		{
			name: "attribute escaping",
			node: vdom.Div(vdom.Data("x", `"q" & <t>`)),
			want: `<div data-x="&quot;q&quot; &amp; &lt;t&gt;"></div>`,
		},
		{
			name: "style map",
			node: vdom.Div(vdom.Style(map[string]any{
				"fontSize":        13,
				"backgroundColor": "red",
				"opacity":         0.5,
				"margin":          0,
			})),
			want: `<div style="background-color:red;font-size:13px;margin:0;opacity:0.5;"></div>`,
		},
		{
			name: "style string",
			node: vdom.Div(vdom.Prop("style", "color:red")),
			want: `<div style="color:red"></div>`,
		},
		{
			name: "custom element keeps prop names",
			node: vdom.El("my-el", vdom.Class("x"), vdom.Prop("foo", "bar")),
			want: `<my-el className="x" foo="bar"></my-el>`,
		},
		{
			name: "tag case preserved",
			node: vdom.Svg(vdom.ForeignObject()),
			want: `<svg><foreignObject></foreignObject></svg>`,
		},
		{
			name: "menuitem keeps close tag",
			node: vdom.El("menuitem"),
			want: `<menuitem></menuitem>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderStatic(t, tt.node); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMarkersAndIDs(t *testing.T) {
	node := vdom.Div(vdom.Span("a"), vdom.Text("b"), vdom.Empty())
	html, err := NewRenderer(RendererConfig{}).RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := stripChecksum(t, html)
	want := `<div data-reactroot="" data-reactid="1">` +
		`<span data-reactid="2">a</span>` +
		`<!-- react-text: 3 -->b<!-- /react-text -->` +
		`<!-- react-empty: 4 -->` +
		`</div>`
	if body != want {
		t.Errorf("got  %q\nwant %q", body, want)
	}
}

func TestRenderChecksum(t *testing.T) {
	html, err := NewRenderer(RendererConfig{}).RenderToString(vdom.Div("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, sum := stripChecksum(t, html)
	if want := uint64(adler32.Checksum([]byte(body))); sum != want {
		t.Errorf("got checksum %d, want %d", sum, want)
	}
	if !strings.HasPrefix(html, `<div data-reactroot="" data-reactid="1" data-react-checksum="`) {
		t.Errorf("checksum not in root tag: %q", html)
	}
}

func TestRenderChecksumXXHash(t *testing.T) {
	r := NewRenderer(RendererConfig{Checksum: ChecksumXXHash})
	html, err := r.RenderToString(vdom.Div("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, sum := stripChecksum(t, html)
	acc := NewAccumulator(ChecksumXXHash)
	acc.WriteString(body)
	if sum != acc.Sum() {
		t.Errorf("got checksum %d, want %d", sum, acc.Sum())
	}
}

func TestRenderComposite(t *testing.T) {
	calls := 0
	comp := vdom.Func(func() *vdom.VNode {
		calls++
		return vdom.Span("x")
	})

	html, err := NewRenderer(RendererConfig{}).RenderToString(vdom.Mount(comp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := stripChecksum(t, html)
	if body != `<span data-reactroot="" data-reactid="1">x</span>` {
		t.Errorf("got %q", body)
	}
	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}
}

func TestRenderCompositeNil(t *testing.T) {
	nothing := vdom.Func(func() *vdom.VNode { return nil })

	html, err := NewRenderer(RendererConfig{}).RenderToString(vdom.Div(nothing))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := stripChecksum(t, html)
	if body != `<div data-reactroot="" data-reactid="1"><!-- react-empty: 2 --></div>` {
		t.Errorf("got %q", body)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want error
	}{
		{"nil root", nil, ErrInvalidElement},
		{"fragment root", vdom.Fragment(vdom.Div()), ErrInvalidElement},
		{"element without tag", &vdom.VNode{Kind: vdom.KindElement}, ErrInvalidElement},
		{"invalid child", vdom.Div([]any{vdom.Span(), struct{}{}}), ErrInvalidElement},
		{"invalid tag", vdom.El("bad tag"), ErrInvalidTagName},
		{"tag starting with digit", vdom.Div(vdom.El("1x")), ErrInvalidTagName},
		{"void with children", vdom.Img(vdom.Src("x"), "child"), ErrConflictingContent},
		{"void with raw html", vdom.Br(vdom.DangerouslySetInnerHTML("x")), ErrConflictingContent},
		{"raw html with children", vdom.Div(vdom.DangerouslySetInnerHTML("x"), "y"), ErrConflictingContent},
		{"raw html not a string", vdom.Div(vdom.Prop(vdom.PropDangerouslySetInnerHTML, 5)), ErrInvalidInnerHTML},
		{"style not a map", vdom.Div(vdom.Prop("style", 5)), ErrInvalidStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(RendererConfig{})
			html, err := r.RenderToString(tt.node)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
			if html != "" {
				t.Errorf("expected no partial output, got %q", html)
			}
			if inUse := r.Pool().Stats().InUse; inUse != 0 {
				t.Errorf("transaction not released: %d in use", inUse)
			}
		})
	}
}

func TestRenderInvalidTagCached(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	for i := 0; i < 2; i++ {
		if _, err := r.RenderToString(vdom.El("<x>")); !errors.Is(err, ErrInvalidTagName) {
			t.Fatalf("attempt %d: got %v, want ErrInvalidTagName", i, err)
		}
	}
	v, ok := r.tags.m.Load("<x>")
	if !ok || v.(bool) {
		t.Errorf("expected cached negative result, got %v, %v", v, ok)
	}
}

func TestRenderDuplicateKeysLogged(t *testing.T) {
	var logs bytes.Buffer
	r := NewRenderer(RendererConfig{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})

	node := vdom.Ul(
		vdom.Li(vdom.Key("k"), "a"),
		vdom.Li(vdom.Key("k"), "b"),
	)
	html, err := r.RenderToStaticMarkup(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "<ul><li>a</li></ul>" {
		t.Errorf("got %q", html)
	}
	if !strings.Contains(logs.String(), "duplicate child key") || !strings.Contains(logs.String(), "key=k") {
		t.Errorf("expected duplicate key warning, got %q", logs.String())
	}
}

func TestRenderConcurrent(t *testing.T) {
	r := NewRenderer(RendererConfig{PoolSize: 2})
	node := vdom.Div(vdom.Ul(vdom.Li("a"), vdom.Li("b")), vdom.Text("c"))
	want, err := r.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			got, err := r.RenderToString(node)
			if err == nil && got != want {
				err = errors.New("output differs: " + got)
			}
			errs <- err
		}()
	}
	for i := 0; i < 16; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
