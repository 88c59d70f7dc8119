package vdom

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keysOf(kids []Child) []string {
	keys := make([]string, len(kids))
	for i, k := range kids {
		keys[i] = k.Key
	}
	return keys
}

func TestFlattenChildrenKeys(t *testing.T) {
	tests := []struct {
		name     string
		children any
		want     []string
	}{
		{
			name:     "nil",
			children: nil,
			want:     []string{},
		},
		{
			name:     "single element",
			children: Div(),
			want:     []string{".0"},
		},
		{
			name:     "single keyed element",
			children: Div(Key("a")),
			want:     []string{".$a"},
		},
		{
			name:     "single string",
			children: "hello",
			want:     []string{".0"},
		},
		{
			name:     "positional sequence",
			children: []any{Div(), "x", Span()},
			want:     []string{".0", ".1", ".2"},
		},
		{
			name:     "all nil",
			children: make([]any, 12),
			want:     []string{},
		},
		{
			name:     "explicit keys override index",
			children: []any{Div(Key("a")), Div(), Div(Key("b"))},
			want:     []string{".$a", ".1", ".$b"},
		},
		{
			name:     "nested sequences",
			children: []any{[]any{Div(), Div(Key("k"))}, Div(Key("k"))},
			want:     []string{".0:0", ".0:$k", ".$k"},
		},
		{
			name:     "keyed fragment",
			children: []any{KeyedFragment("f", Div(), Div(Key("k"))), Div()},
			want:     []string{".$f:0", ".$f:$k", ".1"},
		},
		{
			name:     "nil and bool dropped",
			children: []any{nil, Div(), false, true, "x"},
			want:     []string{".1", ".4"},
		},
		{
			name:     "escaped key",
			children: []any{Div(Key("a:b=c"))},
			want:     []string{".$a=2b=0c"},
		},
		{
			name:     "vnode slice",
			children: []*VNode{Li(), nil, Li(Key("z"))},
			want:     []string{".0", ".$z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kids, dupes, err := FlattenChildren(tt.children)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(dupes) != 0 {
				t.Errorf("unexpected dupes: %v", dupes)
			}
			if diff := cmp.Diff(tt.want, keysOf(kids)); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlattenChildrenBase36(t *testing.T) {
	children := make([]any, 12)
	for i := range children {
		children[i] = Div()
	}
	kids, _, err := FlattenChildren(children)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := kids[10].Key; got != ".a" {
		t.Errorf("got %q, want %q", got, ".a")
	}
	if got := kids[11].Key; got != ".b" {
		t.Errorf("got %q, want %q", got, ".b")
	}
}

func TestFlattenChildrenDuplicateFirstWins(t *testing.T) {
	div := Div(Key("k"))
	span := Span(Key("k"))

	kids, dupes, err := FlattenChildren([]any{div, span})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kids) != 1 {
		t.Fatalf("expected 1 child, got %d", len(kids))
	}
	if kids[0].Node != div {
		t.Errorf("expected first occurrence (div) to win, got %s", kids[0].Node.Tag)
	}
	if diff := cmp.Diff([]string{"k"}, dupes); diff != "" {
		t.Errorf("dupes mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenChildrenIdempotent(t *testing.T) {
	children := []any{
		Div(Key("a")),
		[]any{"x", 42, Span(Key("a"))},
		KeyedFragment("g", Li(), []*VNode{Li(), Li(Key("a"))}),
		Div(Key("a")),
	}

	first, firstDupes, err := FlattenChildren(children)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, secondDupes, err := FlattenChildren(children)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(keysOf(first), keysOf(second)); diff != "" {
		t.Errorf("keys differ between runs (-first +second):\n%s", diff)
	}
	for i := range first {
		if first[i].Node.Kind == KindElement && first[i].Node != second[i].Node {
			t.Errorf("node %d differs between runs", i)
		}
	}
	if diff := cmp.Diff(firstDupes, secondDupes); diff != "" {
		t.Errorf("dupes differ between runs (-first +second):\n%s", diff)
	}
}

func TestFlattenChildrenPrimitives(t *testing.T) {
	kids, _, err := FlattenChildren([]any{"a", 7, int64(-3), 1.5, uint8(9)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "7", "-3", "1.5", "9"}
	for i, k := range kids {
		if k.Node.Kind != KindText {
			t.Fatalf("child %d: got kind %s, want Text", i, k.Node.Kind)
		}
		if k.Node.Text != want[i] {
			t.Errorf("child %d: got %q, want %q", i, k.Node.Text, want[i])
		}
	}
}

func TestFlattenChildrenInvalid(t *testing.T) {
	tests := []struct {
		name     string
		children any
	}{
		{"struct value", []any{struct{}{}}},
		{"map value", map[string]any{"a": 1}},
		{"element without tag", []any{&VNode{Kind: KindElement}}},
		{"component without impl", []any{&VNode{Kind: KindComponent}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FlattenChildren(tt.children)
			var invalid *InvalidChildError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidChildError, got %v", err)
			}
		})
	}
}

func TestUnescapeKey(t *testing.T) {
	if got := UnescapeKey(".0:$a=2b=0c"); got != "a:b=c" {
		t.Errorf("got %q, want %q", got, "a:b=c")
	}
	if got := UnescapeKey(".3"); got != ".3" {
		t.Errorf("got %q, want %q", got, ".3")
	}
}
