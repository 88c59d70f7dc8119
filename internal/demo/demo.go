// Package demo provides the component trees used by the benchmark command
// and the demo server.
package demo

import (
	"sort"
	"strconv"

	"github.com/vango-dev/progressive/internal/errors"
	"github.com/vango-dev/progressive/pkg/vdom"
)

// Limits on the trees built by Tree.
const (
	MaxNodes = 1 << 20
	MaxDepth = 4096
)

// leafText is the content of every RecursiveDivs leaf.
const leafText = "abcdefghij"

// RecursiveDivs renders Breadth keyed copies of itself per level until Depth
// reaches zero, where it renders a leaf div.
type RecursiveDivs struct {
	Depth   int
	Breadth int
}

// Render implements vdom.Component.
func (d RecursiveDivs) Render() *vdom.VNode {
	if d.Depth <= 0 {
		return vdom.Div(leafText)
	}
	children := make([]any, d.Breadth)
	for i := range children {
		children[i] = vdom.MountKeyed(strconv.Itoa(i), RecursiveDivs{
			Depth:   d.Depth - 1,
			Breadth: d.Breadth,
		})
	}
	return vdom.Div(children)
}

// Deep is a chain of Depth nested divs, one component per level.
type Deep struct {
	Depth int
}

// Render implements vdom.Component.
func (d Deep) Render() *vdom.VNode {
	if d.Depth <= 0 {
		return vdom.Div()
	}
	return vdom.Div(Deep{Depth: d.Depth - 1})
}

// Wide is a single div with Count empty div components.
type Wide struct {
	Count int
}

var emptyDiv = vdom.Func(func() *vdom.VNode { return vdom.Div() })

// Render implements vdom.Component.
func (w Wide) Render() *vdom.VNode {
	children := make([]any, w.Count)
	for i := range children {
		children[i] = vdom.MountKeyed(strconv.Itoa(i), emptyDiv)
	}
	return vdom.Div(children)
}

// Page wraps a body tree in a complete HTML document.
func Page(title string, body *vdom.VNode) *vdom.VNode {
	return vdom.Html(
		vdom.Head(
			vdom.Meta(vdom.Prop("charSet", "utf-8")),
			vdom.Title(title),
		),
		vdom.Body(body),
	)
}

// Params parameterizes the named trees.
type Params struct {
	Depth   int
	Breadth int
	Count   int
}

// Nodes estimates the number of elements the tree named name renders.
func (p Params) Nodes(name string) int {
	switch name {
	case "deep":
		return p.Depth + 1
	case "wide":
		return p.Count + 1
	default:
		n, level := 0, 1
		for d := 0; ; d++ {
			n += level
			if n > MaxNodes {
				return MaxNodes + 1
			}
			if d == p.Depth {
				return n
			}
			if p.Breadth > 0 && level > MaxNodes/p.Breadth {
				return MaxNodes + 1
			}
			level *= p.Breadth
		}
	}
}

var builders = map[string]func(Params) *vdom.VNode{
	"recursive": func(p Params) *vdom.VNode {
		return vdom.Mount(RecursiveDivs{Depth: p.Depth, Breadth: p.Breadth})
	},
	"deep": func(p Params) *vdom.VNode {
		return vdom.Mount(Deep{Depth: p.Depth})
	},
	"wide": func(p Params) *vdom.VNode {
		return vdom.Mount(Wide{Count: p.Count})
	},
	"page": func(p Params) *vdom.VNode {
		return Page("RecursiveDivs", vdom.Mount(RecursiveDivs{Depth: p.Depth, Breadth: p.Breadth}))
	},
}

// Names returns the names accepted by Tree, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tree builds the named demo tree.
func Tree(name string, p Params) (*vdom.VNode, error) {
	build, ok := builders[name]
	if !ok {
		return nil, errors.Newf(errors.CategoryUsage, "unknown tree %q", name).
			WithSuggestion("Use one of: recursive, deep, wide, page")
	}
	if p.Depth < 0 || p.Breadth < 0 || p.Count < 0 {
		return nil, errors.Newf(errors.CategoryUsage, "tree parameters must not be negative")
	}
	if p.Depth > MaxDepth {
		return nil, errors.Newf(errors.CategoryUsage, "depth %d exceeds %d", p.Depth, MaxDepth)
	}
	if n := p.Nodes(name); n > MaxNodes {
		return nil, errors.Newf(errors.CategoryUsage, "tree %q is too large", name).
			WithDetail("at most " + strconv.Itoa(MaxNodes) + " elements may be rendered")
	}
	return build(p), nil
}
