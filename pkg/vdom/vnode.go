package vdom

import (
	"context"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota + 1 // <div>, <img>, etc.
	KindText                       // Plain text node
	KindComponent                  // Component rendered once per mount
	KindEmpty                      // Renders a placeholder marker only
	KindFragment                   // Keyed group of children, only valid as a child
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	case KindEmpty:
		return "Empty"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is an immutable description of desired markup.
//
// Children holds nil, a single child (a *VNode, string, number or bool), or a
// sequence ([]any, []*VNode) whose entries may themselves be sequences or
// fragments. Nodes must not be mutated once handed to a renderer.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes and event handlers
	Children any       // Child value, see above
	Key      string    // Explicit key; empty means positional
	Text     string    // For KindText
	Comp     Component // For KindComponent
}

// Props holds attributes and event handlers.
type Props map[string]any

// Valid reports whether the node can be mounted as a tree node.
// Fragments are only meaningful inside a children value.
func (v *VNode) Valid() bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case KindElement:
		return v.Tag != ""
	case KindText, KindEmpty:
		return true
	case KindComponent:
		return v.Comp != nil
	default:
		return false
	}
}

// HasKey reports whether the node carries an explicit key.
func (v *VNode) HasKey() bool {
	return v != nil && v.Key != ""
}

// IsCustomElement reports whether the element is a custom element: a tag
// containing a dash, or an element with an "is" prop.
func (v *VNode) IsCustomElement() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	if strings.Contains(v.Tag, "-") {
		return true
	}
	_, ok := v.Props["is"]
	return ok
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Component is anything that can render to a VNode.
type Component interface {
	Render() *VNode
}

// ContextComponent is a Component that wants the render's context.
// Renderers call RenderContext instead of Render when it is implemented.
type ContextComponent interface {
	Component
	RenderContext(ctx context.Context) *VNode
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}

type ctxFuncComponent struct {
	render func(ctx context.Context) *VNode
}

func (f *ctxFuncComponent) Render() *VNode {
	return f.render(context.Background())
}

func (f *ctxFuncComponent) RenderContext(ctx context.Context) *VNode {
	return f.render(ctx)
}

// FuncContext creates a component whose render function receives the
// render's context.
func FuncContext(render func(ctx context.Context) *VNode) Component {
	return &ctxFuncComponent{render: render}
}

// Mount wraps a component in a component node.
func Mount(c Component) *VNode {
	return &VNode{Kind: KindComponent, Comp: c}
}

// MountKeyed wraps a component in a component node carrying an explicit key.
func MountKeyed(key string, c Component) *VNode {
	return &VNode{Kind: KindComponent, Comp: c, Key: key}
}
