package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Empty creates a node that renders nothing but a placeholder marker.
func Empty() *VNode {
	return &VNode{Kind: KindEmpty}
}

// Fragment groups children without a wrapper element. Fragments are only
// valid inside a children value, where they are flattened into the parent.
func Fragment(children ...any) *VNode {
	return KeyedFragment("", children...)
}

// KeyedFragment is a Fragment carrying an explicit key. The key prefixes the
// generated keys of everything inside it.
func KeyedFragment(key string, children ...any) *VNode {
	kids := make([]any, 0, len(children))
	for _, child := range children {
		if c, ok := child.(Component); ok {
			kids = append(kids, Mount(c))
			continue
		}
		kids = append(kids, child)
	}
	return &VNode{
		Kind:     KindFragment,
		Key:      key,
		Children: kids,
	}
}

// WithKey returns a shallow copy of the node carrying the given key.
func (v *VNode) WithKey(key string) *VNode {
	if v == nil {
		return nil
	}
	c := *v
	c.Key = key
	return &c
}
