// Package vdom provides the element tree rendered by package render.
//
// A tree is built from VNodes of four mountable kinds: elements (host tags),
// text, components and empty placeholders. Fragments group children inside a
// children value and disappear when the value is flattened.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    Ul(items...),
//	)
//
// Attr arguments become props; everything else becomes a child. A single
// string child is inline content, several children form a sequence.
//
// # Keys
//
// FlattenChildren resolves a nested children value into (key, node) pairs.
// Keys are generated from positions unless a node carries an explicit Key,
// and the first of several entries sharing a key wins.
//
// Trees are immutable once built: renderers may walk the same tree from
// several goroutines at once.
package vdom
