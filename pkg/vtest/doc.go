// Package vtest provides testing helpers for code that builds vdom trees.
//
// # Quick Start
//
//	func TestDashboard(t *testing.T) {
//	    tree := Dashboard("admin")
//	    vtest.ExpectContains(t, tree, "Welcome")
//	    vtest.ExpectStreamMatches(t, tree)
//	}
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	vtest.ExpectContains(t, tree, "Welcome Admin")
//	vtest.ExpectNotContains(t, tree, "Login")
//	vtest.ExpectAttribute(t, tree, "class", "btn-primary")
//
// # Streams
//
// DrainStream collects every chunk of a stream and fails the test on an
// error or an empty chunk. ExpectStreamMatches checks that a tree streams
// to the same markup it renders to in one buffer.
//
//	res := vtest.DrainStream(t, renderer, tree)
//	t.Logf("%d chunks, checksum %d", len(res.Chunks), res.Checksum)
package vtest
