// Package errors provides structured, coded errors for progressive.
//
// Every error carries a code (e.g. "R001") registered with a category, a
// short message and a longer explanation. Two errors are equal under
// errors.Is when their codes match, so a package can export a bare coded
// error as a sentinel and return enriched copies of it:
//
//	var ErrInvalidTagName = errors.New("R002")
//
//	return errors.New("R002").WithDetail("Invalid tag: " + tag)
//
//	stderrors.Is(err, ErrInvalidTagName) // true
//
// # Error Categories
//
//   - render: the element tree cannot be rendered (invalid nodes, tags)
//   - usage: a renderer API was called in an unsupported way
//   - config: configuration could not be loaded or is invalid
//   - storage: publishing rendered markup failed
//
// Format renders an error for terminal display; FormatCompact gives a single
// line suitable for logs.
package errors
