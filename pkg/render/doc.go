// Package render serializes vdom trees to HTML markup.
//
// A tree can be rendered into one buffer or streamed chunk by chunk:
//
//	r := render.NewRenderer(render.RendererConfig{})
//
//	html, err := r.RenderToString(tree)        // markers + checksum
//	html, err = r.RenderToStaticMarkup(tree)   // plain HTML
//
//	s, err := r.RenderStream(ctx, tree)
//	defer s.Close()
//	_, err = s.WriteTo(w)
//	sum, _ := s.Checksum()
//
// Both modes produce the same bytes. The buffered mode additionally embeds a
// data-react-checksum attribute in the root tag; the streaming mode exposes
// the same value through Stream.Checksum after the last chunk.
//
// # Mounting
//
// Every node is instantiated and mounted once. Mounting returns Markup,
// either a complete string or a lazy Sequence. An element whose content is
// already complete collapses to a string; otherwise it becomes a sequence
// that emits its open tag with the first content chunk, then the remaining
// content, then its close tag. Nested sequences are spliced into one work
// stack, so a consumer pulls chunks in constant time regardless of depth.
//
// Children are mounted only when the consumer pulls the chunk that needs
// them. A consumer that stops pulling stops the render.
//
// # Transactions
//
// Per-render state (output buffer, marker id counter, pending header and
// checksum) lives in a Transaction borrowed from the renderer's Pool and
// returned on every exit path.
package render
