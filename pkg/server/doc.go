// Package server exposes the renderer over HTTP and WebSocket.
//
// Routes:
//
//	GET /render/{tree}   buffered render with identity markers and checksum
//	GET /static/{tree}   buffered static markup
//	GET /stream/{tree}   chunked, flushed per chunk; checksum in the
//	                     X-Render-Checksum trailer
//	GET /ws/{tree}       one text frame per chunk, then a JSON EndMessage
//	GET /trees           names of the available trees
//	GET /healthz         liveness probe
//	GET /metrics         Prometheus metrics (path configurable)
//
// Trees are resolved by a Registry from the {tree} URL parameter and the
// depth, breadth and count query parameters. Streaming endpoints accept
// static=true to drop markers and checksum.
//
// Streams are demand-driven: a chunk is rendered only after the previous one
// has been written, so a slow client slows the render instead of growing a
// buffer, and a client that disconnects stops it.
//
// # Example Usage
//
//	cfg, err := config.Load(nil, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg, nil, nil)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
