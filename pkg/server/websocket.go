package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/progressive/internal/errors"
	"github.com/vango-dev/progressive/pkg/middleware"
)

// writeWait bounds a single frame write.
const writeWait = 10 * time.Second

// Message types of the final WebSocket frame.
const (
	MessageEnd   = "end"
	MessageError = "error"
)

// EndMessage is the JSON text frame sent after the last chunk.
type EndMessage struct {
	Type     string `json:"type"`
	Checksum string `json:"checksum,omitempty"`
	Chunks   int    `json:"chunks"`
	Bytes    int64  `json:"bytes"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// frameSink writes each chunk as one text frame. Writes block, so a slow
// client holds back production.
type frameSink struct {
	conn *websocket.Conn
	err  error
}

func (f *frameSink) Push(chunk []byte) bool {
	f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := f.conn.WriteMessage(websocket.TextMessage, chunk); err != nil {
		f.err = err
		return false
	}
	return true
}

// handleWebSocket streams the tree as a sequence of text frames followed by
// an EndMessage, then closes the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	node, ok := s.resolveTree(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.metrics.RecordWebSocketError("upgrade")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read so control frames are processed; a close from the client
	// cancels the render.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	static := s.static(r)
	stream, err := s.renderer.RenderStream(ctx, node, s.streamOptions(static)...)
	if err != nil {
		s.metrics.RecordRenderError(r, err)
		s.finishWebSocket(conn, errorMessage(err, 0, 0))
		return
	}
	defer stream.Close()

	s.metrics.StreamStarted()
	sink := &frameSink{conn: conn}
	done, err := stream.Pump(sink)
	if err == nil && !done {
		err = sink.err
	}
	chunks, bytes := stream.Stats()
	s.metrics.StreamFinished(chunks, bytes, cancelled(err))
	middleware.RecordRender(ctx, chunks, bytes, err)

	if sink.err != nil {
		s.metrics.RecordWebSocketError("write")
		s.logger.Debug("websocket write failed", "path", r.URL.Path, "chunks", chunks, "error", sink.err)
		return
	}
	if err != nil {
		s.logStreamError(r, err, chunks)
		s.finishWebSocket(conn, errorMessage(err, chunks, bytes))
		return
	}

	msg := EndMessage{Type: MessageEnd, Chunks: chunks, Bytes: bytes}
	if sum, ok := stream.Checksum(); ok {
		msg.Checksum = strconv.FormatUint(sum, 10)
		middleware.RecordChecksum(ctx, sum)
	}
	s.finishWebSocket(conn, msg)
}

func errorMessage(err error, chunks int, bytes int64) EndMessage {
	msg := EndMessage{Type: MessageError, Chunks: chunks, Bytes: bytes, Message: err.Error()}
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		msg.Code = coded.Code
	}
	return msg
}

func (s *Server) finishWebSocket(conn *websocket.Conn, msg EndMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.metrics.RecordWebSocketError("write")
		return
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
