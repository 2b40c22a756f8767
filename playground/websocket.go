package playground

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pakagronglb/blogsmith/workflow"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The playground is a local development harness.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebsocket runs one workflow per connection. The client sends a
// single run request, receives every stage event as a JSON message and the
// terminal run_completed or run_failed event, then the server closes.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req runRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runLimit)
	defer cancel()

	for event := range s.generator.RunStream(ctx, req.Topic, runOptions(req)...) {
		if event.Type == workflow.EventRunCompleted && event.Post != nil {
			s.registry.add(event.Post)
		}
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			cancel()
			return
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
