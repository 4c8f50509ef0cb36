package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mailpilot/mailpilot/models"
	"github.com/mailpilot/mailpilot/sessions"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleChatWS serves the same conversation turn over a websocket. The
// first client frame carries the chat request; events stream back as
// JSON frames and the connection closes when the turn ends.
func (s *Server) handleChatWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	writer := &sessions.WebSocketWriter{Conn: conn, Logger: s.Logger}

	var request models.Chat_Request
	if err := conn.ReadJSON(&request); err != nil {
		writer.WriteError("Invalid request frame: " + err.Error())
		return
	}
	if len(models.FilterEmpty(request.Messages)) == 0 {
		writer.WriteError("messages must contain at least one non-empty message")
		return
	}

	model, err := modelForProvider(request.Provider)
	if err != nil {
		writer.WriteError(err.Error())
		return
	}

	session := sessions.NewChatSession(model, uuid.NewString(), request.AccessToken, s.Traces, s.Logger)
	events := session.RunStream(c.Request.Context(), models.StreamRequest{
		Messages: request.Messages,
		Thread:   request.Thread,
		Folder:   request.Folder,
		Model:    request.Model,
	})

	sessions.PumpWebSocket(c.Request.Context(), events, writer)
}
