package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mailpilot/mailpilot/models"
	"github.com/mailpilot/mailpilot/models/anthropic"
	"github.com/mailpilot/mailpilot/models/gemini"
	"github.com/mailpilot/mailpilot/models/openai"
	"github.com/mailpilot/mailpilot/sessions"
)

// GinSSEWriter adapts gin's response writer to the session SSE contract.
type GinSSEWriter struct {
	c *gin.Context
}

func (w *GinSSEWriter) WriteSSE(data string) error {
	_, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", data)
	return err
}

func (w *GinSSEWriter) Flush() {
	w.c.Writer.Flush()
}

// modelForProvider maps the request's provider name to an adapter.
// Unknown providers are a client error, reported before the stream opens.
func modelForProvider(provider string) (models.ChatModel, error) {
	switch strings.ToLower(provider) {
	case "", "openai":
		return &openai.OpenAI_Model{}, nil
	case "anthropic":
		return &anthropic.Anthropic_Model{}, nil
	case "gemini":
		return &gemini.Gemini_Model{}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// handleChat streams one conversation turn as Server-Sent Events.
// Validation failures are plain JSON errors; once streaming starts, all
// failures travel in-band as error events.
func (s *Server) handleChat(c *gin.Context) {
	var request models.Chat_Request
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(models.FilterEmpty(request.Messages)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must contain at least one non-empty message"})
		return
	}

	model, err := modelForProvider(request.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	session := sessions.NewChatSession(model, uuid.NewString(), request.AccessToken, s.Traces, s.Logger)
	events := session.RunStream(c.Request.Context(), models.StreamRequest{
		Messages: request.Messages,
		Thread:   request.Thread,
		Folder:   request.Folder,
		Model:    request.Model,
	})

	sessions.PumpSSE(c.Request.Context(), events, &GinSSEWriter{c: c}, s.Logger)
}
