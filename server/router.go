package server

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mailpilot/mailpilot/stores"
	"github.com/mailpilot/mailpilot/voice"
)

// Server bundles the shared collaborators behind the HTTP routes.
type Server struct {
	Traces stores.TraceStore // optional
	Voice  *voice.Provisioner
	Logger *log.Logger
}

func New(traces stores.TraceStore, provisioner *voice.Provisioner) *Server {
	return &Server{
		Traces: traces,
		Voice:  provisioner,
		Logger: log.New(os.Stdout, "[server] ", log.LstdFlags),
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/chat/ws", s.handleChatWS)
		api.GET("/voice/agent", s.handleVoiceAgent)

		mail := api.Group("/gmail")
		{
			mail.POST("/send", s.handleGmailSend)
			mail.POST("/archive", s.handleGmailArchive)
			mail.POST("/modify", s.handleGmailModify)
			mail.GET("/thread/:id", s.handleGmailThread)
		}
	}

	return router
}
