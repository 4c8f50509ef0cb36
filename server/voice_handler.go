package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleVoiceAgent returns a voice agent id for the session, provisioning
// one with the speech provider when the cache misses.
func (s *Server) handleVoiceAgent(c *gin.Context) {
	if s.Voice == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "voice agents are not configured"})
		return
	}

	key := c.Query("session")
	if key == "" {
		key = "default"
	}

	agentID, err := s.Voice.GetOrCreate(c.Request.Context(), key)
	if err != nil {
		s.Logger.Printf("voice agent provisioning failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_id": agentID})
}
