package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mailpilot/mailpilot/gmail"
)

// mailClientFor builds a Gmail client from the bearer token on the
// request. Injectable so handler tests can substitute a fake.
var mailClientFor = func(accessToken string) *gmail.Client {
	return gmail.NewClient(accessToken)
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

type sendRequest struct {
	Raw      string `json:"raw" binding:"required"`
	ThreadID string `json:"threadId,omitempty"`
}

// handleGmailSend submits a raw RFC 822 message on the user's behalf.
func (s *Server) handleGmailSend(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	var request sendRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := mailClientFor(token).Send(c.Request.Context(), request.Raw, request.ThreadID); err != nil {
		s.Logger.Printf("gmail send failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

type archiveRequest struct {
	ThreadID string `json:"threadId" binding:"required"`
}

// handleGmailArchive removes a thread from the inbox.
func (s *Server) handleGmailArchive(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	var request archiveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := mailClientFor(token).Archive(c.Request.Context(), request.ThreadID); err != nil {
		s.Logger.Printf("gmail archive failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}

type modifyRequest struct {
	ThreadID     string   `json:"threadId" binding:"required"`
	AddLabels    []string `json:"addLabels,omitempty"`
	RemoveLabels []string `json:"removeLabels,omitempty"`
}

// handleGmailModify adds and removes labels on a thread.
func (s *Server) handleGmailModify(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	var request modifyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(request.AddLabels) == 0 && len(request.RemoveLabels) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to modify"})
		return
	}

	if err := mailClientFor(token).ModifyLabels(c.Request.Context(), request.ThreadID, request.AddLabels, request.RemoveLabels); err != nil {
		s.Logger.Printf("gmail modify failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "modified"})
}

// handleGmailThread fetches one thread with full payloads.
func (s *Server) handleGmailThread(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	thread, err := mailClientFor(token).GetThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.Logger.Printf("gmail thread fetch failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, thread)
}
