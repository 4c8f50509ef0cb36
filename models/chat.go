package models

import (
	"fmt"
	"strings"
)

type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant"
	Content string `json:"content"`
}

// ThreadSummary is the client's view of the email thread currently on screen.
type ThreadSummary struct {
	ID      string `json:"id,omitempty"`
	Subject string `json:"subject,omitempty"`
	From    string `json:"from,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Chat_Request is the inbound body of POST /api/chat.
type Chat_Request struct {
	Messages    []ChatMessage  `json:"messages"`
	Thread      *ThreadSummary `json:"thread,omitempty"`
	Folder      string         `json:"folder,omitempty"`
	Provider    string         `json:"provider"`
	Model       string         `json:"model,omitempty"`
	AccessToken string         `json:"accessToken,omitempty"`
}

// StreamRequest is what the orchestrator hands to a model adapter for one pass.
type StreamRequest struct {
	Messages []ChatMessage
	Thread   *ThreadSummary
	Folder   string
	Model    string
}

// FilterEmpty drops messages with empty content. Both backends reject
// empty-content turns, so adapters filter before building a request.
func FilterEmpty(messages []ChatMessage) []ChatMessage {
	filtered := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

// ContextPrompt renders the thread/folder context as a system-prompt suffix.
func ContextPrompt(thread *ThreadSummary, folder string) string {
	var b strings.Builder
	if folder != "" {
		fmt.Fprintf(&b, "The user is currently viewing the %q folder.\n", folder)
	}
	if thread != nil {
		b.WriteString("The user has the following email thread open:\n")
		if thread.Subject != "" {
			fmt.Fprintf(&b, "Subject: %s\n", thread.Subject)
		}
		if thread.From != "" {
			fmt.Fprintf(&b, "From: %s\n", thread.From)
		}
		if thread.Snippet != "" {
			fmt.Fprintf(&b, "Preview: %s\n", thread.Snippet)
		}
	}
	return b.String()
}
