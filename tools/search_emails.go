package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailpilot/mailpilot/gmail"
	"github.com/mailpilot/mailpilot/models"
)

const (
	maxEmailResults     = 10
	defaultEmailResults = 5
	emailBodyLimit      = 2000
)

// mailClient is the slice of the Gmail client this executor needs;
// tests substitute a fake via newMailClient.
type mailClient interface {
	SearchThreads(ctx context.Context, query string, max int) ([]gmail.ThreadRef, error)
	GetThread(ctx context.Context, id string) (*gmail.Thread, error)
}

var newMailClient = func(accessToken string) mailClient {
	return gmail.NewClient(accessToken)
}

// Search_Emails searches the user's mailbox and returns matching
// conversations with each message body independently truncated so the
// follow-up model turn stays bounded.
func Search_Emails(ctx context.Context, call models.ToolCall, accessToken string) models.ToolResult {
	query, _ := call.Args["query"].(string)
	result := models.ToolResult{Name: models.ToolSearchEmails, Query: query}

	if accessToken == "" {
		result.ResultText = "Not authenticated with Gmail. Please sign in to search your emails."
		return result
	}
	if strings.TrimSpace(query) == "" {
		result.ResultText = "Email search failed: no query was provided."
		return result
	}

	max := defaultEmailResults
	if v, ok := call.Args["max_results"].(float64); ok && v > 0 {
		max = int(v)
	}
	if max > maxEmailResults {
		max = maxEmailResults
	}

	client := newMailClient(accessToken)
	refs, err := client.SearchThreads(ctx, query, max)
	if err != nil {
		result.ResultText = fmt.Sprintf("Email search failed: %v", err)
		return result
	}
	if len(refs) == 0 {
		result.ResultText = fmt.Sprintf("No emails found matching %q.", query)
		result.Success = true
		return result
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d conversation(s) matching %q:\n\n", len(refs), query)

	for i, ref := range refs {
		thread, err := client.GetThread(ctx, ref.ID)
		if err != nil {
			fmt.Fprintf(&b, "%d. (thread %s could not be loaded: %v)\n\n", i+1, ref.ID, err)
			continue
		}
		b.WriteString(formatThread(i+1, thread))
	}

	result.ResultText = b.String()
	result.Success = true
	return result
}

func formatThread(index int, thread *gmail.Thread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. Thread %s\n", index, thread.ID)

	for _, msg := range thread.Messages {
		subject := msg.Header("Subject")
		from := msg.Header("From")
		date := msg.Header("Date")

		if from != "" {
			fmt.Fprintf(&b, "   From: %s\n", from)
		}
		if subject != "" {
			fmt.Fprintf(&b, "   Subject: %s\n", subject)
		}
		if date != "" {
			fmt.Fprintf(&b, "   Date: %s\n", date)
		}

		body := gmail.PreferredBody(msg.Payload)
		if body == "" {
			body = msg.Snippet
		}
		fmt.Fprintf(&b, "   %s\n\n", truncate(strings.TrimSpace(body), emailBodyLimit))
	}
	return b.String()
}
