package tools

import (
	"context"
	"fmt"

	"github.com/mailpilot/mailpilot/models"
)

// Executor runs one external tool. Executors never return errors: every
// failure is caught and encoded as a ToolResult with Success=false so the
// follow-up model pass can explain it to the user.
type Executor func(ctx context.Context, call models.ToolCall, accessToken string) models.ToolResult

var executors = map[string]Executor{
	models.ToolWebSearch:    Web_Search,
	models.ToolBrowseURL:    Browse_URL,
	models.ToolSearchEmails: Search_Emails,
}

// IsExecutable reports whether a tool runs server-side. Everything else
// (prepare_draft, archive_email, navigation) is a client-local action the
// orchestrator forwards but never executes.
func IsExecutable(name string) bool {
	_, ok := executors[name]
	return ok
}

// Execute dispatches a call to its executor. Repeated identical calls in
// one turn are executed literally, in order, with no deduplication.
func Execute(ctx context.Context, call models.ToolCall, accessToken string) models.ToolResult {
	exec, ok := executors[call.Name]
	if !ok {
		return models.ToolResult{
			Name:       call.Name,
			Query:      call.PrimaryArg(),
			ResultText: fmt.Sprintf("Unknown tool: %s", call.Name),
			Success:    false,
		}
	}
	return exec(ctx, call, accessToken)
}

// truncate caps s at n bytes. The cap is a hard bound on what feeds the
// follow-up model turn, so no truncation marker is appended.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
