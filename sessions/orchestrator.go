package sessions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailpilot/mailpilot/models"
	"github.com/mailpilot/mailpilot/stores"
	"github.com/mailpilot/mailpilot/tools"
)

// Synthetic follow-up wording. Only the structure (exactly one assistant
// turn plus one user turn) is load-bearing; the phrasing is adjustable.
var (
	assistantPlaceholder = "I looked up some information."
	followupIntro        = "Here are the results from the tools I ran:"
	followupAsk          = "Please answer my previous message using these results."
	resultSeparator      = "\n\n---\n\n"
)

const resultPreviewLimit = 200

// RunStream drives the full conversation turn and returns its event
// stream. The channel carries exactly one terminal "done" or "error"
// event and is closed afterwards; on client cancellation the channel is
// closed without a terminal event and no further writes occur.
//
// The turn proceeds through at most two model passes: the first pass
// streams text and tool calls; if any executable tool calls arrive they
// run sequentially, then a single follow-up pass streams the model's
// reading of the results. Tool events from the second pass are
// suppressed — nested tool execution is not supported.
func (s *ChatSession) RunStream(ctx context.Context, request models.StreamRequest) <-chan models.StreamEvent {
	out := make(chan models.StreamEvent)

	go func() {
		defer close(out)
		emit := func(ev models.StreamEvent) bool {
			// Cancellation wins over a ready receiver: once the client is
			// gone nothing more may be written, terminal events included.
			select {
			case <-ctx.Done():
				return false
			default:
			}
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		// First pass: forward events, retain cumulative text, queue
		// executable tool calls in arrival order.
		var fullText string
		var pending []models.ToolCall

		for ev := range s.Model.Stream_Chat(ctx, request, s.Tools) {
			switch ev.Type {
			case models.EventText:
				fullText = ev.FullText
				if !emit(ev) {
					return
				}
			case models.EventToolDone:
				if tools.IsExecutable(ev.Tool) {
					id := ev.ToolCallID
					if id == "" {
						id = "call_" + uuid.NewString()
					}
					pending = append(pending, models.ToolCall{ID: id, Name: ev.Tool, Args: ev.Args})
				}
				if !emit(ev) {
					return
				}
			case models.EventError:
				// Terminal: the adapter ends its sequence after an error,
				// and no follow-up pass is attempted.
				s.Logger.Printf("first pass failed: %s", ev.Message)
				emit(ev)
				return
			default:
				if !emit(ev) {
					return
				}
			}
		}

		if len(pending) == 0 {
			emit(models.DoneEvent())
			return
		}

		// Execute tools strictly in order, one at a time. Each call gets a
		// status event up front and exactly one search_result afterwards;
		// failures become results too so the model can acknowledge them.
		results := make([]models.ToolResult, 0, len(pending))
		for i, call := range pending {
			if ctx.Err() != nil {
				return
			}
			if !emit(models.StatusEvent(describeAction(call), i+1, len(pending))) {
				return
			}

			started := time.Now()
			result := s.RunTool(ctx, call, s.AccessToken)
			s.saveTrace(call, result, time.Since(started))
			results = append(results, result)

			if !emit(models.SearchResultEvent(models.SearchResultView{
				Type:    result.Name,
				Query:   result.Query,
				Preview: preview(result.ResultText),
				Success: result.Success,
			})) {
				return
			}
		}

		// Follow-up pass: original history plus exactly two synthetic
		// turns, however many tools fired. Only text is forwarded.
		followup := request
		followup.Messages = buildFollowup(request.Messages, fullText, results)

		for ev := range s.Model.Stream_Chat(ctx, followup, nil) {
			switch ev.Type {
			case models.EventText:
				if !emit(ev) {
					return
				}
			case models.EventError:
				s.Logger.Printf("follow-up pass failed: %s", ev.Message)
				emit(ev)
				return
			}
		}

		emit(models.DoneEvent())
	}()

	return out
}

// buildFollowup appends the assistant's partial reply and one synthetic
// user turn carrying every tool result. The result always has length
// len(original)+2.
func buildFollowup(original []models.ChatMessage, assistantText string, results []models.ToolResult) []models.ChatMessage {
	if strings.TrimSpace(assistantText) == "" {
		assistantText = assistantPlaceholder
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("[%s: %s]\n%s", r.Name, r.Query, r.ResultText))
	}
	content := followupIntro + "\n\n" + strings.Join(parts, resultSeparator) + "\n\n" + followupAsk

	followup := make([]models.ChatMessage, 0, len(original)+2)
	followup = append(followup, original...)
	followup = append(followup, models.ChatMessage{Role: "assistant", Content: assistantText})
	followup = append(followup, models.ChatMessage{Role: "user", Content: content})
	return followup
}

func describeAction(call models.ToolCall) string {
	arg := call.PrimaryArg()
	switch call.Name {
	case models.ToolWebSearch:
		return fmt.Sprintf("Searching the web for %q", arg)
	case models.ToolBrowseURL:
		return fmt.Sprintf("Reading %s", arg)
	case models.ToolSearchEmails:
		return fmt.Sprintf("Searching your emails for %q", arg)
	default:
		return fmt.Sprintf("Running %s", call.Name)
	}
}

func preview(s string) string {
	if len(s) <= resultPreviewLimit {
		return s
	}
	return s[:resultPreviewLimit]
}

func (s *ChatSession) saveTrace(call models.ToolCall, result models.ToolResult, took time.Duration) {
	if s.Traces == nil {
		return
	}
	trace := &stores.ToolTrace{
		ConversationID: s.ConversationID,
		ToolCallID:     call.ID,
		Tool:           call.Name,
		Query:          result.Query,
		Success:        result.Success,
		ResultChars:    len(result.ResultText),
		DurationMS:     took.Milliseconds(),
	}
	if err := s.Traces.SaveTrace(trace); err != nil {
		s.Logger.Printf("failed to save tool trace: %v", err)
	}
}
