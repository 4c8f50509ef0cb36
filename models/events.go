package models

// StreamEvent types. Exactly one "done" or "error" terminates a stream;
// nothing may follow it.
const (
	EventStatus       = "status"
	EventText         = "text"
	EventToolStart    = "tool_start"
	EventToolArgs     = "tool_args"
	EventToolDone     = "tool_done"
	EventSearchResult = "search_result"
	EventDone         = "done"
	EventError        = "error"
)

// StreamEvent is the tagged union written to the client, one JSON object
// per SSE frame. Fields are populated per Type; the zero value of every
// other field is omitted on the wire.
type StreamEvent struct {
	Type string `json:"type"`

	// status / error
	Message string `json:"message,omitempty"`
	Index   int    `json:"index,omitempty"` // 1-based position among pending tools
	Total   int    `json:"total,omitempty"`

	// text
	Token    string `json:"token,omitempty"`
	FullText string `json:"full_text,omitempty"` // cumulative content so far

	// tool_start / tool_args / tool_done
	ToolCallID  string         `json:"tool_call_id,omitempty"`
	Tool        string         `json:"tool,omitempty"`
	PartialArgs string         `json:"partial_args,omitempty"`
	Args        map[string]any `json:"args,omitempty"`

	// search_result
	Result *SearchResultView `json:"result,omitempty"`
}

// SearchResultView is a ToolResult projected for client display.
type SearchResultView struct {
	Type    string `json:"type"` // tool name
	Query   string `json:"query"`
	Preview string `json:"preview"`
	Success bool   `json:"success"`
}

func TextEvent(token, fullText string) StreamEvent {
	return StreamEvent{Type: EventText, Token: token, FullText: fullText}
}

func StatusEvent(message string, index, total int) StreamEvent {
	return StreamEvent{Type: EventStatus, Message: message, Index: index, Total: total}
}

func ToolStartEvent(id, tool string) StreamEvent {
	return StreamEvent{Type: EventToolStart, ToolCallID: id, Tool: tool}
}

func ToolArgsEvent(id, tool, partial string) StreamEvent {
	return StreamEvent{Type: EventToolArgs, ToolCallID: id, Tool: tool, PartialArgs: partial}
}

func ToolDoneEvent(id, tool string, args map[string]any) StreamEvent {
	return StreamEvent{Type: EventToolDone, ToolCallID: id, Tool: tool, Args: args}
}

func SearchResultEvent(view SearchResultView) StreamEvent {
	return StreamEvent{Type: EventSearchResult, Tool: view.Type, Result: &view}
}

func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message}
}
