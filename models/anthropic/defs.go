package anthropic

import "github.com/mailpilot/mailpilot/models"

// Anthropic Messages API types

type AnthropicRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []AnthropicMsg  `json:"messages"`
	System      string          `json:"system,omitempty"`
	Tools       []AnthropicTool `json:"tools,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type AnthropicMsg struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ContentBlock is a polymorphic content element in streaming events.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	ID   string `json:"id,omitempty"`   // tool_use ID
	Name string `json:"name,omitempty"` // tool name
}

type AnthropicTool struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	InputSchema models.Parameters `json:"input_schema"`
}

type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Streaming SSE event types
const (
	EventMessageStart      = "message_start"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
)

// ConvertTools maps the shared declarations onto the Anthropic tool format.
func ConvertTools(decls []models.FunctionDeclaration) []AnthropicTool {
	tools := make([]AnthropicTool, len(decls))
	for i, d := range decls {
		schema := d.Parameters
		if schema.Type == "" {
			schema.Type = "object"
		}
		if schema.Properties == nil {
			schema.Properties = map[string]any{}
		}
		tools[i] = AnthropicTool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: schema,
		}
	}
	return tools
}
