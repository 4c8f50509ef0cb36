package openai

import "github.com/mailpilot/mailpilot/models"

// OpenAI Chat Completions API types

type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

type Tool struct {
	Type     string   `json:"type"` // always "function"
	Function ToolFunc `json:"function"`
}

type ToolFunc struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Parameters  models.Parameters `json:"parameters"`
}

// StreamResponse is one SSE chunk of a streaming completion.
type StreamResponse struct {
	ID      string         `json:"id"`
	Choices []StreamChoice `json:"choices"`
}

type StreamChoice struct {
	Index        int    `json:"index"`
	Delta        *Delta `json:"delta"`
	FinishReason string `json:"finish_reason,omitempty"`
}

type Delta struct {
	Content   *string         `json:"content,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// ToolCallDelta carries a fragment of a function call. The first fragment
// for an index has the id and name; later fragments only append to the
// arguments string.
type ToolCallDelta struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function ToolCallDeltaFunc `json:"function"`
}

type ToolCallDeltaFunc struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ConvertTools maps the shared declarations onto the OpenAI tool format.
func ConvertTools(decls []models.FunctionDeclaration) []Tool {
	tools := make([]Tool, len(decls))
	for i, d := range decls {
		tools[i] = Tool{
			Type: "function",
			Function: ToolFunc{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		}
	}
	return tools
}
