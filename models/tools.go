package models

// ToolCall is a finalized model-emitted tool invocation. The ID is
// provider-assigned where available; callers fall back to a generated one.
type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// PrimaryArg extracts the call's display argument (query or url).
func (c ToolCall) PrimaryArg() string {
	for _, key := range []string{"query", "url"} {
		if v, ok := c.Args[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// ToolResult is produced by an executor exactly once per call and is never
// mutated afterwards. Executors never return errors; failures are encoded
// as Success=false with a descriptive ResultText.
type ToolResult struct {
	Name       string `json:"name"`
	Query      string `json:"query"`
	ResultText string `json:"result_text"`
	Success    bool   `json:"success"`
}

type FunctionDeclaration struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the JSON Schema for a tool's arguments.
type Parameters struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}
