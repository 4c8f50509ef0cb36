package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mailpilot/mailpilot/models"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com/v1/messages"
	DefaultAPIVersion = "2023-06-01"
	DefaultModel      = "claude-sonnet-4-20250514"
	DefaultMaxTokens  = 4096

	maxFrameSkips = 25
)

var allowedModels = map[string]bool{
	"claude-sonnet-4-20250514":  true,
	"claude-opus-4-20250514":    true,
	"claude-3-5-haiku-20241022": true,
}

func resolveModel(id string) string {
	if allowedModels[id] {
		return id
	}
	return DefaultModel
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

var httpDo = func(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

// Anthropic_Model implements the ChatModel interface for the Anthropic
// Messages API.
type Anthropic_Model struct {
	Temperature  *float64
	MaxTokens    *int
	SystemPrompt string
	BaseURL      string // Optional: custom API endpoint
	APIKeyEnv    string // Optional: env var name for API key (defaults to ANTHROPIC_API_KEY)
}

// Stream_Chat implements the ChatModel interface.
func (a *Anthropic_Model) Stream_Chat(ctx context.Context, request models.StreamRequest, tools []models.FunctionDeclaration) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)
		emit := func(ev models.StreamEvent) bool {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		messages := models.FilterEmpty(request.Messages)
		if len(messages) == 0 {
			emit(models.ErrorEvent("request contains no non-empty messages"))
			return
		}

		body := a.buildRequest(resolveModel(request.Model), messages, request, tools)
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			emit(models.ErrorEvent(fmt.Sprintf("failed to marshal request: %v", err)))
			return
		}

		baseURL := a.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}

		req, err := http.NewRequestWithContext(ctx, "POST", baseURL, bytes.NewReader(jsonBytes))
		if err != nil {
			emit(models.ErrorEvent(fmt.Sprintf("failed to create HTTP request: %v", err)))
			return
		}
		a.setHeaders(req)

		resp, err := httpDo(req)
		if err != nil {
			emit(models.ErrorEvent(fmt.Sprintf("HTTP request failed: %v", err)))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			var errResp ErrorResponse
			if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
				emit(models.ErrorEvent(fmt.Sprintf("Anthropic API error: %s (type: %s)", errResp.Error.Message, errResp.Error.Type)))
			} else {
				emit(models.ErrorEvent(fmt.Sprintf("Anthropic API error: status %d, body: %s", resp.StatusCode, string(respBody))))
			}
			return
		}

		parseStream(ctx, resp.Body, emit)
	}()

	return events
}

// toolBlock tracks one tool_use content block while its input JSON streams in.
type toolBlock struct {
	id   string
	name string
	json strings.Builder
}

// parseStream reads Anthropic SSE events and normalizes them into
// StreamEvents. Tool calls arrive as structured content blocks: start
// carries the id/name, input_json_delta fragments accumulate the
// arguments, and content_block_stop finalizes the call.
func parseStream(ctx context.Context, r io.Reader, emit func(models.StreamEvent) bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var full strings.Builder
	toolBlocks := make(map[int]*toolBlock)
	skips := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		var raw struct {
			Type         string          `json:"type"`
			Index        int             `json:"index"`
			ContentBlock json.RawMessage `json:"content_block"`
			Delta        json.RawMessage `json:"delta"`
		}
		if err := json.Unmarshal([]byte(data), &raw); err != nil || raw.Type == "" {
			skips++
			if skips > maxFrameSkips {
				emit(models.ErrorEvent(fmt.Sprintf("stream produced %d consecutive malformed frames, giving up", skips)))
				return
			}
			continue
		}
		skips = 0

		switch raw.Type {
		case EventContentBlockStart:
			if raw.ContentBlock == nil {
				continue
			}
			var block ContentBlock
			json.Unmarshal(raw.ContentBlock, &block)
			if block.Type == "tool_use" {
				toolBlocks[raw.Index] = &toolBlock{id: block.ID, name: block.Name}
				if !emit(models.ToolStartEvent(block.ID, block.Name)) {
					return
				}
			}

		case EventContentBlockDelta:
			if raw.Delta == nil {
				continue
			}
			var delta struct {
				Type        string `json:"type"`
				Text        string `json:"text"`
				PartialJSON string `json:"partial_json"`
			}
			json.Unmarshal(raw.Delta, &delta)

			if delta.Type == "text_delta" && delta.Text != "" {
				full.WriteString(delta.Text)
				if !emit(models.TextEvent(delta.Text, full.String())) {
					return
				}
			} else if delta.Type == "input_json_delta" {
				if tb, ok := toolBlocks[raw.Index]; ok {
					tb.json.WriteString(delta.PartialJSON)
					if !emit(models.ToolArgsEvent(tb.id, tb.name, tb.json.String())) {
						return
					}
				}
			}

		case EventContentBlockStop:
			if tb, ok := toolBlocks[raw.Index]; ok {
				var args map[string]any
				if err := json.Unmarshal([]byte(tb.json.String()), &args); err != nil {
					args = map[string]any{}
				}
				if !emit(models.ToolDoneEvent(tb.id, tb.name, args)) {
					return
				}
				delete(toolBlocks, raw.Index)
			}

		case EventMessageStop:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		emit(models.ErrorEvent(fmt.Sprintf("error reading stream: %v", err)))
	}
}

func (a *Anthropic_Model) buildRequest(model string, messages []models.ChatMessage, request models.StreamRequest, tools []models.FunctionDeclaration) AnthropicRequest {
	converted := make([]AnthropicMsg, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != "user" && role != "assistant" {
			role = "user"
		}
		converted = append(converted, AnthropicMsg{Role: role, Content: m.Content})
	}
	converted = mergeConsecutiveMessages(converted)

	system := a.SystemPrompt
	if ctxPrompt := models.ContextPrompt(request.Thread, request.Folder); ctxPrompt != "" {
		if system != "" {
			system += "\n\n"
		}
		system += ctxPrompt
	}

	maxTokens := DefaultMaxTokens
	if a.MaxTokens != nil {
		maxTokens = *a.MaxTokens
	}

	req := AnthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Messages:    converted,
		System:      system,
		Stream:      true,
		Temperature: a.Temperature,
	}
	if len(tools) > 0 {
		req.Tools = ConvertTools(tools)
	}
	return req
}

// mergeConsecutiveMessages merges consecutive messages with the same role.
// Anthropic requires strictly alternating user/assistant roles.
func mergeConsecutiveMessages(messages []AnthropicMsg) []AnthropicMsg {
	if len(messages) <= 1 {
		return messages
	}
	var result []AnthropicMsg
	for _, msg := range messages {
		if len(result) > 0 && result[len(result)-1].Role == msg.Role {
			result[len(result)-1].Content += "\n" + msg.Content
		} else {
			result = append(result, msg)
		}
	}
	return result
}

func (a *Anthropic_Model) setHeaders(req *http.Request) {
	apiKeyEnv := a.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = "ANTHROPIC_API_KEY"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", os.Getenv(apiKeyEnv))
	req.Header.Set("anthropic-version", DefaultAPIVersion)
}
