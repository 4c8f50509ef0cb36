package openai

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

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/mailpilot/mailpilot/models"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel   = "gpt-4o-mini"

	// maxFrameSkips bounds how many consecutive unparsable SSE frames are
	// tolerated before the stream is declared broken.
	maxFrameSkips = 25
)

// allowedModels is the per-provider allow-list; unknown identifiers fall
// back to DefaultModel rather than failing the request.
var allowedModels = map[string]bool{
	"gpt-4o":       true,
	"gpt-4o-mini":  true,
	"gpt-4.1":      true,
	"gpt-4.1-mini": true,
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

// httpDo is a package-level var so tests can mock the transport.
var httpDo = func(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

// OpenAI_Model implements the ChatModel interface for the OpenAI Chat
// Completions API.
type OpenAI_Model struct {
	Temperature  *float64
	MaxTokens    *int
	SystemPrompt string
	BaseURL      string // Optional: custom API endpoint
	APIKeyEnv    string // Optional: env var name for API key (defaults to OPENAI_API_KEY)
}

// Stream_Chat implements the ChatModel interface.
func (o *OpenAI_Model) Stream_Chat(ctx context.Context, request models.StreamRequest, tools []models.FunctionDeclaration) <-chan models.StreamEvent {
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

		body := o.buildRequest(resolveModel(request.Model), messages, request, tools)
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			emit(models.ErrorEvent(fmt.Sprintf("failed to marshal request: %v", err)))
			return
		}

		baseURL := o.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}

		req, err := http.NewRequestWithContext(ctx, "POST", baseURL, bytes.NewReader(jsonBytes))
		if err != nil {
			emit(models.ErrorEvent(fmt.Sprintf("failed to create HTTP request: %v", err)))
			return
		}
		o.setHeaders(req)

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
				emit(models.ErrorEvent(fmt.Sprintf("OpenAI API error: %s (type: %s)", errResp.Error.Message, errResp.Error.Type)))
			} else {
				emit(models.ErrorEvent(fmt.Sprintf("OpenAI API error: status %d, body: %s", resp.StatusCode, string(respBody))))
			}
			return
		}

		parseStream(ctx, resp.Body, emit)
	}()

	return events
}

// pendingCall accumulates token-by-token function-call deltas for one
// tool-call index until the stream finishes.
type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

// parseStream reads OpenAI SSE chunks and normalizes them into StreamEvents.
// Text deltas are forwarded with cumulative content; tool-call deltas are
// accumulated per index and finalized as tool_done events at [DONE]/EOF.
func parseStream(ctx context.Context, r io.Reader, emit func(models.StreamEvent) bool) {
	reader := bufio.NewReader(r)

	var full strings.Builder
	calls := make(map[int]*pendingCall)
	var order []int
	skips := 0

	finalize := func() {
		for _, idx := range order {
			pc := calls[idx]
			var args map[string]any
			if err := json.Unmarshal([]byte(pc.args.String()), &args); err != nil {
				log.Printf("Warning: failed to unmarshal tool call arguments for %s: %v", pc.name, err)
				args = map[string]any{}
			}
			if !emit(models.ToolDoneEvent(pc.id, pc.name, args)) {
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				finalize()
				return
			}
			emit(models.ErrorEvent(fmt.Sprintf("error reading stream: %v", err)))
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			finalize()
			return
		}

		var chunk StreamResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			skips++
			if skips > maxFrameSkips {
				emit(models.ErrorEvent(fmt.Sprintf("stream produced %d consecutive malformed frames, giving up", skips)))
				return
			}
			log.Printf("Warning: skipping malformed stream chunk: %v", err)
			continue
		}
		skips = 0

		for _, choice := range chunk.Choices {
			if choice.Delta == nil {
				continue
			}

			if choice.Delta.Content != nil && *choice.Delta.Content != "" {
				full.WriteString(*choice.Delta.Content)
				if !emit(models.TextEvent(*choice.Delta.Content, full.String())) {
					return
				}
			}

			for _, tc := range choice.Delta.ToolCalls {
				pc, ok := calls[tc.Index]
				if !ok {
					id := tc.ID
					if id == "" {
						id = "call_" + uuid.NewString()
					}
					pc = &pendingCall{id: id, name: tc.Function.Name}
					calls[tc.Index] = pc
					order = append(order, tc.Index)
					if !emit(models.ToolStartEvent(pc.id, pc.name)) {
						return
					}
				}
				if tc.Function.Arguments != "" {
					pc.args.WriteString(tc.Function.Arguments)
					if !emit(models.ToolArgsEvent(pc.id, pc.name, pc.args.String())) {
						return
					}
				}
			}
		}
	}
}

func (o *OpenAI_Model) buildRequest(model string, messages []models.ChatMessage, request models.StreamRequest, tools []models.FunctionDeclaration) OpenAIRequest {
	converted := make([]Message, 0, len(messages)+1)

	system := o.SystemPrompt
	if ctxPrompt := models.ContextPrompt(request.Thread, request.Folder); ctxPrompt != "" {
		if system != "" {
			system += "\n\n"
		}
		system += ctxPrompt
	}
	if system != "" {
		converted = append(converted, Message{Role: "system", Content: system})
	}

	for _, m := range messages {
		converted = append(converted, Message{Role: m.Role, Content: m.Content})
	}

	req := OpenAIRequest{
		Model:       model,
		Messages:    converted,
		Stream:      true,
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	}
	if len(tools) > 0 {
		req.Tools = ConvertTools(tools)
	}
	return req
}

func (o *OpenAI_Model) setHeaders(req *http.Request) {
	apiKeyEnv := o.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = "OPENAI_API_KEY"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+os.Getenv(apiKeyEnv))
}
