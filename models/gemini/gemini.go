package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/mailpilot/mailpilot/models"
)

const DefaultModel = "gemini-2.0-flash"

var allowedModels = map[string]bool{
	"gemini-2.0-flash": true,
	"gemini-2.5-flash": true,
	"gemini-2.5-pro":   true,
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

// Gemini_Model implements the ChatModel interface via the genai SDK.
// Unlike the other backends, Gemini delivers function calls as complete
// parts rather than argument deltas, so tool_start and tool_done are
// emitted back to back.
type Gemini_Model struct {
	Temperature  *float32
	MaxTokens    *int32
	SystemPrompt string
}

// newClient is a package-level var so tests can substitute a fake stream.
var newClient = func(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, nil)
}

// Stream_Chat implements the ChatModel interface.
func (g *Gemini_Model) Stream_Chat(ctx context.Context, request models.StreamRequest, tools []models.FunctionDeclaration) <-chan models.StreamEvent {
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

		client, err := newClient(ctx)
		if err != nil {
			emit(models.ErrorEvent(fmt.Sprintf("failed to create Gemini client: %v", err)))
			return
		}

		contents := make([]*genai.Content, 0, len(messages))
		for _, m := range messages {
			role := genai.RoleUser
			if m.Role == "assistant" {
				role = genai.RoleModel
			}
			contents = append(contents, &genai.Content{
				Role:  role,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}

		config := &genai.GenerateContentConfig{}
		system := g.SystemPrompt
		if ctxPrompt := models.ContextPrompt(request.Thread, request.Folder); ctxPrompt != "" {
			if system != "" {
				system += "\n\n"
			}
			system += ctxPrompt
		}
		if system != "" {
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
		}
		if g.Temperature != nil {
			config.Temperature = g.Temperature
		}
		if g.MaxTokens != nil {
			config.MaxOutputTokens = *g.MaxTokens
		}
		if len(tools) > 0 {
			decls := make([]*genai.FunctionDeclaration, len(tools))
			for i, t := range tools {
				decls[i] = &genai.FunctionDeclaration{
					Name:                 t.Name,
					Description:          t.Description,
					ParametersJsonSchema: t.Parameters,
				}
			}
			config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		}

		var full strings.Builder
		for resp, err := range client.Models.GenerateContentStream(ctx, resolveModel(request.Model), contents, config) {
			if err != nil {
				emit(models.ErrorEvent(fmt.Sprintf("Gemini API error: %v", err)))
				return
			}
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if part.Text != "" {
						full.WriteString(part.Text)
						if !emit(models.TextEvent(part.Text, full.String())) {
							return
						}
					}
					if part.FunctionCall != nil {
						id := part.FunctionCall.ID
						if id == "" {
							id = "call_" + uuid.NewString()
						}
						args := part.FunctionCall.Args
						if args == nil {
							args = map[string]any{}
						}
						if !emit(models.ToolStartEvent(id, part.FunctionCall.Name)) {
							return
						}
						if !emit(models.ToolDoneEvent(id, part.FunctionCall.Name, args)) {
							return
						}
					}
				}
			}
		}
	}()

	return events
}
