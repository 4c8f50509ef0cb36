package sessions

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mailpilot/mailpilot/models"
	"github.com/mailpilot/mailpilot/stores"
	"github.com/mailpilot/mailpilot/tools"
)

// ToolRunner executes one tool call; injectable so tests can script results.
type ToolRunner func(ctx context.Context, call models.ToolCall, accessToken string) models.ToolResult

// ChatSession drives one client request through the two-pass conversation
// state machine. Sessions are single-use and state-isolated: one request,
// one session, one event stream.
type ChatSession struct {
	Model          models.ChatModel
	Tools          []models.FunctionDeclaration
	ConversationID string
	AccessToken    string
	Logger         *log.Logger
	Traces         stores.TraceStore // optional; nil disables tracing
	RunTool        ToolRunner
}

// NewChatSession creates a session with the default tool dispatch.
func NewChatSession(model models.ChatModel, conversationID, accessToken string, traces stores.TraceStore, logger *log.Logger) *ChatSession {
	if logger == nil {
		logger = log.New(os.Stdout, "[session] ", log.LstdFlags)
	}
	return &ChatSession{
		Model:          model,
		Tools:          models.Declarations(),
		ConversationID: conversationID,
		AccessToken:    accessToken,
		Logger:         logger,
		Traces:         traces,
		RunTool:        tools.Execute,
	}
}

// SSEWriter handles Server-Sent Events writing.
type SSEWriter interface {
	WriteSSE(data string) error
	Flush()
}

// WebSocketWriter serializes concurrent writes onto one websocket
// connection.
type WebSocketWriter struct {
	Conn   *websocket.Conn
	Logger *log.Logger
	mu     sync.Mutex
}

func (w *WebSocketWriter) WriteEvent(ev models.StreamEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(ev)
}

func (w *WebSocketWriter) WriteError(message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(models.ErrorEvent(message))
}
