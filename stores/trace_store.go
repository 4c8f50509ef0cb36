package stores

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ToolTrace is an advisory record of one tool execution. Conversation
// content is never stored here, only what ran and how it went.
type ToolTrace struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	ConversationID string    `gorm:"index:idx_trace_conv;not null" json:"conversation_id"`
	ToolCallID     string    `gorm:"index:idx_trace_call" json:"tool_call_id"`
	Tool           string    `gorm:"not null" json:"tool"`
	Query          string    `json:"query"`
	Success        bool      `json:"success"`
	ResultChars    int       `json:"result_chars"`
	DurationMS     int64     `json:"duration_ms"`
}

// TraceStore persists tool-execution traces. Implementations must be safe
// for concurrent use; tracing is best-effort and failures are only logged.
type TraceStore interface {
	SaveTrace(trace *ToolTrace) error
	GetTracesByConversation(conversationID string) ([]*ToolTrace, error)
	DeleteTracesByConversation(conversationID string) error
}

// GORMTraceStore implements TraceStore for SQLite/PostgreSQL via GORM.
type GORMTraceStore struct {
	db *gorm.DB
}

// NewGORMTraceStore creates a trace store from an existing GORM connection.
func NewGORMTraceStore(db *gorm.DB) (*GORMTraceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if err := db.AutoMigrate(&ToolTrace{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tool_traces table: %w", err)
	}
	return &GORMTraceStore{db: db}, nil
}

func (s *GORMTraceStore) SaveTrace(trace *ToolTrace) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Create(trace).Error
}

func (s *GORMTraceStore) GetTracesByConversation(conversationID string) ([]*ToolTrace, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var traces []*ToolTrace
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&traces).Error
	return traces, err
}

func (s *GORMTraceStore) DeleteTracesByConversation(conversationID string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Where("conversation_id = ?", conversationID).Delete(&ToolTrace{}).Error
}
