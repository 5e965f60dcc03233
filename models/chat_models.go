package models

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single conversation turn. Messages are append-only:
// once created they are never mutated, reordered or deleted for the life of
// the session.
type Message struct {
	ID        string             `json:"id"`
	Role      string             `json:"role"` // "user" or "assistant"
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	Data      *FeatureCollection `json:"data,omitempty"` // attached result payload
}

// HistoryEntry is the trimmed message shape forwarded to remote backends
// as conversation context
type HistoryEntry struct {
	Type    string `json:"type"` // "user" or "assistant"
	Content string `json:"content"`
}

// QueryRequest represents an incoming query from a client
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse represents the answer to one query
type QueryResponse struct {
	SessionID string             `json:"session_id"`
	Message   string             `json:"message"` // assistant summary line
	Result    *FeatureCollection `json:"result,omitempty"`
	Status    string             `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

// RemoteQueryRequest is the wire body sent to a backend /query endpoint
type RemoteQueryRequest struct {
	Query   string         `json:"query"`
	History []HistoryEntry `json:"history"`
}
