package conversation

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a conversation does not exist for the tenant.
	ErrNotFound = errors.New("conversation not found")

	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TranscriptEntry is one turn half in a conversation transcript.
type TranscriptEntry struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the persisted transcript and metadata for one chat session.
// The (ChatbotID, SessionID) pair is the natural key: at most one live
// conversation exists per pair.
type Conversation struct {
	ID         string            `json:"id"`
	TenantID   string            `json:"tenant_id"`
	ChatbotID  string            `json:"chatbot_id"`
	LeadID     *string           `json:"lead_id,omitempty"`
	SessionID  string            `json:"session_id"`
	Transcript []TranscriptEntry `json:"transcript"`
	Metadata   map[string]string `json:"metadata"`
	Rating     *int              `json:"rating,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Store persists conversations. The pipeline re-reads what it needs on every
// step; no implementation may cache mutable entities across requests.
type Store interface {
	// GetOrCreateBySession resolves the natural key to a durable conversation,
	// creating one with an empty transcript on first contact. The second
	// return reports whether a new conversation was created.
	GetOrCreateBySession(ctx context.Context, tenantID, chatbotID, sessionID string) (*Conversation, bool, error)

	// AppendTurn appends the user and assistant entries, in that order, to the
	// conversation's transcript and persists the result.
	AppendTurn(ctx context.Context, conversationID string, user, assistant TranscriptEntry) error

	// AttachLead links the conversation to an extracted lead.
	AttachLead(ctx context.Context, conversationID, leadID string) error

	// SetRating records visitor satisfaction for the session's conversation.
	SetRating(ctx context.Context, tenantID, chatbotID, sessionID string, rating int) error

	GetByID(ctx context.Context, tenantID, id string) (*Conversation, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Conversation, error)
}
