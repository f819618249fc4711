package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists conversations to PostgreSQL with the transcript and
// metadata held as JSONB columns.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a conversation store over the given database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	if db == nil {
		panic("conversation: db handle required")
	}
	return &SQLStore{db: db}
}

const conversationColumns = `id, tenant_id, chatbot_id, lead_id, session_id, transcript, metadata, rating, created_at, updated_at`

func (s *SQLStore) GetOrCreateBySession(ctx context.Context, tenantID, chatbotID, sessionID string) (*Conversation, bool, error) {
	conv, err := s.getBySession(ctx, tenantID, chatbotID, sessionID)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	id := uuid.New().String()
	query := `
		INSERT INTO conversations (id, tenant_id, chatbot_id, session_id, transcript, metadata)
		VALUES ($1, $2, $3, $4, '[]'::jsonb, '{}'::jsonb)
		ON CONFLICT (chatbot_id, session_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, id, tenantID, chatbotID, sessionID); err != nil {
		return nil, false, fmt.Errorf("conversation: insert failed: %w", err)
	}

	// Re-read after insert: on conflict a concurrent request won the race and
	// its row is the live conversation for the session.
	conv, err = s.getBySession(ctx, tenantID, chatbotID, sessionID)
	if err != nil {
		return nil, false, err
	}
	return conv, conv.ID == id, nil
}

func (s *SQLStore) getBySession(ctx context.Context, tenantID, chatbotID, sessionID string) (*Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE tenant_id = $1 AND chatbot_id = $2 AND session_id = $3
	`
	row := s.db.QueryRowContext(ctx, query, tenantID, chatbotID, sessionID)
	return scanConversation(row)
}

func (s *SQLStore) AppendTurn(ctx context.Context, conversationID string, user, assistant TranscriptEntry) error {
	entries, err := json.Marshal([]TranscriptEntry{user, assistant})
	if err != nil {
		return fmt.Errorf("conversation: marshal transcript entries: %w", err)
	}

	query := `
		UPDATE conversations
		SET transcript = transcript || $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, conversationID, entries)
	if err != nil {
		return fmt.Errorf("conversation: append turn failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) AttachLead(ctx context.Context, conversationID, leadID string) error {
	query := `
		UPDATE conversations
		SET lead_id = $2, updated_at = NOW()
		WHERE id = $1 AND lead_id IS NULL
	`
	if _, err := s.db.ExecContext(ctx, query, conversationID, leadID); err != nil {
		return fmt.Errorf("conversation: attach lead failed: %w", err)
	}
	return nil
}

func (s *SQLStore) SetRating(ctx context.Context, tenantID, chatbotID, sessionID string, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	query := `
		UPDATE conversations
		SET rating = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND chatbot_id = $2 AND session_id = $3
	`
	res, err := s.db.ExecContext(ctx, query, tenantID, chatbotID, sessionID, rating)
	if err != nil {
		return fmt.Errorf("conversation: set rating failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) GetByID(ctx context.Context, tenantID, id string) (*Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE tenant_id = $1 AND id = $2
	`
	row := s.db.QueryRowContext(ctx, query, tenantID, id)
	return scanConversation(row)
}

func (s *SQLStore) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE tenant_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("conversation: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var (
		conv           Conversation
		leadID         sql.NullString
		rating         sql.NullInt64
		transcriptJSON []byte
		metadataJSON   []byte
		createdAt      time.Time
		updatedAt      time.Time
	)
	err := row.Scan(
		&conv.ID,
		&conv.TenantID,
		&conv.ChatbotID,
		&leadID,
		&conv.SessionID,
		&transcriptJSON,
		&metadataJSON,
		&rating,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("conversation: scan failed: %w", err)
	}

	if leadID.Valid {
		conv.LeadID = &leadID.String
	}
	if rating.Valid {
		v := int(rating.Int64)
		conv.Rating = &v
	}
	if len(transcriptJSON) > 0 {
		if err := json.Unmarshal(transcriptJSON, &conv.Transcript); err != nil {
			return nil, fmt.Errorf("conversation: decode transcript: %w", err)
		}
	}
	if conv.Transcript == nil {
		conv.Transcript = []TranscriptEntry{}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &conv.Metadata); err != nil {
			return nil, fmt.Errorf("conversation: decode metadata: %w", err)
		}
	}
	if conv.Metadata == nil {
		conv.Metadata = map[string]string{}
	}
	conv.CreatedAt = createdAt
	conv.UpdatedAt = updatedAt
	return &conv, nil
}
