package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]*Conversation)}
}

func (s *MemoryStore) GetOrCreateBySession(ctx context.Context, tenantID, chatbotID, sessionID string) (*Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.convs {
		if c.TenantID == tenantID && c.ChatbotID == chatbotID && c.SessionID == sessionID {
			return copyConversation(c), false, nil
		}
	}

	now := time.Now().UTC()
	conv := &Conversation{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		ChatbotID:  chatbotID,
		SessionID:  sessionID,
		Transcript: []TranscriptEntry{},
		Metadata:   map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.convs[conv.ID] = conv
	return copyConversation(conv), true, nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, conversationID string, user, assistant TranscriptEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[conversationID]
	if !ok {
		return ErrNotFound
	}
	conv.Transcript = append(conv.Transcript, user, assistant)
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) AttachLead(ctx context.Context, conversationID, leadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[conversationID]
	if !ok {
		return ErrNotFound
	}
	if conv.LeadID == nil {
		id := leadID
		conv.LeadID = &id
		conv.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStore) SetRating(ctx context.Context, tenantID, chatbotID, sessionID string, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.convs {
		if c.TenantID == tenantID && c.ChatbotID == chatbotID && c.SessionID == sessionID {
			r := rating
			c.Rating = &r
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) GetByID(ctx context.Context, tenantID, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[id]
	if !ok || conv.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return copyConversation(conv), nil
}

func (s *MemoryStore) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Conversation
	for _, c := range s.convs {
		if c.TenantID == tenantID {
			out = append(out, copyConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []*Conversation{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyConversation(c *Conversation) *Conversation {
	dup := *c
	dup.Transcript = append([]TranscriptEntry(nil), c.Transcript...)
	dup.Metadata = make(map[string]string, len(c.Metadata))
	for k, v := range c.Metadata {
		dup.Metadata[k] = v
	}
	if c.LeadID != nil {
		id := *c.LeadID
		dup.LeadID = &id
	}
	if c.Rating != nil {
		r := *c.Rating
		dup.Rating = &r
	}
	return &dup
}
