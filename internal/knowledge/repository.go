package knowledge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the storage surface for KB entries and scraped content.
type Repository interface {
	ListEntries(ctx context.Context, tenantID string) ([]*KBEntry, error)
	ListActiveEntries(ctx context.Context, tenantID string) ([]*KBEntry, error)
	CreateEntry(ctx context.Context, req *CreateEntryRequest) (*KBEntry, error)
	UpdateEntry(ctx context.Context, tenantID, id string, req *UpdateEntryRequest) (*KBEntry, error)
	DeleteEntry(ctx context.Context, tenantID, id string) error
	// IncrementUsage bumps the usage counter on the given entries. Best
	// effort: callers log and continue on failure.
	IncrementUsage(ctx context.Context, tenantID string, ids []string) error

	ListContent(ctx context.Context, tenantID string) ([]*WebsiteContent, error)
	CreateContent(ctx context.Context, req *CreateContentRequest) (*WebsiteContent, error)
	DeleteContent(ctx context.Context, tenantID, id string) error
}

// InMemoryRepository backs the knowledge repository with maps for tests
// and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*KBEntry
	content map[string]*WebsiteContent
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		entries: make(map[string]*KBEntry),
		content: make(map[string]*WebsiteContent),
	}
}

// SeedEntry inserts an entry directly, bypassing validation.
func (r *InMemoryRepository) SeedEntry(e *KBEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.ID] = e
}

// SeedContent inserts a content record directly.
func (r *InMemoryRepository) SeedContent(c *WebsiteContent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content[c.ID] = c
}

func (r *InMemoryRepository) ListEntries(ctx context.Context, tenantID string) ([]*KBEntry, error) {
	return r.listEntries(tenantID, false), nil
}

func (r *InMemoryRepository) ListActiveEntries(ctx context.Context, tenantID string) ([]*KBEntry, error) {
	return r.listEntries(tenantID, true), nil
}

func (r *InMemoryRepository) listEntries(tenantID string, activeOnly bool) []*KBEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*KBEntry
	for _, e := range r.entries {
		if e.TenantID != tenantID {
			continue
		}
		if activeOnly && !e.Active {
			continue
		}
		dup := *e
		dup.Tags = append([]string(nil), e.Tags...)
		out = append(out, &dup)
	}
	return out
}

func (r *InMemoryRepository) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*KBEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	entry := &KBEntry{
		ID:        uuid.New().String(),
		TenantID:  req.TenantID,
		Question:  req.Question,
		Answer:    req.Answer,
		Tags:      append([]string(nil), req.Tags...),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.entries[entry.ID] = entry
	dup := *entry
	return &dup, nil
}

func (r *InMemoryRepository) UpdateEntry(ctx context.Context, tenantID, id string, req *UpdateEntryRequest) (*KBEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.TenantID != tenantID {
		return nil, ErrNotFound
	}
	if req.Question != nil {
		entry.Question = *req.Question
	}
	if req.Answer != nil {
		entry.Answer = *req.Answer
	}
	if req.Tags != nil {
		entry.Tags = append([]string(nil), (*req.Tags)...)
	}
	if req.Active != nil {
		entry.Active = *req.Active
	}
	entry.UpdatedAt = time.Now().UTC()
	dup := *entry
	return &dup, nil
}

func (r *InMemoryRepository) DeleteEntry(ctx context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.TenantID != tenantID {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *InMemoryRepository) IncrementUsage(ctx context.Context, tenantID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if e, ok := r.entries[id]; ok && e.TenantID == tenantID {
			e.UsageCount++
		}
	}
	return nil
}

func (r *InMemoryRepository) ListContent(ctx context.Context, tenantID string) ([]*WebsiteContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*WebsiteContent
	for _, c := range r.content {
		if c.TenantID == tenantID {
			dup := *c
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) CreateContent(ctx context.Context, req *CreateContentRequest) (*WebsiteContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	content := &WebsiteContent{
		ID:        uuid.New().String(),
		TenantID:  req.TenantID,
		URL:       req.URL,
		Title:     req.Title,
		Content:   req.Content,
		Active:    true,
		Processed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.content[content.ID] = content
	dup := *content
	return &dup, nil
}

func (r *InMemoryRepository) DeleteContent(ctx context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.content[id]
	if !ok || c.TenantID != tenantID {
		return ErrNotFound
	}
	delete(r.content, id)
	return nil
}
