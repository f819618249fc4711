package chatbot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines chatbot storage.
type Repository interface {
	// GetByID returns the chatbot regardless of active flag; callers decide
	// how to treat inactive bots.
	GetByID(ctx context.Context, id string) (*Chatbot, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Chatbot, error)
	Create(ctx context.Context, req *CreateRequest) (*Chatbot, error)
	Update(ctx context.Context, tenantID, id string, req *UpdateRequest) (*Chatbot, error)
}

// InMemoryRepository is a Repository backed by a map, for tests and local runs.
type InMemoryRepository struct {
	mu   sync.RWMutex
	bots map[string]*Chatbot
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{bots: make(map[string]*Chatbot)}
}

// Seed inserts a chatbot directly, bypassing validation.
func (r *InMemoryRepository) Seed(bot *Chatbot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bots[bot.ID] = bot
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Chatbot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bot, ok := r.bots[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *bot
	return &cp, nil
}

func (r *InMemoryRepository) ListByTenant(_ context.Context, tenantID string) ([]*Chatbot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Chatbot
	for _, bot := range r.bots {
		if bot.TenantID == tenantID {
			cp := *bot
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, req *CreateRequest) (*Chatbot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	bot := &Chatbot{
		ID:             uuid.New().String(),
		TenantID:       req.TenantID,
		Name:           req.Name,
		WelcomeMessage: req.WelcomeMessage,
		Theme:          req.Theme,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	r.mu.Lock()
	r.bots[bot.ID] = bot
	r.mu.Unlock()
	cp := *bot
	return &cp, nil
}

func (r *InMemoryRepository) Update(_ context.Context, tenantID, id string, req *UpdateRequest) (*Chatbot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.bots[id]
	if !ok || bot.TenantID != tenantID {
		return nil, ErrNotFound
	}
	if req.Name != nil {
		bot.Name = *req.Name
	}
	if req.WelcomeMessage != nil {
		bot.WelcomeMessage = *req.WelcomeMessage
	}
	if req.Theme != nil {
		bot.Theme = *req.Theme
	}
	if req.Active != nil {
		bot.Active = *req.Active
	}
	cp := *bot
	return &cp, nil
}
