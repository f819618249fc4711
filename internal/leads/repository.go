package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the storage surface for leads.
type Repository interface {
	GetByID(ctx context.Context, tenantID, id string) (*Lead, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Lead, error)
	Create(ctx context.Context, req *CreateRequest) (*Lead, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status Status) (*Lead, error)
}

// InMemoryRepository backs the lead repository with a map for tests and
// local development.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{leads: make(map[string]*Lead)}
}

// Seed inserts a lead directly, bypassing validation.
func (r *InMemoryRepository) Seed(l *Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[l.ID] = l
}

func (r *InMemoryRepository) GetByID(ctx context.Context, tenantID, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok || lead.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return copyLead(lead), nil
}

func (r *InMemoryRepository) ListByTenant(ctx context.Context, tenantID string) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Lead
	for _, l := range r.leads {
		if l.TenantID == tenantID {
			out = append(out, copyLead(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		TenantID:  req.TenantID,
		ChatbotID: req.ChatbotID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Source:    req.Source,
		Score:     req.Score,
		Status:    StatusNew,
		Notes:     req.Notes,
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.leads[lead.ID] = lead
	return copyLead(lead), nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, tenantID, id string, status Status) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok || lead.TenantID != tenantID {
		return nil, ErrNotFound
	}
	if !ValidTransition(lead.Status, status) {
		return nil, &InvalidTransitionError{From: lead.Status, To: status}
	}
	lead.Status = status
	lead.UpdatedAt = time.Now().UTC()
	return copyLead(lead), nil
}

func copyLead(l *Lead) *Lead {
	dup := *l
	dup.Metadata.Interests = append([]string(nil), l.Metadata.Interests...)
	if l.Metadata.Scoring != nil {
		sc := *l.Metadata.Scoring
		sc.RecommendedActions = append([]string(nil), l.Metadata.Scoring.RecommendedActions...)
		dup.Metadata.Scoring = &sc
	}
	return &dup
}
