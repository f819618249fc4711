package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the storage surface for services and appointments.
type Repository interface {
	ListServices(ctx context.Context, tenantID string) ([]*Service, error)
	ListActiveServices(ctx context.Context, tenantID string) ([]*Service, error)
	CreateService(ctx context.Context, req *CreateServiceRequest) (*Service, error)
	UpdateService(ctx context.Context, tenantID, id string, req *UpdateServiceRequest) (*Service, error)

	ListAppointments(ctx context.Context, tenantID string) ([]*Appointment, error)
	CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, tenantID, id string, status AppointmentStatus) (*Appointment, error)
}

// InMemoryRepository backs the scheduling repository with maps for tests
// and local development.
type InMemoryRepository struct {
	mu           sync.RWMutex
	services     map[string]*Service
	appointments map[string]*Appointment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		services:     make(map[string]*Service),
		appointments: make(map[string]*Appointment),
	}
}

// SeedService inserts a service directly, bypassing validation.
func (r *InMemoryRepository) SeedService(s *Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.ID] = s
}

func (r *InMemoryRepository) ListServices(ctx context.Context, tenantID string) ([]*Service, error) {
	return r.listServices(tenantID, false), nil
}

func (r *InMemoryRepository) ListActiveServices(ctx context.Context, tenantID string) ([]*Service, error) {
	return r.listServices(tenantID, true), nil
}

func (r *InMemoryRepository) listServices(tenantID string, activeOnly bool) []*Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Service
	for _, s := range r.services {
		if s.TenantID != tenantID {
			continue
		}
		if activeOnly && !s.Active {
			continue
		}
		dup := *s
		out = append(out, &dup)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *InMemoryRepository) CreateService(ctx context.Context, req *CreateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	svc := &Service{
		ID:          uuid.New().String(),
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.services[svc.ID] = svc
	dup := *svc
	return &dup, nil
}

func (r *InMemoryRepository) UpdateService(ctx context.Context, tenantID, id string, req *UpdateServiceRequest) (*Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[id]
	if !ok || svc.TenantID != tenantID {
		return nil, ErrServiceNotFound
	}
	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMin != nil {
		svc.DurationMin = *req.DurationMin
	}
	if req.PriceCents != nil {
		svc.PriceCents = *req.PriceCents
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	svc.UpdatedAt = time.Now().UTC()
	dup := *svc
	return &dup, nil
}

func (r *InMemoryRepository) ListAppointments(ctx context.Context, tenantID string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, a := range r.appointments {
		if a.TenantID == tenantID {
			dup := *a
			out = append(out, &dup)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

func (r *InMemoryRepository) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[req.ServiceID]
	if !ok || svc.TenantID != req.TenantID {
		return nil, ErrServiceNotFound
	}

	now := time.Now().UTC()
	appt := &Appointment{
		ID:           uuid.New().String(),
		TenantID:     req.TenantID,
		ServiceID:    req.ServiceID,
		LeadID:       req.LeadID,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		StartsAt:     req.StartsAt,
		Status:       AppointmentScheduled,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.appointments[appt.ID] = appt
	dup := *appt
	return &dup, nil
}

func (r *InMemoryRepository) UpdateAppointmentStatus(ctx context.Context, tenantID, id string, status AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok || appt.TenantID != tenantID {
		return nil, ErrAppointmentNotFound
	}
	if !ValidAppointmentTransition(appt.Status, status) {
		return nil, &InvalidTransitionError{From: appt.Status, To: status}
	}
	appt.Status = status
	appt.UpdatedAt = time.Now().UTC()
	dup := *appt
	return &dup, nil
}
