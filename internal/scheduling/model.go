package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrServiceNotFound is returned when a service does not exist for the tenant.
	ErrServiceNotFound = errors.New("scheduling: service not found")
	// ErrAppointmentNotFound is returned when an appointment does not exist.
	ErrAppointmentNotFound = errors.New("scheduling: appointment not found")
	// ErrInvalidService is returned when a service is missing required fields.
	ErrInvalidService = errors.New("scheduling: service name and duration are required")
	// ErrInvalidAppointment is returned for bad appointment payloads.
	ErrInvalidAppointment = errors.New("scheduling: service, contact name, and start time are required")
)

// Service is a bookable offering a tenant exposes to chat visitors.
type Service struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DurationMin int       `json:"duration"`
	PriceCents  int       `json:"price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Option is the service shape surfaced to chat visitors when appointment
// intent is detected.
type Option struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Price    int    `json:"price"`
}

func (s *Service) Option() Option {
	return Option{ID: s.ID, Name: s.Name, Duration: s.DurationMin, Price: s.PriceCents}
}

// AppointmentStatus tracks a booking through its lifecycle.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCancelled, AppointmentNoShow},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled, AppointmentNoShow},
}

// ValidAppointmentTransition reports whether a booking may move between
// the two statuses. Completed, cancelled, and no_show are terminal.
func ValidAppointmentTransition(from, to AppointmentStatus) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a rejected appointment status move.
type InvalidTransitionError struct {
	From, To AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("scheduling: cannot transition from %s to %s", e.From, e.To)
}

// Appointment is a booked slot against a tenant service.
type Appointment struct {
	ID           string            `json:"id"`
	TenantID     string            `json:"tenantId"`
	ServiceID    string            `json:"serviceId"`
	LeadID       *string           `json:"leadId"`
	ContactName  string            `json:"contactName"`
	ContactEmail string            `json:"contactEmail"`
	ContactPhone string            `json:"contactPhone"`
	StartsAt     time.Time         `json:"startsAt"`
	Status       AppointmentStatus `json:"status"`
	Notes        string            `json:"notes"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// CreateServiceRequest is the admin payload for a new service.
type CreateServiceRequest struct {
	TenantID    string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DurationMin int    `json:"duration"`
	PriceCents  int    `json:"price"`
}

func (r *CreateServiceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.DurationMin <= 0 {
		return ErrInvalidService
	}
	return nil
}

// UpdateServiceRequest carries optional fields; nil means leave unchanged.
type UpdateServiceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	DurationMin *int    `json:"duration"`
	PriceCents  *int    `json:"price"`
	Active      *bool   `json:"active"`
}

// CreateAppointmentRequest is the payload for a new booking.
type CreateAppointmentRequest struct {
	TenantID     string    `json:"-"`
	ServiceID    string    `json:"serviceId"`
	LeadID       *string   `json:"leadId"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	ContactPhone string    `json:"contactPhone"`
	StartsAt     time.Time `json:"startsAt"`
	Notes        string    `json:"notes"`
}

func (r *CreateAppointmentRequest) Validate() error {
	if r.ServiceID == "" || strings.TrimSpace(r.ContactName) == "" || r.StartsAt.IsZero() {
		return ErrInvalidAppointment
	}
	return nil
}
