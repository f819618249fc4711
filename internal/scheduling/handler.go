package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbitchat/platform/internal/tenancy"
	"github.com/orbitchat/platform/pkg/logging"
)

// Handler serves the admin service and appointment endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListServices handles GET /admin/tenants/{tenantID}/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	services, err := h.repo.ListServices(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list services", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []*Service{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"services": services})
}

// CreateService handles POST /admin/tenants/{tenantID}/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.TenantID = tenantID

	svc, err := h.repo.CreateService(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidService) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create service", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(svc)
}

// UpdateService handles PUT /admin/tenants/{tenantID}/services/{serviceID}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	serviceID := chi.URLParam(r, "serviceID")

	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	svc, err := h.repo.UpdateService(r.Context(), tenantID, serviceID, &req)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update service", "error", err, "service_id", serviceID)
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(svc)
}

// ListAppointments handles GET /admin/tenants/{tenantID}/appointments.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	appts, err := h.repo.ListAppointments(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"appointments": appts})
}

// CreateAppointment handles POST /admin/tenants/{tenantID}/appointments.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.TenantID = tenantID

	appt, err := h.repo.CreateAppointment(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAppointment):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrServiceNotFound):
			http.Error(w, "service not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to create appointment", "error", err, "tenant_id", tenantID)
			http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appt)
}

// UpdateAppointmentStatus handles PATCH /admin/tenants/{tenantID}/appointments/{appointmentID}/status.
func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	appointmentID := chi.URLParam(r, "appointmentID")

	var req struct {
		Status AppointmentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.repo.UpdateAppointmentStatus(r.Context(), tenantID, appointmentID, req.Status)
	if err != nil {
		var transition *InvalidTransitionError
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		case errors.As(err, &transition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to update appointment", "error", err, "appointment_id", appointmentID)
			http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(appt)
}
