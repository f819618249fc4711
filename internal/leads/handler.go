package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/orbitchat/platform/internal/tenancy"
	"github.com/orbitchat/platform/pkg/logging"
)

// Handler serves the admin lead endpoints.
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

// List handles GET /admin/tenants/{tenantID}/leads.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	all, err := h.repo.ListByTenant(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	if status := Status(r.URL.Query().Get("status")); status != "" {
		filtered := make([]*Lead, 0, len(all))
		for _, lead := range all {
			if lead.Status == status {
				filtered = append(filtered, lead)
			}
		}
		all = filtered
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit, _ := strconv.Atoi(r.URL.Query().Get("limit")); limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	if all == nil {
		all = []*Lead{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"leads": all})
}

// Create handles POST /admin/tenants/{tenantID}/leads for manual entry.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.TenantID = tenantID
	if req.Source == "" {
		req.Source = "manual"
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrNoIdentity) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create lead", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to create lead", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(lead)
}

// UpdateStatus handles PATCH /admin/tenants/{tenantID}/leads/{leadID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	leadID := chi.URLParam(r, "leadID")

	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.repo.UpdateStatus(r.Context(), tenantID, leadID, req.Status)
	if err != nil {
		var transition *InvalidTransitionError
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "lead not found", http.StatusNotFound)
		case errors.As(err, &transition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to update lead status", "error", err, "lead_id", leadID)
			http.Error(w, "failed to update lead", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(lead)
}
