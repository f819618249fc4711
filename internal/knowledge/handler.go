package knowledge

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbitchat/platform/internal/tenancy"
	"github.com/orbitchat/platform/pkg/logging"
)

// Handler serves the admin knowledge-base and website-content endpoints.
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

// ListEntries handles GET /admin/tenants/{tenantID}/knowledge.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	entries, err := h.repo.ListEntries(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list kb entries", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*KBEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"entries": entries})
}

// CreateEntry handles POST /admin/tenants/{tenantID}/knowledge.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.TenantID = tenantID

	entry, err := h.repo.CreateEntry(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create kb entry", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to create entry", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(entry)
}

// UpdateEntry handles PUT /admin/tenants/{tenantID}/knowledge/{entryID}.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	entryID := chi.URLParam(r, "entryID")

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.repo.UpdateEntry(r.Context(), tenantID, entryID, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update kb entry", "error", err, "entry_id", entryID)
		http.Error(w, "failed to update entry", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entry)
}

// DeleteEntry handles DELETE /admin/tenants/{tenantID}/knowledge/{entryID}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	entryID := chi.URLParam(r, "entryID")

	if err := h.repo.DeleteEntry(r.Context(), tenantID, entryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete kb entry", "error", err, "entry_id", entryID)
		http.Error(w, "failed to delete entry", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListContent handles GET /admin/tenants/{tenantID}/content.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	contents, err := h.repo.ListContent(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list website content", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list content", http.StatusInternalServerError)
		return
	}
	if contents == nil {
		contents = []*WebsiteContent{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"content": contents})
}

// CreateContent handles POST /admin/tenants/{tenantID}/content.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.TenantID = tenantID

	content, err := h.repo.CreateContent(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidContent) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create website content", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to create content", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(content)
}

// DeleteContent handles DELETE /admin/tenants/{tenantID}/content/{contentID}.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	contentID := chi.URLParam(r, "contentID")

	if err := h.repo.DeleteContent(r.Context(), tenantID, contentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "content not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete website content", "error", err, "content_id", contentID)
		http.Error(w, "failed to delete content", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
