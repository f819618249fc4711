package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/orbitchat/platform/internal/tenancy"
	"github.com/orbitchat/platform/pkg/logging"
)

// Handler serves the admin conversation readout endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /admin/tenants/{tenantID}/conversations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	convs, err := h.store.ListByTenant(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list conversations", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list conversations", http.StatusInternalServerError)
		return
	}
	if convs == nil {
		convs = []*Conversation{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"conversations": convs})
}

// Get handles GET /admin/tenants/{tenantID}/conversations/{conversationID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	conversationID := chi.URLParam(r, "conversationID")

	conv, err := h.store.GetByID(r.Context(), tenantID, conversationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load conversation", "error", err, "conversation_id", conversationID)
		http.Error(w, "failed to load conversation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(conv)
}
