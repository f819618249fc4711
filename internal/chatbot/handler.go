package chatbot

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbitchat/platform/internal/tenancy"
	"github.com/orbitchat/platform/pkg/logging"
)

// Handler serves public widget configuration and admin chatbot CRUD.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a chatbot handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// GetPublicConfig handles GET /chatbot/{chatbotID}/config.
// Inactive and missing chatbots both return 404 so that embedding sites
// cannot distinguish the two.
func (h *Handler) GetPublicConfig(w http.ResponseWriter, r *http.Request) {
	chatbotID := chi.URLParam(r, "chatbotID")

	bot, err := h.repo.GetByID(r.Context(), chatbotID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "chatbot not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load chatbot config", "error", err, "chatbot_id", chatbotID)
		http.Error(w, "failed to load chatbot", http.StatusInternalServerError)
		return
	}
	if !bot.Active {
		http.Error(w, "chatbot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(bot.Public())
}

// List handles GET /admin/tenants/{tenantID}/chatbots.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	bots, err := h.repo.ListByTenant(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list chatbots", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list chatbots", http.StatusInternalServerError)
		return
	}
	if bots == nil {
		bots = []*Chatbot{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"chatbots": bots})
}

// Create handles POST /admin/tenants/{tenantID}/chatbots.
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

	bot, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create chatbot", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to create chatbot", http.StatusInternalServerError)
		return
	}

	h.logger.Info("chatbot created", "chatbot_id", bot.ID, "tenant_id", tenantID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(bot)
}

// Update handles PUT /admin/tenants/{tenantID}/chatbots/{chatbotID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	chatbotID := chi.URLParam(r, "chatbotID")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	bot, err := h.repo.Update(r.Context(), tenantID, chatbotID, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "chatbot not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update chatbot", "error", err, "chatbot_id", chatbotID)
		http.Error(w, "failed to update chatbot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(bot)
}
