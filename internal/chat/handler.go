package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orbitchat/platform/internal/conversation"
	"github.com/orbitchat/platform/pkg/logging"
)

// Handler serves the public, unauthenticated chat endpoints. These are
// embedded in third-party websites, so apart from the chatbot-not-found
// case every failure must come back as a schema-conforming JSON body.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("chat: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// PostMessage handles POST /chat/{chatbotID}.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	chatbotID := chi.URLParam(r, "chatbotID")

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("chat handler panicked", "panic", rec, "chatbot_id", chatbotID)
			writeChatJSON(w, http.StatusOK, &MessageResponse{
				Response:  apologyReply,
				SessionID: req.SessionID,
				Error:     true,
			})
		}
	}()

	resp, err := h.service.ProcessMessage(r.Context(), chatbotID, req)
	if err != nil {
		if errors.Is(err, ErrChatbotNotFound) {
			http.Error(w, "chatbot not found", http.StatusNotFound)
			return
		}
		// ProcessMessage absorbs everything else; this path should not be
		// reachable, but degrade to the apology contract regardless.
		h.logger.Error("unexpected chat pipeline error", "error", err, "chatbot_id", chatbotID)
		writeChatJSON(w, http.StatusOK, &MessageResponse{
			Response:  apologyReply,
			SessionID: req.SessionID,
			Error:     true,
		})
		return
	}

	writeChatJSON(w, http.StatusOK, resp)
}

// PostRating handles POST /chat/{chatbotID}/rating.
func (h *Handler) PostRating(w http.ResponseWriter, r *http.Request) {
	chatbotID := chi.URLParam(r, "chatbotID")

	var req struct {
		SessionID string `json:"sessionId"`
		Rating    int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	err := h.service.RateSession(r.Context(), chatbotID, req.SessionID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, ErrChatbotNotFound):
			http.Error(w, "chatbot not found", http.StatusNotFound)
		case errors.Is(err, conversation.ErrInvalidRating):
			http.Error(w, "rating must be between 1 and 5", http.StatusBadRequest)
		case errors.Is(err, conversation.ErrNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to record rating", "error", err, "chatbot_id", chatbotID)
			http.Error(w, "failed to record rating", http.StatusInternalServerError)
		}
		return
	}

	writeChatJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeChatJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
