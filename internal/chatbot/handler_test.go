package chatbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitchat/platform/internal/tenancy"
	"github.com/orbitchat/platform/pkg/logging"
)

func newConfigRequest(chatbotID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/chatbot/"+chatbotID+"/config", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("chatbotID", chatbotID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPublicConfig_Active(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Seed(&Chatbot{
		ID:             "bot-1",
		TenantID:       "tenant-1",
		Name:           "Support Bot",
		WelcomeMessage: "Hi! How can I help?",
		Theme:          "dark",
		Active:         true,
	})
	h := NewHandler(repo, logging.New("error"))

	w := httptest.NewRecorder()
	h.GetPublicConfig(w, newConfigRequest("bot-1"))

	require.Equal(t, http.StatusOK, w.Code)

	var cfg PublicConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, "bot-1", cfg.ID)
	assert.Equal(t, "Support Bot", cfg.Name)
	assert.Equal(t, "Hi! How can I help?", cfg.WelcomeMessage)
	// The public payload must not leak the tenant id.
	assert.NotContains(t, w.Body.String(), "tenant-1")
}

func TestGetPublicConfig_InactiveIs404(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Seed(&Chatbot{ID: "bot-1", TenantID: "tenant-1", Name: "Bot", Active: false})
	h := NewHandler(repo, logging.New("error"))

	w := httptest.NewRecorder()
	h.GetPublicConfig(w, newConfigRequest("bot-1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPublicConfig_MissingIs404(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), logging.New("error"))

	w := httptest.NewRecorder()
	h.GetPublicConfig(w, newConfigRequest("nope"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAndList(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, logging.New("error"))

	body := `{"name":"Sales Bot","welcome_message":"Hello!","theme":"light"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/tenant-1/chatbots", strings.NewReader(body))
	req = req.WithContext(tenancy.WithTenantID(req.Context(), "tenant-1"))
	w := httptest.NewRecorder()

	h.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created Chatbot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Active)
	assert.Equal(t, "tenant-1", created.TenantID)

	listReq := httptest.NewRequest(http.MethodGet, "/admin/tenants/tenant-1/chatbots", nil)
	listReq = listReq.WithContext(tenancy.WithTenantID(listReq.Context(), "tenant-1"))
	lw := httptest.NewRecorder()
	h.List(lw, listReq)
	require.Equal(t, http.StatusOK, lw.Code)
	assert.Contains(t, lw.Body.String(), "Sales Bot")
}

func TestCreate_MissingName(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/tenant-1/chatbots", strings.NewReader(`{}`))
	req = req.WithContext(tenancy.WithTenantID(req.Context(), "tenant-1"))
	w := httptest.NewRecorder()

	h.Create(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdate_TenantScoped(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Seed(&Chatbot{ID: "bot-1", TenantID: "tenant-1", Name: "Bot", Active: true})
	h := NewHandler(repo, logging.New("error"))

	req := httptest.NewRequest(http.MethodPut, "/admin/tenants/tenant-2/chatbots/bot-1", strings.NewReader(`{"active":false}`))
	req = req.WithContext(tenancy.WithTenantID(req.Context(), "tenant-2"))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("chatbotID", "bot-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.Update(w, req)
	// Another tenant's chatbot must look like it does not exist.
	assert.Equal(t, http.StatusNotFound, w.Code)
}
