package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orbitchat/platform/internal/chat"
	"github.com/orbitchat/platform/internal/chatbot"
	"github.com/orbitchat/platform/internal/conversation"
	"github.com/orbitchat/platform/internal/http/middleware"
	"github.com/orbitchat/platform/internal/knowledge"
	"github.com/orbitchat/platform/internal/leads"
	"github.com/orbitchat/platform/internal/scheduling"
	"github.com/orbitchat/platform/pkg/logging"
)

// Config collects the handlers and cross-cutting pieces the router mounts.
type Config struct {
	Chat          *chat.Handler
	Chatbots      *chatbot.Handler
	Conversations *conversation.Handler
	Knowledge     *knowledge.Handler
	Leads         *leads.Handler
	Scheduling    *scheduling.Handler

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	ChatRateLimiter    *middleware.RateLimiter
	MetricsRegistry    *prometheus.Registry
	Logger             *logging.Logger
}

// NewRouter assembles the public chat surface and the JWT-protected admin
// API.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	// Public widget surface.
	r.Group(func(r chi.Router) {
		if cfg.ChatRateLimiter != nil {
			r.Use(cfg.ChatRateLimiter.Middleware)
		}
		r.Post("/chat/{chatbotID}", cfg.Chat.PostMessage)
		r.Post("/chat/{chatbotID}/rating", cfg.Chat.PostRating)
		r.Get("/chatbot/{chatbotID}/config", cfg.Chatbots.GetPublicConfig)
	})

	// Tenant-scoped admin API.
	r.Route("/admin/tenants/{tenantID}", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminJWTSecret))

		r.Get("/chatbots", cfg.Chatbots.List)
		r.Post("/chatbots", cfg.Chatbots.Create)
		r.Put("/chatbots/{chatbotID}", cfg.Chatbots.Update)

		r.Get("/conversations", cfg.Conversations.List)
		r.Get("/conversations/{conversationID}", cfg.Conversations.Get)

		r.Get("/knowledge", cfg.Knowledge.ListEntries)
		r.Post("/knowledge", cfg.Knowledge.CreateEntry)
		r.Put("/knowledge/{entryID}", cfg.Knowledge.UpdateEntry)
		r.Delete("/knowledge/{entryID}", cfg.Knowledge.DeleteEntry)

		r.Get("/content", cfg.Knowledge.ListContent)
		r.Post("/content", cfg.Knowledge.CreateContent)
		r.Delete("/content/{contentID}", cfg.Knowledge.DeleteContent)

		r.Get("/leads", cfg.Leads.List)
		r.Post("/leads", cfg.Leads.Create)
		r.Patch("/leads/{leadID}/status", cfg.Leads.UpdateStatus)

		r.Get("/services", cfg.Scheduling.ListServices)
		r.Post("/services", cfg.Scheduling.CreateService)
		r.Put("/services/{serviceID}", cfg.Scheduling.UpdateService)

		r.Get("/appointments", cfg.Scheduling.ListAppointments)
		r.Post("/appointments", cfg.Scheduling.CreateAppointment)
		r.Patch("/appointments/{appointmentID}/status", cfg.Scheduling.UpdateAppointmentStatus)
	})

	return r
}
