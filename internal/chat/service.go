package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/orbitchat/platform/internal/archive"
	"github.com/orbitchat/platform/internal/chatbot"
	"github.com/orbitchat/platform/internal/conversation"
	"github.com/orbitchat/platform/internal/knowledge"
	"github.com/orbitchat/platform/internal/leads"
	"github.com/orbitchat/platform/internal/observability"
	"github.com/orbitchat/platform/internal/scheduling"
	"github.com/orbitchat/platform/pkg/logging"
)

// ErrChatbotNotFound is the only error the pipeline surfaces to the
// transport layer; everything else degrades to a schema-conforming
// response.
var ErrChatbotNotFound = errors.New("chat: chatbot not found")

// apologyReply is served when the pipeline fails unexpectedly.
const apologyReply = "I'm sorry, something went wrong on our end. Please try again shortly."

// MessageRequest is the public chat payload.
type MessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// MessageResponse is returned for every processed message. On internal
// failure only Response, SessionID, and Error are populated.
type MessageResponse struct {
	Response           string              `json:"response"`
	SessionID          string              `json:"sessionId"`
	ConversationID     string              `json:"conversationId,omitempty"`
	AppointmentOptions []scheduling.Option `json:"appointmentOptions"`
	Suggestions        []string            `json:"suggestions,omitempty"`
	Error              bool                `json:"error,omitempty"`
}

// Service orchestrates the message pipeline: resolve chatbot, resolve
// session, assemble context, generate the reply, persist the transcript,
// then run the best-effort extraction and intent steps.
type Service struct {
	chatbots  chatbot.Repository
	convs     conversation.Store
	locker    conversation.Locker
	assembler *knowledge.Assembler
	generator *Generator
	extractor *leads.Extractor
	services  scheduling.Repository
	archiver  archive.Archiver
	metrics   *observability.Metrics
	tracer    trace.Tracer
	logger    *logging.Logger
}

// Config wires the pipeline's collaborators. Extractor and Archiver are
// optional; everything else is required.
type Config struct {
	Chatbots      chatbot.Repository
	Conversations conversation.Store
	Locker        conversation.Locker
	Assembler     *knowledge.Assembler
	Generator     *Generator
	Extractor     *leads.Extractor
	Scheduling    scheduling.Repository
	Archiver      archive.Archiver
	Metrics       *observability.Metrics
	Logger        *logging.Logger
}

func NewService(cfg Config) *Service {
	if cfg.Chatbots == nil || cfg.Conversations == nil || cfg.Locker == nil ||
		cfg.Assembler == nil || cfg.Generator == nil || cfg.Scheduling == nil {
		panic("chat: missing required pipeline dependency")
	}
	if cfg.Archiver == nil {
		cfg.Archiver = archive.NopArchiver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		chatbots:  cfg.Chatbots,
		convs:     cfg.Conversations,
		locker:    cfg.Locker,
		assembler: cfg.Assembler,
		generator: cfg.Generator,
		extractor: cfg.Extractor,
		services:  cfg.Scheduling,
		archiver:  cfg.Archiver,
		metrics:   cfg.Metrics,
		tracer:    otel.Tracer("orbitchat/chat"),
		logger:    cfg.Logger,
	}
}

// ProcessMessage runs one chat turn. The only returned error is
// ErrChatbotNotFound; any other failure after chatbot resolution produces
// an apology response with the error flag set.
func (s *Service) ProcessMessage(ctx context.Context, chatbotID string, req MessageRequest) (*MessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "chat.ProcessMessage",
		trace.WithAttributes(attribute.String("chatbot.id", chatbotID)))
	defer span.End()

	bot, err := s.chatbots.GetByID(ctx, chatbotID)
	if err != nil {
		if errors.Is(err, chatbot.ErrNotFound) {
			return nil, ErrChatbotNotFound
		}
		s.logger.Error("failed to resolve chatbot", "error", err, "chatbot_id", chatbotID)
		return s.apology(chatbotID, req.SessionID), nil
	}
	if !bot.Active {
		return nil, ErrChatbotNotFound
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("chat.session_id", sessionID))

	if s.metrics != nil {
		s.metrics.MessagesTotal.WithLabelValues(chatbotID).Inc()
	}

	resp, err := s.runPipeline(ctx, bot, sessionID, req.Message)
	if err != nil {
		s.logger.Error("chat pipeline failed", "error", err,
			"chatbot_id", chatbotID, "session_id", sessionID)
		return s.apology(chatbotID, sessionID), nil
	}
	return resp, nil
}

func (s *Service) runPipeline(ctx context.Context, bot *chatbot.Chatbot, sessionID, message string) (*MessageResponse, error) {
	// Per-session serialization closes the race between two rapid messages
	// on the same session interleaving transcript writes.
	release, err := s.locker.Acquire(ctx, bot.ID, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	conv, _, err := s.convs.GetOrCreateBySession(ctx, bot.TenantID, bot.ID, sessionID)
	if err != nil {
		return nil, err
	}

	pc, err := s.assembler.BuildContext(ctx, bot.TenantID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, fellBack := s.generator.GenerateReply(ctx, bot.Name, pc, message)
	if s.metrics != nil {
		s.metrics.GenerationSeconds.Observe(time.Since(start).Seconds())
		if fellBack {
			s.metrics.GenerationFallback.WithLabelValues(bot.ID).Inc()
		}
	}

	now := time.Now().UTC()
	userEntry := conversation.TranscriptEntry{Role: conversation.RoleUser, Text: message, Timestamp: now}
	assistantEntry := conversation.TranscriptEntry{Role: conversation.RoleAssistant, Text: reply, Timestamp: now}
	if err := s.convs.AppendTurn(ctx, conv.ID, userEntry, assistantEntry); err != nil {
		return nil, err
	}
	transcript := append(conv.Transcript, userEntry, assistantEntry)

	// The context has now been served into a persisted turn; record which
	// entries it carried.
	s.assembler.RecordUsage(ctx, bot.TenantID, pc.EntryIDs)

	if s.extractor != nil {
		if lead := s.extractor.MaybeExtract(ctx, bot.TenantID, bot.ID, sessionID, transcript); lead != nil {
			if err := s.convs.AttachLead(ctx, conv.ID, lead.ID); err != nil {
				s.logger.Warn("failed to attach lead to conversation",
					"error", err, "conversation_id", conv.ID, "lead_id", lead.ID)
			}
		}
	}

	var options []scheduling.Option
	if DetectAppointmentIntent(message) {
		services, err := s.services.ListActiveServices(ctx, bot.TenantID)
		if err != nil {
			// Options are an enrichment; the reply stands without them.
			s.logger.Warn("failed to load services for appointment intent",
				"error", err, "tenant_id", bot.TenantID)
		} else {
			options = make([]scheduling.Option, 0, len(services))
			for _, svc := range services {
				options = append(options, svc.Option())
			}
		}
	}

	if err := s.archiver.Archive(ctx, archive.TrainingRecord{
		TenantID:       bot.TenantID,
		ChatbotID:      bot.ID,
		ConversationID: conv.ID,
		SessionID:      sessionID,
		Transcript:     transcript,
	}); err != nil {
		s.logger.Warn("failed to archive conversation", "error", err, "conversation_id", conv.ID)
	}

	return &MessageResponse{
		Response:           reply,
		SessionID:          sessionID,
		ConversationID:     conv.ID,
		AppointmentOptions: options,
		Suggestions:        BuildSuggestions(pc.KnowledgeBase),
	}, nil
}

// RateSession records a 1-5 visitor rating against the session's
// conversation.
func (s *Service) RateSession(ctx context.Context, chatbotID, sessionID string, rating int) error {
	bot, err := s.chatbots.GetByID(ctx, chatbotID)
	if err != nil {
		if errors.Is(err, chatbot.ErrNotFound) {
			return ErrChatbotNotFound
		}
		return err
	}
	if !bot.Active {
		return ErrChatbotNotFound
	}
	return s.convs.SetRating(ctx, bot.TenantID, chatbotID, sessionID, rating)
}

func (s *Service) apology(chatbotID, sessionID string) *MessageResponse {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if s.metrics != nil {
		s.metrics.PipelineFailures.WithLabelValues(chatbotID).Inc()
	}
	return &MessageResponse{
		Response:  apologyReply,
		SessionID: sessionID,
		Error:     true,
	}
}
