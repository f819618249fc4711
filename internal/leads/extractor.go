package leads

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbitchat/platform/internal/conversation"
	"github.com/orbitchat/platform/internal/llm"
	"github.com/orbitchat/platform/pkg/logging"
)

// Announcer is notified after a lead is captured. The chat pipeline wires
// the event publisher here; nil disables announcements.
type Announcer interface {
	LeadCaptured(ctx context.Context, lead *Lead)
}

// extraction is the structured payload the model is asked to return.
type extraction struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Company   string   `json:"company"`
	Interests []string `json:"interests"`
	Notes     string   `json:"notes"`
}

// Extractor watches chat transcripts for contact details and captures
// qualified visitors as leads. Every failure inside the routine is logged
// and swallowed; extraction must never affect the user-visible reply.
type Extractor struct {
	client        llm.Client
	repo          Repository
	announcer     Announcer
	minTranscript int
	logger        *logging.Logger
}

// NewExtractor builds an extractor. minTranscript is the number of
// transcript entries required before extraction runs; non-positive values
// fall back to 4 (two user/assistant turn-pairs).
func NewExtractor(client llm.Client, repo Repository, announcer Announcer, minTranscript int, logger *logging.Logger) *Extractor {
	if client == nil {
		panic("leads: llm client required")
	}
	if repo == nil {
		panic("leads: repository required")
	}
	if minTranscript <= 0 {
		minTranscript = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{
		client:        client,
		repo:          repo,
		announcer:     announcer,
		minTranscript: minTranscript,
		logger:        logger,
	}
}

// MaybeExtract runs the capture routine for one conversation and returns
// the captured lead, or nil when nothing was captured. Short transcripts
// are skipped entirely, including the extraction model call.
func (e *Extractor) MaybeExtract(ctx context.Context, tenantID, chatbotID, sessionID string, transcript []conversation.TranscriptEntry) *Lead {
	if len(transcript) < e.minTranscript {
		return nil
	}

	ext, err := e.extract(ctx, transcript)
	if err != nil {
		e.logger.Warn("lead extraction failed", "error", err, "tenant_id", tenantID, "session_id", sessionID)
		return nil
	}

	// No identity means no lead: pure interest signal is not captured.
	if ext.Name == "" && ext.Email == "" && ext.Phone == "" {
		return nil
	}

	existing, err := e.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		e.logger.Warn("lead dedup lookup failed", "error", err, "tenant_id", tenantID)
		return nil
	}
	for _, l := range existing {
		// Dashboard-entered emails keep their casing; compare fold.
		if (ext.Email != "" && strings.EqualFold(l.Email, ext.Email)) ||
			(ext.Phone != "" && l.Phone == ext.Phone) {
			return nil
		}
	}

	sc, err := e.score(ctx, ext)
	if err != nil {
		// Scoring failure never blocks capture.
		e.logger.Warn("lead scoring failed, using neutral score", "error", err, "tenant_id", tenantID)
		sc = Scoring{Score: 50, Rationale: "scoring unavailable: " + err.Error()}
	}
	if sc.Score < 0 {
		sc.Score = 0
	}
	if sc.Score > 100 {
		sc.Score = 100
	}

	lead, err := e.repo.Create(ctx, &CreateRequest{
		TenantID:  tenantID,
		ChatbotID: chatbotID,
		Name:      ext.Name,
		Email:     ext.Email,
		Phone:     ext.Phone,
		Company:   ext.Company,
		Source:    "chatbot",
		Score:     sc.Score,
		Notes:     ext.Notes,
		Metadata: Metadata{
			SessionID: sessionID,
			Interests: ext.Interests,
			Scoring:   &sc,
		},
	})
	if err != nil {
		e.logger.Warn("lead create failed", "error", err, "tenant_id", tenantID)
		return nil
	}

	e.logger.Info("lead captured from chat",
		"tenant_id", tenantID, "lead_id", lead.ID, "score", lead.Score)
	if e.announcer != nil {
		e.announcer.LeadCaptured(ctx, lead)
	}
	return lead
}

const extractionSystemPrompt = `You extract contact details from a website chat transcript. ` +
	`Return ONLY a JSON object with the keys "name", "email", "phone", "company", ` +
	`"interests" (array of strings), and "notes". Use empty strings or empty arrays ` +
	`for anything the visitor did not share. Do not invent details.`

func (e *Extractor) extract(ctx context.Context, transcript []conversation.TranscriptEntry) (extraction, error) {
	var sb strings.Builder
	for _, entry := range transcript {
		fmt.Fprintf(&sb, "%s: %s\n", entry.Role, entry.Text)
	}

	resp, err := e.client.Complete(ctx, llm.Request{
		System: []string{extractionSystemPrompt},
		Messages: []llm.ChatMessage{
			{Role: llm.ChatRoleUser, Content: sb.String()},
		},
		MaxTokens:   500,
		Temperature: -1,
	})
	if err != nil {
		return extraction{}, fmt.Errorf("leads: extraction call failed: %w", err)
	}

	var ext extraction
	if err := llm.DecodeJSON(resp.Text, &ext); err != nil {
		return extraction{}, err
	}
	ext.Name = strings.TrimSpace(ext.Name)
	ext.Email = strings.ToLower(strings.TrimSpace(ext.Email))
	ext.Phone = strings.TrimSpace(ext.Phone)
	return ext, nil
}

const scoringSystemPrompt = `You score sales leads. Given the contact details below, return ONLY a ` +
	`JSON object with "score" (integer 0-100, likelihood of conversion), "rationale" ` +
	`(one or two sentences), and "recommendedActions" (array of short follow-up steps).`

func (e *Extractor) score(ctx context.Context, ext extraction) (Scoring, error) {
	prompt := fmt.Sprintf(
		"Name: %s\nEmail: %s\nPhone: %s\nCompany: %s\nInterests: %s\nNotes: %s",
		ext.Name, ext.Email, ext.Phone, ext.Company, strings.Join(ext.Interests, ", "), ext.Notes,
	)

	resp, err := e.client.Complete(ctx, llm.Request{
		System: []string{scoringSystemPrompt},
		Messages: []llm.ChatMessage{
			{Role: llm.ChatRoleUser, Content: prompt},
		},
		MaxTokens:   300,
		Temperature: -1,
	})
	if err != nil {
		return Scoring{}, fmt.Errorf("leads: scoring call failed: %w", err)
	}

	var sc Scoring
	if err := llm.DecodeJSON(resp.Text, &sc); err != nil {
		return Scoring{}, err
	}
	return sc, nil
}
