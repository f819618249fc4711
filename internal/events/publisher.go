package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/orbitchat/platform/internal/leads"
	"github.com/orbitchat/platform/pkg/logging"
)

// Publisher turns captured leads into queue events. It satisfies
// leads.Announcer; publish failures are logged, never surfaced, because
// event delivery must not affect the chat turn that captured the lead.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("events: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

func (p *Publisher) LeadCaptured(ctx context.Context, lead *leads.Lead) {
	event := LeadCreatedV1{
		Type:       TypeLeadCreatedV1,
		TenantID:   lead.TenantID,
		LeadID:     lead.ID,
		ChatbotID:  lead.ChatbotID,
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Score:      lead.Score,
		Source:     lead.Source,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode lead event", "error", err, "lead_id", lead.ID)
		return
	}
	if err := p.queue.Send(ctx, string(body)); err != nil {
		p.logger.Error("failed to publish lead event", "error", err, "lead_id", lead.ID)
	}
}
