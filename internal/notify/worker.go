package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orbitchat/platform/internal/events"
	"github.com/orbitchat/platform/pkg/logging"
)

// receiveBackoff is how long the worker waits after a failed Receive
// before polling again, so a queue outage does not spin the loop.
const receiveBackoff = 5 * time.Second

// RecipientResolver maps a tenant to its lead-notification address. An
// empty address skips the notification.
type RecipientResolver func(ctx context.Context, tenantID string) (string, error)

// StaticRecipient resolves every tenant to one address. Used when
// per-tenant routing is not configured.
func StaticRecipient(email string) RecipientResolver {
	return func(ctx context.Context, tenantID string) (string, error) {
		return email, nil
	}
}

// Worker drains the lead event queue and emails tenants about new leads.
type Worker struct {
	queue     events.Queue
	sender    EmailSender
	recipient RecipientResolver
	backoff   time.Duration
	logger    *logging.Logger
}

func NewWorker(queue events.Queue, sender EmailSender, recipient RecipientResolver, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("notify: queue required")
	}
	if sender == nil {
		panic("notify: email sender required")
	}
	if recipient == nil {
		panic("notify: recipient resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{queue: queue, sender: sender, recipient: recipient, backoff: receiveBackoff, logger: logger}
}

// Run consumes events until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("lead notification worker started")
	for {
		bodies, err := w.queue.Receive(ctx, 10)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("lead notification worker stopped")
				return
			}
			w.logger.Error("failed to receive lead events", "error", err)
			select {
			case <-ctx.Done():
				w.logger.Info("lead notification worker stopped")
				return
			case <-time.After(w.backoff):
			}
			continue
		}
		for _, body := range bodies {
			if err := w.handle(ctx, body); err != nil {
				w.logger.Error("failed to handle lead event", "error", err)
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, body string) error {
	var event events.LeadCreatedV1
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return fmt.Errorf("notify: decode event: %w", err)
	}
	if event.Type != events.TypeLeadCreatedV1 {
		w.logger.Warn("skipping unknown event type", "type", event.Type)
		return nil
	}

	to, err := w.recipient(ctx, event.TenantID)
	if err != nil {
		return fmt.Errorf("notify: resolve recipient: %w", err)
	}
	if to == "" {
		return nil
	}

	subject := fmt.Sprintf("New chatbot lead: %s", displayName(event))
	msg := fmt.Sprintf(
		"A new lead was captured by your chatbot.\n\nName: %s\nEmail: %s\nPhone: %s\nScore: %d/100\nSource: %s\n",
		event.Name, event.Email, event.Phone, event.Score, event.Source,
	)
	if err := w.sender.Send(ctx, to, subject, msg); err != nil {
		return err
	}
	w.logger.Info("lead notification sent", "tenant_id", event.TenantID, "lead_id", event.LeadID)
	return nil
}

func displayName(event events.LeadCreatedV1) string {
	if event.Name != "" {
		return event.Name
	}
	if event.Email != "" {
		return event.Email
	}
	return event.LeadID
}
