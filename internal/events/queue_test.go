package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitchat/platform/internal/leads"
)

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "one"))
	require.NoError(t, q.Send(ctx, "two"))

	bodies, err := q.Receive(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, bodies)
}

func TestMemoryQueueBlocksUntilSend(t *testing.T) {
	q := NewMemoryQueue()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := q.Receive(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPublisherEmitsLeadCreatedV1(t *testing.T) {
	q := NewMemoryQueue()
	p := NewPublisher(q, nil)

	p.LeadCaptured(context.Background(), &leads.Lead{
		ID:        "lead-1",
		TenantID:  "tenant-1",
		ChatbotID: "bot-1",
		Name:      "Jordan",
		Email:     "jordan@example.com",
		Score:     82,
		Source:    "chatbot",
	})

	bodies, err := q.Receive(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, bodies, 1)

	var event LeadCreatedV1
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &event))
	assert.Equal(t, TypeLeadCreatedV1, event.Type)
	assert.Equal(t, "lead-1", event.LeadID)
	assert.Equal(t, "bot-1", event.ChatbotID)
	assert.Equal(t, 82, event.Score)
}
