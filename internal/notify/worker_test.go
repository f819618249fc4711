package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitchat/platform/internal/events"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	to    []string
	fails error
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails != nil {
		return s.fails
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, subject)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func enqueueLeadEvent(t *testing.T, q events.Queue, event events.LeadCreatedV1) {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, q.Send(context.Background(), string(body)))
}

func TestWorkerSendsNotification(t *testing.T) {
	q := events.NewMemoryQueue()
	sender := &recordingSender{}
	w := NewWorker(q, sender, StaticRecipient("owner@example.com"), nil)

	enqueueLeadEvent(t, q, events.LeadCreatedV1{
		Type:     events.TypeLeadCreatedV1,
		TenantID: "tenant-1",
		LeadID:   "lead-1",
		Name:     "Jordan",
		Score:    82,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"owner@example.com"}, sender.to)
	assert.Contains(t, sender.sent[0], "Jordan")
}

// brokenQueue fails every receive and counts the attempts.
type brokenQueue struct {
	mu       sync.Mutex
	receives int
}

func (q *brokenQueue) Send(ctx context.Context, body string) error { return nil }

func (q *brokenQueue) Receive(ctx context.Context, max int) ([]string, error) {
	q.mu.Lock()
	q.receives++
	q.mu.Unlock()
	return nil, errors.New("queue unreachable")
}

func (q *brokenQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.receives
}

func TestWorkerBacksOffOnReceiveFailure(t *testing.T) {
	q := &brokenQueue{}
	sender := &recordingSender{}
	w := NewWorker(q, sender, StaticRecipient("owner@example.com"), nil)
	w.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// The first failure parks the loop in its backoff instead of spinning.
	require.Eventually(t, func() bool { return q.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, q.count())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop during backoff")
	}
}

func TestWorkerSkipsUnknownEventType(t *testing.T) {
	q := events.NewMemoryQueue()
	sender := &recordingSender{}
	w := NewWorker(q, sender, StaticRecipient("owner@example.com"), nil)

	require.NoError(t, q.Send(context.Background(), `{"type":"something.else.v1"}`))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	w.Run(ctx)

	assert.Zero(t, sender.count())
}

func TestWorkerSkipsEmptyRecipient(t *testing.T) {
	q := events.NewMemoryQueue()
	sender := &recordingSender{}
	w := NewWorker(q, sender, StaticRecipient(""), nil)

	enqueueLeadEvent(t, q, events.LeadCreatedV1{Type: events.TypeLeadCreatedV1, TenantID: "tenant-1", LeadID: "lead-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	w.Run(ctx)

	assert.Zero(t, sender.count())
}
