package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Queue is the message transport for platform events.
type Queue interface {
	// Send enqueues one message body.
	Send(ctx context.Context, body string) error
	// Receive returns up to max message bodies, blocking briefly when the
	// queue is empty.
	Receive(ctx context.Context, max int) ([]string, error)
}

// sqsAPI is the slice of the SQS client the queue needs.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue sends and receives through an AWS SQS queue.
type SQSQueue struct {
	client   sqsAPI
	queueURL string
}

func NewSQSQueue(client sqsAPI, queueURL string) *SQSQueue {
	if client == nil {
		panic("events: sqs client required")
	}
	return &SQSQueue{client: client, queueURL: queueURL}
}

func (q *SQSQueue) Send(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("events: sqs send failed: %w", err)
	}
	return nil
}

func (q *SQSQueue) Receive(ctx context.Context, max int) ([]string, error) {
	if max <= 0 || max > 10 {
		max = 10
	}
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     10,
	})
	if err != nil {
		return nil, fmt.Errorf("events: sqs receive failed: %w", err)
	}

	bodies := make([]string, 0, len(out.Messages))
	for _, msg := range out.Messages {
		if msg.Body != nil {
			bodies = append(bodies, *msg.Body)
		}
		if msg.ReceiptHandle != nil {
			_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(q.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			})
			if err != nil {
				return bodies, fmt.Errorf("events: sqs delete failed: %w", err)
			}
		}
	}
	return bodies, nil
}

// MemoryQueue is an in-process Queue for tests and single-instance
// deployments.
type MemoryQueue struct {
	mu     sync.Mutex
	items  []string
	signal chan struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{signal: make(chan struct{}, 1)}
}

func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	q.mu.Lock()
	q.items = append(q.items, body)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Receive(ctx context.Context, max int) ([]string, error) {
	if max <= 0 {
		max = 10
	}
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			n := max
			if n > len(q.items) {
				n = len(q.items)
			}
			out := append([]string(nil), q.items[:n]...)
			q.items = q.items[n:]
			q.mu.Unlock()
			return out, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.signal:
		}
	}
}
