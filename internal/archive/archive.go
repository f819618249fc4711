package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/orbitchat/platform/internal/conversation"
	"github.com/orbitchat/platform/pkg/logging"
)

// TrainingRecord is the snapshot written to the training bucket. Archived
// transcripts feed chatbot tuning and answer-quality review.
type TrainingRecord struct {
	TenantID       string                         `json:"tenantId"`
	ChatbotID      string                         `json:"chatbotId"`
	ConversationID string                         `json:"conversationId"`
	SessionID      string                         `json:"sessionId"`
	Transcript     []conversation.TranscriptEntry `json:"transcript"`
	ArchivedAt     time.Time                      `json:"archivedAt"`
}

// Archiver persists training records.
type Archiver interface {
	Archive(ctx context.Context, record TrainingRecord) error
}

// s3API is the slice of the S3 client the archiver needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes one JSON object per conversation snapshot, keyed by
// tenant and conversation so training jobs can list per tenant.
type S3Archiver struct {
	client s3API
	bucket string
	logger *logging.Logger
}

func NewS3Archiver(client s3API, bucket string, logger *logging.Logger) *S3Archiver {
	if client == nil {
		panic("archive: s3 client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Archiver{client: client, bucket: bucket, logger: logger}
}

func (a *S3Archiver) Archive(ctx context.Context, record TrainingRecord) error {
	if record.ArchivedAt.IsZero() {
		record.ArchivedAt = time.Now().UTC()
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("archive: encode record: %w", err)
	}

	key := fmt.Sprintf("training/%s/%s/%s.json",
		record.TenantID, record.ChatbotID, record.ConversationID)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: put object: %w", err)
	}
	a.logger.Debug("conversation archived", "key", key)
	return nil
}

// NopArchiver discards records. Used when no training bucket is configured.
type NopArchiver struct{}

func (NopArchiver) Archive(ctx context.Context, record TrainingRecord) error { return nil }
