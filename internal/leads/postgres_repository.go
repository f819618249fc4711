package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the pgx surface the repository needs; satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores leads in the relational database with the
// metadata column held as JSONB.
type PostgresRepository struct {
	db Querier
}

func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("leads: pgx querier required")
	}
	return &PostgresRepository{db: db}
}

const leadColumns = `id, tenant_id, chatbot_id, name, email, phone, company, source, score, status, notes, metadata, created_at, updated_at`

func (r *PostgresRepository) GetByID(ctx context.Context, tenantID, id string) (*Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE tenant_id = $1 AND id = $2
	`
	return scanLead(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string) ([]*Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	metadataJSON, err := json.Marshal(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("leads: marshal metadata: %w", err)
	}

	// Manual leads have no originating chatbot; keep the column NULL.
	var chatbotID any
	if req.ChatbotID != "" {
		chatbotID = req.ChatbotID
	}

	id := uuid.New()
	query := `
		INSERT INTO leads (id, tenant_id, chatbot_id, name, email, phone, company, source, score, status, notes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.TenantID,
		chatbotID,
		req.Name,
		req.Email,
		req.Phone,
		req.Company,
		req.Source,
		req.Score,
		StatusNew,
		req.Notes,
		metadataJSON,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return &Lead{
		ID:        id.String(),
		TenantID:  req.TenantID,
		ChatbotID: req.ChatbotID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Source:    req.Source,
		Score:     req.Score,
		Status:    StatusNew,
		Notes:     req.Notes,
		Metadata:  req.Metadata,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, tenantID, id string, status Status) (*Lead, error) {
	current, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !ValidTransition(current.Status, status) {
		return nil, &InvalidTransitionError{From: current.Status, To: status}
	}

	query := `
		UPDATE leads
		SET status = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + leadColumns + `
	`
	return scanLead(r.db.QueryRow(ctx, query, tenantID, id, status))
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead         Lead
		chatbotID    *string
		metadataJSON []byte
	)
	if err := row.Scan(
		&lead.ID,
		&lead.TenantID,
		&chatbotID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.Source,
		&lead.Score,
		&lead.Status,
		&lead.Notes,
		&metadataJSON,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leads: scan failed: %w", err)
	}
	if chatbotID != nil {
		lead.ChatbotID = *chatbotID
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &lead.Metadata); err != nil {
			return nil, fmt.Errorf("leads: decode metadata: %w", err)
		}
	}
	return &lead, nil
}
