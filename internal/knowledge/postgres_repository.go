package knowledge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the pgx surface the repository needs; satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores KB entries and scraped content in Postgres.
type PostgresRepository struct {
	db Querier
}

func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("knowledge: pgx querier required")
	}
	return &PostgresRepository{db: db}
}

const entryColumns = `id, tenant_id, question, answer, tags, active, usage_count, created_at, updated_at`

func (r *PostgresRepository) ListEntries(ctx context.Context, tenantID string) ([]*KBEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM kb_entries
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	return r.queryEntries(ctx, query, tenantID)
}

func (r *PostgresRepository) ListActiveEntries(ctx context.Context, tenantID string) ([]*KBEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM kb_entries
		WHERE tenant_id = $1 AND active = TRUE
		ORDER BY created_at
	`
	return r.queryEntries(ctx, query, tenantID)
}

func (r *PostgresRepository) queryEntries(ctx context.Context, query, tenantID string) ([]*KBEntry, error) {
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list entries failed: %w", err)
	}
	defer rows.Close()

	var out []*KBEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (*KBEntry, error) {
	var e KBEntry
	if err := row.Scan(
		&e.ID,
		&e.TenantID,
		&e.Question,
		&e.Answer,
		&e.Tags,
		&e.Active,
		&e.UsageCount,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("knowledge: scan entry failed: %w", err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

func (r *PostgresRepository) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*KBEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO kb_entries (id, tenant_id, question, answer, tags, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.TenantID,
		req.Question,
		req.Answer,
		req.Tags,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("knowledge: insert entry failed: %w", err)
	}

	return &KBEntry{
		ID:        id.String(),
		TenantID:  req.TenantID,
		Question:  req.Question,
		Answer:    req.Answer,
		Tags:      append([]string(nil), req.Tags...),
		Active:    true,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *PostgresRepository) UpdateEntry(ctx context.Context, tenantID, id string, req *UpdateEntryRequest) (*KBEntry, error) {
	query := `
		UPDATE kb_entries SET
			question = COALESCE($3, question),
			answer = COALESCE($4, answer),
			tags = COALESCE($5, tags),
			active = COALESCE($6, active),
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + entryColumns + `
	`
	var tags *[]string
	if req.Tags != nil {
		tags = req.Tags
	}
	row := r.db.QueryRow(ctx, query, id, tenantID, req.Question, req.Answer, tags, req.Active)
	return scanEntry(row)
}

func (r *PostgresRepository) DeleteEntry(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM kb_entries WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("knowledge: delete entry failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) IncrementUsage(ctx context.Context, tenantID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE kb_entries
		SET usage_count = usage_count + 1
		WHERE tenant_id = $1 AND id = ANY($2)
	`
	if _, err := r.db.Exec(ctx, query, tenantID, ids); err != nil {
		return fmt.Errorf("knowledge: increment usage failed: %w", err)
	}
	return nil
}

const contentColumns = `id, tenant_id, url, title, content, active, processed, created_at, updated_at`

func (r *PostgresRepository) ListContent(ctx context.Context, tenantID string) ([]*WebsiteContent, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM website_content
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list content failed: %w", err)
	}
	defer rows.Close()

	var out []*WebsiteContent
	for rows.Next() {
		var c WebsiteContent
		if err := rows.Scan(
			&c.ID,
			&c.TenantID,
			&c.URL,
			&c.Title,
			&c.Content,
			&c.Active,
			&c.Processed,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("knowledge: scan content failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateContent(ctx context.Context, req *CreateContentRequest) (*WebsiteContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO website_content (id, tenant_id, url, title, content, active, processed)
		VALUES ($1, $2, $3, $4, $5, TRUE, TRUE)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.TenantID,
		req.URL,
		req.Title,
		req.Content,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("knowledge: insert content failed: %w", err)
	}

	return &WebsiteContent{
		ID:        id.String(),
		TenantID:  req.TenantID,
		URL:       req.URL,
		Title:     req.Title,
		Content:   req.Content,
		Active:    true,
		Processed: true,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *PostgresRepository) DeleteContent(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM website_content WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("knowledge: delete content failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
