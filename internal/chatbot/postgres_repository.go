package chatbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the pgx query surface the repository needs; satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores chatbots in the relational database.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository initializes a repo backed by a pgx pool (or mock).
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("chatbot: pgx querier required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Chatbot, error) {
	query := `
		SELECT id, tenant_id, name, welcome_message, theme, active, created_at
		FROM chatbots
		WHERE id = $1
	`
	var bot Chatbot
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&bot.ID,
		&bot.TenantID,
		&bot.Name,
		&bot.WelcomeMessage,
		&bot.Theme,
		&bot.Active,
		&bot.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("chatbot: select failed: %w", err)
	}
	return &bot, nil
}

func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string) ([]*Chatbot, error) {
	query := `
		SELECT id, tenant_id, name, welcome_message, theme, active, created_at
		FROM chatbots
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("chatbot: list failed: %w", err)
	}
	defer rows.Close()

	var bots []*Chatbot
	for rows.Next() {
		var bot Chatbot
		if err := rows.Scan(
			&bot.ID,
			&bot.TenantID,
			&bot.Name,
			&bot.WelcomeMessage,
			&bot.Theme,
			&bot.Active,
			&bot.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("chatbot: scan failed: %w", err)
		}
		bots = append(bots, &bot)
	}
	return bots, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Chatbot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO chatbots (id, tenant_id, name, welcome_message, theme, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.TenantID,
		req.Name,
		req.WelcomeMessage,
		req.Theme,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("chatbot: insert failed: %w", err)
	}

	return &Chatbot{
		ID:             id.String(),
		TenantID:       req.TenantID,
		Name:           req.Name,
		WelcomeMessage: req.WelcomeMessage,
		Theme:          req.Theme,
		Active:         true,
		CreatedAt:      createdAt,
	}, nil
}

func (r *PostgresRepository) Update(ctx context.Context, tenantID, id string, req *UpdateRequest) (*Chatbot, error) {
	query := `
		UPDATE chatbots SET
			name = COALESCE($3, name),
			welcome_message = COALESCE($4, welcome_message),
			theme = COALESCE($5, theme),
			active = COALESCE($6, active)
		WHERE id = $1 AND tenant_id = $2
		RETURNING id, tenant_id, name, welcome_message, theme, active, created_at
	`
	var bot Chatbot
	if err := r.db.QueryRow(ctx, query,
		id,
		tenantID,
		req.Name,
		req.WelcomeMessage,
		req.Theme,
		req.Active,
	).Scan(
		&bot.ID,
		&bot.TenantID,
		&bot.Name,
		&bot.WelcomeMessage,
		&bot.Theme,
		&bot.Active,
		&bot.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("chatbot: update failed: %w", err)
	}
	return &bot, nil
}
