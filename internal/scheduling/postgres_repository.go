package scheduling

import (
	"context"
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

// PostgresRepository stores services and appointments in the relational
// database.
type PostgresRepository struct {
	db Querier
}

func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("scheduling: pgx querier required")
	}
	return &PostgresRepository{db: db}
}

const serviceColumns = `id, tenant_id, name, description, duration_min, price_cents, active, created_at, updated_at`

func (r *PostgresRepository) ListServices(ctx context.Context, tenantID string) ([]*Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	return r.queryServices(ctx, query, tenantID)
}

func (r *PostgresRepository) ListActiveServices(ctx context.Context, tenantID string) ([]*Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE tenant_id = $1 AND active = TRUE
		ORDER BY created_at
	`
	return r.queryServices(ctx, query, tenantID)
}

func (r *PostgresRepository) queryServices(ctx context.Context, query, tenantID string) ([]*Service, error) {
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list services failed: %w", err)
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	if err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.Description,
		&s.DurationMin,
		&s.PriceCents,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("scheduling: scan service failed: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) CreateService(ctx context.Context, req *CreateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO services (id, tenant_id, name, description, duration_min, price_cents, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.TenantID,
		req.Name,
		req.Description,
		req.DurationMin,
		req.PriceCents,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scheduling: insert service failed: %w", err)
	}

	return &Service{
		ID:          id.String(),
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Active:      true,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (r *PostgresRepository) UpdateService(ctx context.Context, tenantID, id string, req *UpdateServiceRequest) (*Service, error) {
	query := `
		UPDATE services SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			duration_min = COALESCE($5, duration_min),
			price_cents = COALESCE($6, price_cents),
			active = COALESCE($7, active),
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + serviceColumns + `
	`
	row := r.db.QueryRow(ctx, query, id, tenantID,
		req.Name, req.Description, req.DurationMin, req.PriceCents, req.Active)
	return scanService(row)
}

const appointmentColumns = `id, tenant_id, service_id, lead_id, contact_name, contact_email, contact_phone, starts_at, status, notes, created_at, updated_at`

func (r *PostgresRepository) ListAppointments(ctx context.Context, tenantID string) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1
		ORDER BY starts_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list appointments failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a      Appointment
		leadID *string
	)
	if err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.ServiceID,
		&leadID,
		&a.ContactName,
		&a.ContactEmail,
		&a.ContactPhone,
		&a.StartsAt,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("scheduling: scan appointment failed: %w", err)
	}
	a.LeadID = leadID
	return &a, nil
}

func (r *PostgresRepository) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO appointments (id, tenant_id, service_id, lead_id, contact_name, contact_email, contact_phone, starts_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.TenantID,
		req.ServiceID,
		req.LeadID,
		req.ContactName,
		req.ContactEmail,
		req.ContactPhone,
		req.StartsAt,
		AppointmentScheduled,
		req.Notes,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scheduling: insert appointment failed: %w", err)
	}

	return &Appointment{
		ID:           id.String(),
		TenantID:     req.TenantID,
		ServiceID:    req.ServiceID,
		LeadID:       req.LeadID,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		StartsAt:     req.StartsAt,
		Status:       AppointmentScheduled,
		Notes:        req.Notes,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func (r *PostgresRepository) UpdateAppointmentStatus(ctx context.Context, tenantID, id string, status AppointmentStatus) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1 AND id = $2
	`
	current, err := scanAppointment(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, err
	}
	if !ValidAppointmentTransition(current.Status, status) {
		return nil, &InvalidTransitionError{From: current.Status, To: status}
	}

	update := `
		UPDATE appointments
		SET status = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + appointmentColumns + `
	`
	return scanAppointment(r.db.QueryRow(ctx, update, tenantID, id, status))
}
