package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// Create records a submission with status received.
func (r *Repository) Create(ctx context.Context, lead *models.Lead) error {
	lead.ID = uuid.New().String()
	lead.Status = models.LeadStatusReceived
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt

	payload, err := json.Marshal(lead.Payload)
	if err != nil {
		return errors.NewInternalError(err)
	}

	query := `
		INSERT INTO leads (id, kind, name, email, mobile, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		lead.ID,
		string(lead.Kind),
		lead.Name,
		lead.Email,
		lead.Mobile,
		payload,
		string(lead.Status),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewLeadNotFoundError(id)
	}

	var lead models.Lead
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, kind, name, email, mobile, payload, status, created_at, updated_at
		FROM leads WHERE id = $1`, id,
	).Scan(
		&lead.ID,
		&lead.Kind,
		&lead.Name,
		&lead.Email,
		&lead.Mobile,
		&payload,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewLeadNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get lead", err)
	}
	if err := json.Unmarshal(payload, &lead.Payload); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return &lead, nil
}

func (r *Repository) SetStatus(ctx context.Context, id string, status models.LeadStatus) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewLeadNotFoundError(id)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return errors.NewQueryExecutionFailedError("update lead status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("update lead status", err)
	}
	if n == 0 {
		return errors.NewLeadNotFoundError(id)
	}
	return nil
}

// MarkDispatched moves a freshly received lead to dispatched. A lead the
// workflow has already settled keeps its status.
func (r *Repository) MarkDispatched(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, string(models.LeadStatusDispatched), string(models.LeadStatusReceived))
	if err != nil {
		return errors.NewQueryExecutionFailedError("mark lead dispatched", err)
	}
	return nil
}

// Subscribe adds email to the newsletter list. created is false when the
// address was already subscribed; id is the existing subscriber's id then.
// Addresses are compared case-insensitively.
func (r *Repository) Subscribe(ctx context.Context, email string) (id string, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id = uuid.New().String()
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (id, email) VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`, id, email,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return "", false, errors.NewDatabaseInsertFailedError(err)
	}

	err = r.db.QueryRowContext(ctx, `SELECT id FROM subscribers WHERE email = $1`, email).Scan(&id)
	if err != nil {
		return "", false, errors.NewQueryExecutionFailedError("get subscriber", err)
	}
	return id, false, nil
}
