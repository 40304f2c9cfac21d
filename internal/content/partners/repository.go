package partners

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/content"
	"finportal/internal/models"
)

const columns = `id, type, sub_type, name, mobile, email, status, created_at`

type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

func scan(row content.RowScanner) (*models.PartnerRequest, error) {
	var p models.PartnerRequest
	if err := row.Scan(
		&p.ID,
		&p.Type,
		&p.SubType,
		&p.Name,
		&p.Mobile,
		&p.Email,
		&p.Status,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns requests newest first, optionally only those in status.
func (r *Repository) List(ctx context.Context, status models.PartnerStatus) ([]models.PartnerRequest, error) {
	query := `SELECT ` + columns + ` FROM partner_requests`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list partner requests", err)
	}
	defer rows.Close()

	items := make([]models.PartnerRequest, 0)
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan partner request", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list partner requests", err)
	}
	return items, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.PartnerRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewResourceNotFoundError("Partner request", id)
	}
	p, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM partner_requests WHERE id = $1`, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("Partner request", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get partner request", err)
	}
	return p, nil
}

// Create stores a new request. Status defaults to Pending.
func (r *Repository) Create(ctx context.Context, p *models.PartnerRequest) error {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	if p.Status == "" {
		p.Status = models.PartnerStatusPending
	}

	query := `
		INSERT INTO partner_requests (id, type, sub_type, name, mobile, email, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Type,
		p.SubType,
		p.Name,
		p.Mobile,
		p.Email,
		string(p.Status),
		p.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, p *models.PartnerRequest) error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return errors.NewResourceNotFoundError("Partner request", p.ID)
	}
	if p.Status == "" {
		p.Status = models.PartnerStatusPending
	}
	query := `
		UPDATE partner_requests
		SET type = $2, sub_type = $3, name = $4, mobile = $5, email = $6, status = $7
		WHERE id = $1
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.Type,
		p.SubType,
		p.Name,
		p.Mobile,
		p.Email,
		string(p.Status),
	).Scan(&p.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewResourceNotFoundError("Partner request", p.ID)
	}
	if err != nil {
		return errors.NewQueryExecutionFailedError("update partner request", err)
	}
	return nil
}

// SetStatus changes only the review status and returns the updated row.
func (r *Repository) SetStatus(ctx context.Context, id string, status models.PartnerStatus) (*models.PartnerRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewResourceNotFoundError("Partner request", id)
	}
	p, err := scan(r.db.QueryRowContext(ctx,
		`UPDATE partner_requests SET status = $2 WHERE id = $1 RETURNING `+columns,
		id, string(status)))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("Partner request", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("update partner status", err)
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewResourceNotFoundError("Partner request", id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM partner_requests WHERE id = $1`, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete partner request", err)
	}
	return content.AffectedOne(res, "Partner request", id)
}
