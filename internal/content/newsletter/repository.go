package newsletter

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

const columns = `id, title, description, content, image, author, publish_date, created_at, updated_at`

type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

func scan(row content.RowScanner) (*models.NewsletterItem, error) {
	var n models.NewsletterItem
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Description,
		&n.Content,
		&n.Image,
		&n.Author,
		&n.PublishDate,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repository) List(ctx context.Context) ([]models.NewsletterItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM newsletters ORDER BY publish_date DESC, created_at DESC`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list newsletters", err)
	}
	defer rows.Close()

	items := make([]models.NewsletterItem, 0)
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan newsletter", err)
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list newsletters", err)
	}
	return items, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.NewsletterItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewResourceNotFoundError("Newsletter", id)
	}
	n, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM newsletters WHERE id = $1`, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("Newsletter", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get newsletter", err)
	}
	return n, nil
}

func (r *Repository) Create(ctx context.Context, n *models.NewsletterItem) error {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt

	query := `
		INSERT INTO newsletters (id, title, description, content, image, author, publish_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.Title,
		n.Description,
		n.Content,
		n.Image,
		n.Author,
		n.PublishDate,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, n *models.NewsletterItem) error {
	if _, err := uuid.Parse(n.ID); err != nil {
		return errors.NewResourceNotFoundError("Newsletter", n.ID)
	}
	query := `
		UPDATE newsletters
		SET title = $2, description = $3, content = $4, image = $5, author = $6,
		    publish_date = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.Title,
		n.Description,
		n.Content,
		n.Image,
		n.Author,
		n.PublishDate,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewResourceNotFoundError("Newsletter", n.ID)
	}
	if err != nil {
		return errors.NewQueryExecutionFailedError("update newsletter", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewResourceNotFoundError("Newsletter", id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM newsletters WHERE id = $1`, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete newsletter", err)
	}
	return content.AffectedOne(res, "Newsletter", id)
}
