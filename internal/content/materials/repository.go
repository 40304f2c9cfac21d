package materials

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strconv"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/content"
	"finportal/internal/models"
)

type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

func (r *Repository) List(ctx context.Context) ([]models.MaterialItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, link, created_at FROM materials ORDER BY id`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list materials", err)
	}
	defer rows.Close()

	items := make([]models.MaterialItem, 0)
	for rows.Next() {
		var m models.MaterialItem
		if err := rows.Scan(&m.ID, &m.Title, &m.Link, &m.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan material", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list materials", err)
	}
	return items, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*models.MaterialItem, error) {
	var m models.MaterialItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, link, created_at FROM materials WHERE id = $1`, id,
	).Scan(&m.ID, &m.Title, &m.Link, &m.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("Material", strconv.Itoa(id))
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get material", err)
	}
	return &m, nil
}

func (r *Repository) Create(ctx context.Context, m *models.MaterialItem) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO materials (title, link) VALUES ($1, $2) RETURNING id, created_at`,
		m.Title, m.Link,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, m *models.MaterialItem) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE materials SET title = $2, link = $3 WHERE id = $1 RETURNING created_at`,
		m.ID, m.Title, m.Link,
	).Scan(&m.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewResourceNotFoundError("Material", strconv.Itoa(m.ID))
	}
	if err != nil {
		return errors.NewQueryExecutionFailedError("update material", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete material", err)
	}
	return content.AffectedOne(res, "Material", strconv.Itoa(id))
}
