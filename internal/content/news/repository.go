package news

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/content"
	"finportal/internal/models"
)

const columns = `id, title, category, author, publish_date, views, featured, link, created_at, updated_at`

type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

func scan(row content.RowScanner) (*models.NewsItem, error) {
	var n models.NewsItem
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Category,
		&n.Author,
		&n.PublishDate,
		&n.Views,
		&n.Featured,
		&n.Link,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repository) List(ctx context.Context, filter models.NewsFilter) ([]models.NewsItem, error) {
	query := `SELECT ` + columns + ` FROM news_items WHERE 1=1`
	var args []interface{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		query += fmt.Sprintf(" AND featured = $%d", len(args))
	}
	query += ` ORDER BY publish_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list news", err)
	}
	defer rows.Close()

	items := make([]models.NewsItem, 0)
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan news", err)
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list news", err)
	}
	return items, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*models.NewsItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM news_items WHERE id = $1`, id)
	return r.one(row, id, "get news")
}

// View returns the item with its view counter already incremented.
func (r *Repository) View(ctx context.Context, id int) (*models.NewsItem, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE news_items SET views = views + 1 WHERE id = $1 RETURNING `+columns, id)
	return r.one(row, id, "view news")
}

func (r *Repository) one(row *sql.Row, id int, op string) (*models.NewsItem, error) {
	n, err := scan(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("News item", strconv.Itoa(id))
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError(op, err)
	}
	return n, nil
}

func (r *Repository) Create(ctx context.Context, n *models.NewsItem) error {
	query := `
		INSERT INTO news_items (title, category, author, publish_date, views, featured, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		n.Title,
		n.Category,
		n.Author,
		n.PublishDate,
		n.Views,
		n.Featured,
		n.Link,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// Update rewrites the editable fields. The view counter is left alone.
func (r *Repository) Update(ctx context.Context, n *models.NewsItem) error {
	query := `
		UPDATE news_items
		SET title = $2, category = $3, author = $4, publish_date = $5,
		    featured = $6, link = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING views, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.Title,
		n.Category,
		n.Author,
		n.PublishDate,
		n.Featured,
		n.Link,
	).Scan(&n.Views, &n.CreatedAt, &n.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewResourceNotFoundError("News item", strconv.Itoa(n.ID))
	}
	if err != nil {
		return errors.NewQueryExecutionFailedError("update news", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM news_items WHERE id = $1`, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete news", err)
	}
	return content.AffectedOne(res, "News item", strconv.Itoa(id))
}
