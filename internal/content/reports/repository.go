package reports

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/content"
	"finportal/internal/models"
)

const columns = `id, title, stock, company, author, author_firm, report_date, sector, report_type,
	rating, target_price, current_price, upside, pages, views, recommendation, tags, summary,
	pdf_url, published, created_at, updated_at`

type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

func scan(row content.RowScanner) (*models.ResearchReport, error) {
	var r models.ResearchReport
	var upside float64
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Stock,
		&r.Company,
		&r.Author,
		&r.AuthorFirm,
		&r.Date,
		&r.Sector,
		&r.ReportType,
		&r.Rating,
		&r.TargetPrice,
		&r.CurrentPrice,
		&upside,
		&r.Pages,
		&r.Views,
		&r.Recommendation,
		pq.Array(&r.Tags),
		&r.Summary,
		&r.PDFURL,
		&r.Published,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Upside = &upside
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return &r, nil
}

func buildWhere(filter models.ReportFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	var args []interface{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where += fmt.Sprintf(clause, len(args))
	}
	if filter.Sector != "" {
		add(" AND sector = $%d", filter.Sector)
	}
	if filter.Rating != "" {
		add(" AND rating = $%d", string(filter.Rating))
	}
	if filter.ReportType != "" {
		add(" AND report_type = $%d", string(filter.ReportType))
	}
	if filter.Published != nil {
		add(" AND published = $%d", *filter.Published)
	}
	return where, args
}

func (r *Repository) List(ctx context.Context, filter models.ReportFilter) ([]models.ResearchReport, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + columns + ` FROM research_reports` + where + ` ORDER BY report_date DESC, id DESC`
	return r.query(ctx, "list reports", query, args...)
}

// Search is the database fallback for full-text search: a case-insensitive
// substring match over the searchable columns and tags.
func (r *Repository) Search(ctx context.Context, q string, publishedOnly bool) ([]models.ResearchReport, error) {
	query := `SELECT ` + columns + ` FROM research_reports
		WHERE (title ILIKE $1 OR company ILIKE $1 OR stock ILIKE $1 OR summary ILIKE $1
		       OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $1))`
	if publishedOnly {
		query += ` AND published = TRUE`
	}
	query += ` ORDER BY report_date DESC, id DESC LIMIT 50`
	return r.query(ctx, "search reports", query, "%"+q+"%")
}

func (r *Repository) query(ctx context.Context, op, query string, args ...interface{}) ([]models.ResearchReport, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError(op, err)
	}
	defer rows.Close()

	items := make([]models.ResearchReport, 0)
	for rows.Next() {
		rep, err := scan(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError(op, err)
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError(op, err)
	}
	return items, nil
}

// View increments the view counter and returns the report. With
// publishedOnly set, drafts are reported as missing and not counted.
func (r *Repository) View(ctx context.Context, id int, publishedOnly bool) (*models.ResearchReport, error) {
	query := `UPDATE research_reports SET views = views + 1 WHERE id = $1`
	if publishedOnly {
		query += ` AND published = TRUE`
	}
	query += ` RETURNING ` + columns

	rep, err := scan(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("Report", strconv.Itoa(id))
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("view report", err)
	}
	return rep, nil
}

func (r *Repository) Create(ctx context.Context, rep *models.ResearchReport) error {
	rep.Normalize()
	query := `
		INSERT INTO research_reports (
			title, stock, company, author, author_firm, report_date, sector, report_type,
			rating, target_price, current_price, upside, pages, views, recommendation, tags,
			summary, pdf_url, published
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rep.Title,
		rep.Stock,
		rep.Company,
		rep.Author,
		rep.AuthorFirm,
		rep.Date,
		rep.Sector,
		string(rep.ReportType),
		string(rep.Rating),
		rep.TargetPrice,
		rep.CurrentPrice,
		*rep.Upside,
		rep.Pages,
		rep.Views,
		rep.Recommendation,
		pq.Array(rep.Tags),
		rep.Summary,
		rep.PDFURL,
		rep.Published,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// Update rewrites the editable fields; views and created_at are kept.
func (r *Repository) Update(ctx context.Context, rep *models.ResearchReport) error {
	rep.Normalize()
	query := `
		UPDATE research_reports
		SET title = $2, stock = $3, company = $4, author = $5, author_firm = $6,
		    report_date = $7, sector = $8, report_type = $9, rating = $10,
		    target_price = $11, current_price = $12, upside = $13, pages = $14,
		    recommendation = $15, tags = $16, summary = $17, pdf_url = $18,
		    published = $19, updated_at = NOW()
		WHERE id = $1
		RETURNING views, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rep.ID,
		rep.Title,
		rep.Stock,
		rep.Company,
		rep.Author,
		rep.AuthorFirm,
		rep.Date,
		rep.Sector,
		string(rep.ReportType),
		string(rep.Rating),
		rep.TargetPrice,
		rep.CurrentPrice,
		*rep.Upside,
		rep.Pages,
		rep.Recommendation,
		pq.Array(rep.Tags),
		rep.Summary,
		rep.PDFURL,
		rep.Published,
	).Scan(&rep.Views, &rep.CreatedAt, &rep.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewResourceNotFoundError("Report", strconv.Itoa(rep.ID))
	}
	if err != nil {
		return errors.NewQueryExecutionFailedError("update report", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM research_reports WHERE id = $1`, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete report", err)
	}
	return content.AffectedOne(res, "Report", strconv.Itoa(id))
}
