package news

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

var newsCols = []string{"id", "title", "category", "author", "publish_date", "views", "featured", "link", "created_at", "updated_at"}

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, logger.NewTestLogger(t)), mock
}

func TestRepository_ListWithFilters(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	featured := true

	mock.ExpectQuery(regexp.QuoteMeta(`FROM news_items WHERE 1=1 AND category = $1 AND featured = $2 ORDER BY publish_date DESC`)).
		WithArgs("IPO", true).
		WillReturnRows(sqlmock.NewRows(newsCols).
			AddRow(2, "LIC IPO opens", "IPO", "Desk", "2024-05-02", 10, true, "https://example.in/2", now, now).
			AddRow(1, "Tata Tech lists", "IPO", "Desk", "2024-05-01", 4, true, "https://example.in/1", now, now))

	items, err := repo.List(context.Background(), models.NewsFilter{Category: "IPO", Featured: &featured})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "LIC IPO opens", items[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListEmptyIsNotNil(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("FROM news_items").WillReturnRows(sqlmock.NewRows(newsCols))

	items, err := repo.List(context.Background(), models.NewsFilter{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRepository_ViewIncrementsAndReturns(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE news_items SET views = views + 1 WHERE id = $1 RETURNING`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(newsCols).
			AddRow(7, "RBI holds repo rate", "Economy", "Desk", "2024-06-07", 101, false, "/news/7", now, now))

	item, err := repo.View(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 101, item.Views)
}

func TestRepository_ViewMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("UPDATE news_items").WithArgs(99).WillReturnError(sql.ErrNoRows)

	_, err := repo.View(context.Background(), 99)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, stdErr.Code)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO news_items").
		WithArgs("Sensex up", "Markets", "Desk", "2024-01-02", 0, false, "https://example.in/s").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(12, now, now))

	item := &models.NewsItem{Title: "Sensex up", Category: "Markets", Author: "Desk", PublishDate: "2024-01-02", Link: "https://example.in/s"}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.Equal(t, 12, item.ID)
	assert.Equal(t, now, item.CreatedAt)
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("UPDATE news_items").WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &models.NewsItem{ID: 5, Title: "x"})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, stdErr.Code)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM news_items WHERE id = $1`)).
		WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 3))

	mock.ExpectExec("DELETE FROM news_items").
		WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), 3)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, stdErr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
