package reports

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finportal/internal/cache"
	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
	"finportal/internal/content"
	"finportal/internal/gate"
	"finportal/internal/models"
)

const resource = "reports"

type Store interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.ResearchReport, error)
	Search(ctx context.Context, q string, publishedOnly bool) ([]models.ResearchReport, error)
	View(ctx context.Context, id int, publishedOnly bool) (*models.ResearchReport, error)
	Create(ctx context.Context, r *models.ResearchReport) error
	Update(ctx context.Context, r *models.ResearchReport) error
	Delete(ctx context.Context, id int) error
}

// Indexer mirrors reports into the search engine.
type Indexer interface {
	Index(ctx context.Context, r *models.ResearchReport) error
	Remove(ctx context.Context, id int) error
	Search(ctx context.Context, q string, publishedOnly bool) ([]models.ResearchReport, error)
}

// Handler serves research reports. Anonymous and non-admin callers only
// ever see published reports. The indexer may be nil, in which case search
// runs against the database.
type Handler struct {
	store   Store
	indexer Indexer
	cache   *cache.ListCache
	logger  logger.Logger
}

func NewHandler(store Store, indexer Indexer, listCache *cache.ListCache, log logger.Logger) *Handler {
	return &Handler{store: store, indexer: indexer, cache: listCache, logger: log}
}

func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/reports", h.List)
	rg.GET("/reports/search", h.Search)
	rg.GET("/reports/:id", h.GetByID)
	rg.POST("/reports", h.Create)
	rg.PUT("/reports/:id", h.Update)
	rg.DELETE("/reports/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	filter := models.ReportFilter{
		Sector:     c.Query("sector"),
		Rating:     models.Rating(strings.ToUpper(c.Query("rating"))),
		ReportType: models.ReportType(strings.ToUpper(c.Query("reportType"))),
	}
	if filter.Rating != "" && !filter.Rating.Valid() {
		httpx.RespondError(c, h.logger, errors.NewInvalidInputError("rating must be BUY, HOLD or SELL"))
		return
	}
	if filter.ReportType != "" && !filter.ReportType.Valid() {
		httpx.RespondError(c, h.logger, errors.NewInvalidInputError("unknown reportType"))
		return
	}

	admin := gate.IsAdmin(c)
	if !admin {
		published := true
		filter.Published = &published
	}

	var items []models.ResearchReport
	if admin || !h.cache.Get(c.Request.Context(), resource, filter.CacheVariant(), &items) {
		var err error
		items, err = h.store.List(c.Request.Context(), filter)
		if err != nil {
			httpx.RespondError(c, h.logger, err)
			return
		}
		if !admin {
			h.cache.Set(c.Request.Context(), resource, filter.CacheVariant(), items)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": items,
		"count":   len(items),
	})
}

// Search prefers the search index and falls back to the database when the
// index is unavailable.
func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		httpx.RespondError(c, h.logger, errors.NewInvalidInputError("q is required"))
		return
	}
	publishedOnly := !gate.IsAdmin(c)

	var (
		items []models.ResearchReport
		err   error
	)
	source := "index"
	if h.indexer != nil {
		items, err = h.indexer.Search(c.Request.Context(), q, publishedOnly)
		if err != nil {
			h.logger.Warn("Report index search failed, using database", map[string]interface{}{
				"query": q,
				"error": err.Error(),
			})
		}
	}
	if h.indexer == nil || err != nil {
		source = "database"
		items, err = h.store.Search(c.Request.Context(), q, publishedOnly)
		if err != nil {
			httpx.RespondError(c, h.logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": items,
		"count":   len(items),
		"source":  source,
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := content.IntID(c, "Report")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	report, err := h.store.View(c.Request.Context(), id, !gate.IsAdmin(c))
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Create(c *gin.Context) {
	var report models.ResearchReport
	if !bindReport(c, h.logger, &report) {
		return
	}

	if err := h.store.Create(c.Request.Context(), &report); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.afterWrite(c.Request.Context(), &report)

	h.logger.Info("Report created", map[string]interface{}{
		"report_id": report.ID,
		"title":     report.Title,
	})
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := content.IntID(c, "Report")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	var report models.ResearchReport
	if !bindReport(c, h.logger, &report) {
		return
	}
	report.ID = id

	if err := h.store.Update(c.Request.Context(), &report); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.afterWrite(c.Request.Context(), &report)

	h.logger.Info("Report updated", map[string]interface{}{
		"report_id": id,
	})
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := content.IntID(c, "Report")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)
	if h.indexer != nil {
		if err := h.indexer.Remove(c.Request.Context(), id); err != nil {
			h.logger.Error("Failed to remove report from search index", map[string]interface{}{
				"report_id": id,
				"error":     err.Error(),
			})
		}
	}

	h.logger.Info("Report deleted", map[string]interface{}{
		"report_id": id,
	})
	c.Status(http.StatusNoContent)
}

// afterWrite drops cached lists and reindexes the report. Index failures
// are logged only; the database row is authoritative.
func (h *Handler) afterWrite(ctx context.Context, report *models.ResearchReport) {
	h.cache.Invalidate(ctx, resource)
	if h.indexer == nil {
		return
	}
	if err := h.indexer.Index(ctx, report); err != nil {
		h.logger.Error("Failed to index report", map[string]interface{}{
			"report_id": report.ID,
			"error":     err.Error(),
		})
	}
}

// bindReport normalizes before validating so lowercase ratings are accepted.
func bindReport(c *gin.Context, log logger.Logger, report *models.ResearchReport) bool {
	if err := c.ShouldBindJSON(report); err != nil {
		httpx.RespondError(c, log, errors.NewInvalidInputError(err.Error()))
		return false
	}
	report.Normalize()
	if fieldErrors := report.Validate(); len(fieldErrors) > 0 {
		httpx.RespondFieldErrors(c, fieldErrors)
		return false
	}
	return true
}

// Reindex pushes every stored report into the search index. It is run at
// start-up so the index survives being recreated.
func Reindex(ctx context.Context, store Store, indexer Indexer, log logger.Logger) (int, error) {
	items, err := store.List(ctx, models.ReportFilter{})
	if err != nil {
		return 0, err
	}
	indexed := 0
	for i := range items {
		if err := indexer.Index(ctx, &items[i]); err != nil {
			log.Warn("Failed to index report", map[string]interface{}{
				"report_id": items[i].ID,
				"error":     err.Error(),
			})
			continue
		}
		indexed++
	}
	return indexed, nil
}
