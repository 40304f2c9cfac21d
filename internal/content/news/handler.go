package news

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"finportal/internal/cache"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
	"finportal/internal/content"
	"finportal/internal/models"
)

const resource = "news"

// Store is the persistence the handler needs.
type Store interface {
	List(ctx context.Context, filter models.NewsFilter) ([]models.NewsItem, error)
	View(ctx context.Context, id int) (*models.NewsItem, error)
	Create(ctx context.Context, n *models.NewsItem) error
	Update(ctx context.Context, n *models.NewsItem) error
	Delete(ctx context.Context, id int) error
}

type Handler struct {
	store  Store
	cache  *cache.ListCache
	logger logger.Logger
}

func NewHandler(store Store, listCache *cache.ListCache, log logger.Logger) *Handler {
	return &Handler{store: store, cache: listCache, logger: log}
}

// Register mounts the news routes on rg.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/news", h.List)
	rg.GET("/news/:id", h.GetByID)
	rg.POST("/news", h.Create)
	rg.PUT("/news/:id", h.Update)
	rg.DELETE("/news/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	featured, err := content.QueryBool(c, "featured")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	filter := models.NewsFilter{Category: c.Query("category"), Featured: featured}

	var items []models.NewsItem
	if !h.cache.Get(c.Request.Context(), resource, filter.CacheVariant(), &items) {
		items, err = h.store.List(c.Request.Context(), filter)
		if err != nil {
			httpx.RespondError(c, h.logger, err)
			return
		}
		h.cache.Set(c.Request.Context(), resource, filter.CacheVariant(), items)
	}

	c.JSON(http.StatusOK, gin.H{
		"news":  items,
		"count": len(items),
	})
}

// GetByID returns one item and counts the view.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := content.IntID(c, "News item")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	item, err := h.store.View(c.Request.Context(), id)
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) Create(c *gin.Context) {
	var item models.NewsItem
	if !content.Bind(c, h.logger, &item) {
		return
	}

	if err := h.store.Create(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("News item created", map[string]interface{}{
		"news_id": item.ID,
		"title":   item.Title,
	})

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := content.IntID(c, "News item")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	var item models.NewsItem
	if !content.Bind(c, h.logger, &item) {
		return
	}
	item.ID = id

	if err := h.store.Update(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("News item updated", map[string]interface{}{
		"news_id": id,
	})

	c.JSON(http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := content.IntID(c, "News item")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("News item deleted", map[string]interface{}{
		"news_id": id,
	})

	c.Status(http.StatusNoContent)
}
