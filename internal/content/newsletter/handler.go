package newsletter

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

const resource = "newsletter"

type Store interface {
	List(ctx context.Context) ([]models.NewsletterItem, error)
	GetByID(ctx context.Context, id string) (*models.NewsletterItem, error)
	Create(ctx context.Context, n *models.NewsletterItem) error
	Update(ctx context.Context, n *models.NewsletterItem) error
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store  Store
	cache  *cache.ListCache
	logger logger.Logger
}

func NewHandler(store Store, listCache *cache.ListCache, log logger.Logger) *Handler {
	return &Handler{store: store, cache: listCache, logger: log}
}

func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/newsletter", h.List)
	rg.GET("/newsletter/:id", h.GetByID)
	rg.POST("/newsletter", h.Create)
	rg.PUT("/newsletter/:id", h.Update)
	rg.DELETE("/newsletter/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	var items []models.NewsletterItem
	if !h.cache.Get(c.Request.Context(), resource, "all", &items) {
		var err error
		items, err = h.store.List(c.Request.Context())
		if err != nil {
			httpx.RespondError(c, h.logger, err)
			return
		}
		h.cache.Set(c.Request.Context(), resource, "all", items)
	}

	c.JSON(http.StatusOK, gin.H{
		"newsletters": items,
		"count":       len(items),
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	item, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Create(c *gin.Context) {
	var item models.NewsletterItem
	if !content.Bind(c, h.logger, &item) {
		return
	}

	if err := h.store.Create(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("Newsletter created", map[string]interface{}{
		"newsletter_id": item.ID,
		"title":         item.Title,
	})

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) Update(c *gin.Context) {
	var item models.NewsletterItem
	if !content.Bind(c, h.logger, &item) {
		return
	}
	item.ID = c.Param("id")

	if err := h.store.Update(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("Newsletter updated", map[string]interface{}{
		"newsletter_id": item.ID,
	})

	c.JSON(http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("Newsletter deleted", map[string]interface{}{
		"newsletter_id": id,
	})

	c.Status(http.StatusNoContent)
}
