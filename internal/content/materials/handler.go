package materials

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

const resource = "materials"

type Store interface {
	List(ctx context.Context) ([]models.MaterialItem, error)
	GetByID(ctx context.Context, id int) (*models.MaterialItem, error)
	Create(ctx context.Context, m *models.MaterialItem) error
	Update(ctx context.Context, m *models.MaterialItem) error
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

func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/materials", h.List)
	rg.GET("/materials/:id", h.GetByID)
	rg.POST("/materials", h.Create)
	rg.PUT("/materials/:id", h.Update)
	rg.DELETE("/materials/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	var items []models.MaterialItem
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
		"materials": items,
		"count":     len(items),
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := content.IntID(c, "Material")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	item, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Create(c *gin.Context) {
	var item models.MaterialItem
	if !content.Bind(c, h.logger, &item) {
		return
	}
	if err := h.store.Create(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("Material created", map[string]interface{}{
		"material_id": item.ID,
	})
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := content.IntID(c, "Material")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	var item models.MaterialItem
	if !content.Bind(c, h.logger, &item) {
		return
	}
	item.ID = id

	if err := h.store.Update(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := content.IntID(c, "Material")
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), resource)

	h.logger.Info("Material deleted", map[string]interface{}{
		"material_id": id,
	})
	c.Status(http.StatusNoContent)
}
