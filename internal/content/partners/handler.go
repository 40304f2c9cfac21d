package partners

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
	"finportal/internal/content"
	"finportal/internal/models"
)

type Store interface {
	List(ctx context.Context, status models.PartnerStatus) ([]models.PartnerRequest, error)
	GetByID(ctx context.Context, id string) (*models.PartnerRequest, error)
	Create(ctx context.Context, p *models.PartnerRequest) error
	Update(ctx context.Context, p *models.PartnerRequest) error
	SetStatus(ctx context.Context, id string, status models.PartnerStatus) (*models.PartnerRequest, error)
	Delete(ctx context.Context, id string) error
}

// Handler is the admin review surface for partner registrations. Every
// route is admin-only; the public registration form lives with the leads.
type Handler struct {
	store  Store
	logger logger.Logger
}

func NewHandler(store Store, log logger.Logger) *Handler {
	return &Handler{store: store, logger: log}
}

func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/partner-requests", h.List)
	rg.GET("/partner-requests/:id", h.GetByID)
	rg.POST("/partner-requests", h.Create)
	rg.PUT("/partner-requests/:id", h.Update)
	rg.PATCH("/partner-requests/:id", h.UpdateStatus)
	rg.DELETE("/partner-requests/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	status := models.PartnerStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		httpx.RespondError(c, h.logger, errors.NewInvalidInputError("status must be Pending, Approved or Rejected"))
		return
	}

	items, err := h.store.List(c.Request.Context(), status)
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partnerRequests": items,
		"count":           len(items),
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
	var item models.PartnerRequest
	if !content.Bind(c, h.logger, &item) {
		return
	}
	if err := h.store.Create(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	h.logger.Info("Partner request created", map[string]interface{}{
		"partner_request_id": item.ID,
	})
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) Update(c *gin.Context) {
	var item models.PartnerRequest
	if !content.Bind(c, h.logger, &item) {
		return
	}
	item.ID = c.Param("id")

	if err := h.store.Update(c.Request.Context(), &item); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateStatus handles PATCH {status}. Only the three review states are
// accepted.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var body models.StatusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.RespondError(c, h.logger, errors.NewInvalidInputError(err.Error()))
		return
	}
	if !body.Status.Valid() {
		httpx.RespondFieldErrors(c, map[string]string{
			"status": "status must be Pending, Approved or Rejected",
		})
		return
	}

	item, err := h.store.SetStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	h.logger.Info("Partner request status changed", map[string]interface{}{
		"partner_request_id": item.ID,
		"status":             string(item.Status),
	})
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}

	h.logger.Info("Partner request deleted", map[string]interface{}{
		"partner_request_id": id,
	})
	c.Status(http.StatusNoContent)
}
