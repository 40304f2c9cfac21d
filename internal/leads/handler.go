package leads

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
	"finportal/internal/common/metrics"
	"finportal/internal/common/observability"
	"finportal/internal/models"
)

const defaultMaxUpload = 10 << 20

// Store is the lead persistence the handler needs.
type Store interface {
	Create(ctx context.Context, lead *models.Lead) error
	MarkDispatched(ctx context.Context, id string) error
	Subscribe(ctx context.Context, email string) (string, bool, error)
}

// PartnerStore records partner registrations for admin review.
type PartnerStore interface {
	Create(ctx context.Context, p *models.PartnerRequest) error
	Delete(ctx context.Context, id string) error
}

type Options struct {
	Leads         Store
	Partners      PartnerStore
	Dispatcher    Dispatcher
	Observability *observability.Observability
	MaxUpload     int64
	Logger        logger.Logger
}

// Handler accepts the public lead-capture forms.
type Handler struct {
	leads      Store
	partners   PartnerStore
	dispatcher Dispatcher
	obs        *observability.Observability
	maxUpload  int64
	logger     logger.Logger
}

func NewHandler(opts Options) *Handler {
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = defaultMaxUpload
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewLogDispatcher(opts.Logger)
	}
	return &Handler{
		leads:      opts.Leads,
		partners:   opts.Partners,
		dispatcher: opts.Dispatcher,
		obs:        opts.Observability,
		maxUpload:  opts.MaxUpload,
		logger:     opts.Logger,
	}
}

func (h *Handler) Register(rg gin.IRoutes) {
	rg.POST("/send-quote", h.form(models.LeadKindQuote, false))
	rg.POST("/schedule-call", h.form(models.LeadKindScheduleCall, false))
	rg.POST("/investment-form", h.form(models.LeadKindInvestment, false))
	rg.POST("/dematApply", h.form(models.LeadKindDemat, true))
	rg.POST("/credit-card-apply", h.form(models.LeadKindCreditCard, true))
	rg.POST("/b2b-partner", h.Partner)
	rg.POST("/subscribe", h.Subscribe)
}

// read parses and validates the body. It writes the error response and
// returns false when the submission is rejected.
func (h *Handler) read(c *gin.Context, kind models.LeadKind, allowMultipart bool) (map[string]interface{}, bool) {
	payload, err := readPayload(c, allowMultipart, h.maxUpload)
	if err != nil {
		metrics.LeadsSubmitted.WithLabelValues(string(kind), "invalid").Inc()
		httpx.RespondError(c, h.logger, errors.NewInvalidInputError(err.Error()))
		return nil, false
	}
	if fieldErrors := Validate(kind, payload); fieldErrors != nil {
		metrics.LeadsSubmitted.WithLabelValues(string(kind), "invalid").Inc()
		h.logger.Debug("Lead rejected", map[string]interface{}{
			"kind":   kind,
			"fields": fieldErrors,
		})
		httpx.RespondFieldErrors(c, fieldErrors)
		return nil, false
	}
	return payload, true
}

func (h *Handler) form(kind models.LeadKind, allowMultipart bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := h.read(c, kind, allowMultipart)
		if !ok {
			return
		}
		h.accept(c, kind, payload)
	}
}

// Partner registers a B2B partner for review and records the lead.
func (h *Handler) Partner(c *gin.Context) {
	payload, ok := h.read(c, models.LeadKindPartner, false)
	if !ok {
		return
	}

	partner := &models.PartnerRequest{
		Type:    str(payload, "type"),
		SubType: str(payload, "subType"),
		Name:    str(payload, "name"),
		Mobile:  str(payload, "mobile"),
		Email:   str(payload, "email"),
	}
	if err := h.partners.Create(c.Request.Context(), partner); err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	payload["partnerRequestId"] = partner.ID

	if !h.accept(c, models.LeadKindPartner, payload) {
		// The lead row was not written, so the request it points to goes too.
		if err := h.partners.Delete(context.WithoutCancel(c.Request.Context()), partner.ID); err != nil {
			h.logger.Error("Orphaned partner request", map[string]interface{}{
				"partnerRequestId": partner.ID,
				"error":            err.Error(),
			})
		}
	}
}

// Subscribe adds an email to the newsletter list. Repeats succeed without
// a second row or notification.
func (h *Handler) Subscribe(c *gin.Context) {
	payload, ok := h.read(c, models.LeadKindSubscribe, false)
	if !ok {
		return
	}

	id, created, err := h.leads.Subscribe(c.Request.Context(), str(payload, "email"))
	if err != nil {
		httpx.RespondError(c, h.logger, err)
		return
	}
	if !created {
		metrics.LeadsSubmitted.WithLabelValues(string(models.LeadKindSubscribe), "duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"id":                id,
			"alreadySubscribed": true,
		})
		return
	}

	metrics.LeadsSubmitted.WithLabelValues(string(models.LeadKindSubscribe), "accepted").Inc()
	h.obs.RecordLead(c.Request.Context(), string(models.LeadKindSubscribe))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      id,
	})
}

// accept persists the lead and dispatches it. A failed dispatch is logged
// and leaves the lead in status received. It reports whether the lead was
// stored.
func (h *Handler) accept(c *gin.Context, kind models.LeadKind, payload map[string]interface{}) bool {
	ctx := c.Request.Context()
	lead := &models.Lead{
		Kind:    kind,
		Name:    str(payload, "name"),
		Email:   str(payload, "email"),
		Mobile:  str(payload, "mobile"),
		Payload: payload,
	}
	if err := h.leads.Create(ctx, lead); err != nil {
		httpx.RespondError(c, h.logger, err)
		return false
	}

	metrics.LeadsSubmitted.WithLabelValues(string(kind), "accepted").Inc()
	h.obs.RecordLead(ctx, string(kind))

	if err := h.dispatcher.Dispatch(ctx, lead); err != nil {
		metrics.LeadDispatchFailures.WithLabelValues(string(kind)).Inc()
		h.logger.Error("Lead dispatch failed", map[string]interface{}{
			"leadId": lead.ID,
			"kind":   kind,
			"error":  err.Error(),
		})
	} else if err := h.leads.MarkDispatched(ctx, lead.ID); err != nil {
		h.logger.Warn("Lead status not updated", map[string]interface{}{
			"leadId": lead.ID,
			"error":  err.Error(),
		})
	} else {
		lead.Status = models.LeadStatusDispatched
	}

	h.logger.Info("Lead received", map[string]interface{}{
		"leadId": lead.ID,
		"kind":   kind,
		"status": lead.Status,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      lead.ID,
	})
	return true
}
