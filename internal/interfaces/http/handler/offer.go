package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	app "github.com/offerflow/backend/internal/application/offer"
	"github.com/offerflow/backend/internal/domain/offer"
	"github.com/offerflow/backend/internal/interfaces/http/dto"
	"github.com/offerflow/backend/internal/interfaces/http/middleware"
)

// offerService is the orchestrator surface the handler depends on
type offerService interface {
	CreateFromIntake(ctx context.Context, req app.IntakeRequest) (*offer.Offer, error)
	Submit(ctx context.Context, id uuid.UUID, approvedLineIDs []uuid.UUID) (*offer.Offer, *app.SubmitOutcome, error)
	ListPending(ctx context.Context) ([]*offer.Offer, error)
	Get(ctx context.Context, id uuid.UUID) (*offer.Offer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OfferHandler exposes the offer pipeline over REST
type OfferHandler struct {
	BaseHandler
	service offerService
	logger  *zap.Logger
}

// NewOfferHandler creates the offer handler
func NewOfferHandler(service offerService, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{service: service, logger: logger}
}

// RegisterRoutes registers offer routes on the API group
func (h *OfferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	offers := rg.Group("/offers")
	{
		offers.POST("/create", h.Create)
		offers.GET("/pending", h.ListPending)
		offers.GET("/:id", h.Get)
		offers.POST("/:id/send", h.Send)
		offers.DELETE("/:id", h.Delete)
	}
}

// Create ingests a free-form offer request and queues the assembled offer
// for human review. Nothing is sent to the ERP yet.
func (h *OfferHandler) Create(c *gin.Context) {
	var req app.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verr, ok := err.(validator.ValidationErrors); ok {
			h.ValidationError(c, middleware.ValidationDetails(verr))
			return
		}
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	o, err := h.service.CreateFromIntake(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToOfferResponse(o))
}

// ListPending returns the offers awaiting review
func (h *OfferHandler) ListPending(c *gin.Context) {
	offers, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.ToOfferListResponse(offers), len(offers))
}

// Get returns one offer by ID
func (h *OfferHandler) Get(c *gin.Context) {
	id, ok := h.offerID(c)
	if !ok {
		return
	}
	o, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOfferResponse(o))
}

// Send approves an offer (optionally a subset of its lines) and submits
// it to the ERP. A concurrent send on the same offer gets a 409.
func (h *OfferHandler) Send(c *gin.Context) {
	id, ok := h.offerID(c)
	if !ok {
		return
	}

	var req app.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	o, outcome, err := h.service.Submit(c.Request.Context(), id, req.LineIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.SendResponse{
		Offer:  dto.ToOfferResponse(o),
		Result: outcome,
	})
}

// Delete rejects and removes a pending offer
func (h *OfferHandler) Delete(c *gin.Context) {
	id, ok := h.offerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// offerID parses the :id path parameter
func (h *OfferHandler) offerID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid offer id")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "invalid offer id")
		return uuid.Nil, false
	}
	return id, true
}
