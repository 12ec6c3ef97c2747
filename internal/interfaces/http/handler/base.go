package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/offerflow/backend/internal/application/offer"
	"github.com/offerflow/backend/internal/domain/erp"
	"github.com/offerflow/backend/internal/domain/offer"
	"github.com/offerflow/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with list meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// errorCode maps a domain error to its API error code. Wrapped errors are
// matched by kind with errors.Is.
func errorCode(err error) string {
	switch {
	case errors.Is(err, offer.ErrNotFound):
		return dto.ErrCodeNotFound
	case errors.Is(err, offer.ErrStatusConflict):
		return dto.ErrCodeConcurrencyConflict
	case errors.Is(err, offer.ErrInvalidTransition),
		errors.Is(err, offer.ErrNotEditable),
		errors.Is(err, offer.ErrNoLines),
		errors.Is(err, offer.ErrLineNotFound):
		return dto.ErrCodeInvalidState
	case errors.Is(err, app.ErrNoLineItems):
		return dto.ErrCodeIntakeUnparseable
	case errors.Is(err, app.ErrCustomerUnresolved),
		errors.Is(err, erp.ErrCustomerNotFound):
		return dto.ErrCodeUnknownCustomer
	case errors.Is(err, erp.ErrProductNotFound):
		return dto.ErrCodeUnknownProduct
	case errors.Is(err, erp.ErrPersonNotFound):
		return dto.ErrCodeBusinessRule
	case errors.Is(err, erp.ErrVerificationMismatch):
		return dto.ErrCodeVerificationMismatch
	case errors.Is(err, erp.ErrVendorAuthFailed):
		return dto.ErrCodeVendorAuth
	case errors.Is(err, erp.ErrVendorUnavailable):
		return dto.ErrCodeVendorUnavailable
	case errors.Is(err, erp.ErrVendorRejected),
		errors.Is(err, erp.ErrInvalidResponse):
		return dto.ErrCodeVendorRejected
	default:
		return dto.ErrCodeInternal
	}
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := errorCode(err)
	message := err.Error()
	if code == dto.ErrCodeInternal {
		message = "An unexpected error occurred"
	}
	h.ErrorWithCode(c, code, message)
}
