package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingdomain "github.com/I7ZT1/club-manager-panel/internal/billing/domain"
	"github.com/I7ZT1/club-manager-panel/internal/observability/logger"
	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/withdraw"
	"github.com/I7ZT1/club-manager-panel/pkg/filter"
)

type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.code }

var (
	ErrNotFound           = &apiError{http.StatusNotFound, "not_found", "resource not found"}
	ErrServiceUnavailable = &apiError{http.StatusServiceUnavailable, "service_unavailable", "service unavailable"}
	ErrTooManyRequests    = &apiError{http.StatusTooManyRequests, "too_many_requests", "too many requests"}
)

func invalidRequestError() *apiError {
	return &apiError{http.StatusBadRequest, "invalid_request", "request body is invalid"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{http.StatusBadRequest, field + "_" + code, message}
}

// AbortWithError maps domain errors onto HTTP responses. Exhausted fallback
// chains and an empty card directory both surface as 402: the payer-facing
// contract is only "no requisites available", diagnostics stay in the logs.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.status, gin.H{"error": api.code, "message": api.message})
		return
	}

	var aggregate *providerdomain.AggregateError
	if errors.As(err, &aggregate) {
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
			"error":   "no_requisites_available",
			"message": aggregate.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, billingdomain.ErrNoCardAvailable):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
			"error":   "no_requisites_available",
			"message": "no requisites available",
		})
	case errors.Is(err, billingdomain.ErrBillingNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "billing_not_found", "message": "billing not found"})
	case errors.Is(err, providerdomain.ErrInvalidAmount),
		errors.Is(err, providerdomain.ErrUnsupportedCurrency),
		errors.Is(err, billingdomain.ErrInvalidBilling),
		errors.Is(err, withdraw.ErrInvalidCard),
		errors.Is(err, withdraw.ErrUnknownProvider),
		errors.Is(err, filter.ErrInvalidPage):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "message": "invalid request"})
	default:
		logger.FromContext(c.Request.Context()).Error("unhandled request error", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "internal error"})
	}
}
