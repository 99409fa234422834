package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	billingdomain "github.com/I7ZT1/club-manager-panel/internal/billing/domain"
)

func (s *Server) BillingFilters(c *gin.Context) {
	opts, err := s.billingSvc.Filters(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (s *Server) CreateBilling(c *gin.Context) {
	var billing billingdomain.Billing
	if err := c.ShouldBindJSON(&billing); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.billingSvc.Create(c.Request.Context(), &billing)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.audit(c, "billing.create", "billing", created.ID.String(), map[string]any{
		"currency": string(created.BillingCurrency),
		"bank":     created.Bank,
	})
	c.JSON(http.StatusCreated, created)
}

// ListBillings takes the listing window in the body: the admin panel sends
// filter conditions as JSON, not query parameters.
func (s *Server) ListBillings(c *gin.Context) {
	var req billingdomain.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.billingSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetBilling(c *gin.Context) {
	id, ok := billingIDParam(c)
	if !ok {
		return
	}

	billing, err := s.billingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if billing == nil {
		AbortWithError(c, billingdomain.ErrBillingNotFound)
		return
	}
	c.JSON(http.StatusOK, billing)
}

func (s *Server) UpdateBilling(c *gin.Context) {
	id, ok := billingIDParam(c)
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.billingSvc.Update(c.Request.Context(), id, fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.audit(c, "billing.update", "billing", id.String(), map[string]any{"fields": fields})
	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteBilling(c *gin.Context) {
	id, ok := billingIDParam(c)
	if !ok {
		return
	}

	if err := s.billingSvc.SoftDelete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	s.audit(c, "billing.soft_delete", "billing", id.String(), nil)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func billingIDParam(c *gin.Context) (snowflake.ID, bool) {
	raw, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid", "id must be numeric"))
		return 0, false
	}
	return snowflake.ID(raw), true
}
