package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/I7ZT1/club-manager-panel/internal/audit/domain"
)

func (s *Server) ListAudit(c *gin.Context) {
	if s.auditSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req auditdomain.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) audit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	s.auditSvc.Record(c.Request.Context(), auditdomain.ActorTypeAdmin, action, targetType, targetID, metadata)
}
