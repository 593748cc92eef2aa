package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/service"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// AuditHandler lists the audit trail.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler creates a new handler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List audit log entries
// @Tags Audit
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	logs, pagination, err := h.service.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}
