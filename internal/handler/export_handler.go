package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// ExportHandler streams reservation history downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// History godoc
// @Summary Download reservation history
// @Description Export filterable reservation history as CSV or PDF
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Param lab_id query string false "Laboratory filter"
// @Param status query string false "Status filter"
// @Param date_from query string false "From date (YYYY-MM-DD)"
// @Param date_to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/reservations/export [get]
func (h *ExportHandler) History(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	if format != service.FormatCSV && format != service.FormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	result, err := h.service.History(c.Request.Context(), reservationFilterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
