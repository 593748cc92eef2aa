package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// ImportHandler accepts faculty timetable CSV uploads.
type ImportHandler struct {
	service *service.ImportService
}

// NewImportHandler creates a new handler.
func NewImportHandler(svc *service.ImportService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Import godoc
// @Summary Import the faculty timetable
// @Description Replace all fixed weekly entries from a semicolon-separated CSV upload
// @Tags Schedule
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Timetable CSV"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/schedules/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	src, err := fh.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file"))
		return
	}
	defer src.Close()

	report, err := h.service.Import(c.Request.Context(), actor.ID, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
