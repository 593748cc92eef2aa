package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// OverrideHandler exposes admin cancel/reschedule directives.
type OverrideHandler struct {
	service *service.OverrideService
}

// NewOverrideHandler creates a new handler.
func NewOverrideHandler(svc *service.OverrideService) *OverrideHandler {
	return &OverrideHandler{service: svc}
}

// Create godoc
// @Summary Create a schedule override
// @Description Cancel a dated occurrence or reschedule it to a new date and slot
// @Tags Overrides
// @Accept json
// @Produce json
// @Param payload body service.CreateOverrideRequest true "Override payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/overrides [post]
func (h *OverrideHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}

	override, err := h.service.Create(c.Request.Context(), actor.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, override)
}

// List godoc
// @Summary List schedule overrides
// @Tags Overrides
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/overrides [get]
func (h *OverrideHandler) List(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "from must be formatted as YYYY-MM-DD"))
			return
		}
		from = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "to must be formatted as YYYY-MM-DD"))
			return
		}
		to = &d
	}

	overrides, err := h.service.List(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overrides, nil)
}

// Delete godoc
// @Summary Delete a schedule override
// @Tags Overrides
// @Produce json
// @Param id path string true "Override ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/overrides/{id} [delete]
func (h *OverrideHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
