package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/dto"
	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// ScheduleHandler serves the composed timetable views.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

func scheduleFilterFromQuery(c *gin.Context) dto.ScheduleFilter {
	return dto.ScheduleFilter{
		Search:  c.Query("search"),
		Program: c.Query("program"),
		LabID:   c.Query("lab_id"),
	}
}

// Week godoc
// @Summary Weekly composed schedule
// @Description Merged faculty timetable, approved reservations and overrides for the current week
// @Tags Schedule
// @Produce json
// @Param search query string false "Free-text filter"
// @Param program query string false "Program prefix filter"
// @Param lab_id query string false "Laboratory filter"
// @Success 200 {object} response.Envelope
// @Router /schedules/week [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	items, err := h.service.Compose(c.Request.Context(), nil, scheduleFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Day godoc
// @Summary Composed schedule for a single date
// @Tags Schedule
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param search query string false "Free-text filter"
// @Param program query string false "Program prefix filter"
// @Param lab_id query string false "Laboratory filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/day [get]
func (h *ScheduleHandler) Day(c *gin.Context) {
	raw := c.Query("date")
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD"))
		return
	}

	items, err := h.service.Compose(c.Request.Context(), &date, scheduleFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Grid godoc
// @Summary Weekly timetable grid
// @Description Day-by-lab grid with fixed display slots; empty cells are marked available
// @Tags Schedule
// @Produce json
// @Param search query string false "Free-text filter"
// @Param program query string false "Program prefix filter"
// @Param lab_id query string false "Laboratory filter"
// @Success 200 {object} response.Envelope
// @Router /schedules/grid [get]
func (h *ScheduleHandler) Grid(c *gin.Context) {
	days, err := h.service.Grid(c.Request.Context(), scheduleFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}
