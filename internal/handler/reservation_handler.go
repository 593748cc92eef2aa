package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/models"
	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// ReservationHandler exposes the booking lifecycle endpoints.
type ReservationHandler struct {
	service      *service.ReservationService
	availability *service.AvailabilityService
}

// NewReservationHandler creates a new handler.
func NewReservationHandler(svc *service.ReservationService, availability *service.AvailabilityService) *ReservationHandler {
	return &ReservationHandler{service: svc, availability: availability}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

// Create godoc
// @Summary Submit a reservation request
// @Description Submit a pending booking, optionally with a supporting document (multipart)
// @Tags Reservations
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateReservationRequest
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req = service.CreateReservationRequest{
			LabID:        c.PostForm("lab_id"),
			Date:         c.PostForm("date"),
			TimeSlot:     c.PostForm("time_slot"),
			ActivityType: c.PostForm("activity_type"),
			Category:     c.PostForm("category"),
			LecturerName: c.PostForm("lecturer_name"),
			CourseName:   c.PostForm("course_name"),
			Description:  c.PostForm("description"),
		}
		if fh, err := c.FormFile("file"); err == nil {
			src, err := fh.Open()
			if err != nil {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file"))
				return
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file"))
				return
			}
			req.FileName = fh.Filename
			req.FileData = data
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reservation payload"))
		return
	}

	reservation, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, reservation)
}

// Mine godoc
// @Summary List my reservations
// @Tags Reservations
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reservations/mine [get]
func (h *ReservationHandler) Mine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, pageSize := pageParams(c)
	reservations, pagination, err := h.service.ListForUser(c.Request.Context(), actor.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, pagination)
}

// Pending godoc
// @Summary List pending reservations
// @Tags Reservations
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/reservations/pending [get]
func (h *ReservationHandler) Pending(c *gin.Context) {
	page, pageSize := pageParams(c)
	reservations, pagination, err := h.service.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, pagination)
}

func reservationFilterFromQuery(c *gin.Context) models.ReservationFilter {
	filter := models.ReservationFilter{
		LabID:  c.Query("lab_id"),
		UserID: c.Query("user_id"),
		Status: models.ReservationStatus(c.Query("status")),
	}
	if raw := c.Query("date_from"); raw != "" {
		if d, err := time.ParseInLocation("2006-01-02", raw, time.UTC); err == nil {
			filter.DateFrom = &d
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if d, err := time.ParseInLocation("2006-01-02", raw, time.UTC); err == nil {
			filter.DateTo = &d
		}
	}
	filter.Page, filter.PageSize = pageParams(c)
	return filter
}

// History godoc
// @Summary Reservation history
// @Description Filterable reservation listing across all users
// @Tags Reservations
// @Produce json
// @Param lab_id query string false "Laboratory filter"
// @Param status query string false "Status filter"
// @Param date_from query string false "From date (YYYY-MM-DD)"
// @Param date_to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/reservations [get]
func (h *ReservationHandler) History(c *gin.Context) {
	reservations, pagination, err := h.service.List(c.Request.Context(), reservationFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, pagination)
}

// GetByID godoc
// @Summary Reservation detail
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reservation, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Approve godoc
// @Summary Approve a pending reservation
// @Description Approval re-checks the slot against approved occupancy inside one transaction
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/reservations/{id}/approve [patch]
func (h *ReservationHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reservation, err := h.service.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Reject godoc
// @Summary Reject a pending reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/reservations/{id}/reject [patch]
func (h *ReservationHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reservation, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// BookedSlots godoc
// @Summary Booked slots for a lab and date
// @Description Booking menu with occupied display slots marked
// @Tags Reservations
// @Produce json
// @Param lab_id query string true "Laboratory ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reservations/booked-slots [get]
func (h *ReservationHandler) BookedSlots(c *gin.Context) {
	labID := c.Query("lab_id")
	if labID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "lab_id is required"))
		return
	}
	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.UTC)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD"))
		return
	}

	slots, err := h.availability.BookedSlots(c.Request.Context(), labID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
