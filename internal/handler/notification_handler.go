package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// NotificationHandler manages push token registration and the relay
// endpoints kicking off booking notifications.
type NotificationHandler struct {
	service      *service.NotificationService
	reservations *service.ReservationService
}

// NewNotificationHandler creates a new handler.
func NewNotificationHandler(svc *service.NotificationService, reservations *service.ReservationService) *NotificationHandler {
	return &NotificationHandler{service: svc, reservations: reservations}
}

type relayRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
}

// RegisterToken godoc
// @Summary Register a device push token
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.RegisterTokenRequest true "Token payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/tokens [post]
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}

	if err := h.service.RegisterToken(c.Request.Context(), actor.ID, actor.Role, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnregisterToken godoc
// @Summary Remove a device push token
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.RegisterTokenRequest true "Token payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/tokens [delete]
func (h *NotificationHandler) UnregisterToken(c *gin.Context) {
	var req service.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}

	if err := h.service.UnregisterToken(c.Request.Context(), req.Token); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NotifyAdminNewBooking godoc
// @Summary Relay a new-booking notification to admins
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body relayRequest true "Relay payload"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/relay/new-booking [post]
func (h *NotificationHandler) NotifyAdminNewBooking(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req relayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid relay payload"))
		return
	}

	reservation, err := h.reservations.GetByID(c.Request.Context(), actor, req.ReservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.service.NotifyAdminNewBooking(c.Request.Context(), reservation)
	response.JSON(c, http.StatusAccepted, gin.H{"queued": true}, nil)
}

// NotifyUserBookingStatus godoc
// @Summary Relay a booking-status notification to the requester
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body relayRequest true "Relay payload"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/notifications/relay/booking-status [post]
func (h *NotificationHandler) NotifyUserBookingStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req relayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid relay payload"))
		return
	}

	reservation, err := h.reservations.GetByID(c.Request.Context(), actor, req.ReservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.service.NotifyUserBookingStatus(c.Request.Context(), reservation)
	response.JSON(c, http.StatusAccepted, gin.H{"queued": true}, nil)
}
