package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/models"
	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
)

// LabHandler exposes the laboratory catalog.
type LabHandler struct {
	service *service.LabService
}

// NewLabHandler creates a new handler.
func NewLabHandler(svc *service.LabService) *LabHandler {
	return &LabHandler{service: svc}
}

type updateLabStatusRequest struct {
	Status models.LabStatus `json:"status" binding:"required"`
}

// List godoc
// @Summary List laboratories
// @Description Catalog with day-effective status; labs at daily capacity show as full for today
// @Tags Labs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /labs [get]
func (h *LabHandler) List(c *gin.Context) {
	labs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labs, nil)
}

// GetByID godoc
// @Summary Laboratory detail
// @Tags Labs
// @Produce json
// @Param id path string true "Lab ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /labs/{id} [get]
func (h *LabHandler) GetByID(c *gin.Context) {
	lab, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lab, nil)
}

// UpdateStatus godoc
// @Summary Update stored laboratory status
// @Tags Labs
// @Accept json
// @Produce json
// @Param id path string true "Lab ID"
// @Param payload body updateLabStatusRequest true "Status payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/labs/{id}/status [patch]
func (h *LabHandler) UpdateStatus(c *gin.Context) {
	var req updateLabStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
