package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/service"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/response"
	"github.com/laboserve/laboserve-api/pkg/storage"
)

// FileHandler serves reservation supporting documents through signed,
// expiring download links. Blobs are never exposed by raw path.
type FileHandler struct {
	reservations *service.ReservationService
	signer       *storage.SignedURLSigner
	store        *storage.LocalStorage
}

// NewFileHandler creates a new handler.
func NewFileHandler(reservations *service.ReservationService, signer *storage.SignedURLSigner, store *storage.LocalStorage) *FileHandler {
	return &FileHandler{reservations: reservations, signer: signer, store: store}
}

type signedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignURL godoc
// @Summary Signed download link for a supporting document
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /reservations/{id}/file-url [get]
func (h *FileHandler) SignURL(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reservation, err := h.reservations.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if reservation.SupportingFileRef == nil || *reservation.SupportingFileRef == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "reservation has no supporting document"))
		return
	}

	token, expiresAt, err := h.signer.Generate(reservation.ID, *reservation.SupportingFileRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, signedURLResponse{
		URL:       "/api/v1/files/download?token=" + token,
		ExpiresAt: expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a supporting document
// @Tags Reservations
// @Produce application/octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	_, relPath, _, err := h.signer.Parse(token)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrForbidden.Code, http.StatusForbidden, "invalid or expired download link"))
		return
	}

	c.FileAttachment(h.store.Path(relPath), relPath)
}
