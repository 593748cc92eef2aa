package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laboserve/laboserve-api/internal/middleware"
	"github.com/laboserve/laboserve-api/internal/models"
)

func newTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func authenticate(c *gin.Context, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:   "user-1",
		Email:    "user@unsika.ac.id",
		FullName: "Test User",
		Role:     role,
	})
}

func TestReservationCreateRequiresAuth(t *testing.T) {
	handler := NewReservationHandler(nil, nil)
	c, w := newTestContext(t, http.MethodPost, "/reservations", []byte(`{}`))

	handler.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReservationCreateRejectsInvalidJSON(t *testing.T) {
	handler := NewReservationHandler(nil, nil)
	c, w := newTestContext(t, http.MethodPost, "/reservations", []byte(`not-json`))
	authenticate(c, models.RoleStudent)

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleDayRejectsBadDate(t *testing.T) {
	handler := NewScheduleHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/schedules/day?date=31-12-2025", nil)

	handler.Day(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookedSlotsRequiresLabID(t *testing.T) {
	handler := NewReservationHandler(nil, nil)
	c, w := newTestContext(t, http.MethodGet, "/reservations/booked-slots?date=2025-01-06", nil)

	handler.BookedSlots(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverrideCreateRejectsInvalidBody(t *testing.T) {
	handler := NewOverrideHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/admin/overrides", []byte(`invalid`))
	authenticate(c, models.RoleAdmin)

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHistoryRejectsUnknownFormat(t *testing.T) {
	handler := NewExportHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/admin/reservations/export?format=xlsx", nil)
	authenticate(c, models.RoleAdmin)

	handler.History(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportRequiresFile(t *testing.T) {
	handler := NewImportHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/admin/schedules/import", nil)
	authenticate(c, models.RoleAdmin)

	handler.Import(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
