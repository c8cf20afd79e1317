package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/trainer-api/internal/models"
	"github.com/fitdesk/trainer-api/internal/service"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
)

type trainerPreferenceMock struct {
	upserted  service.UpsertTrainerPreferenceRequest
	trainerID string
	resets    []string
	err       error
}

func (m *trainerPreferenceMock) Get(_ context.Context, trainerID string) (*models.TrainerPreference, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.TrainerPreference{TrainerID: trainerID, MaxSessionsPerDay: 8}, nil
}

func (m *trainerPreferenceMock) Upsert(_ context.Context, trainerID string, req service.UpsertTrainerPreferenceRequest) (*models.TrainerPreference, error) {
	m.trainerID = trainerID
	m.upserted = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.TrainerPreference{TrainerID: trainerID}, nil
}

func (m *trainerPreferenceMock) Reset(_ context.Context, trainerID string) error {
	m.resets = append(m.resets, trainerID)
	return m.err
}

func TestPreferenceHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TrainerPreferenceHandler{service: &trainerPreferenceMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/trainers/trainer-1/preferences", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "trainer-1"}}

	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "trainer-1")
}

func TestPreferenceHandlerGetUnknownTrainer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TrainerPreferenceHandler{service: &trainerPreferenceMock{
		err: appErrors.Clone(appErrors.ErrNotFound, "trainer not found"),
	}}

	req, _ := http.NewRequest(http.MethodGet, "/trainers/trainer-x/preferences", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "trainer-x"}}

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreferenceHandlerUpsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &trainerPreferenceMock{}
	handler := &TrainerPreferenceHandler{service: mockSvc}

	body := []byte(`{"max_sessions_per_day":6,"min_break_minutes":30,"work_start":"07:00","work_end":"15:00","days_off":[0],"preferred_blocks":["morning"]}`)
	req, _ := http.NewRequest(http.MethodPut, "/trainers/trainer-1/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "trainer-1"}}

	handler.Upsert(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "trainer-1", mockSvc.trainerID)
	require.Equal(t, 6, mockSvc.upserted.MaxSessionsPerDay)
	require.Equal(t, []int{0}, mockSvc.upserted.DaysOff)
}

func TestPreferenceHandlerUpsertMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TrainerPreferenceHandler{service: &trainerPreferenceMock{}}

	req, _ := http.NewRequest(http.MethodPut, "/trainers/trainer-1/preferences", bytes.NewReader([]byte(`{"work_start":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "trainer-1"}}

	handler.Upsert(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreferenceHandlerReset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &trainerPreferenceMock{}
	handler := &TrainerPreferenceHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodDelete, "/trainers/trainer-1/preferences", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "trainer-1"}}

	handler.Reset(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"trainer-1"}, mockSvc.resets)
}
