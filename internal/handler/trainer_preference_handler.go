package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/trainer-api/internal/models"
	"github.com/fitdesk/trainer-api/internal/service"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
	"github.com/fitdesk/trainer-api/pkg/response"
)

type trainerPreferenceManager interface {
	Get(ctx context.Context, trainerID string) (*models.TrainerPreference, error)
	Upsert(ctx context.Context, trainerID string, req service.UpsertTrainerPreferenceRequest) (*models.TrainerPreference, error)
	Reset(ctx context.Context, trainerID string) error
}

// TrainerPreferenceHandler exposes trainer preference endpoints.
type TrainerPreferenceHandler struct {
	service trainerPreferenceManager
}

// NewTrainerPreferenceHandler constructs the handler.
func NewTrainerPreferenceHandler(svc *service.TrainerPreferenceService) *TrainerPreferenceHandler {
	return &TrainerPreferenceHandler{service: svc}
}

// Get godoc
// @Summary Get scheduling preferences for a trainer
// @Tags Preferences
// @Produce json
// @Param id path string true "Trainer ID"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id}/preferences [get]
func (h *TrainerPreferenceHandler) Get(c *gin.Context) {
	pref, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Upsert godoc
// @Summary Store scheduling preferences for a trainer
// @Tags Preferences
// @Accept json
// @Produce json
// @Param id path string true "Trainer ID"
// @Param payload body service.UpsertTrainerPreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id}/preferences [put]
func (h *TrainerPreferenceHandler) Upsert(c *gin.Context) {
	var req service.UpsertTrainerPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}
	pref, err := h.service.Upsert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Reset godoc
// @Summary Remove stored preferences so defaults apply again
// @Tags Preferences
// @Param id path string true "Trainer ID"
// @Success 204
// @Router /trainers/{id}/preferences [delete]
func (h *TrainerPreferenceHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
