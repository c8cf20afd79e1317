package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/trainer-api/internal/dto"
	"github.com/fitdesk/trainer-api/internal/service"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
	"github.com/fitdesk/trainer-api/pkg/response"
)

type scheduleOptimizer interface {
	Optimize(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error)
	GetProposal(ctx context.Context, proposalID string) (*dto.OptimizeScheduleResponse, error)
	Apply(ctx context.Context, req dto.ApplyScheduleRequest) (*dto.ApplyScheduleResponse, error)
}

// ScheduleOptimizerHandler exposes schedule optimization endpoints.
type ScheduleOptimizerHandler struct {
	service scheduleOptimizer
}

// NewScheduleOptimizerHandler constructs the handler.
func NewScheduleOptimizerHandler(svc *service.ScheduleOptimizerService) *ScheduleOptimizerHandler {
	return &ScheduleOptimizerHandler{service: svc}
}

// Optimize godoc
// @Summary Generate an optimized schedule proposal
// @Description Runs priority-ordered placement over the trainer's pending booking requests. The proposal is cached; nothing is persisted until it is applied.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeScheduleRequest true "Optimize schedule payload"
// @Success 200 {object} response.Envelope
// @Router /scheduler/optimize [post]
func (h *ScheduleOptimizerHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimize payload"))
		return
	}
	if req.TrainerID == "" {
		if claims := claimsFromContext(c); claims != nil {
			req.TrainerID = claims.TrainerID
		}
	}
	result, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GetProposal godoc
// @Summary Fetch a cached schedule proposal
// @Tags Scheduler
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Router /scheduler/proposals/{id} [get]
func (h *ScheduleOptimizerHandler) GetProposal(c *gin.Context) {
	result, err := h.service.GetProposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Apply godoc
// @Summary Apply a cached schedule proposal
// @Description Confirms the proposal's accepted sessions as bookings and finalizes request statuses in one transaction.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.ApplyScheduleRequest true "Apply schedule payload"
// @Success 201 {object} response.Envelope
// @Router /scheduler/apply [post]
func (h *ScheduleOptimizerHandler) Apply(c *gin.Context) {
	var req dto.ApplyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid apply payload"))
		return
	}
	result, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
