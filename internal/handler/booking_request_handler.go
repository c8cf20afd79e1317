package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/trainer-api/internal/models"
	"github.com/fitdesk/trainer-api/internal/service"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
	"github.com/fitdesk/trainer-api/pkg/response"
)

type bookingRequestManager interface {
	Create(ctx context.Context, payload service.CreateBookingRequestPayload) (*models.BookingRequest, error)
	Get(ctx context.Context, id string) (*models.BookingRequest, error)
	List(ctx context.Context, filter models.BookingRequestFilter) ([]models.BookingRequest, int, error)
	Cancel(ctx context.Context, id string) error
}

// BookingRequestHandler exposes booking request intake endpoints.
type BookingRequestHandler struct {
	service bookingRequestManager
}

// NewBookingRequestHandler constructs the handler.
func NewBookingRequestHandler(svc *service.BookingRequestService) *BookingRequestHandler {
	return &BookingRequestHandler{service: svc}
}

// Create godoc
// @Summary Submit a booking request
// @Tags Booking Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateBookingRequestPayload true "Booking request payload"
// @Success 201 {object} response.Envelope
// @Router /booking-requests [post]
func (h *BookingRequestHandler) Create(c *gin.Context) {
	var payload service.CreateBookingRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking request payload"))
		return
	}
	record, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Get godoc
// @Summary Get a booking request
// @Tags Booking Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /booking-requests/{id} [get]
func (h *BookingRequestHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// List godoc
// @Summary List booking requests
// @Tags Booking Requests
// @Produce json
// @Param trainerId query string false "Trainer ID"
// @Param clientId query string false "Client ID"
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /booking-requests [get]
func (h *BookingRequestHandler) List(c *gin.Context) {
	filter := models.BookingRequestFilter{
		TrainerID: c.Query("trainerId"),
		ClientID:  c.Query("clientId"),
		Status:    models.BookingRequestStatus(c.Query("status")),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	records, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Cancel godoc
// @Summary Cancel a pending booking request
// @Tags Booking Requests
// @Param id path string true "Request ID"
// @Success 204
// @Router /booking-requests/{id} [delete]
func (h *BookingRequestHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
