package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/fitdesk/trainer-api/internal/models"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
)

type bookingRequestRepo interface {
	Create(ctx context.Context, req *models.BookingRequest) error
	FindByID(ctx context.Context, id string) (*models.BookingRequest, error)
	List(ctx context.Context, filter models.BookingRequestFilter) ([]models.BookingRequest, int, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingRequestStatus, reason string) error
	Delete(ctx context.Context, id string) error
}

// CreateBookingRequestPayload captures an incoming client booking request.
type CreateBookingRequestPayload struct {
	ClientID          string              `json:"client_id" validate:"required"`
	TrainerID         string              `json:"trainer_id" validate:"required"`
	SessionType       string              `json:"session_type" validate:"required"`
	LocationType      string              `json:"location_type"`
	DurationMinutes   int                 `json:"duration_minutes" validate:"required,min=15,max=480"`
	StartTime         *time.Time          `json:"start_time"`
	EndTime           *time.Time          `json:"end_time"`
	PreferredWindows  []models.TimeWindow `json:"preferred_windows"`
	AvoidWindows      []models.TimeWindow `json:"avoid_windows"`
	AllowWeekend      bool                `json:"allow_weekend"`
	AllowEvening      bool                `json:"allow_evening"`
	IsRecurring       bool                `json:"is_recurring"`
	RecurrencePattern string              `json:"recurrence_pattern"`
	SpecialRequests   string              `json:"special_requests"`
}

// BookingRequestService handles the intake side of booking requests.
type BookingRequestService struct {
	trainers  trainerReader
	repo      bookingRequestRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingRequestService builds the service.
func NewBookingRequestService(trainers trainerReader, repo bookingRequestRepo, validate *validator.Validate, logger *zap.Logger) *BookingRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingRequestService{
		trainers:  trainers,
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// Create validates and stores a new pending booking request.
func (s *BookingRequestService) Create(ctx context.Context, payload CreateBookingRequestPayload) (*models.BookingRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking request payload")
	}
	if payload.StartTime == nil && len(payload.PreferredWindows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either start_time or preferred_windows is required")
	}
	if payload.StartTime != nil && payload.EndTime != nil && !payload.EndTime.After(*payload.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	for _, w := range append(append([]models.TimeWindow{}, payload.PreferredWindows...), payload.AvoidWindows...) {
		if _, err := parseClock(w.Start); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "time windows must use HH:MM")
		}
		if w.End != "" {
			if _, err := parseClock(w.End); err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "time windows must use HH:MM")
			}
		}
	}
	if _, err := s.trainers.FindByID(ctx, payload.TrainerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}

	preferred, err := encodeWindows(payload.PreferredWindows)
	if err != nil {
		return nil, err
	}
	avoid, err := encodeWindows(payload.AvoidWindows)
	if err != nil {
		return nil, err
	}

	record := &models.BookingRequest{
		ClientID:          payload.ClientID,
		TrainerID:         payload.TrainerID,
		SessionType:       payload.SessionType,
		LocationType:      payload.LocationType,
		DurationMinutes:   payload.DurationMinutes,
		StartTime:         payload.StartTime,
		EndTime:           payload.EndTime,
		PreferredWindows:  preferred,
		AvoidWindows:      avoid,
		AllowWeekend:      payload.AllowWeekend,
		AllowEvening:      payload.AllowEvening,
		IsRecurring:       payload.IsRecurring,
		RecurrencePattern: payload.RecurrencePattern,
		SpecialRequests:   payload.SpecialRequests,
		Status:            models.BookingRequestStatusPending,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking request")
	}

	s.logger.Info("booking request created",
		zap.String("request_id", record.ID),
		zap.String("trainer_id", record.TrainerID),
		zap.String("client_id", record.ClientID),
	)
	return record, nil
}

// Get loads a single booking request.
func (s *BookingRequestService) Get(ctx context.Context, id string) (*models.BookingRequest, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request id is required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking request")
	}
	return record, nil
}

// List returns booking requests matching the filter, with total count.
func (s *BookingRequestService) List(ctx context.Context, filter models.BookingRequestFilter) ([]models.BookingRequest, int, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list booking requests")
	}
	return records, total, nil
}

// Cancel marks a pending request as expired; approved requests stay put.
func (s *BookingRequestService) Cancel(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.Status != models.BookingRequestStatusPending {
		return appErrors.Clone(appErrors.ErrConflict, "only pending requests can be cancelled")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.BookingRequestStatusExpired, "cancelled by client"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking request")
	}
	return nil
}

func encodeWindows(windows []models.TimeWindow) (types.JSONText, error) {
	if windows == nil {
		windows = []models.TimeWindow{}
	}
	bytes, err := json.Marshal(windows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time windows")
	}
	return types.JSONText(bytes), nil
}
