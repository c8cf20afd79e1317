package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/fitdesk/trainer-api/internal/models"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
)

type trainerPreferenceRepo interface {
	GetByTrainer(ctx context.Context, trainerID string) (*models.TrainerPreference, error)
	Upsert(ctx context.Context, pref *models.TrainerPreference) error
	Delete(ctx context.Context, trainerID string) error
}

type trainerReader interface {
	FindByID(ctx context.Context, id string) (*models.Trainer, error)
}

// UpsertTrainerPreferenceRequest captures payload to store preferences.
type UpsertTrainerPreferenceRequest struct {
	MaxSessionsPerDay   int      `json:"max_sessions_per_day" validate:"min=1,max=24"`
	MinBreakMinutes     int      `json:"min_break_minutes" validate:"min=0,max=240"`
	PreferConsecutive   bool     `json:"prefer_consecutive"`
	WorkStart           string   `json:"work_start" validate:"required"`
	WorkEnd             string   `json:"work_end" validate:"required"`
	DaysOff             []int    `json:"days_off" validate:"dive,min=0,max=6"`
	PreferredBlocks     []string `json:"preferred_blocks" validate:"dive,oneof=morning afternoon evening"`
	PrioritizeRecurring bool     `json:"prioritize_recurring"`
	PrioritizeHighValue *bool    `json:"prioritize_high_value"`
}

// TrainerPreferenceService handles preference logic.
type TrainerPreferenceService struct {
	trainers  trainerReader
	repo      trainerPreferenceRepo
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTrainerPreferenceService builds the service.
func NewTrainerPreferenceService(trainers trainerReader, repo trainerPreferenceRepo, validate *validator.Validate, logger *zap.Logger) *TrainerPreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainerPreferenceService{
		trainers:  trainers,
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// WithCache attaches a lookup cache for preference reads.
func (s *TrainerPreferenceService) WithCache(cache *CacheService) *TrainerPreferenceService {
	s.cache = cache
	return s
}

// Get returns stored preferences or the scheduling defaults.
func (s *TrainerPreferenceService) Get(ctx context.Context, trainerID string) (*models.TrainerPreference, error) {
	if err := s.ensureTrainer(ctx, trainerID); err != nil {
		return nil, err
	}

	cacheKey := preferenceCacheKey(trainerID)
	if s.cache.Enabled() {
		var cached models.TrainerPreference
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	pref, err := s.repo.GetByTrainer(ctx, trainerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.TrainerPreference{
				TrainerID:         trainerID,
				MaxSessionsPerDay: 8,
				MinBreakMinutes:   15,
				WorkStart:         "08:00",
				WorkEnd:           "18:00",
				DaysOff:           types.JSONText("[]"),
				PreferredBlocks:   types.JSONText(`["morning","afternoon"]`),
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer preferences")
	}
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, pref, 0)
	}
	return pref, nil
}

// Upsert stores preferences for a trainer.
func (s *TrainerPreferenceService) Upsert(ctx context.Context, trainerID string, req UpsertTrainerPreferenceRequest) (*models.TrainerPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	if err := s.ensureTrainer(ctx, trainerID); err != nil {
		return nil, err
	}

	start, err := parseClock(req.WorkStart)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "work_start must be HH:MM")
	}
	end, err := parseClock(req.WorkEnd)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "work_end must be HH:MM")
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "work_end must be after work_start")
	}
	if len(req.DaysOff) >= 7 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "days_off cannot cover the whole week")
	}

	if req.DaysOff == nil {
		req.DaysOff = []int{}
	}
	if req.PreferredBlocks == nil {
		req.PreferredBlocks = []string{}
	}
	daysOff, err := marshalJSONField(req.DaysOff)
	if err != nil {
		return nil, err
	}
	blocks, err := marshalJSONField(req.PreferredBlocks)
	if err != nil {
		return nil, err
	}

	payload := &models.TrainerPreference{
		TrainerID:           trainerID,
		MaxSessionsPerDay:   req.MaxSessionsPerDay,
		MinBreakMinutes:     req.MinBreakMinutes,
		PreferConsecutive:   req.PreferConsecutive,
		WorkStart:           fmt.Sprintf("%02d:%02d", start/60, start%60),
		WorkEnd:             fmt.Sprintf("%02d:%02d", end/60, end%60),
		DaysOff:             daysOff,
		PreferredBlocks:     blocks,
		PrioritizeRecurring: req.PrioritizeRecurring,
		PrioritizeHighValue: req.PrioritizeHighValue,
	}

	existing, err := s.repo.GetByTrainer(ctx, trainerID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer preferences")
	}
	if existing != nil {
		payload.ID = existing.ID
		payload.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert trainer preferences")
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, preferenceCacheKey(trainerID))
	}
	return payload, nil
}

// Reset removes stored preferences so the defaults apply again.
func (s *TrainerPreferenceService) Reset(ctx context.Context, trainerID string) error {
	if err := s.ensureTrainer(ctx, trainerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, trainerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset trainer preferences")
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, preferenceCacheKey(trainerID))
	}
	return nil
}

func preferenceCacheKey(trainerID string) string {
	return "preferences:" + trainerID
}

func (s *TrainerPreferenceService) ensureTrainer(ctx context.Context, trainerID string) error {
	if _, err := s.trainers.FindByID(ctx, trainerID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}
	return nil
}

func marshalJSONField(v interface{}) (types.JSONText, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	return types.JSONText(bytes), nil
}
