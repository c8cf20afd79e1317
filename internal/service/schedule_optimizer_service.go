package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fitdesk/trainer-api/internal/dto"
	"github.com/fitdesk/trainer-api/internal/models"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
)

type bookingRequestFetcher interface {
	ListPending(ctx context.Context, trainerID string, from, to time.Time, limit int) ([]models.BookingRequest, error)
	UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.BookingRequestStatus, reason string) error
}

type bookingFeeder interface {
	ListByTrainerBetween(ctx context.Context, trainerID string, from, to time.Time) ([]models.Booking, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, bookings []models.Booking) error
}

type trainerPreferenceFetcher interface {
	GetByTrainer(ctx context.Context, trainerID string) (*models.TrainerPreference, error)
}

type optimizerTrainerReader interface {
	FindByID(ctx context.Context, id string) (*models.Trainer, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// ScheduleOptimizerService builds schedule proposals from pending booking
// requests and commits approved proposals to the trainer's calendar.
type ScheduleOptimizerService struct {
	trainers  optimizerTrainerReader
	prefs     trainerPreferenceFetcher
	requests  bookingRequestFetcher
	bookings  bookingFeeder
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	store     *proposalStore
	cfg       ScheduleOptimizerConfig
	now       func() time.Time
}

// ScheduleOptimizerConfig governs optimizer behaviour.
type ScheduleOptimizerConfig struct {
	ProposalTTL        time.Duration
	PlanningWindowDays int
	SlotUnitMinutes    int
	TypeWeights        map[string]float64
	LocationWeights    map[string]float64
}

// NewScheduleOptimizerService wires optimizer dependencies.
func NewScheduleOptimizerService(
	trainers optimizerTrainerReader,
	prefs trainerPreferenceFetcher,
	requests bookingRequestFetcher,
	bookings bookingFeeder,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg ScheduleOptimizerConfig,
) *ScheduleOptimizerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.PlanningWindowDays <= 0 {
		cfg.PlanningWindowDays = 7
	}
	if cfg.SlotUnitMinutes <= 0 {
		cfg.SlotUnitMinutes = 60
	}
	return &ScheduleOptimizerService{
		trainers:  trainers,
		prefs:     prefs,
		requests:  requests,
		bookings:  bookings,
		tx:        tx,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		store:     newProposalStore(cfg.ProposalTTL),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type scheduleProposal struct {
	ProposalID  string
	TrainerID   string
	WindowStart time.Time
	WindowEnd   time.Time
	Result      placementResult
	Message     string
	RequestedAt time.Time
}

// Optimize runs one full placement pass over the trainer's pending requests
// and caches the proposal for later approval. Nothing is persisted here.
func (s *ScheduleOptimizerService) Optimize(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule optimization payload")
	}

	window, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}

	if s.trainers != nil {
		if _, err := s.trainers.FindByID(ctx, req.TrainerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
		}
	}

	pref, err := s.prefs.GetByTrainer(ctx, req.TrainerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer preferences")
	}
	rules, err := resolveRules(pref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "trainer preferences are inconsistent")
	}

	limit := req.MaxResults
	if limit <= 0 {
		limit = 256
	}
	pending, err := s.requests.ListPending(ctx, req.TrainerID, window.start, window.end, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending booking requests")
	}
	existing, err := s.bookings.ListByTrainerBetween(ctx, req.TrainerID, window.start, window.end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing bookings")
	}

	runStart := time.Now()
	result := runPlacement(optimizationInput{
		TrainerID:   req.TrainerID,
		Window:      window,
		Requests:    pending,
		Rules:       rules,
		Bookings:    existing,
		Weights:     s.scoreWeights(),
		UnitMinutes: s.cfg.SlotUnitMinutes,
	})

	if s.metrics != nil {
		kinds := make([]string, 0, len(result.Rejected))
		for _, r := range result.Rejected {
			kinds = append(kinds, string(r.Reason.Kind))
		}
		s.metrics.ObserveOptimization(len(result.Proposed), kinds, time.Since(runStart))
	}

	proposal := scheduleProposal{
		ProposalID:  uuid.NewString(),
		TrainerID:   req.TrainerID,
		WindowStart: window.start,
		WindowEnd:   window.end,
		Result:      result,
		Message:     summaryMessage(result),
		RequestedAt: s.now(),
	}
	s.store.Save(proposal)

	s.logger.Info("schedule proposal generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("trainer_id", req.TrainerID),
		zap.Int("proposed", len(result.Proposed)),
		zap.Int("rejected", len(result.Rejected)),
	)

	return proposalResponse(proposal), nil
}

// GetProposal returns a previously generated proposal if it has not expired.
func (s *ScheduleOptimizerService) GetProposal(ctx context.Context, proposalID string) (*dto.OptimizeScheduleResponse, error) {
	if proposalID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposal id is required")
	}
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return proposalResponse(proposal), nil
}

// Apply commits a cached proposal: accepted entries become confirmed
// bookings and every covered request gets its final status, all inside one
// transaction. The proposal is evicted only after a successful commit.
func (s *ScheduleOptimizerService) Apply(ctx context.Context, req dto.ApplyScheduleRequest) (*dto.ApplyScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid apply schedule payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	confirmed := make([]models.Booking, 0, len(proposal.Result.Proposed))
	for _, p := range proposal.Result.Proposed {
		confirmed = append(confirmed, models.Booking{
			TrainerID:   proposal.TrainerID,
			ClientID:    p.ClientID,
			RequestID:   p.RequestID,
			SessionType: p.SessionType,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
			Status:      models.BookingStatusConfirmed,
		})
	}
	if len(confirmed) > 0 {
		if err = s.bookings.BulkCreateWithTx(ctx, tx, confirmed); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create bookings")
			return nil, err
		}
	}

	for _, p := range proposal.Result.Proposed {
		if err = s.requests.UpdateStatusWithTx(ctx, tx, p.RequestID, models.BookingRequestStatusApproved, ""); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve booking request")
			return nil, err
		}
	}
	for _, r := range proposal.Result.Rejected {
		if err = s.requests.UpdateStatusWithTx(ctx, tx, r.RequestID, models.BookingRequestStatusRejected, r.Reason.Message); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject booking request")
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule transaction")
		return nil, err
	}

	s.store.Delete(req.ProposalID)
	s.logger.Info("schedule proposal applied",
		zap.String("proposal_id", req.ProposalID),
		zap.String("trainer_id", proposal.TrainerID),
		zap.Int("approved", len(proposal.Result.Proposed)),
		zap.Int("rejected", len(proposal.Result.Rejected)),
	)

	return &dto.ApplyScheduleResponse{
		ProposalID: req.ProposalID,
		Approved:   len(proposal.Result.Proposed),
		Rejected:   len(proposal.Result.Rejected),
	}, nil
}

func (s *ScheduleOptimizerService) resolveWindow(req dto.OptimizeScheduleRequest) (timeRange, error) {
	start := startOfDay(s.now())
	if req.StartDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
		if err != nil {
			return timeRange{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
		start = parsed
	}
	end := start.AddDate(0, 0, s.cfg.PlanningWindowDays)
	if req.EndDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
		if err != nil {
			return timeRange{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
		}
		// endDate is inclusive
		end = parsed.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return timeRange{}, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	return timeRange{start: start, end: end}, nil
}

func (s *ScheduleOptimizerService) scoreWeights() ScoreWeights {
	weights := DefaultScoreWeights()
	if len(s.cfg.TypeWeights) > 0 {
		weights.TypeWeights = s.cfg.TypeWeights
	}
	if len(s.cfg.LocationWeights) > 0 {
		weights.LocationWeights = s.cfg.LocationWeights
	}
	return weights
}

func summaryMessage(result placementResult) string {
	stats := result.Statistics
	if stats.TotalRequests == 0 {
		return "no pending booking requests to schedule"
	}
	return fmt.Sprintf("scheduled %d of %d requests (%.0f%% efficiency), %.1f hours booked",
		stats.ScheduledCount, stats.TotalRequests, stats.SchedulingEfficiency, stats.TotalScheduledHours)
}

func proposalResponse(p scheduleProposal) *dto.OptimizeScheduleResponse {
	return &dto.OptimizeScheduleResponse{
		ProposalID: p.ProposalID,
		TrainerID:  p.TrainerID,
		Proposed:   p.Result.Proposed,
		Rejected:   p.Result.Rejected,
		Statistics: p.Result.Statistics,
		Message:    p.Message,
	}
}

// --- Proposal cache ---

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]scheduleProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]scheduleProposal),
	}
}

func (s *proposalStore) Save(proposal scheduleProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (scheduleProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return scheduleProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return scheduleProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
