package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fitdesk/trainer-api/internal/models"
)

const bookingRequestColumns = "id, client_id, trainer_id, session_type, location_type, duration_minutes, start_time, end_time, preferred_windows, avoid_windows, allow_weekend, allow_evening, is_recurring, recurrence_pattern, special_requests, priority_score, status, rejection_reason, created_at, updated_at"

// BookingRequestRepository provides persistence for booking requests.
type BookingRequestRepository struct {
	db *sqlx.DB
}

// NewBookingRequestRepository creates a new booking request repository.
func NewBookingRequestRepository(db *sqlx.DB) *BookingRequestRepository {
	return &BookingRequestRepository{db: db}
}

// Create inserts a new booking request.
func (r *BookingRequestRepository) Create(ctx context.Context, req *models.BookingRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.BookingRequestStatusPending
	}
	if len(req.PreferredWindows) == 0 {
		req.PreferredWindows = []byte("[]")
	}
	if len(req.AvoidWindows) == 0 {
		req.AvoidWindows = []byte("[]")
	}

	const query = `INSERT INTO booking_requests (` + bookingRequestColumns + `)
		VALUES (:id, :client_id, :trainer_id, :session_type, :location_type, :duration_minutes, :start_time, :end_time, :preferred_windows, :avoid_windows, :allow_weekend, :allow_evening, :is_recurring, :recurrence_pattern, :special_requests, :priority_score, :status, :rejection_reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create booking request: %w", err)
	}
	return nil
}

// FindByID loads a booking request by id.
func (r *BookingRequestRepository) FindByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	query := `SELECT ` + bookingRequestColumns + ` FROM booking_requests WHERE id = $1`
	var req models.BookingRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns booking requests with optional filtering and pagination.
func (r *BookingRequestRepository) List(ctx context.Context, filter models.BookingRequestFilter) ([]models.BookingRequest, int, error) {
	base := "FROM booking_requests WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TrainerID != "" {
		conditions = append(conditions, fmt.Sprintf("trainer_id = $%d", len(args)+1))
		args = append(args, filter.TrainerID)
	}
	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at":     true,
		"priority_score": true,
		"start_time":     true,
		"status":         true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", bookingRequestColumns, base, sortBy, order, size, offset)
	var requests []models.BookingRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list booking requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count booking requests: %w", err)
	}

	return requests, total, nil
}

// ListPending returns up to limit pending requests for a trainer, oldest
// first so the optimizer input is stable across runs. Fixed-time requests
// starting outside [from, to) are excluded; flexible requests always
// qualify since their day is resolved inside the planning window.
func (r *BookingRequestRepository) ListPending(ctx context.Context, trainerID string, from, to time.Time, limit int) ([]models.BookingRequest, error) {
	if limit <= 0 || limit > 256 {
		limit = 256
	}
	query := fmt.Sprintf("SELECT %s FROM booking_requests WHERE trainer_id = $1 AND status = $2 AND (start_time IS NULL OR (start_time >= $3 AND start_time < $4)) ORDER BY created_at ASC, id ASC LIMIT %d", bookingRequestColumns, limit)
	var requests []models.BookingRequest
	if err := r.db.SelectContext(ctx, &requests, query, trainerID, models.BookingRequestStatusPending, from, to); err != nil {
		return nil, fmt.Errorf("list pending booking requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus sets the status and rejection reason of a request.
func (r *BookingRequestRepository) UpdateStatus(ctx context.Context, id string, status models.BookingRequestStatus, reason string) error {
	return r.updateStatus(ctx, r.db, id, status, reason)
}

// UpdateStatusWithTx sets the status inside an existing transaction.
func (r *BookingRequestRepository) UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.BookingRequestStatus, reason string) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.updateStatus(ctx, tx, id, status, reason)
}

func (r *BookingRequestRepository) updateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.BookingRequestStatus, reason string) error {
	const query = `UPDATE booking_requests SET status = $1, rejection_reason = $2, updated_at = $3 WHERE id = $4`
	res, err := exec.ExecContext(ctx, query, status, reason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update booking request status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("booking request %s not found", id)
	}
	return nil
}

// Delete removes a booking request.
func (r *BookingRequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM booking_requests WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete booking request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("booking request %s not found", id)
	}
	return nil
}
