package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fitdesk/trainer-api/internal/models"
)

const bookingColumns = "id, trainer_id, client_id, request_id, session_type, start_time, end_time, status, created_at"

// BookingRepository provides persistence for confirmed bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListByTrainerBetween returns bookings for a trainer whose slot intersects
// the [from, to) window, ordered by start time.
func (r *BookingRepository) ListByTrainerBetween(ctx context.Context, trainerID string, from, to time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE trainer_id = $1 AND status = $2 AND start_time < $3 AND end_time > $4
		ORDER BY start_time ASC`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, trainerID, models.BookingStatusConfirmed, to, from); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// FindByID loads a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// BulkCreateWithTx inserts bookings using an existing transaction.
func (r *BookingRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, bookings []models.Booking) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.bulkInsertBookings(ctx, tx, bookings)
}

func (r *BookingRepository) bulkInsertBookings(ctx context.Context, exec sqlx.ExtContext, bookings []models.Booking) error {
	now := time.Now().UTC()
	for i := range bookings {
		payload := bookings[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		if payload.Status == "" {
			payload.Status = models.BookingStatusConfirmed
		}

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO bookings (id, trainer_id, client_id, request_id, session_type, start_time, end_time, status, created_at) VALUES (:id, :trainer_id, :client_id, :request_id, :session_type, :start_time, :end_time, :status, :created_at)`, &payload); err != nil {
			return fmt.Errorf("bulk insert booking: %w", err)
		}
		bookings[i] = payload
	}
	return nil
}

// UpdateStatus transitions a booking to a new status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	const query = `UPDATE bookings SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("booking %s not found", id)
	}
	return nil
}
