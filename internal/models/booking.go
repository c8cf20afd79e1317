package models

import "time"

// BookingStatus represents lifecycle phases for a confirmed booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking is a confirmed, committed slot on a trainer's calendar. Confirmed
// bookings seed the optimizer's conflict index; the optimizer never creates
// them itself, the apply step does.
type Booking struct {
	ID          string        `db:"id" json:"id"`
	TrainerID   string        `db:"trainer_id" json:"trainer_id"`
	ClientID    string        `db:"client_id" json:"client_id"`
	RequestID   string        `db:"request_id" json:"request_id"`
	SessionType string        `db:"session_type" json:"session_type"`
	StartTime   time.Time     `db:"start_time" json:"start_time"`
	EndTime     time.Time     `db:"end_time" json:"end_time"`
	Status      BookingStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
