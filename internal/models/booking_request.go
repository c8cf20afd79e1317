package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// BookingRequestStatus represents lifecycle phases for a client booking request.
type BookingRequestStatus string

const (
	BookingRequestStatusPending  BookingRequestStatus = "PENDING"
	BookingRequestStatusApproved BookingRequestStatus = "APPROVED"
	BookingRequestStatusRejected BookingRequestStatus = "REJECTED"
	BookingRequestStatusExpired  BookingRequestStatus = "EXPIRED"
)

// TimeWindow describes a time-of-day window, e.g. {"09:00", "12:00"}.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BookingRequest is a client's ask for time with a trainer. Requests carry
// either a fixed start/end window or a list of preferred time-of-day windows;
// flexible requests are resolved to concrete times by the optimizer.
type BookingRequest struct {
	ID                string               `db:"id" json:"id"`
	ClientID          string               `db:"client_id" json:"client_id"`
	TrainerID         string               `db:"trainer_id" json:"trainer_id"`
	SessionType       string               `db:"session_type" json:"session_type"`
	LocationType      string               `db:"location_type" json:"location_type"`
	DurationMinutes   int                  `db:"duration_minutes" json:"duration_minutes"`
	StartTime         *time.Time           `db:"start_time" json:"start_time,omitempty"`
	EndTime           *time.Time           `db:"end_time" json:"end_time,omitempty"`
	PreferredWindows  types.JSONText       `db:"preferred_windows" json:"preferred_windows"`
	AvoidWindows      types.JSONText       `db:"avoid_windows" json:"avoid_windows"`
	AllowWeekend      bool                 `db:"allow_weekend" json:"allow_weekend"`
	AllowEvening      bool                 `db:"allow_evening" json:"allow_evening"`
	IsRecurring       bool                 `db:"is_recurring" json:"is_recurring"`
	RecurrencePattern string               `db:"recurrence_pattern" json:"recurrence_pattern,omitempty"`
	SpecialRequests   string               `db:"special_requests" json:"special_requests,omitempty"`
	PriorityScore     float64              `db:"priority_score" json:"priority_score"`
	Status            BookingRequestStatus `db:"status" json:"status"`
	RejectionReason   string               `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt         time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `db:"updated_at" json:"updated_at"`
}

// BookingRequestFilter captures query criteria for listing requests.
type BookingRequestFilter struct {
	TrainerID string
	ClientID  string
	Status    BookingRequestStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
