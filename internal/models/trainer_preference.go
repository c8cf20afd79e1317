package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Preferred time-of-day blocks accepted in trainer preferences.
const (
	TimeBlockMorning   = "morning"
	TimeBlockAfternoon = "afternoon"
	TimeBlockEvening   = "evening"
)

// TrainerPreference stores working-hours and capacity rules for a trainer.
// PrioritizeHighValue is nullable on purpose: NULL means the duration bonus
// in priority scoring applies unconditionally, an explicit value gates it.
type TrainerPreference struct {
	ID                  string         `db:"id" json:"id"`
	TrainerID           string         `db:"trainer_id" json:"trainer_id"`
	MaxSessionsPerDay   int            `db:"max_sessions_per_day" json:"max_sessions_per_day"`
	MinBreakMinutes     int            `db:"min_break_minutes" json:"min_break_minutes"`
	PreferConsecutive   bool           `db:"prefer_consecutive" json:"prefer_consecutive"`
	WorkStart           string         `db:"work_start" json:"work_start"`
	WorkEnd             string         `db:"work_end" json:"work_end"`
	DaysOff             types.JSONText `db:"days_off" json:"days_off"`
	PreferredBlocks     types.JSONText `db:"preferred_blocks" json:"preferred_blocks"`
	PrioritizeRecurring bool           `db:"prioritize_recurring" json:"prioritize_recurring"`
	PrioritizeHighValue *bool          `db:"prioritize_high_value" json:"prioritize_high_value,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}
