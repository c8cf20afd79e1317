package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fitdesk/trainer-api/internal/models"
)

// TrainerPreferenceRepository persists trainer scheduling preferences.
type TrainerPreferenceRepository struct {
	db *sqlx.DB
}

// NewTrainerPreferenceRepository constructs the repository.
func NewTrainerPreferenceRepository(db *sqlx.DB) *TrainerPreferenceRepository {
	return &TrainerPreferenceRepository{db: db}
}

// GetByTrainer returns stored preferences for a trainer.
func (r *TrainerPreferenceRepository) GetByTrainer(ctx context.Context, trainerID string) (*models.TrainerPreference, error) {
	const query = `SELECT id, trainer_id, max_sessions_per_day, min_break_minutes, prefer_consecutive, work_start, work_end, days_off, preferred_blocks, prioritize_recurring, prioritize_high_value, created_at, updated_at FROM trainer_preferences WHERE trainer_id = $1`
	var pref models.TrainerPreference
	if err := r.db.GetContext(ctx, &pref, query, trainerID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert creates or updates trainer preferences.
func (r *TrainerPreferenceRepository) Upsert(ctx context.Context, pref *models.TrainerPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now
	if len(pref.DaysOff) == 0 {
		pref.DaysOff = []byte("[]")
	}
	if len(pref.PreferredBlocks) == 0 {
		pref.PreferredBlocks = []byte("[]")
	}

	const query = `INSERT INTO trainer_preferences (id, trainer_id, max_sessions_per_day, min_break_minutes, prefer_consecutive, work_start, work_end, days_off, preferred_blocks, prioritize_recurring, prioritize_high_value, created_at, updated_at)
		VALUES (:id, :trainer_id, :max_sessions_per_day, :min_break_minutes, :prefer_consecutive, :work_start, :work_end, :days_off, :preferred_blocks, :prioritize_recurring, :prioritize_high_value, :created_at, :updated_at)
		ON CONFLICT (trainer_id) DO UPDATE
		SET max_sessions_per_day = EXCLUDED.max_sessions_per_day,
		    min_break_minutes = EXCLUDED.min_break_minutes,
		    prefer_consecutive = EXCLUDED.prefer_consecutive,
		    work_start = EXCLUDED.work_start,
		    work_end = EXCLUDED.work_end,
		    days_off = EXCLUDED.days_off,
		    preferred_blocks = EXCLUDED.preferred_blocks,
		    prioritize_recurring = EXCLUDED.prioritize_recurring,
		    prioritize_high_value = EXCLUDED.prioritize_high_value,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert trainer preference: %w", err)
	}
	return nil
}

// Delete removes a trainer's preferences so defaults apply again.
func (r *TrainerPreferenceRepository) Delete(ctx context.Context, trainerID string) error {
	const query = `DELETE FROM trainer_preferences WHERE trainer_id = $1`
	res, err := r.db.ExecContext(ctx, query, trainerID)
	if err != nil {
		return fmt.Errorf("delete trainer preference: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("trainer preference for %s not found", trainerID)
	}
	return nil
}
