package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fitdesk/trainer-api/internal/models"
)

const trainerColumns = "id, email, password_hash, full_name, specialty, active, last_login, created_at, updated_at"

// TrainerRepository provides database access for trainer accounts.
type TrainerRepository struct {
	db *sqlx.DB
}

// NewTrainerRepository creates a new instance of TrainerRepository.
func NewTrainerRepository(db *sqlx.DB) *TrainerRepository {
	return &TrainerRepository{db: db}
}

// FindByEmail returns a trainer by email address.
func (r *TrainerRepository) FindByEmail(ctx context.Context, email string) (*models.Trainer, error) {
	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE email = $1 LIMIT 1`
	var trainer models.Trainer
	if err := r.db.GetContext(ctx, &trainer, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find trainer by email: %w", err)
	}
	return &trainer, nil
}

// FindByID returns a trainer by identifier.
func (r *TrainerRepository) FindByID(ctx context.Context, id string) (*models.Trainer, error) {
	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE id = $1 LIMIT 1`
	var trainer models.Trainer
	if err := r.db.GetContext(ctx, &trainer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find trainer by id: %w", err)
	}
	return &trainer, nil
}

// UpdateLastLogin updates the last_login timestamp for a trainer.
func (r *TrainerRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE trainers SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Create inserts a new trainer account.
func (r *TrainerRepository) Create(ctx context.Context, trainer *models.Trainer) error {
	if trainer.ID == "" {
		trainer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if trainer.CreatedAt.IsZero() {
		trainer.CreatedAt = now
	}
	trainer.UpdatedAt = now

	const query = `INSERT INTO trainers (id, email, password_hash, full_name, specialty, active, last_login, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :full_name, :specialty, :active, :last_login, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, trainer); err != nil {
		return fmt.Errorf("create trainer: %w", err)
	}
	return nil
}
