package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/trainer-api/internal/models"
)

func newTrainerPreferenceRepoMock(t *testing.T) (*TrainerPreferenceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTrainerPreferenceRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestTrainerPreferenceRepositoryGetByTrainer(t *testing.T) {
	repo, mock := newTrainerPreferenceRepoMock(t)

	rows := sqlmock.NewRows([]string{"id", "trainer_id", "max_sessions_per_day", "min_break_minutes", "work_start", "work_end", "days_off", "preferred_blocks"}).
		AddRow("pref-1", "trainer-1", 6, 30, "07:00", "15:00", []byte(`[0]`), []byte(`["morning"]`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, trainer_id, max_sessions_per_day, min_break_minutes, prefer_consecutive, work_start, work_end, days_off, preferred_blocks, prioritize_recurring, prioritize_high_value, created_at, updated_at FROM trainer_preferences WHERE trainer_id = $1")).
		WithArgs("trainer-1").
		WillReturnRows(rows)

	pref, err := repo.GetByTrainer(context.Background(), "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, 6, pref.MaxSessionsPerDay)
	assert.Equal(t, "07:00", pref.WorkStart)
	assert.JSONEq(t, `[0]`, string(pref.DaysOff))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerPreferenceRepositoryGetByTrainerNoRows(t *testing.T) {
	repo, mock := newTrainerPreferenceRepoMock(t)

	mock.ExpectQuery("SELECT .+ FROM trainer_preferences WHERE trainer_id").
		WithArgs("trainer-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByTrainer(context.Background(), "trainer-missing")
	// callers branch on sql.ErrNoRows to fall back to defaults
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerPreferenceRepositoryUpsert(t *testing.T) {
	repo, mock := newTrainerPreferenceRepoMock(t)

	mock.ExpectExec("INSERT INTO trainer_preferences").
		WillReturnResult(sqlmock.NewResult(1, 1))

	pref := &models.TrainerPreference{
		TrainerID:         "trainer-1",
		MaxSessionsPerDay: 6,
		MinBreakMinutes:   30,
		WorkStart:         "07:00",
		WorkEnd:           "15:00",
		DaysOff:           types.JSONText(`[0]`),
		PreferredBlocks:   types.JSONText(`["morning"]`),
	}
	require.NoError(t, repo.Upsert(context.Background(), pref))
	assert.NotEmpty(t, pref.ID)
	assert.False(t, pref.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerPreferenceRepositoryUpsertDefaultsEmptyJSON(t *testing.T) {
	repo, mock := newTrainerPreferenceRepoMock(t)

	mock.ExpectExec("INSERT INTO trainer_preferences").
		WillReturnResult(sqlmock.NewResult(1, 1))

	pref := &models.TrainerPreference{TrainerID: "trainer-1", WorkStart: "08:00", WorkEnd: "18:00"}
	require.NoError(t, repo.Upsert(context.Background(), pref))
	assert.JSONEq(t, `[]`, string(pref.DaysOff))
	assert.JSONEq(t, `[]`, string(pref.PreferredBlocks))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerPreferenceRepositoryDelete(t *testing.T) {
	repo, mock := newTrainerPreferenceRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trainer_preferences WHERE trainer_id = $1")).
		WithArgs("trainer-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "trainer-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerPreferenceRepositoryDeleteNotFound(t *testing.T) {
	repo, mock := newTrainerPreferenceRepoMock(t)

	mock.ExpectExec("DELETE FROM trainer_preferences WHERE trainer_id").
		WithArgs("trainer-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "trainer-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
