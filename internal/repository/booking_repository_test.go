package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/trainer-api/internal/models"
)

func newBookingRepoMock(t *testing.T) (*BookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestBookingRepositoryListByTrainerBetween(t *testing.T) {
	repo, mock := newBookingRepoMock(t)

	from := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	rows := sqlmock.NewRows([]string{"id", "trainer_id", "client_id", "start_time", "end_time", "status"}).
		AddRow("bk-1", "trainer-1", "client-1", from.Add(9*time.Hour), from.Add(10*time.Hour), "CONFIRMED")

	mock.ExpectQuery(`SELECT .+ FROM bookings\s+WHERE trainer_id = \$1 AND status = \$2 AND start_time < \$3 AND end_time > \$4\s+ORDER BY start_time ASC`).
		WithArgs("trainer-1", models.BookingStatusConfirmed, to, from).
		WillReturnRows(rows)

	bookings, err := repo.ListByTrainerBetween(context.Background(), "trainer-1", from, to)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "bk-1", bookings[0].ID)
	assert.Equal(t, models.BookingStatusConfirmed, bookings[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindByID(t *testing.T) {
	repo, mock := newBookingRepoMock(t)

	rows := sqlmock.NewRows([]string{"id", "trainer_id", "status"}).
		AddRow("bk-1", "trainer-1", "CONFIRMED")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, trainer_id, client_id, request_id, session_type, start_time, end_time, status, created_at FROM bookings WHERE id = $1")).
		WithArgs("bk-1").
		WillReturnRows(rows)

	booking, err := repo.FindByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBulkCreateWithTx(t *testing.T) {
	repo, mock := newBookingRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := repo.db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{TrainerID: "trainer-1", ClientID: "client-1", RequestID: "req-1", StartTime: start, EndTime: start.Add(time.Hour)},
		{TrainerID: "trainer-1", ClientID: "client-2", RequestID: "req-2", StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour)},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, bookings))
	require.NoError(t, tx.Commit())

	// generated defaults are written back into the slice
	for _, b := range bookings {
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, models.BookingStatusConfirmed, b.Status)
		assert.False(t, b.CreatedAt.IsZero())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBulkCreateWithTxNilTx(t *testing.T) {
	repo, _ := newBookingRepoMock(t)

	err := repo.BulkCreateWithTx(context.Background(), nil, []models.Booking{{TrainerID: "trainer-1"}})
	assert.Error(t, err)
}

func TestBookingRepositoryUpdateStatus(t *testing.T) {
	repo, mock := newBookingRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1 WHERE id = $2")).
		WithArgs(models.BookingStatusCancelled, "bk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "bk-1", models.BookingStatusCancelled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryUpdateStatusNotFound(t *testing.T) {
	repo, mock := newBookingRepoMock(t)

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingStatusCompleted, "bk-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "bk-missing", models.BookingStatusCompleted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
