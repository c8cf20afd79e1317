package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitdesk/trainer-api/internal/models"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
	"github.com/fitdesk/trainer-api/pkg/jobs"
	"github.com/fitdesk/trainer-api/pkg/storage"
)

type exportBookingsStub struct {
	bookings []models.Booking
	err      error
}

func (s *exportBookingsStub) ListByTrainerBetween(_ context.Context, _ string, _, _ time.Time) ([]models.Booking, error) {
	return s.bookings, s.err
}

type exportRequestsStub struct {
	requests []models.BookingRequest
}

func (s *exportRequestsStub) List(_ context.Context, _ models.BookingRequestFilter) ([]models.BookingRequest, int, error) {
	return s.requests, len(s.requests), nil
}

// syncDispatcher runs the job handler inline so tests avoid queue timing.
type syncDispatcher struct {
	handle func(ctx context.Context, job jobs.Job) error
	err    error
}

func (d *syncDispatcher) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	return d.handle(context.Background(), job)
}

func newExportFixture(t *testing.T, bookings []models.Booking, requests []models.BookingRequest) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)

	svc := NewExportService(
		&exportBookingsStub{bookings: bookings},
		&exportRequestsStub{requests: requests},
		store,
		signer,
		ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour},
		zap.NewNop(),
		nil, nil,
	)
	svc.AttachQueue(&syncDispatcher{handle: svc.Handle})
	return svc
}

func exportWindow() (time.Time, time.Time) {
	from := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 7)
}

func TestExportScheduleCSVEndToEnd(t *testing.T) {
	from, to := exportWindow()
	svc := newExportFixture(t, []models.Booking{{
		ID:          "bk-1",
		TrainerID:   "trainer-1",
		ClientID:    "client-1",
		SessionType: "personal_training",
		StartTime:   from.Add(9 * time.Hour),
		EndTime:     from.Add(10 * time.Hour),
		Status:      models.BookingStatusConfirmed,
	}}, nil)

	job, err := svc.CreateJob(context.Background(), "trainer-1", models.ExportKindSchedule, models.ExportFormatCSV, from, to)
	require.NoError(t, err)

	done, err := svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusDone, done.Status)
	assert.NotEmpty(t, done.Token)
	assert.Contains(t, done.DownloadURL, "/api/v1/exports/download/")

	download, err := svc.ResolveDownload(done.Token)
	require.NoError(t, err)
	defer download.File.Close()

	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "Date")
	assert.Contains(t, text, "client-1")
	assert.Contains(t, text, "09:00")
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))
}

func TestExportRequestsPDFEndToEnd(t *testing.T) {
	from, to := exportWindow()
	svc := newExportFixture(t, nil, []models.BookingRequest{{
		ID:              "req-1",
		ClientID:        "client-1",
		TrainerID:       "trainer-1",
		SessionType:     "rehab",
		DurationMinutes: 45,
		Status:          models.BookingRequestStatusRejected,
		RejectionReason: "requested day is a day off",
	}})

	job, err := svc.CreateJob(context.Background(), "trainer-1", models.ExportKindRequests, models.ExportFormatPDF, from, to)
	require.NoError(t, err)

	done, err := svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusDone, done.Status)

	download, err := svc.ResolveDownload(done.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ExportFormatPDF, download.Format)
	assert.True(t, strings.HasSuffix(download.Filename, ".pdf"))
}

func TestExportCreateJobValidation(t *testing.T) {
	from, to := exportWindow()
	svc := newExportFixture(t, nil, nil)

	_, err := svc.CreateJob(context.Background(), "trainer-1", "timesheets", models.ExportFormatCSV, from, to)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(context.Background(), "trainer-1", models.ExportKindSchedule, "xlsx", from, to)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportCreateJobWithoutQueue(t *testing.T) {
	from, to := exportWindow()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(&exportBookingsStub{}, &exportRequestsStub{}, store,
		storage.NewSignedURLSigner("test-secret", time.Hour),
		ExportConfig{}, zap.NewNop(), nil, nil)

	_, err = svc.CreateJob(context.Background(), "trainer-1", models.ExportKindSchedule, models.ExportFormatCSV, from, to)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestExportJobFailureRecorded(t *testing.T) {
	from, to := exportWindow()
	svc := newExportFixture(t, nil, nil)
	svc.bookings = &exportBookingsStub{err: context.DeadlineExceeded}

	// queue the job without running it, then drive the handler directly
	var captured jobs.Job
	svc.AttachQueue(&syncDispatcher{handle: func(_ context.Context, job jobs.Job) error {
		captured = job
		return nil
	}})

	job, err := svc.CreateJob(context.Background(), "trainer-1", models.ExportKindSchedule, models.ExportFormatCSV, from, to)
	require.NoError(t, err)
	require.Equal(t, job.ID, captured.ID)

	require.Error(t, svc.Handle(context.Background(), captured))

	failed, err := svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.ErrorMessage)
}

func TestExportGetJobUnknown(t *testing.T) {
	svc := newExportFixture(t, nil, nil)

	_, err := svc.GetJob("job-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportResolveDownloadBadToken(t *testing.T) {
	svc := newExportFixture(t, nil, nil)

	_, err := svc.ResolveDownload("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
