package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitdesk/trainer-api/internal/models"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
	"github.com/fitdesk/trainer-api/pkg/export"
	"github.com/fitdesk/trainer-api/pkg/jobs"
	"github.com/fitdesk/trainer-api/pkg/storage"
)

type exportBookingLister interface {
	ListByTrainerBetween(ctx context.Context, trainerID string, from, to time.Time) ([]models.Booking, error)
}

type exportRequestLister interface {
	List(ctx context.Context, filter models.BookingRequestFilter) ([]models.BookingRequest, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// ExportService renders trainer schedules and booking request lists to files
// and tracks export jobs through the worker queue. Jobs live in memory; the
// rendered files carry the durable state and expire with the result TTL.
type ExportService struct {
	bookings exportBookingLister
	requests exportRequestLister
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	queue    jobDispatcher
	logger   *zap.Logger
	cfg      ExportConfig

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs an ExportService.
func NewExportService(bookings exportBookingLister, requests exportRequestLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		bookings: bookings,
		requests: requests,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		jobs:     make(map[string]*models.ExportJob),
	}
}

// AttachQueue sets the dispatcher used for asynchronous processing.
func (s *ExportService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob registers an export job and enqueues it for processing.
func (s *ExportService) CreateJob(ctx context.Context, trainerID string, kind models.ExportKind, format models.ExportFormat, from, to time.Time) (*models.ExportJob, error) {
	switch kind {
	case models.ExportKindSchedule, models.ExportKindRequests:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %s", kind))
	}
	switch format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %s", format))
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue unavailable")
	}
	if !to.After(from) {
		to = from.AddDate(0, 0, 7)
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		TrainerID: trainerID,
		Kind:      kind,
		Format:    format,
		From:      from,
		To:        to,
		Status:    models.ExportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(kind)}); err != nil {
		s.finishJob(job.ID, models.ExportStatusFailed, "", "", "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return s.snapshotJob(job.ID), nil
}

// GetJob returns job state for status polling.
func (s *ExportService) GetJob(id string) (*models.ExportJob, error) {
	job := s.snapshotJob(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// Handle processes one queued export job. It is the queue's worker callback.
func (s *ExportService) Handle(ctx context.Context, job jobs.Job) error {
	record := s.snapshotJob(job.ID)
	if record == nil {
		return fmt.Errorf("export job %s unknown", job.ID)
	}
	s.setStatus(job.ID, models.ExportStatusRunning)

	dataset, title, err := s.buildDataset(ctx, record)
	if err != nil {
		s.finishJob(job.ID, models.ExportStatusFailed, "", "", err.Error())
		return err
	}

	var payload []byte
	switch record.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", record.Format)
	}
	if err != nil {
		s.finishJob(job.ID, models.ExportStatusFailed, "", "", err.Error())
		return err
	}

	filename := fmt.Sprintf("%s/%s-%s.%s", record.TrainerID, record.Kind, record.CreatedAt.Format("20060102T150405"), record.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.finishJob(job.ID, models.ExportStatusFailed, "", "", "failed to store export file")
		return err
	}

	token, _, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		s.finishJob(job.ID, models.ExportStatusFailed, "", "", "failed to sign download token")
		return err
	}

	url := fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	s.finishJob(job.ID, models.ExportStatusDone, relPath, token, "")
	s.setDownloadURL(job.ID, url)
	s.logger.Info("export generated",
		zap.String("job_id", record.ID),
		zap.String("trainer_id", record.TrainerID),
		zap.String("path", relPath),
	)
	return nil
}

// ResolveDownload validates a signed token and opens the underlying file.
func (s *ExportService) ResolveDownload(token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	record := s.snapshotJob(jobID)
	if record == nil || record.Status != models.ExportStatusDone {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found or not ready")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	parts := strings.Split(relPath, "/")
	return &ExportDownload{
		File:      file,
		Filename:  parts[len(parts)-1],
		Format:    record.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// Cleanup removes expired export files and their job records.
func (s *ExportService) Cleanup() {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) == 0 {
		return
	}
	cutoff := time.Now().UTC().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()
	s.logger.Info("export cleanup completed", zap.Int("deleted", len(deleted)))
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Kind {
	case models.ExportKindSchedule:
		bookings, err := s.bookings.ListByTrainerBetween(ctx, job.TrainerID, job.From, job.To)
		if err != nil {
			return export.Dataset{}, "", fmt.Errorf("load bookings: %w", err)
		}
		dataset := export.Dataset{
			Headers: []string{"Date", "Start", "End", "Client", "Session Type", "Status"},
			Rows:    make([]map[string]string, 0, len(bookings)),
		}
		for _, b := range bookings {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Date":         b.StartTime.Format("2006-01-02"),
				"Start":        b.StartTime.Format("15:04"),
				"End":          b.EndTime.Format("15:04"),
				"Client":       b.ClientID,
				"Session Type": b.SessionType,
				"Status":       string(b.Status),
			})
		}
		title := fmt.Sprintf("Schedule %s to %s", job.From.Format("2006-01-02"), job.To.AddDate(0, 0, -1).Format("2006-01-02"))
		return dataset, title, nil

	case models.ExportKindRequests:
		requests, _, err := s.requests.List(ctx, models.BookingRequestFilter{
			TrainerID: job.TrainerID,
			From:      &job.From,
			To:        &job.To,
			PageSize:  100,
		})
		if err != nil {
			return export.Dataset{}, "", fmt.Errorf("load booking requests: %w", err)
		}
		dataset := export.Dataset{
			Headers: []string{"Client", "Session Type", "Duration", "Status", "Priority", "Rejection Reason"},
			Rows:    make([]map[string]string, 0, len(requests)),
		}
		for _, r := range requests {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Client":           r.ClientID,
				"Session Type":     r.SessionType,
				"Duration":         strconv.Itoa(r.DurationMinutes),
				"Status":           string(r.Status),
				"Priority":         fmt.Sprintf("%.1f", r.PriorityScore),
				"Rejection Reason": r.RejectionReason,
			})
		}
		return dataset, "Booking Requests", nil
	}
	return export.Dataset{}, "", fmt.Errorf("unsupported export kind %s", job.Kind)
}

func (s *ExportService) snapshotJob(id string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	clone := *job
	return &clone
}

func (s *ExportService) setStatus(id string, status models.ExportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
	}
}

func (s *ExportService) setDownloadURL(id, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.DownloadURL = url
	}
}

func (s *ExportService) finishJob(id string, status models.ExportStatus, relPath, token, errMsg string) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.FilePath = relPath
	job.Token = token
	job.ErrorMessage = errMsg
	job.FinishedAt = &now
}
