package models

import "time"

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportKind enumerates exportable datasets.
type ExportKind string

const (
	ExportKindSchedule ExportKind = "schedule"
	ExportKindRequests ExportKind = "requests"
)

// ExportStatus tracks export job progress.
type ExportStatus string

const (
	ExportStatusQueued  ExportStatus = "QUEUED"
	ExportStatusRunning ExportStatus = "RUNNING"
	ExportStatusDone    ExportStatus = "DONE"
	ExportStatusFailed  ExportStatus = "FAILED"
)

// ExportJob tracks one schedule or request export through the worker queue.
type ExportJob struct {
	ID           string       `json:"id"`
	TrainerID    string       `json:"trainer_id"`
	Kind         ExportKind   `json:"kind"`
	Format       ExportFormat `json:"format"`
	From         time.Time    `json:"from"`
	To           time.Time    `json:"to"`
	Status       ExportStatus `json:"status"`
	FilePath     string       `json:"-"`
	Token        string       `json:"token,omitempty"`
	DownloadURL  string       `json:"download_url,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}
