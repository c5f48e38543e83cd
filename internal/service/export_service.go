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

	"github.com/courtmaster/courtledger-api/internal/models"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/export"
	"github.com/courtmaster/courtledger-api/pkg/jobs"
	"github.com/courtmaster/courtledger-api/pkg/storage"
)

// ExportType selects the table to export.
type ExportType string

// ExportFormat selects the rendered file format.
type ExportFormat string

const (
	ExportTypeRoster       ExportType = "roster"
	ExportTypeTransactions ExportType = "transactions"
	ExportTypeActivity     ExportType = "activity"

	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportJobStatus tracks job progress.
type ExportJobStatus string

const (
	ExportStatusPending   ExportJobStatus = "pending"
	ExportStatusCompleted ExportJobStatus = "completed"
	ExportStatusFailed    ExportJobStatus = "failed"
)

// ExportJob is one requested export and its outcome.
type ExportJob struct {
	ID           string          `json:"id"`
	Type         ExportType      `json:"type"`
	Format       ExportFormat    `json:"format"`
	Status       ExportJobStatus `json:"status"`
	RelativePath string          `json:"-"`
	DownloadURL  string          `json:"download_url,omitempty"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type excelRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix  string
	Workers    int
	MaxRetries int
}

// ExportService renders table snapshots to downloadable files. Jobs run on
// an in-process worker queue and results are fetched through HMAC-signed
// tokens, so the download link itself is the capability and needs no
// further auth. Job state is in-memory only and does not survive restarts.
type ExportService struct {
	roster       rosterRepository
	transactions transactionRepository
	activity     activityLister
	storage      fileStorage
	signer       *storage.SignedURLSigner
	csv          csvRenderer
	excel        excelRenderer
	pdf          pdfRenderer
	queue        *jobs.Queue
	logger       *zap.Logger
	cfg          ExportConfig

	mu   sync.RWMutex
	jobs map[string]*ExportJob
}

// NewExportService constructs an ExportService. Call Start before
// enqueueing.
func NewExportService(roster rosterRepository, transactions transactionRepository, activity activityLister, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		roster:       roster,
		transactions: transactions,
		activity:     activity,
		storage:      files,
		signer:       signer,
		csv:          export.NewCSVExporter(),
		excel:        export.NewExcelExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
		cfg:          cfg,
		jobs:         make(map[string]*ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue registers a new export job and hands it to the workers.
func (s *ExportService) Enqueue(ctx context.Context, typ ExportType, format ExportFormat, actor *models.JWTClaims) (*ExportJob, error) {
	if !actor.IsCoach() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "coach role required")
	}
	switch typ {
	case ExportTypeRoster, ExportTypeTransactions, ExportTypeActivity:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export type %q", typ))
	}
	switch format {
	case ExportFormatCSV, ExportFormatXLSX, ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
	}

	job := &ExportJob{
		ID:        uuid.NewString(),
		Type:      typ,
		Format:    format,
		Status:    ExportStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(typ), Payload: format}); err != nil {
		s.failJob(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job.ID), nil
}

// Get returns job state by id.
func (s *ExportService) Get(jobID string, actor *models.JWTClaims) (*ExportJob, error) {
	if !actor.IsCoach() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "coach role required")
	}
	job := s.snapshot(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// OpenByToken validates a signed download token and opens the file.
func (s *ExportService) OpenByToken(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return file, relPath, nil
}

func (s *ExportService) handle(ctx context.Context, job jobs.Job) error {
	format := ExportFormat("csv")
	if f, ok := job.Payload.(ExportFormat); ok {
		format = f
	}
	typ := ExportType(job.Type)

	dataset, title := s.buildDataset(ctx, typ)
	payload, err := s.render(dataset, title, format)
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}

	filename := fmt.Sprintf("%s_%s.%s", typ, time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}

	url := strings.TrimRight(s.cfg.APIPrefix, "/") + "/exports/download/" + token
	now := time.Now().UTC()
	s.mu.Lock()
	if j, ok := s.jobs[job.ID]; ok {
		j.Status = ExportStatusCompleted
		j.RelativePath = relPath
		j.DownloadURL = url
		j.ExpiresAt = &expiresAt
		j.CompletedAt = &now
		j.Error = ""
	}
	s.mu.Unlock()
	return nil
}

func (s *ExportService) render(dataset export.Dataset, title string, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatCSV:
		return s.csv.Render(dataset)
	case ExportFormatXLSX:
		return s.excel.Render(dataset, title)
	case ExportFormatPDF:
		return s.pdf.Render(dataset, title)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

func (s *ExportService) buildDataset(ctx context.Context, typ ExportType) (export.Dataset, string) {
	switch typ {
	case ExportTypeTransactions:
		txns := s.transactions.List(ctx)
		rows := make([]map[string]string, 0, len(txns))
		for _, t := range txns {
			rows = append(rows, map[string]string{
				"Date":    t.Date,
				"Month":   t.Month,
				"Student": t.StudentName,
				"Amount":  models.FormatAmount(t.Amount),
				"Memo":    t.Memo,
				"Kind":    string(t.Kind),
			})
		}
		return export.Dataset{
			Headers: []string{"Date", "Month", "Student", "Amount", "Memo", "Kind"},
			Rows:    rows,
		}, "Transactions"
	case ExportTypeActivity:
		entries := s.activity.List(ctx)
		rows := make([]map[string]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, map[string]string{
				"Date":    e.Date,
				"Time":    e.Time,
				"Student": e.StudentName,
				"Action":  e.Action,
				"Detail":  e.Detail,
			})
		}
		return export.Dataset{
			Headers: []string{"Date", "Time", "Student", "Action", "Detail"},
			Rows:    rows,
		}, "Activity Log"
	default:
		roster := s.roster.Load(ctx)
		students := roster.Students()
		rows := make([]map[string]string, 0, len(students))
		for _, st := range students {
			rows = append(rows, map[string]string{
				"Name":      st.Name,
				"Package":   strconv.Itoa(st.PackageSize),
				"Remaining": strconv.Itoa(st.RemainingLessons),
				"Status":    string(st.Status),
				"Payment":   string(st.PaymentStatus),
				"Notes":     st.Notes,
			})
		}
		return export.Dataset{
			Headers: []string{"Name", "Package", "Remaining", "Status", "Payment", "Notes"},
			Rows:    rows,
		}, "Roster"
	}
}

func (s *ExportService) failJob(jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[jobID]; ok {
		j.Status = ExportStatusFailed
		j.Error = err.Error()
	}
}

func (s *ExportService) snapshot(jobID string) *ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}
