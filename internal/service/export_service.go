package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/pkg/export"
	"github.com/noah-isme/campus-hub-api/pkg/storage"
)

var attendanceReportHeaders = []string{"Topic ID", "Title", "Date", "Student", "Status"}

type attendanceSource interface {
	Attendance(ctx context.Context) (models.AttendanceData, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
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

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders attendance data to files and signs download links for them.
type ExportService struct {
	attendance attendanceSource
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(attendance attendanceSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
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
		attendance: attendance,
		storage:    files,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the attendance data in the job's format and stores it.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	data, err := s.attendance.Attendance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	dataset := AttendanceDataset(data)
	generatedAt := s.now()

	var payload []byte
	switch job.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Attendance Report "+generatedAt.Format("2006-01-02"))
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("attendance_%s_%s.%s", generatedAt.Format("20060102_150405"), shortID(job.ID), job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, string(job.Format), relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("attendance report rendered", zap.String("report_id", job.ID), zap.Int("rows", len(dataset.Rows)))

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/attendance/reports/download/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken verifies a download token and returns what it was issued for.
func (s *ExportService) ParseToken(token string, allowExpired bool) (*storage.DownloadClaims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// AttendanceDataset flattens attendance into one row per topic and student, ordered by topic then student.
func AttendanceDataset(data models.AttendanceData) export.Dataset {
	topicIDs := make([]string, 0, len(data))
	for id := range data {
		topicIDs = append(topicIDs, id)
	}
	sort.Strings(topicIDs)

	rows := make([]map[string]string, 0)
	for _, id := range topicIDs {
		record := data[id]
		students := make([]string, 0, len(record.Students))
		for email := range record.Students {
			students = append(students, email)
		}
		sort.Strings(students)
		for _, email := range students {
			rows = append(rows, map[string]string{
				"Topic ID": id,
				"Title":    record.Title,
				"Date":     record.Date,
				"Student":  email,
				"Status":   string(record.Students[email]),
			})
		}
	}
	return export.Dataset{Headers: attendanceReportHeaders, Rows: rows}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
