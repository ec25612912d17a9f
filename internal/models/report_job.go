package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ParseReportFormat converts raw input into a supported format.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case ReportFormatCSV, ReportFormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", raw)
	}
}

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob tracks an attendance export rendered in the background.
type ReportJob struct {
	ID           string       `json:"id"`
	Format       ReportFormat `json:"format"`
	Status       ReportStatus `json:"status"`
	Progress     int          `json:"progress"`
	ResultURL    *string      `json:"result_url,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}
