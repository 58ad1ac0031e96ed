package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sdejongh/filecompare/pkg/models"
)

// JSONFormatter writes a single JSON report for automation and scripting
type JSONFormatter struct {
	mu         sync.Mutex
	writer     io.Writer
	totalFiles int
	totalBytes int64
	errors     []JSONErrorData
}

// JSONReportData is the document written on completion
type JSONReportData struct {
	OperationID string          `json:"operation_id"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Policy      string          `json:"policy"`
	DryRun      bool            `json:"dry_run"`
	Status      string          `json:"status"`
	ExitCode    int             `json:"exit_code"`
	Duration    string          `json:"duration"`
	DurationMs  int64           `json:"duration_ms"`
	Diff        *JSONDiffData   `json:"diff,omitempty"`
	Copy        *JSONCopyData   `json:"copy,omitempty"`
	Errors      []JSONErrorData `json:"errors,omitempty"`
}

// JSONDiffData summarizes the candidates of a diff
type JSONDiffData struct {
	FilesScanned int                   `json:"files_scanned"`
	Candidates   int                   `json:"candidates"`
	TotalBytes   int64                 `json:"total_bytes"`
	Skipped      []models.SkippedEntry `json:"skipped,omitempty"`
}

// JSONCopyData summarizes a copy outcome
type JSONCopyData struct {
	Succeeded        int      `json:"succeeded"`
	Failed           []string `json:"failed"`
	BytesCopied      int64    `json:"bytes_copied"`
	NotAttempted     int      `json:"not_attempted"`
	Cancelled        bool     `json:"cancelled"`
	MetadataWarnings []string `json:"metadata_warnings,omitempty"`
	AverageSpeed     int64    `json:"average_speed_bytes_per_sec,omitempty"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path  string `json:"path,omitempty"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalFiles = totalFiles
	f.totalBytes = totalBytes
	return nil
}

// Progress only collects failures; the report is written once on completion
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	if update.Type != FileError || update.Error == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, JSONErrorData{Path: update.FilePath, Error: update.Error.Error()})
	return nil
}

// Complete writes the report as indented JSON
func (f *JSONFormatter) Complete(report *models.SyncReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = os.Stdout
	}

	data := JSONReportData{
		OperationID: report.OperationID,
		Source:      report.Pair.SourceRoot,
		Destination: report.Pair.DestRoot,
		Policy:      string(report.Policy),
		DryRun:      report.DryRun,
		Status:      string(report.Status),
		ExitCode:    report.Status.ExitCode(),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Errors:      f.errors,
	}

	if d := report.Diff; d != nil {
		data.Diff = &JSONDiffData{
			FilesScanned: d.FilesScanned,
			Candidates:   d.Len(),
			TotalBytes:   d.TotalBytes,
			Skipped:      d.Skipped,
		}
	}

	if o := report.Outcome; o != nil {
		c := &JSONCopyData{
			Succeeded:        o.Succeeded,
			Failed:           o.Failed,
			BytesCopied:      o.BytesCopied,
			NotAttempted:     o.NotAttempted,
			Cancelled:        o.Cancelled,
			MetadataWarnings: o.MetadataWarnings,
		}
		if c.Failed == nil {
			c.Failed = []string{}
		}
		if o.Duration.Seconds() > 0 {
			c.AverageSpeed = int64(float64(o.BytesCopied) / o.Duration.Seconds())
		}
		data.Copy = c
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error records an error that ended the operation
func (f *JSONFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, JSONErrorData{Error: err.Error()})
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
