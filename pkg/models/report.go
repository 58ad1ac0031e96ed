package models

import (
	"time"
)

// CopyOutcome is the terminal result of copying a set of candidates
type CopyOutcome struct {
	// Succeeded counts candidates written to the destination
	Succeeded int
	// Failed lists relative paths that could not be copied, in failure order
	Failed []string
	// Failures carries the cause for each entry of Failed
	Failures []CopyError
	// BytesCopied is the sum of sizes of succeeded candidates
	BytesCopied int64
	// NotAttempted counts candidates left untouched after cancellation
	NotAttempted int
	// Cancelled is set when the copy stopped early on request
	Cancelled bool
	// MetadataWarnings lists files copied without their timestamps or permissions
	MetadataWarnings []string
	Duration         time.Duration
}

// RecordFailure appends a failed candidate
func (o *CopyOutcome) RecordFailure(relativePath string, err error) {
	o.Failed = append(o.Failed, relativePath)
	o.Failures = append(o.Failures, CopyError{RelativePath: relativePath, Err: err})
}

// Total returns the number of candidates the outcome accounts for
func (o *CopyOutcome) Total() int {
	return o.Succeeded + len(o.Failed) + o.NotAttempted
}

// Status derives the overall status of the copy
func (o *CopyOutcome) Status() SyncStatus {
	switch {
	case o.Cancelled:
		return StatusCancelled
	case len(o.Failed) == 0:
		return StatusSuccess
	case o.Succeeded == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// SyncReport represents the results of a check and optional copy
type SyncReport struct {
	OperationID string
	Pair        DirectoryPair
	Policy      StalenessPolicy
	DryRun      bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Diff    *DiffResult
	Outcome *CopyOutcome

	Status SyncStatus
}

// Finish stamps the end time and derives the status
func (r *SyncReport) Finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	switch {
	case r.Outcome != nil:
		r.Status = r.Outcome.Status()
	case r.Diff != nil && r.Diff.UpToDate():
		r.Status = StatusUpToDate
	case r.Status == "":
		r.Status = StatusSuccess
	}
}

// SyncStatus represents the overall result
type SyncStatus string

const (
	// StatusSuccess indicates all operations completed successfully
	StatusSuccess SyncStatus = "success"
	// StatusUpToDate indicates there were no files to copy
	StatusUpToDate SyncStatus = "up-to-date"
	// StatusPartial indicates some operations failed
	StatusPartial SyncStatus = "partial"
	// StatusFailed indicates the operation failed
	StatusFailed SyncStatus = "failed"
	// StatusCancelled indicates the operation was cancelled
	StatusCancelled SyncStatus = "cancelled"
)

// ExitCode returns the appropriate exit code for the sync status
func (s SyncStatus) ExitCode() int {
	switch s {
	case StatusSuccess, StatusUpToDate:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
