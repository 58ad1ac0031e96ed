package sync

import (
	"time"

	"github.com/sdejongh/filecompare/pkg/models"
)

// TaskStatus represents the state of a single file copy
type TaskStatus string

const (
	// TaskPending indicates the task has not been started
	TaskPending TaskStatus = "pending"
	// TaskCompleted indicates the file was written
	TaskCompleted TaskStatus = "completed"
	// TaskError indicates the copy failed
	TaskError TaskStatus = "error"
	// TaskNotAttempted indicates the copy was cancelled before it started
	TaskNotAttempted TaskStatus = "not-attempted"
)

// FileTask tracks one candidate through the copier
type FileTask struct {
	// Index is the 1-based position of the candidate in the batch
	Index int

	Candidate models.CopyCandidate

	Status TaskStatus

	// Error holds the copy failure, if any
	Error error

	// MetadataError is set when the bytes landed but timestamps or
	// permissions could not be applied
	MetadataError error

	// BytesTransferred is the number of bytes written to the destination
	BytesTransferred int64

	Duration time.Duration
}

// NewFileTask creates a pending task for a candidate
func NewFileTask(index int, candidate models.CopyCandidate) *FileTask {
	return &FileTask{
		Index:     index,
		Candidate: candidate,
		Status:    TaskPending,
	}
}

// MarkCompleted marks the task as successfully copied
func (t *FileTask) MarkCompleted(bytesTransferred int64, duration time.Duration) {
	t.Status = TaskCompleted
	t.BytesTransferred = bytesTransferred
	t.Duration = duration
}

// MarkError marks the task as failed
func (t *FileTask) MarkError(err error, duration time.Duration) {
	t.Status = TaskError
	t.Error = err
	t.Duration = duration
}

// MarkNotAttempted marks the task as skipped by cancellation
func (t *FileTask) MarkNotAttempted() {
	t.Status = TaskNotAttempted
}

// apply folds the task into the outcome. The caller serializes access.
func (t *FileTask) apply(o *models.CopyOutcome) {
	switch t.Status {
	case TaskCompleted:
		o.Succeeded++
		o.BytesCopied += t.BytesTransferred
		if t.MetadataError != nil {
			o.MetadataWarnings = append(o.MetadataWarnings, t.Candidate.RelativePath)
		}
	case TaskError:
		o.RecordFailure(t.Candidate.RelativePath, t.Error)
	case TaskNotAttempted:
		o.NotAttempted++
		o.Cancelled = true
	}
}
