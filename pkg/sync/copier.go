package sync

import (
	"context"
	"sync"
	"time"

	"github.com/sdejongh/filecompare/pkg/logging"
	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/output"
	"github.com/sdejongh/filecompare/pkg/ratelimit"
	"github.com/sdejongh/filecompare/pkg/storage"
	"golang.org/x/sync/errgroup"
)

const defaultBufferSize = 64 * 1024

// CopyOptions tunes a Copier
type CopyOptions struct {
	// MaxWorkers bounds parallel copies; 1 copies sequentially in order
	MaxWorkers int
	// DryRun reports every candidate as copied without writing
	DryRun bool
	// Limiter throttles throughput shared by all workers; nil is unlimited
	Limiter    *ratelimit.Limiter
	BufferSize int
	Formatter  output.Formatter
	Logger     logging.Logger
}

// Copier copies candidates from a source backend to a destination backend
type Copier struct {
	source storage.Backend
	dest   storage.Backend
	opts   CopyOptions
	logger logging.Logger

	// progMu serializes formatter calls
	progMu sync.Mutex
}

// NewCopier creates a copier
func NewCopier(source, dest storage.Backend, opts CopyOptions) *Copier {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.BufferSize < 1024 {
		opts.BufferSize = defaultBufferSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Copier{source: source, dest: dest, opts: opts, logger: logger}
}

// Copy copies every candidate and never stops on a per-file failure.
// Cancellation is checked before each file starts; a file already in flight
// finishes and files not started are counted in NotAttempted.
// Succeeded + len(Failed) + NotAttempted always equals len(candidates).
func (c *Copier) Copy(ctx context.Context, candidates []models.CopyCandidate) *models.CopyOutcome {
	start := time.Now()
	outcome := &models.CopyOutcome{}
	total := len(candidates)

	var mu sync.Mutex
	record := func(task *FileTask) {
		mu.Lock()
		defer mu.Unlock()
		task.apply(outcome)
		// a file that failed after cancellation may have been cut short by it
		if task.Status == TaskError && ctx.Err() != nil {
			outcome.Cancelled = true
		}
	}

	var g errgroup.Group
	g.SetLimit(c.opts.MaxWorkers)

	for i, cand := range candidates {
		task := NewFileTask(i+1, cand)

		if ctx.Err() != nil {
			task.MarkNotAttempted()
			record(task)
			continue
		}

		g.Go(func() error {
			// the slot may have been granted after cancellation
			if ctx.Err() != nil {
				task.MarkNotAttempted()
				record(task)
				return nil
			}

			c.copyFile(ctx, task, total)
			c.report(ctx, task, total)
			record(task)
			return nil
		})
	}

	g.Wait()
	outcome.Duration = time.Since(start)

	c.logger.Info(ctx, "copy finished", logging.Fields{
		"succeeded":     outcome.Succeeded,
		"failed":        len(outcome.Failed),
		"not_attempted": outcome.NotAttempted,
		"bytes":         outcome.BytesCopied,
		"dry_run":       c.opts.DryRun,
	})

	return outcome
}

// report logs the task and notifies the formatter
func (c *Copier) report(ctx context.Context, task *FileTask, total int) {
	fields := logging.Fields{
		"path":     task.Candidate.RelativePath,
		"reason":   string(task.Candidate.Reason),
		"duration": task.Duration.String(),
	}

	switch task.Status {
	case TaskCompleted:
		if task.MetadataError != nil {
			c.logger.Warn(ctx, "copied without metadata", logging.Fields{
				"path":  task.Candidate.RelativePath,
				"error": task.MetadataError.Error(),
			})
		}
		fields["bytes"] = task.BytesTransferred
		c.logger.Debug(ctx, "file copied", fields)
		c.progress(output.ProgressUpdate{
			Type:         output.FileComplete,
			FilePath:     task.Candidate.RelativePath,
			BytesWritten: task.BytesTransferred,
			TotalBytes:   task.Candidate.Size,
			CurrentFile:  task.Index,
			TotalFiles:   total,
		})

	case TaskError:
		c.logger.Error(ctx, "copy failed", task.Error, fields)
		c.progress(output.ProgressUpdate{
			Type:        output.FileError,
			FilePath:    task.Candidate.RelativePath,
			TotalBytes:  task.Candidate.Size,
			CurrentFile: task.Index,
			TotalFiles:  total,
			Error:       task.Error,
		})
	}
}

func (c *Copier) progress(update output.ProgressUpdate) {
	if c.opts.Formatter == nil {
		return
	}
	c.progMu.Lock()
	defer c.progMu.Unlock()
	c.opts.Formatter.Progress(update)
}

// Copy validates pair and copies candidates sequentially with default options
func Copy(ctx context.Context, candidates []models.CopyCandidate, pair models.DirectoryPair) (*models.CopyOutcome, error) {
	if err := pair.Validate(); err != nil {
		return nil, err
	}

	source, dest, err := openPair(pair)
	if err != nil {
		return nil, err
	}
	defer source.Close()
	defer dest.Close()

	return NewCopier(source, dest, CopyOptions{}).Copy(ctx, candidates), nil
}
