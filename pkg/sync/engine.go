package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/filecompare/pkg/compare"
	"github.com/sdejongh/filecompare/pkg/logging"
	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/output"
	"github.com/sdejongh/filecompare/pkg/ratelimit"
	"github.com/sdejongh/filecompare/pkg/storage"
)

// CheckResult is delivered by CheckAsync
type CheckResult struct {
	Diff *models.DiffResult
	Err  error
}

// Engine orchestrates a check and an optional copy for one operation
type Engine struct {
	source    storage.Backend
	dest      storage.Backend
	policy    compare.Policy
	formatter output.Formatter
	logger    logging.Logger
	operation *models.SyncOperation
	out       io.Writer
}

// NewEngine creates a new engine. The operation gets an ID if it has none.
func NewEngine(
	source, dest storage.Backend,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.SyncOperation,
) (*Engine, error) {
	if err := operation.Validate(); err != nil {
		return nil, err
	}

	policy, err := compare.ForPolicy(operation.Policy, operation.MtimeTolerance)
	if err != nil {
		return nil, err
	}

	if operation.ID == "" {
		operation.ID = uuid.New().String()
	}
	if operation.CreatedAt.IsZero() {
		operation.CreatedAt = time.Now()
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	return &Engine{
		source:    source,
		dest:      dest,
		policy:    policy,
		formatter: formatter,
		logger:    logger.WithFields(logging.Fields{"operation_id": operation.ID}),
		operation: operation,
		out:       os.Stdout,
	}, nil
}

// SetOutput sets the writer handed to the formatter
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

// Operation returns the operation the engine runs
func (e *Engine) Operation() *models.SyncOperation {
	return e.operation
}

// Check computes the copy candidates
func (e *Engine) Check(ctx context.Context) (*models.DiffResult, error) {
	op := e.operation
	e.logger.Info(ctx, "diff started", logging.Fields{
		"source":      op.Pair.SourceRoot,
		"destination": op.Pair.DestRoot,
		"policy":      string(op.Policy),
	})

	differ := NewDifferencer(e.source, e.dest, e.policy, DiffOptions{
		Exclude:    NewExcluder(op.ExcludePatterns),
		WalkErrors: op.WalkErrors,
		Logger:     e.logger,
	})

	start := time.Now()
	diff, err := differ.Diff(ctx)
	if err != nil {
		e.logger.Error(ctx, "diff failed", err, nil)
		return nil, fmt.Errorf("diff failed: %w", err)
	}

	e.logger.Info(ctx, "diff complete", logging.Fields{
		"files_scanned": diff.FilesScanned,
		"candidates":    diff.Len(),
		"bytes":         diff.TotalBytes,
		"skipped":       len(diff.Skipped),
		"duration":      time.Since(start).String(),
	})
	return diff, nil
}

// Copy copies the candidates of diff and returns the finished report
func (e *Engine) Copy(ctx context.Context, diff *models.DiffResult) *models.SyncReport {
	op := e.operation
	report := e.newReport(diff)

	e.logger.Info(ctx, "copy started", logging.Fields{
		"files":   diff.Len(),
		"bytes":   diff.TotalBytes,
		"workers": op.MaxWorkers,
		"dry_run": op.DryRun,
	})

	if e.formatter != nil {
		e.formatter.Start(e.out, diff.Len(), diff.TotalBytes)
	}

	copier := NewCopier(e.source, e.dest, CopyOptions{
		MaxWorkers: op.MaxWorkers,
		DryRun:     op.DryRun,
		Limiter:    ratelimit.NewLimiter(op.BandwidthLimit),
		BufferSize: op.BufferSize,
		Formatter:  e.formatter,
		Logger:     e.logger,
	})

	report.Outcome = copier.Copy(ctx, diff.Candidates)
	report.Finish()

	if e.formatter != nil {
		e.formatter.Complete(report)
	}
	return report
}

// Run checks and, when anything is stale, copies without confirmation
func (e *Engine) Run(ctx context.Context) (*models.SyncReport, error) {
	diff, err := e.Check(ctx)
	if err != nil {
		if e.formatter != nil {
			e.formatter.Error(err)
		}
		return nil, err
	}

	if diff.UpToDate() {
		report := e.newReport(diff)
		report.Finish()
		return report, nil
	}

	return e.Copy(ctx, diff), nil
}

// CheckAsync runs Check in the background and delivers the result once
func (e *Engine) CheckAsync(ctx context.Context) <-chan CheckResult {
	ch := make(chan CheckResult, 1)
	go func() {
		defer close(ch)
		diff, err := e.Check(ctx)
		ch <- CheckResult{Diff: diff, Err: err}
	}()
	return ch
}

// CopyAsync runs Copy in the background and delivers the report once
func (e *Engine) CopyAsync(ctx context.Context, diff *models.DiffResult) <-chan *models.SyncReport {
	ch := make(chan *models.SyncReport, 1)
	go func() {
		defer close(ch)
		ch <- e.Copy(ctx, diff)
	}()
	return ch
}

func (e *Engine) newReport(diff *models.DiffResult) *models.SyncReport {
	return &models.SyncReport{
		OperationID: e.operation.ID,
		Pair:        e.operation.Pair,
		Policy:      e.operation.Policy,
		DryRun:      e.operation.DryRun,
		StartTime:   time.Now(),
		Diff:        diff,
	}
}
