package sync

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/filecompare/pkg/output"
	"github.com/sdejongh/filecompare/pkg/ratelimit"
	"github.com/sdejongh/filecompare/pkg/storage"
)

// errNotRegular is returned when the destination path holds a directory,
// symbolic link or other non-regular entry
var errNotRegular = errors.New("destination exists and is not a regular file")

// progressReader wraps an io.Reader to report progress
type progressReader struct {
	reader         io.Reader
	read           int64
	lastReported   int64
	lastReportTime time.Time
	onProgress     func(bytesRead int64)
}

// Progress reporting thresholds
const (
	progressReportInterval = 50 * time.Millisecond // Minimum time between progress reports
	progressReportBytes    = 64 * 1024             // Minimum bytes between reports (64KB)
)

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)

		if pr.onProgress != nil {
			shouldReport := pr.read-pr.lastReported >= progressReportBytes ||
				time.Since(pr.lastReportTime) >= progressReportInterval ||
				err != nil
			if shouldReport {
				pr.onProgress(pr.read)
				pr.lastReported = pr.read
				pr.lastReportTime = time.Now()
			}
		}
	}
	return n, err
}

// copyFile copies a single candidate from source to destination. Metadata
// failures are left on the task and do not fail the copy.
func (c *Copier) copyFile(ctx context.Context, task *FileTask, total int) {
	start := time.Now()
	cand := task.Candidate

	c.progress(output.ProgressUpdate{
		Type:        output.FileStart,
		FilePath:    cand.RelativePath,
		TotalBytes:  cand.Size,
		CurrentFile: task.Index,
		TotalFiles:  total,
	})

	if c.opts.DryRun {
		task.MarkCompleted(cand.Size, time.Since(start))
		return
	}

	written, err := c.transfer(ctx, task, total)
	if err != nil && errors.Is(err, storage.ErrMetadata) {
		task.MetadataError = err
		err = nil
	}
	if err != nil {
		task.MarkError(err, time.Since(start))
		return
	}
	task.MarkCompleted(written, time.Since(start))
}

func (c *Copier) transfer(ctx context.Context, task *FileTask, total int) (int64, error) {
	cand := task.Candidate

	if destInfo, err := c.dest.Stat(ctx, cand.RelativePath); err == nil && !destInfo.IsRegular {
		return 0, errNotRegular
	}

	reader, err := c.source.Read(ctx, cand.RelativePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read source: %w", err)
	}
	defer reader.Close()

	// Get source metadata to preserve timestamps and permissions
	sourceInfo, err := c.source.Stat(ctx, cand.RelativePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get source metadata: %w", err)
	}

	var r io.Reader = bufio.NewReaderSize(reader, c.opts.BufferSize)
	// an in-flight file always runs to completion; cancellation is checked
	// between files
	r = ratelimit.NewReader(context.WithoutCancel(ctx), r, c.opts.Limiter)
	r = &progressReader{
		reader:         r,
		lastReportTime: time.Now(),
		onProgress: func(bytesRead int64) {
			c.progress(output.ProgressUpdate{
				Type:         output.FileProgress,
				FilePath:     cand.RelativePath,
				BytesWritten: bytesRead,
				TotalBytes:   sourceInfo.Size,
				CurrentFile:  task.Index,
				TotalFiles:   total,
			})
		},
	}

	if err := c.dest.Write(ctx, cand.RelativePath, r, sourceInfo.Size, sourceInfo); err != nil {
		if errors.Is(err, storage.ErrMetadata) {
			return sourceInfo.Size, err
		}
		return 0, fmt.Errorf("failed to write destination: %w", err)
	}

	return sourceInfo.Size, nil
}
