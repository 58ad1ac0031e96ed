package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sdejongh/filecompare/pkg/models"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
)

// HumanFormatter prints one line per finished file and a closing summary
type HumanFormatter struct {
	mu         sync.Mutex
	writer     io.Writer
	totalFiles int
	totalBytes int64
	done       int
	startTime  time.Time
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writer = writer
	f.totalFiles = totalFiles
	f.totalBytes = totalBytes
	f.done = 0
	f.startTime = time.Now()

	if writer != nil {
		fmt.Fprintf(writer, "Copying %d files, %s total\n", totalFiles, formatBytes(totalBytes))
	}
	return nil
}

// Progress prints completed and failed files
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case FileComplete:
		f.done++
		fmt.Fprintf(f.writer, "[%d/%d] %s %s (%s)\n",
			f.done, f.totalFiles, okMark("✓"), update.FilePath, formatBytes(update.BytesWritten))
	case FileError:
		f.done++
		fmt.Fprintf(f.writer, "[%d/%d] %s %s: %v\n",
			f.done, f.totalFiles, failMark("✗"), update.FilePath, update.Error)
	}
	return nil
}

// Complete displays the summary
func (f *HumanFormatter) Complete(report *models.SyncReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}
	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", failMark("Error:"), err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func writeSummary(w io.Writer, report *models.SyncReport) {
	fmt.Fprintln(w)
	if report.DryRun {
		fmt.Fprintln(w, warnText("Dry run: nothing was written"))
	}

	if o := report.Outcome; o != nil {
		fmt.Fprintf(w, "Copied %d of %d files (%s) in %s\n",
			o.Succeeded, o.Total(), formatBytes(o.BytesCopied), report.Duration.Round(time.Millisecond))

		if o.Duration.Seconds() > 0 && o.BytesCopied > 0 {
			avgSpeed := float64(o.BytesCopied) / o.Duration.Seconds()
			fmt.Fprintf(w, "Average speed: %s/s\n", formatBytes(int64(avgSpeed)))
		}
		if o.NotAttempted > 0 {
			fmt.Fprintf(w, "%s %d files were not attempted\n", warnText("Cancelled:"), o.NotAttempted)
		}
		for _, path := range o.MetadataWarnings {
			fmt.Fprintf(w, "%s could not preserve timestamps or permissions of %s\n", warnText("Warning:"), path)
		}
		if len(o.Failures) > 0 {
			fmt.Fprintln(w)
			WriteFailures(w, o)
		}
	}

	fmt.Fprintf(w, "\nStatus: %s\n", statusText(report.Status))
}

func statusText(s models.SyncStatus) string {
	switch s {
	case models.StatusSuccess, models.StatusUpToDate:
		return okMark(string(s))
	case models.StatusPartial, models.StatusCancelled:
		return warnText(string(s))
	default:
		return failMark(string(s))
	}
}
