package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/sdejongh/filecompare/pkg/models"
)

// ProgressFormatter shows a byte-level progress bar while copying and the
// human summary once done
type ProgressFormatter struct {
	mu         sync.Mutex
	writer     io.Writer
	bar        *pb.ProgressBar
	totalFiles int
	done       int
	failed     int
	// bytes already added to the bar per in-flight file, keyed by file index
	active map[int]*fileProgress
}

type fileProgress struct {
	path    string
	current int64
	total   int64
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{
		active: make(map[int]*fileProgress),
	}
}

// Start creates and starts the bar
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalFiles = totalFiles
	f.done = 0
	f.failed = 0
	f.active = make(map[int]*fileProgress)

	f.bar = pb.New64(totalBytes)
	f.bar.SetWriter(writer)
	f.bar.SetTemplate(pb.Full)
	f.bar.Set(pb.Bytes, true)
	f.bar.Set(pb.Terminal, IsTerminal(writer))
	f.bar.SetWidth(terminalWidth(writer, 100))
	f.bar.Set("prefix", f.prefix())
	f.bar.Start()

	return nil
}

// Progress advances the bar
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case FileStart:
		f.active[update.CurrentFile] = &fileProgress{path: update.FilePath, total: update.TotalBytes}

	case FileProgress:
		fp := f.file(update)
		if delta := update.BytesWritten - fp.current; delta > 0 {
			f.bar.Add64(delta)
			fp.current = update.BytesWritten
		}

	case FileComplete, FileError:
		fp := f.file(update)
		// a failed file still counts its bytes so the bar reaches 100%
		if rest := fp.total - fp.current; rest > 0 {
			f.bar.Add64(rest)
		}
		delete(f.active, update.CurrentFile)
		f.done++
		if update.Type == FileError {
			f.failed++
		}
		f.bar.Set("prefix", f.prefix())
	}

	return nil
}

func (f *ProgressFormatter) file(update ProgressUpdate) *fileProgress {
	fp, ok := f.active[update.CurrentFile]
	if !ok {
		fp = &fileProgress{path: update.FilePath, total: update.TotalBytes}
		f.active[update.CurrentFile] = fp
	}
	return fp
}

func (f *ProgressFormatter) prefix() string {
	if f.failed > 0 {
		return fmt.Sprintf("%d/%d files (%d failed) ", f.done, f.totalFiles, f.failed)
	}
	return fmt.Sprintf("%d/%d files ", f.done, f.totalFiles)
}

// Complete stops the bar and prints the summary
func (f *ProgressFormatter) Complete(report *models.SyncReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finish()
	if f.writer == nil {
		return nil
	}
	writeSummary(f.writer, report)
	return nil
}

// Error stops the bar and prints the error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finish()
	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", failMark("Error:"), err)
	}
	return nil
}

func (f *ProgressFormatter) finish() {
	if f.bar != nil && f.bar.IsStarted() {
		f.bar.Finish()
	}
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
