package output

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sdejongh/filecompare/pkg/models"
	"golang.org/x/term"
)

// UpdateType identifies a progress notification
type UpdateType string

const (
	FileStart    UpdateType = "file_start"
	FileProgress UpdateType = "file_progress"
	FileComplete UpdateType = "file_complete"
	FileError    UpdateType = "file_error"
)

// ProgressUpdate represents a progress notification during a copy
type ProgressUpdate struct {
	Type         UpdateType
	FilePath     string
	BytesWritten int64
	TotalBytes   int64
	CurrentFile  int
	TotalFiles   int
	Error        error
}

// Formatter defines the interface for output formatting.
// Progress may be called from several copy workers at once.
type Formatter interface {
	// Start initializes the formatter for a copy of totalFiles files
	Start(writer io.Writer, totalFiles int, totalBytes int64) error

	// Progress reports progress during the copy
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays summary
	Complete(report *models.SyncReport) error

	// Error reports an error that ended the operation
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for an output format. Human output gets a
// progress bar when progress is requested and w is a terminal.
func New(format string, progress bool, w io.Writer) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		if progress && IsTerminal(w) {
			return NewProgressFormatter()
		}
		return NewHumanFormatter()
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when it is not a terminal
func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
