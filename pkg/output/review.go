package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/filecompare/pkg/models"
)

// WriteDiffSummary writes the one-line answer to "what would be copied?"
func WriteDiffSummary(w io.Writer, diff *models.DiffResult) {
	switch n := diff.Len(); n {
	case 0:
		fmt.Fprintln(w, "There are no files to copy")
	case 1:
		fmt.Fprintf(w, "1 file will be copied (%s)\n", formatBytes(diff.TotalBytes))
	default:
		fmt.Fprintf(w, "%s files will be copied (%s)\n", bold(n), formatBytes(diff.TotalBytes))
	}
	if len(diff.Skipped) > 0 {
		fmt.Fprintf(w, "%s %d entries could not be read and were skipped\n", warnText("Warning:"), len(diff.Skipped))
	}
}

// WriteReviewFile writes the candidate listing to a file.
// Format can be "human" or "json". Nothing is written when there are no
// candidates.
func WriteReviewFile(diff *models.DiffResult, path string, format string) (err error) {
	if diff.UpToDate() {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create review file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close review file: %w", closeErr)
		}
	}()

	return WriteReview(file, diff, format)
}

// WriteReview writes the candidate listing
func WriteReview(w io.Writer, diff *models.DiffResult, format string) error {
	switch format {
	case "json":
		return writeReviewJSON(w, diff)
	default:
		return writeReviewHuman(w, diff)
	}
}

var reasonLabels = map[models.CandidateReason]string{
	models.ReasonMissing:        "Missing in Destination",
	models.ReasonNewer:          "Newer in Source",
	models.ReasonLarger:         "Larger in Source",
	models.ReasonDestNotRegular: "Destination Not Regular",
}

// writeReviewHuman lists candidates in walk order, one per line
func writeReviewHuman(w io.Writer, diff *models.DiffResult) error {
	fmt.Fprintf(w, "Files to Copy\n")
	fmt.Fprintf(w, "=============\n\n")
	fmt.Fprintf(w, "Source:      %s\n", diff.Pair.SourceRoot)
	fmt.Fprintf(w, "Destination: %s\n", diff.Pair.DestRoot)
	fmt.Fprintf(w, "Priority:    %s\n", diff.Policy.Label())
	fmt.Fprintf(w, "Total:       %d files, %s\n\n", diff.Len(), formatBytes(diff.TotalBytes))

	if diff.Len() > 0 {
		header := fmt.Sprintf("%-23s  %10s  %-19s  %s", "Reason", "Size", "Modified", "Path")
		fmt.Fprintf(w, "%s\n%s\n", header, strings.Repeat("-", len(header)))
		for _, c := range diff.Candidates {
			label, ok := reasonLabels[c.Reason]
			if !ok {
				label = string(c.Reason)
			}
			fmt.Fprintf(w, "%-23s  %10s  %-19s  %s\n",
				label, formatBytes(c.Size), c.ModTime.Format(time.DateTime), c.RelativePath)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(diff.Skipped) > 0 {
		label := fmt.Sprintf("Skipped (%d entries)", len(diff.Skipped))
		fmt.Fprintf(w, "%s\n%s\n", label, strings.Repeat("-", len(label)))
		for _, s := range diff.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", s.RelativePath, s.Error)
		}
	}

	return nil
}

func writeReviewJSON(w io.Writer, diff *models.DiffResult) error {
	output := struct {
		Generated   string                 `json:"generated"`
		Source      string                 `json:"source"`
		Destination string                 `json:"destination"`
		Policy      string                 `json:"policy"`
		TotalCount  int                    `json:"total_count"`
		TotalBytes  int64                  `json:"total_bytes"`
		Candidates  []models.CopyCandidate `json:"candidates"`
		Skipped     []models.SkippedEntry  `json:"skipped,omitempty"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		Source:      diff.Pair.SourceRoot,
		Destination: diff.Pair.DestRoot,
		Policy:      string(diff.Policy),
		TotalCount:  diff.Len(),
		TotalBytes:  diff.TotalBytes,
		Candidates:  diff.Candidates,
		Skipped:     diff.Skipped,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// WriteFailures lists the files that could not be copied, in failure order
func WriteFailures(w io.Writer, outcome *models.CopyOutcome) {
	if len(outcome.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", failMark(fmt.Sprintf("%d files could not be copied:", len(outcome.Failures))))
	for _, f := range outcome.Failures {
		fmt.Fprintf(w, "  %s: %v\n", f.RelativePath, f.Err)
	}
}
