package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/sdejongh/filecompare/pkg/config"
	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/output"
	"github.com/sdejongh/filecompare/pkg/ratelimit"
	"golang.org/x/term"
)

// Confirmation menu entries
const (
	actionReview = "Review files"
	actionCopy   = "Copy!"
	actionCancel = "Cancel"
)

// copyFlags holds the copy command flags
type copyFlags struct {
	sessionFlags
	Yes        bool
	DryRun     bool
	CreateDest bool
	Parallel   int
	Bandwidth  string
}

// selectAction asks the user to pick one of items. Replaced in tests.
var selectAction = func(label string, items []string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("confirmation needs a terminal: pass --yes to copy without asking")
	}

	prompt := promptui.Select{
		Label: label,
		Items: items,
	}
	_, result, err := prompt.Run()
	return result, err
}

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	f := &copyFlags{}

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy missing and stale files to the destination",
		Long: `Check the source against the destination, ask for confirmation and copy
every missing or stale file, preserving relative paths. Files that exist
only in the destination are never touched.

Exit status is 0 when every file was copied, 1 when some copies failed,
2 when all failed and 3 when the copy was interrupted.`,
		Example: `  filecompare copy -s /data/photos -d /mnt/backup/photos
  filecompare copy --yes --parallel 4 --bandwidth 10MB
  filecompare copy --dry-run --priority largest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, f)
		},
	}

	addSessionFlags(cmd, &f.sessionFlags)
	cmd.Flags().BoolVarP(&f.Yes, "yes", "y", false, "copy without asking for confirmation")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "show what would be copied without copying")
	cmd.Flags().BoolVar(&f.CreateDest, "create-dest", false, "create the destination directory if it does not exist")
	cmd.Flags().IntVarP(&f.Parallel, "parallel", "P", 0, "number of files copied in parallel (default from config)")
	cmd.Flags().StringVarP(&f.Bandwidth, "bandwidth", "b", "", "limit copy throughput (e.g. 10MB, 500KiB)")

	return cmd
}

func runCopy(cmd *cobra.Command, f *copyFlags) error {
	if f.Parallel < 0 {
		return fmt.Errorf("invalid parallel value: %d (must be at least 1)", f.Parallel)
	}
	if f.Bandwidth != "" {
		if _, err := ratelimit.ParseBandwidth(f.Bandwidth); err != nil {
			return fmt.Errorf("invalid bandwidth limit: %w", err)
		}
	}

	s, err := openSession(cmd, &f.sessionFlags, sessionOptions{
		CreateDest: f.CreateDest,
		Configure: func(cfg *config.Config) {
			if f.Parallel > 0 {
				cfg.Performance.MaxWorkers = f.Parallel
			}
			if f.Bandwidth != "" {
				cfg.Performance.BandwidthLimit = f.Bandwidth
			}
		},
		Operation: func(op *models.SyncOperation) {
			op.DryRun = f.DryRun
		},
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	diff, err := s.engine.Check(ctx)
	if err != nil {
		return err
	}

	if err := s.presentDiff(cmd, &f.sessionFlags, diff); err != nil {
		return err
	}
	if diff.UpToDate() {
		return nil
	}

	if !f.Yes && !f.DryRun {
		proceed, err := confirmCopy(s.out, diff)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Fprintln(s.out, "Copy cancelled")
			return nil
		}
	}

	report := s.engine.Copy(ctx, diff)
	if s.quiet() && report.Outcome != nil {
		output.WriteFailures(cmd.ErrOrStderr(), report.Outcome)
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// confirmCopy loops on the action menu until the user copies or cancels
func confirmCopy(w io.Writer, diff *models.DiffResult) (bool, error) {
	label := fmt.Sprintf("%d files will be copied (%s)", diff.Len(), humanize.Bytes(uint64(diff.TotalBytes)))
	items := []string{actionReview, actionCopy, actionCancel}

	for {
		choice, err := selectAction(label, items)
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch choice {
		case actionReview:
			if err := output.WriteReview(w, diff, "human"); err != nil {
				return false, err
			}
		case actionCopy:
			return true, nil
		default:
			return false, nil
		}
	}
}
