package cli

import (
	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	f := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "List the files that would be copied",
		Long: `Walk the source directory and list every regular file that is missing
from the destination or stale under the chosen priority. Nothing is copied.

Source and destination default to the last directories used.`,
		Example: `  filecompare check -s /data/photos -d /mnt/backup/photos
  filecompare check --priority largest --review-file review.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, f)
		},
	}

	addSessionFlags(cmd, f)

	return cmd
}

func runCheck(cmd *cobra.Command, f *sessionFlags) error {
	s, err := openSession(cmd, f, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	diff, err := s.engine.Check(cmd.Context())
	if err != nil {
		return err
	}

	return s.presentDiff(cmd, f, diff)
}
