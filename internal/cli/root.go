package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the filecompare command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filecompare",
		Short: "One-way directory reconciliation",
		Long: `filecompare finds the files in a source directory that are missing or
out of date in a destination directory and copies exactly those.

A destination file is out of date when the source copy is newer (the
default) or larger (--priority largest). Files that exist only in the
destination are left alone.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewCopyCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
