package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/filecompare/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"log debug output to stderr",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// sessionFlags holds the flags shared by check and copy
type sessionFlags struct {
	Source         string
	Dest           string
	Priority       string
	MtimeTolerance string
	WalkErrors     string
	Exclude        []string
	Output         string
	ReviewFile     string
	ReviewFormat   string
}

func addSessionFlags(cmd *cobra.Command, f *sessionFlags) {
	cmd.Flags().StringVarP(&f.Source, "source", "s", "", "source directory (default: last used)")
	cmd.Flags().StringVarP(&f.Dest, "dest", "d", "", "destination directory (default: last used)")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", "", "staleness priority: newest (date), largest (size)")
	cmd.Flags().StringVar(&f.MtimeTolerance, "mtime-tolerance", "", "ignore modification time differences up to this duration (e.g. \"2s\")")
	cmd.Flags().StringVar(&f.WalkErrors, "walk-errors", "", "on unreadable source entries: abort, skip")
	cmd.Flags().StringSliceVar(&f.Exclude, "exclude", []string{}, "gitignore-style patterns to exclude")
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&f.ReviewFile, "review-file", "", "write the list of files to copy to a file")
	cmd.Flags().StringVar(&f.ReviewFormat, "review-format", "human", "review list format: human, json")
}
