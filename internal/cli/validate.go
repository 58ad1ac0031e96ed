package cli

import (
	"fmt"
	"time"

	"github.com/sdejongh/filecompare/internal/platform"
	"github.com/sdejongh/filecompare/pkg/config"
	"github.com/sdejongh/filecompare/pkg/models"
)

// validateSessionFlags validates the flags shared by check and copy
func validateSessionFlags(f *sessionFlags) error {
	if f.Priority != "" {
		if _, err := models.ParseStalenessPolicy(f.Priority); err != nil {
			return err
		}
	}

	if f.MtimeTolerance != "" {
		d, err := time.ParseDuration(f.MtimeTolerance)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid mtime tolerance: %s (e.g. 1s, 2s)", f.MtimeTolerance)
		}
	}

	validWalkModes := map[string]bool{
		"":                       true,
		string(models.WalkAbort): true,
		string(models.WalkSkip):  true,
	}
	if !validWalkModes[f.WalkErrors] {
		return fmt.Errorf("invalid walk error mode: %s (valid: abort, skip)", f.WalkErrors)
	}

	validFormats := map[string]bool{"": true, "human": true, "json": true}
	if !validFormats[f.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", f.Output)
	}
	if !validFormats[f.ReviewFormat] {
		return fmt.Errorf("invalid review format: %s (valid: human, json)", f.ReviewFormat)
	}

	for _, p := range []string{f.Source, f.Dest} {
		if p == "" {
			continue
		}
		if err := platform.ValidatePath(p); err != nil {
			return err
		}
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	return config.Load(globalFlags.ConfigFile)
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config, f *sessionFlags) {
	if f.Priority != "" {
		policy, _ := models.ParseStalenessPolicy(f.Priority)
		cfg.Sync.Priority = policy
	}

	if f.MtimeTolerance != "" {
		if d, err := time.ParseDuration(f.MtimeTolerance); err == nil {
			cfg.Sync.MtimeTolerance = d
		}
	}

	if f.WalkErrors != "" {
		cfg.Sync.WalkErrors = models.WalkErrorMode(f.WalkErrors)
	}

	// Exclude patterns
	if len(f.Exclude) > 0 {
		cfg.Exclude = f.Exclude
	}

	// Output format
	if f.Output != "" {
		cfg.Output.Format = f.Output
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	if globalFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
}
