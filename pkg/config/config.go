package config

import (
	"time"

	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	History     HistoryConfig     `yaml:"history"`
	Exclude     []string          `yaml:"exclude"`
}

// SyncConfig holds reconciliation settings
type SyncConfig struct {
	Priority       models.StalenessPolicy `yaml:"priority"`
	MtimeTolerance time.Duration          `yaml:"mtime_tolerance"`
	WalkErrors     models.WalkErrorMode   `yaml:"walk_errors"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int    `yaml:"max_workers"`
	BufferSize     int    `yaml:"buffer_size"`
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "10MB", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	File       string `yaml:"file"`   // Log file path (empty = no file log)
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// HistoryConfig controls the last-used-directories record
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"` // empty = DefaultHistoryPath()
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Priority:   models.NewestWins,
			WalkErrors: models.WalkAbort,
		},
		Performance: PerformanceConfig{
			MaxWorkers: 1,
			BufferSize: 65536,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Format:     "json",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := models.ParseStalenessPolicy(string(c.Sync.Priority)); err != nil {
		return &models.ValidationError{
			Field:   "sync.priority",
			Message: "must be 'newest' or 'largest'",
		}
	}

	if c.Sync.MtimeTolerance < 0 {
		return &models.ValidationError{
			Field:   "sync.mtime_tolerance",
			Message: "cannot be negative",
		}
	}

	if c.Sync.WalkErrors != models.WalkAbort && c.Sync.WalkErrors != models.WalkSkip {
		return &models.ValidationError{
			Field:   "sync.walk_errors",
			Message: "must be 'abort' or 'skip'",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if _, err := ratelimit.ParseBandwidth(c.Performance.BandwidthLimit); err != nil {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "not a valid size",
			Err:     err,
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size_mb",
			Message: "rotation settings cannot be negative",
		}
	}

	return nil
}

// Operation builds a SyncOperation for pair from the configuration
func (c *Config) Operation(pair models.DirectoryPair) (*models.SyncOperation, error) {
	policy, err := models.ParseStalenessPolicy(string(c.Sync.Priority))
	if err != nil {
		return nil, err
	}
	bandwidth, err := ratelimit.ParseBandwidth(c.Performance.BandwidthLimit)
	if err != nil {
		return nil, &models.ValidationError{Field: "BandwidthLimit", Message: "not a valid size", Err: err}
	}

	op := &models.SyncOperation{
		Pair:            pair,
		Policy:          policy,
		MtimeTolerance:  c.Sync.MtimeTolerance,
		ExcludePatterns: append([]string(nil), c.Exclude...),
		WalkErrors:      c.Sync.WalkErrors,
		MaxWorkers:      c.Performance.MaxWorkers,
		BandwidthLimit:  bandwidth,
		BufferSize:      c.Performance.BufferSize,
		CreatedAt:       time.Now(),
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	return op, nil
}
