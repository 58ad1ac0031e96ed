package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/sdejongh/filecompare/internal/platform"
	"github.com/sdejongh/filecompare/pkg/config"
	"github.com/sdejongh/filecompare/pkg/history"
	"github.com/sdejongh/filecompare/pkg/logging"
	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/output"
	"github.com/sdejongh/filecompare/pkg/storage"
	"github.com/sdejongh/filecompare/pkg/sync"
)

// ExitError carries a non-zero process exit code out of a command
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// sessionOptions customizes how a session is opened
type sessionOptions struct {
	// CreateDest creates a missing destination directory
	CreateDest bool
	// Configure runs after flags have been applied to the configuration
	Configure func(cfg *config.Config)
	// Operation runs on the operation before the engine is built
	Operation func(op *models.SyncOperation)
}

// session holds everything one check or copy needs
type session struct {
	cfg    *config.Config
	pair   models.DirectoryPair
	engine *sync.Engine
	logger logging.Logger
	source storage.Backend
	dest   storage.Backend
	out    io.Writer
}

func openSession(cmd *cobra.Command, f *sessionFlags, opts sessionOptions) (*session, error) {
	if err := validateSessionFlags(f); err != nil {
		return nil, err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyFlagsToConfig(cfg, f)
	if opts.Configure != nil {
		opts.Configure(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	s := &session{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}
	if err := s.open(cmd, f, opts); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) open(cmd *cobra.Command, f *sessionFlags, opts sessionOptions) error {
	pair, err := resolvePair(cmd, s.cfg, f, opts.CreateDest, s.logger)
	if err != nil {
		return err
	}
	s.pair = pair

	operation, err := s.cfg.Operation(pair)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}
	if opts.Operation != nil {
		opts.Operation(operation)
	}

	// Create storage backends
	source, err := storage.NewLocal(pair.SourceRoot)
	if err != nil {
		return fmt.Errorf("failed to create source backend: %w", err)
	}
	s.source = source

	dest, err := storage.NewLocal(pair.DestRoot)
	if err != nil {
		return fmt.Errorf("failed to create destination backend: %w", err)
	}
	s.dest = dest

	formatterOut := s.out
	if s.cfg.Output.Quiet && s.cfg.Output.Format != "json" {
		formatterOut = io.Discard
	}
	formatter := output.New(s.cfg.Output.Format, s.cfg.Output.Progress, formatterOut)

	engine, err := sync.NewEngine(source, dest, formatter, s.logger, operation)
	if err != nil {
		return err
	}
	engine.SetOutput(formatterOut)
	s.engine = engine

	return nil
}

// Close releases the backends and flushes the logger
func (s *session) Close() error {
	var errs []error
	if s.source != nil {
		errs = append(errs, s.source.Close())
	}
	if s.dest != nil {
		errs = append(errs, s.dest.Close())
	}
	if s.logger != nil {
		errs = append(errs, s.logger.Close())
	}
	return errors.Join(errs...)
}

// quiet reports whether informational output is suppressed
func (s *session) quiet() bool {
	return s.cfg.Output.Quiet
}

// resolvePair fills missing roots from the history record, validates the
// pair and remembers it for next time
func resolvePair(cmd *cobra.Command, cfg *config.Config, f *sessionFlags, createDest bool, logger logging.Logger) (models.DirectoryPair, error) {
	ctx := cmd.Context()
	rec := history.Record{Source: f.Source, Dest: f.Dest}

	if cfg.History.Enabled {
		prior, err := history.Load(cfg.HistoryPath())
		if err != nil {
			logger.Warn(ctx, "ignoring unreadable history", logging.Fields{"error": err.Error()})
		}
		rec = rec.Merge(prior)
	}

	if rec.Source == "" {
		return models.DirectoryPair{}, &models.ValidationError{Field: "SourceRoot", Message: "source directory is required (use --source)"}
	}
	if rec.Dest == "" {
		return models.DirectoryPair{}, &models.ValidationError{Field: "DestRoot", Message: "destination directory is required (use --dest)"}
	}

	src, err := platform.NormalizePath(rec.Source)
	if err != nil {
		return models.DirectoryPair{}, &models.ValidationError{Field: "SourceRoot", Path: rec.Source, Message: "invalid path", Err: err}
	}
	dst, err := platform.NormalizePath(rec.Dest)
	if err != nil {
		return models.DirectoryPair{}, &models.ValidationError{Field: "DestRoot", Path: rec.Dest, Message: "invalid path", Err: err}
	}

	if createDest {
		if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return models.DirectoryPair{}, fmt.Errorf("failed to create destination directory: %w", err)
			}
		}
	}

	pair := models.DirectoryPair{SourceRoot: src, DestRoot: dst}
	if err := pair.Validate(); err != nil {
		return models.DirectoryPair{}, err
	}

	if cfg.History.Enabled {
		if err := history.Save(cfg.HistoryPath(), history.Record{Source: src, Dest: dst}); err != nil {
			logger.Warn(ctx, "could not save history", logging.Fields{"error": err.Error()})
		}
	}

	return pair, nil
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	format := logging.FormatText
	if cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	if cfg.Logging.Enabled && cfg.Logging.File != "" {
		logger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      logging.ParseLevel(cfg.Logging.Level),
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
		return logger, nil
	}

	if globalFlags.Verbose {
		return logging.NewWriterLogger(os.Stderr, logging.FormatText, logging.DebugLevel), nil
	}

	return logging.NewNullLogger(), nil
}

// presentDiff prints the summary and writes the review list
func (s *session) presentDiff(cmd *cobra.Command, f *sessionFlags, diff *models.DiffResult) error {
	if s.cfg.Output.Format == "json" {
		if err := output.WriteReview(s.out, diff, "json"); err != nil {
			return err
		}
	} else if !s.quiet() {
		output.WriteDiffSummary(s.out, diff)
		if f.ReviewFile == "" && cmd.Flags().Changed("review-format") {
			if err := output.WriteReview(s.out, diff, f.ReviewFormat); err != nil {
				return err
			}
		}
	}

	if f.ReviewFile != "" {
		if err := output.WriteReviewFile(diff, f.ReviewFile, f.ReviewFormat); err != nil {
			return fmt.Errorf("failed to write review file: %w", err)
		}
	}
	return nil
}
