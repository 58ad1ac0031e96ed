package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/sdejongh/filecompare/pkg/compare"
	"github.com/sdejongh/filecompare/pkg/logging"
	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/storage"
)

// DiffOptions tunes a Differencer
type DiffOptions struct {
	// Exclude drops matching files and prunes matching directories
	Exclude *Excluder
	// WalkErrors selects abort (default) or skip on unreadable entries
	WalkErrors models.WalkErrorMode
	Logger     logging.Logger
}

// Differencer computes which source files are missing or stale in the destination
type Differencer struct {
	source     storage.Backend
	dest       storage.Backend
	policy     compare.Policy
	exclude    *Excluder
	walkErrors models.WalkErrorMode
	logger     logging.Logger
}

// NewDifferencer creates a differencer over two backends
func NewDifferencer(source, dest storage.Backend, policy compare.Policy, opts DiffOptions) *Differencer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	walkErrors := opts.WalkErrors
	if walkErrors == "" {
		walkErrors = models.WalkAbort
	}
	return &Differencer{
		source:     source,
		dest:       dest,
		policy:     policy,
		exclude:    opts.Exclude,
		walkErrors: walkErrors,
		logger:     logger,
	}
}

// Pair returns the roots the differencer compares
func (d *Differencer) Pair() models.DirectoryPair {
	return models.DirectoryPair{SourceRoot: d.source.Root(), DestRoot: d.dest.Root()}
}

// Diff walks the source tree in lexical order and returns every regular file
// whose mirrored destination is missing, not a regular file, or stale under
// the policy. In abort mode the first unreadable entry ends the diff with a
// *models.WalkError and no result. A cancelled diff returns the context error.
func (d *Differencer) Diff(ctx context.Context) (*models.DiffResult, error) {
	pair := d.Pair()
	result := &models.DiffResult{
		Pair:   pair,
		Policy: d.policy.Name(),
	}

	err := d.source.Walk(ctx, func(relPath string, info *storage.FileInfo, err error) error {
		if err != nil {
			return d.walkFailure(ctx, result, relPath, &models.WalkError{
				Path: filepath.Join(pair.SourceRoot, relPath),
				Err:  err,
			})
		}

		if d.exclude.Match(relPath, info.IsDir) {
			d.logger.Debug(ctx, "excluded", logging.Fields{"path": relPath})
			if info.IsDir {
				return storage.SkipDir
			}
			return nil
		}

		if info.IsDir {
			return nil
		}
		if !info.IsRegular {
			d.logger.Debug(ctx, "skipping non-regular entry", logging.Fields{"path": relPath})
			return nil
		}

		result.FilesScanned++

		candidate, werr := d.evaluate(ctx, pair, relPath, info)
		if werr != nil {
			return d.walkFailure(ctx, result, relPath, werr)
		}
		if candidate != nil {
			result.Add(*candidate)
		}
		return nil
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var we *models.WalkError
		if errors.As(err, &we) {
			return nil, we
		}
		return nil, &models.WalkError{Path: pair.SourceRoot, Err: err}
	}

	return result, nil
}

// evaluate decides whether one source file is a candidate
func (d *Differencer) evaluate(ctx context.Context, pair models.DirectoryPair, relPath string, info *storage.FileInfo) (*models.CopyCandidate, *models.WalkError) {
	sourcePath := filepath.Join(pair.SourceRoot, relPath)
	destPath, err := pair.MirrorPath(sourcePath)
	if err != nil {
		return nil, &models.WalkError{Path: sourcePath, Err: err}
	}

	var reason models.CandidateReason
	destInfo, err := d.dest.Stat(ctx, relPath)
	switch {
	case isNotExist(err):
		reason = models.ReasonMissing
	case err != nil:
		return nil, &models.WalkError{Path: destPath, Err: err}
	case !destInfo.IsRegular:
		reason = models.ReasonDestNotRegular
	case d.policy.IsStale(info, destInfo):
		reason = d.policy.Reason()
	default:
		return nil, nil
	}

	return &models.CopyCandidate{
		RelativePath: relPath,
		SourcePath:   sourcePath,
		DestPath:     destPath,
		Size:         info.Size,
		ModTime:      info.ModTime,
		Reason:       reason,
	}, nil
}

// walkFailure aborts the walk or, in skip mode, records the entry and continues
func (d *Differencer) walkFailure(ctx context.Context, result *models.DiffResult, relPath string, werr *models.WalkError) error {
	if d.walkErrors != models.WalkSkip || ctx.Err() != nil {
		return werr
	}

	result.Skipped = append(result.Skipped, models.SkippedEntry{
		RelativePath: relPath,
		Error:        werr.Err.Error(),
	})
	d.logger.Warn(ctx, "skipping unreadable entry", logging.Fields{
		"path":  werr.Path,
		"error": werr.Err.Error(),
	})
	return nil
}

// isNotExist treats a file in place of a destination directory as a missing path
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// Diff validates pair and computes its candidates with default options
func Diff(ctx context.Context, pair models.DirectoryPair, policy models.StalenessPolicy) (*models.DiffResult, error) {
	if err := pair.Validate(); err != nil {
		return nil, err
	}

	p, err := compare.ForPolicy(policy, 0)
	if err != nil {
		return nil, err
	}

	source, dest, err := openPair(pair)
	if err != nil {
		return nil, err
	}
	defer source.Close()
	defer dest.Close()

	return NewDifferencer(source, dest, p, DiffOptions{}).Diff(ctx)
}

func openPair(pair models.DirectoryPair) (*storage.Local, *storage.Local, error) {
	source, err := storage.NewLocal(pair.SourceRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source backend: %w", err)
	}
	dest, err := storage.NewLocal(pair.DestRoot)
	if err != nil {
		source.Close()
		return nil, nil, fmt.Errorf("failed to create destination backend: %w", err)
	}
	return source, dest, nil
}
