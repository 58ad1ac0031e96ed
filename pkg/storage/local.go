package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// SkipDir can be returned from a WalkFunc to prune a directory
var SkipDir = filepath.SkipDir

// Local is a filesystem-based storage backend rooted at a directory
type Local struct {
	fs       afero.Fs
	rootPath string
}

// NewLocal creates a backend on the operating system filesystem
func NewLocal(rootPath string) (*Local, error) {
	return NewLocalFs(afero.NewOsFs(), rootPath)
}

// NewLocalFs creates a backend on an arbitrary afero filesystem
func NewLocalFs(fsys afero.Fs, rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := fsys.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{fs: fsys, rootPath: absPath}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// Fs exposes the underlying filesystem
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// Walk visits every entry below the root. Symbolic links are reported with
// IsRegular false and are not followed.
func (l *Local) Walk(ctx context.Context, fn WalkFunc) error {
	return afero.Walk(l.fs, l.rootPath, func(p string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, relErr := filepath.Rel(l.rootPath, p)
		if relErr != nil {
			return relErr
		}
		if relPath == "." {
			if err != nil {
				return err
			}
			return nil
		}

		if err != nil {
			return fn(relPath, nil, err)
		}

		return fn(relPath, l.fileInfo(p, relPath, info), nil)
	})
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := l.fs.Open(l.fullPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Write creates or overwrites a file
func (l *Local) Write(ctx context.Context, path string, reader io.Reader, size int64, metadata *FileInfo) error {
	fullPath := l.fullPath(path)

	if err := l.fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := l.fs.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, reader)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		err = fmt.Errorf("failed to write file: %w", err)
	} else if size >= 0 && written != size {
		err = fmt.Errorf("incomplete write: expected %d bytes, wrote %d", size, written)
	}
	if err != nil {
		// a truncated file carries a fresh mtime and would look up to date
		if rmErr := l.fs.Remove(fullPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove partial file: %w", rmErr))
		}
		return err
	}

	if metadata == nil {
		return nil
	}

	var metaErrs []error
	if !metadata.ModTime.IsZero() {
		if err := l.fs.Chtimes(fullPath, metadata.ModTime, metadata.ModTime); err != nil {
			metaErrs = append(metaErrs, fmt.Errorf("modification time: %w", err))
		}
	}
	if metadata.Permissions != 0 {
		if err := l.fs.Chmod(fullPath, os.FileMode(metadata.Permissions)); err != nil {
			metaErrs = append(metaErrs, fmt.Errorf("permissions: %w", err))
		}
	}
	if len(metaErrs) > 0 {
		return fmt.Errorf("%w: %w", ErrMetadata, errors.Join(metaErrs...))
	}

	return nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := l.lstat(l.fullPath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Stat returns file metadata without following symbolic links.
// A missing path yields an error matching fs.ErrNotExist.
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := l.fullPath(path)

	info, err := l.lstat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	relPath, err := filepath.Rel(l.rootPath, fullPath)
	if err != nil {
		return nil, err
	}

	return l.fileInfo(fullPath, relPath, info), nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	if err := l.fs.MkdirAll(l.fullPath(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func (l *Local) fullPath(path string) string {
	return filepath.Join(l.rootPath, path)
}

func (l *Local) lstat(path string) (fs.FileInfo, error) {
	if lst, ok := l.fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(path)
		return info, err
	}
	return l.fs.Stat(path)
}

func (l *Local) fileInfo(fullPath, relPath string, info fs.FileInfo) *FileInfo {
	return &FileInfo{
		Path:         fullPath,
		RelativePath: relPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		IsRegular:    info.Mode().IsRegular(),
		Permissions:  uint32(info.Mode().Perm()),
	}
}
