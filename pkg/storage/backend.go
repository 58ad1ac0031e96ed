package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrMetadata marks a write whose bytes landed but whose timestamps or
// permissions could not be applied
var ErrMetadata = errors.New("failed to preserve file metadata")

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	IsRegular    bool
	Permissions  uint32
}

// WalkFunc is called for every entry below the backend root, in lexical order.
// info is nil when err is non-nil and the entry could not be inspected.
// Returning SkipDir on a directory prunes it; any other error stops the walk.
type WalkFunc func(relativePath string, info *FileInfo, err error) error

// Backend defines the interface for storage operations
type Backend interface {
	// Root returns the absolute root path of the backend
	Root() string

	// Walk visits every entry below the root
	Walk(ctx context.Context, fn WalkFunc) error

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites a file with the given content.
	// If metadata is provided, attempts to preserve timestamps and permissions;
	// failures to do so are reported wrapped in ErrMetadata.
	Write(ctx context.Context, path string, reader io.Reader, size int64, metadata *FileInfo) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
