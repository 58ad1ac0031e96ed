package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirectoryPair identifies the source and destination roots of a reconciliation
type DirectoryPair struct {
	// SourceRoot is the absolute path of the tree files are copied from
	SourceRoot string `json:"source_root" yaml:"source_root"`
	// DestRoot is the absolute path of the tree files are copied to
	DestRoot string `json:"dest_root" yaml:"dest_root"`
}

// Abs returns a copy of the pair with both roots made absolute and cleaned
func (p DirectoryPair) Abs() (DirectoryPair, error) {
	src, err := filepath.Abs(p.SourceRoot)
	if err != nil {
		return p, &ValidationError{Field: "SourceRoot", Path: p.SourceRoot, Message: "cannot resolve path", Err: err}
	}
	dst, err := filepath.Abs(p.DestRoot)
	if err != nil {
		return p, &ValidationError{Field: "DestRoot", Path: p.DestRoot, Message: "cannot resolve path", Err: err}
	}
	return DirectoryPair{SourceRoot: src, DestRoot: dst}, nil
}

// Validate checks that both roots exist, are directories, and do not overlap.
// The pair is resolved to absolute paths before the checks run.
func (p DirectoryPair) Validate() error {
	if p.SourceRoot == "" {
		return &ValidationError{Field: "SourceRoot", Message: "source directory is required"}
	}
	if p.DestRoot == "" {
		return &ValidationError{Field: "DestRoot", Message: "destination directory is required"}
	}

	abs, err := p.Abs()
	if err != nil {
		return err
	}

	if err := checkDir("SourceRoot", abs.SourceRoot); err != nil {
		return err
	}
	if err := checkDir("DestRoot", abs.DestRoot); err != nil {
		return err
	}

	if abs.SourceRoot == abs.DestRoot {
		return &ValidationError{Field: "DestRoot", Path: abs.DestRoot, Message: "source and destination cannot be the same"}
	}
	if strings.HasPrefix(abs.DestRoot, abs.SourceRoot+string(filepath.Separator)) {
		return &ValidationError{Field: "DestRoot", Path: abs.DestRoot, Message: "destination cannot be inside source directory"}
	}
	if strings.HasPrefix(abs.SourceRoot, abs.DestRoot+string(filepath.Separator)) {
		return &ValidationError{Field: "SourceRoot", Path: abs.SourceRoot, Message: "source cannot be inside destination directory"}
	}

	return nil
}

// MirrorPath returns the destination path for an absolute path under SourceRoot.
// The relative part is computed with filepath.Rel, never by substring replacement.
func (p DirectoryPair) MirrorPath(sourcePath string) (string, error) {
	rel, err := filepath.Rel(p.SourceRoot, sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside source root %s", sourcePath, p.SourceRoot)
	}
	return filepath.Join(p.DestRoot, rel), nil
}

func checkDir(field, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &ValidationError{Field: field, Path: path, Message: "directory does not exist"}
	}
	if err != nil {
		return &ValidationError{Field: field, Path: path, Message: "cannot access directory", Err: err}
	}
	if !info.IsDir() {
		return &ValidationError{Field: field, Path: path, Message: "path is not a directory"}
	}
	return nil
}
