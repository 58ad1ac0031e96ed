// Package history persists the last used source and destination directories.
//
// The record is a single line of text, "source;dest". Either field may be
// empty. A missing file, or a record without the delimiter, means there is
// no prior selection.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const delimiter = ";"

// Record holds the last selected directories
type Record struct {
	Source string
	Dest   string
}

// Empty reports whether neither side has been selected
func (r Record) Empty() bool {
	return r.Source == "" && r.Dest == ""
}

// String encodes the record in its on-disk form
func (r Record) String() string {
	return r.Source + delimiter + r.Dest
}

// Parse decodes a record. Only the first delimiter splits, so a destination
// containing ';' survives.
func Parse(s string) Record {
	s = strings.TrimRight(s, "\r\n")
	parts := strings.SplitN(s, delimiter, 2)
	if len(parts) != 2 {
		return Record{}
	}
	return Record{Source: parts[0], Dest: parts[1]}
}

// Load reads the record at path. A missing file yields an empty record.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read history: %w", err)
	}
	return Parse(string(data)), nil
}

// Save writes the record to path, creating parent directories. An empty
// record is not written.
func Save(path string, r Record) error {
	if r.Empty() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(r.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Merge fills the empty fields of r from prior
func (r Record) Merge(prior Record) Record {
	if r.Source == "" {
		r.Source = prior.Source
	}
	if r.Dest == "" {
		r.Dest = prior.Dest
	}
	return r
}
