package models

import (
	"strings"
	"time"
)

// StalenessPolicy decides when an existing destination file is out of date
type StalenessPolicy string

const (
	// NewestWins copies when the source modification time is later
	NewestWins StalenessPolicy = "newest"
	// LargestWins copies when the source file is bigger
	LargestWins StalenessPolicy = "largest"
)

// ParseStalenessPolicy accepts the canonical names as well as the
// "Take newest" / "Take largest" labels used by the desktop selector.
func ParseStalenessPolicy(s string) (StalenessPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "newest", "date", "take newest":
		return NewestWins, nil
	case "largest", "size", "take largest":
		return LargestWins, nil
	}
	return "", &ValidationError{Field: "Policy", Message: "unknown staleness policy '" + s + "' (valid: newest, largest)"}
}

// Label returns the human label of the policy
func (p StalenessPolicy) Label() string {
	switch p {
	case NewestWins:
		return "Take newest"
	case LargestWins:
		return "Take largest"
	default:
		return string(p)
	}
}

// WalkErrorMode controls what the differencer does with unreadable entries
type WalkErrorMode string

const (
	// WalkAbort stops the diff at the first unreadable entry
	WalkAbort WalkErrorMode = "abort"
	// WalkSkip records the entry as skipped, logs a warning and continues
	WalkSkip WalkErrorMode = "skip"
)

// SyncOperation represents a configured reconciliation run
type SyncOperation struct {
	ID              string
	Pair            DirectoryPair
	Policy          StalenessPolicy
	MtimeTolerance  time.Duration // NewestWins only; 0 means strictly later
	ExcludePatterns []string
	WalkErrors      WalkErrorMode
	DryRun          bool
	MaxWorkers      int
	BandwidthLimit  int64 // bytes per second, 0 = unlimited
	BufferSize      int
	CreatedAt       time.Time
}

// Validate checks if the operation configuration is valid
func (op *SyncOperation) Validate() error {
	if op.Pair.SourceRoot == "" {
		return &ValidationError{Field: "SourceRoot", Message: "source directory is required"}
	}
	if op.Pair.DestRoot == "" {
		return &ValidationError{Field: "DestRoot", Message: "destination directory is required"}
	}
	if op.Policy != NewestWins && op.Policy != LargestWins {
		return &ValidationError{Field: "Policy", Message: "staleness policy must be 'newest' or 'largest'"}
	}
	if op.WalkErrors != "" && op.WalkErrors != WalkAbort && op.WalkErrors != WalkSkip {
		return &ValidationError{Field: "WalkErrors", Message: "walk error mode must be 'abort' or 'skip'"}
	}
	if op.MtimeTolerance < 0 {
		return &ValidationError{Field: "MtimeTolerance", Message: "tolerance cannot be negative"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	if op.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit cannot be negative"}
	}
	return nil
}
