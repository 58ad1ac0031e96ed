package models

import (
	"time"
)

// CandidateReason explains why a file was selected for copying
type CandidateReason string

const (
	// ReasonMissing means the mirrored destination path does not exist
	ReasonMissing CandidateReason = "missing"
	// ReasonNewer means the source is strictly newer than the destination
	ReasonNewer CandidateReason = "newer"
	// ReasonLarger means the source is strictly larger than the destination
	ReasonLarger CandidateReason = "larger"
	// ReasonDestNotRegular means something other than a regular file occupies the destination path
	ReasonDestNotRegular CandidateReason = "dest-not-regular"
)

// CopyCandidate is a source file selected for copying by a diff
type CopyCandidate struct {
	RelativePath string          `json:"path"`
	SourcePath   string          `json:"source_path"`
	DestPath     string          `json:"dest_path"`
	Size         int64           `json:"size"`
	ModTime      time.Time       `json:"mod_time"`
	Reason       CandidateReason `json:"reason"`
}

// SkippedEntry is a source path the walk could not read in skip mode
type SkippedEntry struct {
	RelativePath string `json:"path"`
	Error        string `json:"error"`
}

// DiffResult holds the candidates of one diff, in walk order
type DiffResult struct {
	Pair         DirectoryPair   `json:"pair"`
	Policy       StalenessPolicy `json:"policy"`
	Candidates   []CopyCandidate `json:"candidates"`
	TotalBytes   int64           `json:"total_bytes"`
	FilesScanned int             `json:"files_scanned"`
	Skipped      []SkippedEntry  `json:"skipped,omitempty"`
}

// Add appends a candidate and accounts for its size
func (r *DiffResult) Add(c CopyCandidate) {
	r.Candidates = append(r.Candidates, c)
	r.TotalBytes += c.Size
}

// Len returns the number of candidates
func (r *DiffResult) Len() int {
	return len(r.Candidates)
}

// UpToDate reports whether there is nothing to copy
func (r *DiffResult) UpToDate() bool {
	return len(r.Candidates) == 0
}

// RelativePaths returns candidate paths in walk order
func (r *DiffResult) RelativePaths() []string {
	paths := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		paths[i] = c.RelativePath
	}
	return paths
}
