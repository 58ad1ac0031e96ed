package compare

import (
	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/storage"
)

// LargestWins treats the destination as stale when the source is bigger
type LargestWins struct{}

// NewLargestWins creates a size policy
func NewLargestWins() *LargestWins {
	return &LargestWins{}
}

// IsStale compares sizes
func (p *LargestWins) IsStale(source, dest *storage.FileInfo) bool {
	return source.Size > dest.Size
}

// Reason returns ReasonLarger
func (p *LargestWins) Reason() models.CandidateReason {
	return models.ReasonLarger
}

// Name returns the policy identifier
func (p *LargestWins) Name() models.StalenessPolicy {
	return models.LargestWins
}
