package compare

import (
	"time"

	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/storage"
)

// NewestWins treats the destination as stale when the source was modified later
type NewestWins struct {
	tolerance time.Duration
}

// NewNewestWins creates a modification-time policy. With a zero tolerance the
// source must be strictly later; a positive tolerance absorbs coarse
// filesystem timestamps (FAT stores mtimes with 2s precision).
func NewNewestWins(tolerance time.Duration) *NewestWins {
	if tolerance < 0 {
		tolerance = 0
	}
	return &NewestWins{tolerance: tolerance}
}

// IsStale compares modification times
func (p *NewestWins) IsStale(source, dest *storage.FileInfo) bool {
	return source.ModTime.Sub(dest.ModTime) > p.tolerance
}

// Reason returns ReasonNewer
func (p *NewestWins) Reason() models.CandidateReason {
	return models.ReasonNewer
}

// Name returns the policy identifier
func (p *NewestWins) Name() models.StalenessPolicy {
	return models.NewestWins
}
