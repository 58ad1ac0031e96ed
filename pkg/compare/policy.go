package compare

import (
	"fmt"
	"time"

	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/storage"
)

// Policy decides whether an existing destination file is stale relative to
// its source counterpart. Implementations are pure: they only look at the
// metadata they are given.
type Policy interface {
	// IsStale reports whether source should replace dest.
	// Equal values are never stale.
	IsStale(source, dest *storage.FileInfo) bool

	// Reason is the candidate reason recorded when IsStale is true
	Reason() models.CandidateReason

	// Name returns the policy identifier
	Name() models.StalenessPolicy
}

// ForPolicy returns the policy implementation for a configured mode
func ForPolicy(mode models.StalenessPolicy, tolerance time.Duration) (Policy, error) {
	switch mode {
	case models.NewestWins:
		return NewNewestWins(tolerance), nil
	case models.LargestWins:
		return NewLargestWins(), nil
	default:
		return nil, fmt.Errorf("unsupported staleness policy: %s (use: newest, largest)", mode)
	}
}
