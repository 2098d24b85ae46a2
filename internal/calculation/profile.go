package calculation

import (
	"time"

	"github.com/hhplan/household-planner/internal/domain"
	"github.com/hhplan/household-planner/pkg/dateutil"
)

// ResolveProfile returns the effective profile ID for a simulation date:
// among all active entries, the one with the latest start date that is not
// after the date wins. Dates compare at month granularity. When two active
// entries share a start month, the later entry in the sequence wins.
// The second return is false when no entry is effective.
func ResolveProfile(sequence []domain.ProfileRef, at time.Time) (string, bool) {
	atMonth := dateutil.MonthStart(at)
	var best *domain.ProfileRef
	for i := range sequence {
		ref := &sequence[i]
		if !ref.IsActive {
			continue
		}
		start := dateutil.MonthStart(ref.StartDate)
		if start.After(atMonth) {
			continue
		}
		if best == nil || !start.Before(dateutil.MonthStart(best.StartDate)) {
			best = ref
		}
	}
	if best == nil {
		return "", false
	}
	return best.ProfileID, true
}
