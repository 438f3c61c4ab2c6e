package extract

import (
	"sync"

	"github.com/paper-app/citeguard/internal/domain"
)

// SkipAccumulator is a thread-safe, monotone-increment-only counter set
// for the skip reasons a reference record can be dropped for (spec §4.L).
// Safe for concurrent use by multiple extraction goroutines; snapshot
// values are reported once per file at extraction completion.
type SkipAccumulator struct {
	mu    sync.Mutex
	stats domain.SkipStats
}

// Record increments the counter matching reason. Kept is a no-op (kept
// references are counted via len(result.References), not here).
func (a *SkipAccumulator) Record(reason SkipReason) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch reason {
	case SkipURLOnly:
		a.stats.URLOnly++
	case SkipShortTitle:
		a.stats.ShortTitle++
	case SkipNoTitle:
		a.stats.NoTitle++
	}
}

// RecordNoAuthors increments the no-authors counter. It is separate from
// Record because no SkipReason covers it: Extractor.ParseRecords calls it
// for a record that passed the other gates but has no authors, and drops
// that record instead of emitting it.
func (a *SkipAccumulator) RecordNoAuthors() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.NoAuthors++
}

// AddRaw increments the total-raw-records counter by n.
func (a *SkipAccumulator) AddRaw(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.TotalRaw += n
}

// Snapshot returns the current counter values.
func (a *SkipAccumulator) Snapshot() domain.SkipStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
