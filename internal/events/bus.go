// Package events implements the progress/event bus (spec §4.K): a
// best-effort, single-consumer stream that never reorders events within
// one reference but may coalesce when the consumer falls behind.
package events

import (
	"time"

	"github.com/paper-app/citeguard/internal/domain"
)

// DefaultCapacity is the bound on in-flight undelivered events before the
// bus starts dropping the oldest to make room for the newest (spec §7's
// "latest wins" coalescing policy).
const DefaultCapacity = 256

// Bus fans ProgressEvents from possibly many concurrent producers (one per
// in-flight reference or paper) to a single consumer. Publish never blocks
// the caller past draining one stale event off the channel.
type Bus struct {
	ch chan domain.ProgressEvent
}

// NewBus allocates a Bus with the given channel capacity; capacity <= 0
// falls back to DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{ch: make(chan domain.ProgressEvent, capacity)}
}

// Events returns the read side for the single consumer (TUI, streaming
// HTTP handler, or a test harness).
func (b *Bus) Events() <-chan domain.ProgressEvent {
	return b.ch
}

// Close signals no further events will be published. Callers must ensure
// no Publish is in flight when calling Close.
func (b *Bus) Close() {
	close(b.ch)
}

// Publish delivers ev without blocking: if the channel is full it drops
// the oldest queued event and retries once. A second full channel (a
// producer raced it back to capacity) is accepted as a dropped event
// rather than looping indefinitely — the orchestrator must never stall on
// a slow subscriber.
func (b *Bus) Publish(ev domain.ProgressEvent) {
	select {
	case b.ch <- ev:
		return
	default:
	}
	select {
	case <-b.ch:
	default:
	}
	select {
	case b.ch <- ev:
	default:
	}
}

func (b *Bus) ExtractionStarted(paper string) {
	b.Publish(domain.ProgressEvent{Kind: domain.EventExtractionStarted, Paper: paper})
}

func (b *Bus) ExtractionComplete(paper string, refs []domain.Reference, skip domain.SkipStats) {
	b.Publish(domain.ProgressEvent{
		Kind:       domain.EventExtractionComplete,
		Paper:      paper,
		RefCount:   len(refs),
		References: refs,
		Skip:       skip,
	})
}

func (b *Bus) ExtractionFailed(paper string, err error) {
	b.Publish(domain.ProgressEvent{Kind: domain.EventExtractionFailed, Paper: paper, Err: err})
}

func (b *Bus) Checking(ref domain.Reference) {
	b.Publish(domain.ProgressEvent{Kind: domain.EventChecking, Reference: ref})
}

func (b *Bus) DbComplete(ref domain.Reference, db string, success bool, elapsed time.Duration) {
	b.Publish(domain.ProgressEvent{Kind: domain.EventDbComplete, Reference: ref, DB: db, Success: success, Elapsed: elapsed})
}

func (b *Bus) Retry(ref domain.Reference, db string) {
	b.Publish(domain.ProgressEvent{Kind: domain.EventRetry, Reference: ref, DB: db})
}

func (b *Bus) Result(ref domain.Reference, result domain.ValidationResult) {
	b.Publish(domain.ProgressEvent{Kind: domain.EventResult, Reference: ref, Result: result})
}

func (b *Bus) PaperComplete(paper string, results []domain.ValidationResult) {
	b.Publish(domain.ProgressEvent{Kind: domain.EventPaperComplete, Paper: paper, Results: results})
}

func (b *Bus) BatchComplete() {
	b.Publish(domain.ProgressEvent{Kind: domain.EventBatchComplete})
}
