// Package federation implements the validation orchestrator (spec §4.I):
// the DOI-shortcut phase, the concurrent title fan-out phase with
// short-circuit cancellation, and the tie-break rule among simultaneous
// confirmations.
package federation

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/paper-app/citeguard/internal/backend"
	"github.com/paper-app/citeguard/internal/config"
	"github.com/paper-app/citeguard/internal/domain"
	"github.com/paper-app/citeguard/internal/events"
	"github.com/paper-app/citeguard/internal/normalize"
	"github.com/paper-app/citeguard/internal/ratelimit"
)

// NRetry is the number of transient-error retry attempts per backend
// within a single reference query (spec §4.H).
const NRetry = 2

// Orchestrator validates one Reference at a time against the federation
// of enabled backends. It is safe for concurrent use: callers bound the
// number of simultaneous Validate calls externally via
// Config.MaxConcurrentRefs (see validateAll in cmd/citeguard).
type Orchestrator struct {
	Backends []backend.Backend
	Governor *ratelimit.Governor
	Client   *http.Client
	Bus      *events.Bus
	Config   *config.Config
	Timeout  time.Duration // timeout_short or timeout_long for this run
	log      zerolog.Logger
}

// New builds an Orchestrator from the caller's backend list (in priority
// order; backends named in Config.DisabledDBs are skipped by Validate on
// each query) using timeout_short, the first-pass default.
func New(log zerolog.Logger, cfg *config.Config, backends []backend.Backend, client *http.Client, bus *events.Bus) *Orchestrator {
	return &Orchestrator{
		Backends: backends,
		Governor: ratelimit.NewGovernor(),
		Client:   client,
		Bus:      bus,
		Config:   cfg,
		Timeout:  cfg.TimeoutShort,
		log:      log,
	}
}

// WithLongTimeout returns a copy of o configured for the user-driven
// "retry all failed" path, which uses timeout_long instead of
// timeout_short (spec §4.H).
func (o *Orchestrator) WithLongTimeout() *Orchestrator {
	clone := *o
	clone.Timeout = o.Config.TimeoutLong
	return &clone
}

type backendResult struct {
	name     string
	isLocal  bool
	outcome  domain.QueryOutcome
}

// Validate runs the two-phase federation check for one reference (spec
// §4.I) and returns its ValidationResult.
func (o *Orchestrator) Validate(ctx context.Context, ref domain.Reference) domain.ValidationResult {
	o.Bus.Checking(ref)

	deadline := o.Timeout * time.Duration(2*len(o.Backends))
	if deadline <= 0 {
		deadline = o.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var failedDBs []string
	var mismatches []backendResult

	if ref.DOI != "" {
		if verified, mismatch, failed := o.phaseDOI(ctx, ref); verified != nil {
			result := o.resultFor(ref, *verified, domain.StatusVerified)
			o.Bus.Result(ref, result)
			return result
		} else {
			if mismatch != nil {
				mismatches = append(mismatches, *mismatch)
			}
			failedDBs = append(failedDBs, failed...)
		}
	}

	verified, phaseMismatches, phaseFailed := o.phaseTitleFanOut(ctx, ref)
	failedDBs = append(failedDBs, phaseFailed...)
	mismatches = append(mismatches, phaseMismatches...)

	var result domain.ValidationResult
	switch {
	case verified != nil:
		result = o.resultFor(ref, *verified, domain.StatusVerified)
	case len(mismatches) > 0:
		best := bestByPriority(mismatches, o.isLocalMap())
		result = o.resultFor(ref, best, domain.StatusAuthorMismatch)
	default:
		result = domain.ValidationResult{Title: ref.Title, Authors: ref.Authors, Status: domain.StatusNotFound}
	}
	result.FailedDBs = dedupe(failedDBs)
	o.Bus.Result(ref, result)
	return result
}

func (o *Orchestrator) resultFor(ref domain.Reference, br backendResult, status domain.Status) domain.ValidationResult {
	return domain.ValidationResult{
		Title:        ref.Title,
		Authors:      ref.Authors,
		Status:       status,
		Source:       br.name,
		FoundAuthors: br.outcome.Authors,
		PaperURL:     br.outcome.URL,
	}
}

// phaseDOI runs the DOI-shortcut phase. It returns a non-nil *backendResult
// for `verified` only when the DOI resolver reports a title+author match;
// `mismatch` carries a remembered AuthorMismatch candidate per spec §4.I
// phase 1, to be overridden by phase 2 if a stronger match arrives.
func (o *Orchestrator) phaseDOI(ctx context.Context, ref domain.Reference) (verified *backendResult, mismatch *backendResult, failedDBs []string) {
	for _, b := range o.Backends {
		querier, ok := b.(backend.DOIQuerier)
		if !ok {
			continue
		}
		name := b.Name()
		if o.Config.Disabled(name) || !o.Governor.Allow(name) {
			continue
		}

		start := time.Now()
		outcome, err := o.queryDOIWithRetry(ctx, querier, ref)
		o.Bus.DbComplete(ref, name, err == nil && outcome != nil && outcome.Kind == domain.OutcomeFound, time.Since(start))
		if err != nil || outcome == nil {
			failedDBs = append(failedDBs, name)
			continue
		}

		switch outcome.Kind {
		case domain.OutcomeFound:
			br := backendResult{name: name, isLocal: b.IsLocal(), outcome: *outcome}
			if normalize.TitlesMatch(ref.Title, outcome.Title) && authorsOverlap(ref.Authors, outcome.Authors) {
				return &br, nil, failedDBs
			}
			mismatch = &br
		case domain.OutcomeRateLimited, domain.OutcomeTransientError:
			failedDBs = append(failedDBs, name)
		}
		// only one DOI resolver is expected to be wired in; stop at the
		// first that actually answered rather than querying several.
		return nil, mismatch, failedDBs
	}
	return nil, mismatch, failedDBs
}

func (o *Orchestrator) queryDOIWithRetry(ctx context.Context, q backend.DOIQuerier, ref domain.Reference) (*domain.QueryOutcome, error) {
	var last *domain.QueryOutcome
	var lastErr error
	for attempt := 0; attempt <= NRetry; attempt++ {
		last, lastErr = q.QueryDOI(ctx, ref.DOI, ref.Title, ref.Authors, o.Client, o.Timeout)
		if lastErr != nil {
			o.Governor.RecordTransientError("DOI")
			return last, lastErr
		}
		if last == nil || last.Kind == domain.OutcomeRateLimited {
			if last != nil {
				var d *time.Duration
				if last.RetryAfter != nil {
					dur := time.Duration(*last.RetryAfter) * time.Second
					d = &dur
				}
				o.Governor.RecordRateLimited("DOI", d)
			}
			return last, nil
		}
		if last.Kind == domain.OutcomeTransientError {
			o.Governor.RecordTransientError("DOI")
			if attempt < NRetry {
				if !sleepCtx(ctx, o.Governor.BaseDelay) {
					return last, nil
				}
				continue
			}
			return last, nil
		}
		o.Governor.RecordSuccess("DOI")
		return last, nil
	}
	return last, lastErr
}

// phaseTitleFanOut dispatches title queries concurrently to every enabled
// non-DOI-only backend, short-circuiting on the first Verified-eligible
// confirmation (spec §4.I phase 2).
func (o *Orchestrator) phaseTitleFanOut(ctx context.Context, ref domain.Reference) (*backendResult, []backendResult, []string) {
	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(fanCtx)

	var mu sync.Mutex
	var verified *backendResult
	var mismatches []backendResult
	var failedDBs []string
	priorityIdx := o.priorityIndex()

	for _, b := range o.Backends {
		b := b
		if b.RequiresDOI() {
			continue
		}
		name := b.Name()
		if o.Config.Disabled(name) {
			continue
		}

		g.Go(func() error {
			if !o.Governor.Allow(name) {
				mu.Lock()
				failedDBs = append(failedDBs, name)
				mu.Unlock()
				return nil
			}

			start := time.Now()
			outcome, err := o.queryTitleWithRetry(gctx, b, ref)
			success := err == nil && outcome.Kind == domain.OutcomeFound
			o.Bus.DbComplete(ref, name, success, time.Since(start))

			if err != nil {
				mu.Lock()
				failedDBs = append(failedDBs, name)
				mu.Unlock()
				return nil
			}

			switch outcome.Kind {
			case domain.OutcomeFound:
				if !normalize.TitlesMatch(ref.Title, outcome.Title) {
					return nil
				}
				br := backendResult{name: name, isLocal: b.IsLocal(), outcome: outcome}
				if authorsOverlap(ref.Authors, outcome.Authors) {
					mu.Lock()
					if verified == nil || priorityIdx[name] < priorityIdx[verified.name] {
						verified = &br
						cancel()
					}
					mu.Unlock()
					return nil
				}
				mu.Lock()
				mismatches = append(mismatches, br)
				mu.Unlock()
			case domain.OutcomeRateLimited, domain.OutcomeTransientError:
				mu.Lock()
				failedDBs = append(failedDBs, name)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return verified, mismatches, failedDBs
}

func (o *Orchestrator) queryTitleWithRetry(ctx context.Context, b backend.Backend, ref domain.Reference) (domain.QueryOutcome, error) {
	name := b.Name()
	var last domain.QueryOutcome
	var lastErr error
	for attempt := 0; attempt <= NRetry; attempt++ {
		last, lastErr = b.Query(ctx, ref.Title, o.Client, o.Timeout)
		if lastErr != nil {
			o.Governor.RecordTransientError(name)
			return last, lastErr
		}
		switch last.Kind {
		case domain.OutcomeRateLimited:
			var d *time.Duration
			if last.RetryAfter != nil {
				dur := time.Duration(*last.RetryAfter) * time.Second
				d = &dur
			}
			o.Governor.RecordRateLimited(name, d)
			return last, nil
		case domain.OutcomeTransientError:
			o.Governor.RecordTransientError(name)
			if attempt < NRetry {
				if !sleepCtx(ctx, o.Governor.BaseDelay) {
					return last, nil
				}
				continue
			}
			return last, nil
		default:
			o.Governor.RecordSuccess(name)
			return last, nil
		}
	}
	return last, lastErr
}

// priorityIndex returns each enabled backend's rank per PriorityOrder,
// with local (offline) backends ranked ahead of every remote one.
func (o *Orchestrator) priorityIndex() map[string]int {
	isLocal := o.isLocalMap()
	idx := make(map[string]int, len(o.Backends))
	for _, b := range o.Backends {
		idx[b.Name()] = rank(PriorityOrder, isLocal, b.Name())
	}
	return idx
}

func (o *Orchestrator) isLocalMap() map[string]bool {
	m := make(map[string]bool, len(o.Backends))
	for _, b := range o.Backends {
		m[b.Name()] = b.IsLocal()
	}
	return m
}

func bestByPriority(candidates []backendResult, isLocal map[string]bool) backendResult {
	best := candidates[0]
	bestRank := rank(PriorityOrder, isLocal, best.name)
	for _, c := range candidates[1:] {
		if r := rank(PriorityOrder, isLocal, c.name); r < bestRank {
			best, bestRank = c, r
		}
	}
	return best
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// sleepCtx sleeps for d or until ctx is done, reporting whether the sleep
// completed normally (false means ctx was canceled first).
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
