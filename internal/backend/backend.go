// Package backend implements the uniform backend contract (spec §4.F)
// and the concrete per-backend adapters (§4.G) over remote academic
// database APIs plus the DOI resolver.
package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
)

// Backend is the uniform query contract every federation member
// satisfies. Implementations must be safe to share across concurrent
// calls — stateless, or internally synchronized.
type Backend interface {
	Name() string
	IsLocal() bool
	RequiresDOI() bool
	Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error)
}

// DOIQuerier is the optional second half of the contract: a backend that
// can additionally resolve by DOI. Checked via type assertion at the
// orchestrator's DOI-shortcut phase (spec §4.I phase 1).
type DOIQuerier interface {
	QueryDOI(ctx context.Context, doi, title string, authors []string, client *http.Client, timeout time.Duration) (*domain.QueryOutcome, error)
}

// Descriptor returns the process-long BackendDescriptor for b.
func Descriptor(b Backend) domain.BackendDescriptor {
	return domain.BackendDescriptor{Name: b.Name(), IsLocal: b.IsLocal(), RequiresDOI: b.RequiresDOI()}
}

// base provides the common logger plumbing every adapter embeds.
type base struct {
	log zerolog.Logger
}

func newBase(log zerolog.Logger, name string) base {
	return base{log: log.With().Str("backend", name).Logger()}
}
