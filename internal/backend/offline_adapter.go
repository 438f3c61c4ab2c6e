package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
)

// OfflineQuerier is the subset of *offline.Database the adapter needs;
// declared here so this package does not need to import bleve transitively
// through offline's exported symbols.
type OfflineQuerier interface {
	Query(title string) (*domain.OfflineRecord, error)
	Path() string
}

// Offline wraps a local FTS index (internal/offline) behind the uniform
// Backend contract so the federation orchestrator can treat it exactly
// like a remote adapter: it runs in the same concurrent title fan-out, and
// the only difference is that IsLocal reports true, which ranks it ahead
// of every remote backend in the orchestrator's tie-break (spec §4.I, §4.J).
type Offline struct {
	base
	name string
	db   OfflineQuerier
}

func NewOffline(log zerolog.Logger, name string, db OfflineQuerier) *Offline {
	return &Offline{base: newBase(log, name), name: name, db: db}
}

func (o *Offline) Name() string      { return o.name }
func (o *Offline) IsLocal() bool     { return true }
func (o *Offline) RequiresDOI() bool { return false }

func (o *Offline) Query(_ context.Context, title string, _ *http.Client, _ time.Duration) (domain.QueryOutcome, error) {
	rec, err := o.db.Query(title)
	if err != nil {
		return domain.TransientError(err.Error()), nil
	}
	if rec == nil {
		return domain.NotFound(), nil
	}
	return domain.Found(rec.Title, rec.Authors, rec.URL), nil
}
