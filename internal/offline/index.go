package offline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
	"github.com/paper-app/citeguard/internal/normalize"
)

// topK is the number of bleve candidates pulled before the fuzzy re-rank,
// per spec §4.J.
const topK = 50

const bleveSubdir = "bleve"
const sidecarFileName = "sidecar.json"

// sidecarRecord mirrors domain.OfflineRecord without the per-query Score
// field, since the sidecar stores the record once and the score is
// recomputed on every query against the live input title.
type sidecarRecord struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	URL     string   `json:"url,omitempty"`
}

type bleveDoc struct {
	Title string `json:"title"`
}

// Database is a read-only handle onto one offline index directory. Callers
// must always invoke Query/Info/CheckStaleness from the blocking pool
// equivalent (spec §7): bleve's index type is not iterator-free and this
// handle serializes access behind mu rather than assuming internal
// thread-safety for reads plus writes.
type Database struct {
	mu       sync.Mutex
	path     string
	index    bleve.Index
	sidecar  map[string]sidecarRecord
	metadata Metadata
	// DefaultThreshold is the match cutoff used by Query; spec §4.J calls
	// for 0.95 on exact-match indices (ACL, DBLP) and a softer value for
	// noisier ones (e.g. arXiv offline mirrors). Set at construction time
	// by the federation wiring per backend.
	DefaultThreshold float64
}

// Open loads an existing offline index directory built by the external
// build pipeline referenced in spec §6 (out of scope for the core).
func Open(log zerolog.Logger, path string, defaultThreshold float64) (*Database, error) {
	idx, err := bleve.Open(filepath.Join(path, bleveSubdir))
	if err != nil {
		return nil, fmt.Errorf("open offline index %q: %w", path, err)
	}

	sidecarData, err := os.ReadFile(filepath.Join(path, sidecarFileName))
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("read offline sidecar %q: %w", path, err)
	}
	var sidecar map[string]sidecarRecord
	if err := json.Unmarshal(sidecarData, &sidecar); err != nil {
		idx.Close()
		return nil, fmt.Errorf("parse offline sidecar %q: %w", path, err)
	}

	meta, err := readMetadata(path)
	if err != nil {
		idx.Close()
		return nil, err
	}

	if defaultThreshold <= 0 {
		defaultThreshold = normalize.DefaultMatchThreshold
	}

	log.Debug().Str("path", path).Int("publications", meta.PublicationCount).Msg("opened offline index")

	return &Database{
		path:             path,
		index:            idx,
		sidecar:          sidecar,
		metadata:         meta,
		DefaultThreshold: defaultThreshold,
	}, nil
}

// Close releases the underlying bleve index handle.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index.Close()
}

// Path returns the directory this handle was opened from.
func (d *Database) Path() string { return d.path }

// Info returns the index's build-time metadata.
func (d *Database) Info() Metadata {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metadata
}

// CheckStaleness reports whether this index's build_date is at least
// thresholdDays old.
func (d *Database) CheckStaleness(thresholdDays int) StalenessReport {
	d.mu.Lock()
	meta := d.metadata
	d.mu.Unlock()
	return checkStaleness(meta, thresholdDays, time.Now())
}

// Query runs the §4.J query protocol at the handle's DefaultThreshold.
func (d *Database) Query(title string) (*domain.OfflineRecord, error) {
	return d.QueryWithThreshold(title, d.DefaultThreshold)
}

// QueryWithThreshold retrieves the top topK BM25 hits for title, re-ranks
// them by the §4.A Indel ratio, and returns the best candidate if its score
// meets threshold. A threshold <= 0 falls back to the handle's default.
func (d *Database) QueryWithThreshold(title string, threshold float64) (*domain.OfflineRecord, error) {
	if threshold <= 0 {
		threshold = d.DefaultThreshold
	}

	q := bleve.NewMatchQuery(title)
	q.SetField("title")
	req := bleve.NewSearchRequestOptions(q, topK, 0, false)
	req.Fields = []string{"title"}

	d.mu.Lock()
	result, err := d.index.Search(req)
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("query offline index %q: %w", d.path, err)
	}

	var best *domain.OfflineRecord
	var bestScore float64
	for _, hit := range result.Hits {
		rec, ok := d.sidecar[hit.ID]
		if !ok {
			continue
		}
		score := normalize.Ratio(normalize.Title(title), normalize.Title(rec.Title))
		if score > bestScore {
			bestScore = score
			candidate := domain.OfflineRecord{Title: rec.Title, Authors: rec.Authors, URL: rec.URL, Score: score}
			best = &candidate
		}
	}

	if best == nil || bestScore < threshold {
		return nil, nil
	}
	return best, nil
}
