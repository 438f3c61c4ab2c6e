// Package config loads the flat Configuration record (spec §6) governing
// backend credentials, offline index locations, and concurrency/timeout
// ceilings, from environment variables in the teacher's flat getEnv style.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paper-app/citeguard/internal/extract"
)

// ErrConfigInvalid is returned by Validate when the loaded configuration
// cannot drive a federation run (spec's Operational error class).
var ErrConfigInvalid = errors.New("invalid configuration")

// Config is the process-wide Configuration record.
type Config struct {
	OpenAlexKey          string
	S2APIKey             string
	PubMedAPIKey         string
	Mailto               string // polite-pool identification sent to CrossRef/OpenAlex
	DBLPOfflinePath      string
	ACLOfflinePath        string
	MaxConcurrentPapers  int
	MaxConcurrentRefs    int
	TimeoutShort         time.Duration
	TimeoutLong          time.Duration
	CheckOpenAlexAuthors bool
	DisabledDBs          map[string]struct{}
	MaxArchiveSizeMB     int // 0 means unlimited
	StopwordsOverride    extract.ListOverride[string]
}

// Load builds a Config from the environment, applying spec §6's defaults
// for anything unset.
func Load() *Config {
	return &Config{
		OpenAlexKey:          getEnv("OPENALEX_KEY", ""),
		S2APIKey:             getEnv("S2_API_KEY", ""),
		PubMedAPIKey:         getEnv("PUBMED_API_KEY", ""),
		Mailto:               getEnv("CITEGUARD_MAILTO", ""),
		DBLPOfflinePath:      getEnv("DBLP_OFFLINE_PATH", ""),
		ACLOfflinePath:       getEnv("ACL_OFFLINE_PATH", ""),
		MaxConcurrentPapers:  getIntEnv("MAX_CONCURRENT_PAPERS", 1),
		MaxConcurrentRefs:    getIntEnv("MAX_CONCURRENT_REFS", 4),
		TimeoutShort:         getDurationEnv("TIMEOUT_SHORT", 10*time.Second),
		TimeoutLong:          getDurationEnv("TIMEOUT_LONG", 30*time.Second),
		CheckOpenAlexAuthors: getBoolEnv("CHECK_OPENALEX_AUTHORS", false),
		DisabledDBs:          getSetEnv("DISABLED_DBS"),
		MaxArchiveSizeMB:     getIntEnv("MAX_ARCHIVE_SIZE_MB", 0),
		StopwordsOverride: extract.ListOverride[string]{
			Replace: getSliceEnv("STOPWORDS_REPLACE"),
			Extra:   getSliceEnv("STOPWORDS_EXTRA"),
		},
	}
}

// Validate reports ErrConfigInvalid when the record cannot drive a run:
// non-positive concurrency ceilings or timeouts are nonsensical regardless
// of which backends are enabled.
func (c *Config) Validate() error {
	if c.MaxConcurrentPapers <= 0 || c.MaxConcurrentRefs <= 0 {
		return ErrConfigInvalid
	}
	if c.TimeoutShort <= 0 || c.TimeoutLong <= 0 {
		return ErrConfigInvalid
	}
	return nil
}

// Disabled reports whether backend is present in DisabledDBs, matching
// case-insensitively against the backend's display name.
func (c *Config) Disabled(backendName string) bool {
	_, ok := c.DisabledDBs[strings.ToLower(backendName)]
	return ok
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// getSliceEnv splits a comma-separated env var into a trimmed, order-preserving
// slice, or nil if unset (so it composes with ListOverride's "nil Replace
// means no override" zero value).
func getSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getSetEnv(key string) map[string]struct{} {
	out := make(map[string]struct{})
	value := os.Getenv(key)
	if value == "" {
		return out
	}
	for _, name := range strings.Split(value, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}
