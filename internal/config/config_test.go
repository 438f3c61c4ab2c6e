package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaultsWhenEnvUnset(t *testing.T) {
	cfg := Load()
	if cfg.MaxConcurrentPapers != 1 {
		t.Errorf("expected default MaxConcurrentPapers 1, got %d", cfg.MaxConcurrentPapers)
	}
	if cfg.MaxConcurrentRefs != 4 {
		t.Errorf("expected default MaxConcurrentRefs 4, got %d", cfg.MaxConcurrentRefs)
	}
	if cfg.TimeoutShort != 10*time.Second {
		t.Errorf("expected default TimeoutShort 10s, got %v", cfg.TimeoutShort)
	}
	if cfg.TimeoutLong != 30*time.Second {
		t.Errorf("expected default TimeoutLong 30s, got %v", cfg.TimeoutLong)
	}
	if cfg.CheckOpenAlexAuthors {
		t.Errorf("expected CheckOpenAlexAuthors to default false")
	}
	if len(cfg.DisabledDBs) != 0 {
		t.Errorf("expected no disabled backends by default")
	}
	if cfg.StopwordsOverride.Replace != nil || cfg.StopwordsOverride.Extra != nil {
		t.Errorf("expected zero-value StopwordsOverride by default, got %+v", cfg.StopwordsOverride)
	}
}

func TestLoadReadsOverridesFromEnv(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_REFS", "8")
	t.Setenv("TIMEOUT_SHORT", "5")
	t.Setenv("CHECK_OPENALEX_AUTHORS", "true")
	t.Setenv("DISABLED_DBS", "SSRN, NeurIPS")
	t.Setenv("CITEGUARD_MAILTO", "ops@example.com")

	cfg := Load()
	if cfg.MaxConcurrentRefs != 8 {
		t.Errorf("expected MaxConcurrentRefs 8, got %d", cfg.MaxConcurrentRefs)
	}
	if cfg.TimeoutShort != 5*time.Second {
		t.Errorf("expected TimeoutShort 5s, got %v", cfg.TimeoutShort)
	}
	if !cfg.CheckOpenAlexAuthors {
		t.Errorf("expected CheckOpenAlexAuthors true")
	}
	if cfg.Mailto != "ops@example.com" {
		t.Errorf("expected mailto to round-trip, got %q", cfg.Mailto)
	}
	if !cfg.Disabled("ssrn") || !cfg.Disabled("SSRN") || !cfg.Disabled("NeurIPS") {
		t.Errorf("expected SSRN and NeurIPS to be disabled regardless of case")
	}
	if cfg.Disabled("CrossRef") {
		t.Errorf("did not expect CrossRef to be disabled")
	}
}

func TestLoadReadsStopwordsOverrideFromEnv(t *testing.T) {
	t.Setenv("STOPWORDS_EXTRA", "deep, learning")

	cfg := Load()
	want := []string{"deep", "learning"}
	if len(cfg.StopwordsOverride.Extra) != len(want) {
		t.Fatalf("expected StopwordsOverride.Extra %v, got %v", want, cfg.StopwordsOverride.Extra)
	}
	for i, w := range want {
		if cfg.StopwordsOverride.Extra[i] != w {
			t.Fatalf("expected StopwordsOverride.Extra %v, got %v", want, cfg.StopwordsOverride.Extra)
		}
	}
	if cfg.StopwordsOverride.Replace != nil {
		t.Errorf("expected Replace to stay nil when only Extra is set")
	}
}

func TestValidateRejectsNonPositiveConcurrency(t *testing.T) {
	cfg := Load()
	cfg.MaxConcurrentRefs = 0
	if err := cfg.Validate(); err != ErrConfigInvalid {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := Load()
	cfg.TimeoutLong = 0
	if err := cfg.Validate(); err != ErrConfigInvalid {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate cleanly, got %v", err)
	}
}
