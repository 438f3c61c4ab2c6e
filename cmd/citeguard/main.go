// citeguard validates the reference list of one or more academic papers
// against a federation of bibliographic databases, flagging references
// that cannot be confirmed to actually exist.
//
// Usage:
//
//	citeguard paper1.pdf paper2.bbl references.bib
//	citeguard --json paper.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/backend"
	"github.com/paper-app/citeguard/internal/config"
	"github.com/paper-app/citeguard/internal/domain"
	"github.com/paper-app/citeguard/internal/events"
	"github.com/paper-app/citeguard/internal/extract"
	"github.com/paper-app/citeguard/internal/federation"
	"github.com/paper-app/citeguard/internal/ingest"
	"github.com/paper-app/citeguard/internal/offline"
)

func main() {
	jsonOutput := flag.Bool("json", false, "emit machine-readable JSON instead of text")
	verbose := flag.Bool("verbose", false, "log debug-level progress to stderr")
	archiveCap := flag.Int("max-archive-mb", 0, "override max_archive_size_mb (0 = unlimited)")
	flag.Parse()

	runID := uuid.NewString()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Str("run_id", runID).Logger()
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if flag.NArg() == 0 {
		logger.Fatal().Msg("usage: citeguard [--json] [--verbose] <paper>...")
	}

	cfg := config.Load()
	if *archiveCap > 0 {
		cfg.MaxArchiveSizeMB = *archiveCap
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	backend.SetStopwordsOverride(cfg.StopwordsOverride)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn().Msg("received shutdown signal, canceling in-flight queries")
		cancel()
	}()

	bus := events.NewBus(events.DefaultCapacity)
	if !*jsonOutput {
		go logEvents(logger, bus)
	}

	backends, closeBackends := buildBackends(logger, cfg)
	defer closeBackends()

	client := &http.Client{Timeout: cfg.TimeoutLong}
	orch := federation.New(logger, cfg, backends, client, bus)

	ex := extract.NewExtractor()
	pdfBackend := ingest.LedongthucBackend{}

	outputs := runPapers(ctx, cfg, ex, pdfBackend, orch, bus, flag.Args())
	bus.BatchComplete()

	exitCode := 0
	for _, out := range outputs {
		if out.Error != "" {
			exitCode = 1
		}
		for _, r := range out.Results {
			if r.Status != domain.StatusVerified {
				exitCode = 1
			}
		}
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		report := batchReport{RunID: runID, Papers: outputs}
		if err := enc.Encode(report); err != nil {
			logger.Fatal().Err(err).Msg("encode results")
		}
	}

	os.Exit(exitCode)
}

// batchReport is the top-level JSON record for one invocation: a run_id
// identifying this batch (useful for correlating --json output against
// --verbose log lines, which carry the same run_id) plus one paperOutput
// per input path.
type batchReport struct {
	RunID  string        `json:"run_id"`
	Papers []paperOutput `json:"papers"`
}

// paperOutput is the per-paper JSON record emitted with --json.
type paperOutput struct {
	Path    string                    `json:"path"`
	Skip    domain.SkipStats          `json:"skip_stats"`
	Results []domain.ValidationResult `json:"results"`
	Error   string                    `json:"error,omitempty"`
}

// runPapers processes every input path, bounded by max_concurrent_papers
// simultaneous papers in flight (spec §4.I / SPEC_FULL §4), mirroring
// validateAll's semaphore pattern one level up the fan-out. Results are
// returned in input order regardless of completion order.
func runPapers(ctx context.Context, cfg *config.Config, ex *extract.Extractor, pdfBackend ingest.PDFBackend, orch *federation.Orchestrator, bus *events.Bus, paths []string) []paperOutput {
	maxConcurrent := cfg.MaxConcurrentPapers
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	outputs := make([]paperOutput, len(paths))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			outputs[i] = runPaper(ctx, cfg, ex, pdfBackend, orch, bus, path)
		}()
	}
	wg.Wait()
	return outputs
}

func runPaper(ctx context.Context, cfg *config.Config, ex *extract.Extractor, pdfBackend ingest.PDFBackend, orch *federation.Orchestrator, bus *events.Bus, path string) paperOutput {
	bus.ExtractionStarted(path)

	extraction, err := extractFromPath(path, ex, pdfBackend, int64(cfg.MaxArchiveSizeMB)*1024*1024)
	if err != nil {
		bus.ExtractionFailed(path, err)
		return paperOutput{Path: path, Error: err.Error()}
	}
	bus.ExtractionComplete(path, extraction.References, extraction.Skip)

	results := validateAll(ctx, orch, extraction.References, cfg.MaxConcurrentRefs)
	bus.PaperComplete(path, results)

	return paperOutput{Path: path, Skip: extraction.Skip, Results: results}
}

// extractFromPath dispatches on file extension: PDFs go through the text
// extractor and full B->C->D->E pipeline, .bbl/.bib go through their
// dedicated ingesters (bypassing section location and segmentation), and
// archives are unpacked and each embedded PDF processed in turn with its
// results merged (spec §6).
func extractFromPath(path string, ex *extract.Extractor, pdfBackend ingest.PDFBackend, maxArchiveBytes int64) (domain.ExtractionResult, error) {
	if ingest.IsArchivePath(path) {
		return extractFromArchive(path, ex, pdfBackend, maxArchiveBytes)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bbl":
		return ingest.ExtractBBL(path, ex)
	case ".bib":
		return ingest.ExtractBIB(path)
	default:
		text, err := pdfBackend.ExtractText(path)
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("extract text from %s: %w", path, err)
		}
		return ex.Extract(text)
	}
}

func extractFromArchive(path string, ex *extract.Extractor, pdfBackend ingest.PDFBackend, maxArchiveBytes int64) (domain.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("read archive %s: %w", path, err)
	}

	var merged domain.ExtractionResult
	walkErr := ingest.ExtractArchiveStreaming(path, data, maxArchiveBytes, func(item ingest.ArchiveItem) error {
		tmp, err := os.CreateTemp("", "citeguard-*.pdf")
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(item.Bytes); err != nil {
			tmp.Close()
			return err
		}
		tmp.Close()

		text, err := pdfBackend.ExtractText(tmp.Name())
		if err != nil {
			return fmt.Errorf("extract text from %s (in %s): %w", item.Filename, path, err)
		}
		res, err := ex.Extract(text)
		if err != nil {
			return err
		}
		merged.References = append(merged.References, res.References...)
		merged.Skip.TotalRaw += res.Skip.TotalRaw
		merged.Skip.URLOnly += res.Skip.URLOnly
		merged.Skip.ShortTitle += res.Skip.ShortTitle
		merged.Skip.NoTitle += res.Skip.NoTitle
		merged.Skip.NoAuthors += res.Skip.NoAuthors
		return nil
	})
	if walkErr != nil {
		return domain.ExtractionResult{}, fmt.Errorf("unpack archive %s: %w", path, walkErr)
	}
	return merged, nil
}

// validateAll runs the orchestrator over every reference, bounded by
// max_concurrent_refs simultaneous in-flight validations (spec §4.I).
func validateAll(ctx context.Context, orch *federation.Orchestrator, refs []domain.Reference, maxConcurrent int) []domain.ValidationResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	results := make([]domain.ValidationResult, len(refs))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	for i, ref := range refs {
		i, ref := i, ref
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = orch.Validate(ctx, ref)
		}()
	}
	wg.Wait()
	return results
}

// buildBackends constructs the full backend list in the fixed priority
// order (offline indices first), wiring optional offline indices from
// configuration when their paths are set. Disabled backends stay in the
// list; the orchestrator skips them per query.
func buildBackends(logger zerolog.Logger, cfg *config.Config) ([]backend.Backend, func()) {
	var backends []backend.Backend
	var closers []func() error

	if cfg.DBLPOfflinePath != "" {
		if db, err := offline.Open(logger, cfg.DBLPOfflinePath, 0.95); err != nil {
			logger.Warn().Err(err).Str("path", cfg.DBLPOfflinePath).Msg("dblp offline index unavailable, falling back to online")
		} else {
			backends = append(backends, backend.NewOffline(logger, "DBLP (offline)", db))
			closers = append(closers, db.Close)
		}
	}
	if cfg.ACLOfflinePath != "" {
		if db, err := offline.Open(logger, cfg.ACLOfflinePath, 0.95); err != nil {
			logger.Warn().Err(err).Str("path", cfg.ACLOfflinePath).Msg("acl offline index unavailable, falling back to online")
		} else {
			backends = append(backends, backend.NewOffline(logger, "ACL Anthology (offline)", db))
			closers = append(closers, db.Close)
		}
	}

	backends = append(backends,
		backend.NewDOIResolver(logger),
		backend.NewCrossRef(logger, cfg.Mailto),
		backend.NewDBLP(logger),
		backend.NewOpenAlex(logger, cfg.Mailto, cfg.CheckOpenAlexAuthors),
		backend.NewArxiv(logger),
		backend.NewSemanticScholar(logger, cfg.S2APIKey),
		backend.NewEuropePMC(logger),
		backend.NewPubMed(logger, cfg.PubMedAPIKey),
		backend.NewACLAnthology(logger),
		backend.NewNeurIPS(logger),
		backend.NewSSRN(logger),
	)

	return backends, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn().Err(err).Msg("closing offline index")
			}
		}
	}
}

func logEvents(logger zerolog.Logger, bus *events.Bus) {
	for ev := range bus.Events() {
		switch ev.Kind {
		case domain.EventExtractionStarted:
			logger.Info().Str("paper", ev.Paper).Msg("extracting references")
		case domain.EventExtractionComplete:
			logger.Info().Str("paper", ev.Paper).Int("refs", ev.RefCount).Msg("extraction complete")
		case domain.EventExtractionFailed:
			logger.Error().Str("paper", ev.Paper).Err(ev.Err).Msg("extraction failed")
		case domain.EventChecking:
			logger.Debug().Str("title", ev.Reference.Title).Msg("checking reference")
		case domain.EventDbComplete:
			logger.Debug().Str("title", ev.Reference.Title).Str("db", ev.DB).Bool("success", ev.Success).Dur("elapsed", ev.Elapsed).Msg("backend query complete")
		case domain.EventResult:
			logger.Info().Str("title", ev.Reference.Title).Str("status", string(ev.Result.Status)).Msg("reference validated")
		case domain.EventPaperComplete:
			logger.Info().Str("paper", ev.Paper).Int("results", len(ev.Results)).Msg("paper complete")
		case domain.EventBatchComplete:
			logger.Info().Msg("batch complete")
		}
	}
}
