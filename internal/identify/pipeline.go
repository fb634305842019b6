// Package identify implements the painting identification pipeline: build a
// query from museum metadata and text signals, fan out to the catalog sources,
// rank and deduplicate the results, enrich the survivors and persist them.
package identify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artseen/artseen/internal/catalog"
	"github.com/artseen/artseen/internal/enrich"
	"github.com/artseen/artseen/internal/model"
)

// queryTokenLimit bounds the query text dispatched to the sources.
const queryTokenLimit = 12

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetArtwork(ctx context.Context, id string) (*model.Artwork, error)
	UpdateArtworkStatus(ctx context.Context, id, status string) error
	ReplaceCandidates(ctx context.Context, artworkID string, candidates []model.Candidate) error
	ListCandidates(ctx context.Context, artworkID string) ([]model.Candidate, error)
}

// Pipeline orchestrates one identification run end to end.
type Pipeline struct {
	store         Store
	sources       []catalog.Source
	enricher      enrich.Enricher
	bonusRules    []BonusRule
	sourceTimeout time.Duration
	enrichTimeout time.Duration
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithBonusRules overrides the museum affinity table.
func WithBonusRules(rules []BonusRule) Option {
	return func(p *Pipeline) { p.bonusRules = rules }
}

// WithSourceTimeout sets the per-source fetch timeout.
func WithSourceTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.sourceTimeout = d }
}

// WithEnrichTimeout sets the per-call enrichment timeout.
func WithEnrichTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.enrichTimeout = d }
}

// NewPipeline creates a pipeline with the given dependencies.
func NewPipeline(s Store, sources []catalog.Source, enricher enrich.Enricher, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:         s,
		sources:       sources,
		enricher:      enricher,
		bonusRules:    DefaultBonusRules(),
		sourceTimeout: 5 * time.Second,
		enrichTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Identify runs the pipeline on behalf of a caller. The caller must own the
// artwork; authorization failure terminates with no side effects.
func (p *Pipeline) Identify(ctx context.Context, userID string, req model.IdentifyRequest) (*model.IdentifyResult, error) {
	if req.ArtworkID == "" {
		return nil, fmt.Errorf("artworkId is required")
	}
	artwork, err := p.store.GetArtwork(ctx, req.ArtworkID)
	if err != nil {
		return nil, err
	}
	if artwork.UserID != userID {
		return nil, model.ErrNotOwner
	}
	return p.run(ctx, artwork, req)
}

// Process runs the pipeline for the background worker. The worker acts as the
// system, so no caller identity is checked.
func (p *Pipeline) Process(ctx context.Context, artwork *model.Artwork) error {
	_, err := p.run(ctx, artwork, model.IdentifyRequest{ArtworkID: artwork.ID})
	return err
}

func (p *Pipeline) run(ctx context.Context, artwork *model.Artwork, req model.IdentifyRequest) (*model.IdentifyResult, error) {
	queryText, museumText := buildQuery(artwork, req)
	slog.Info("identifying artwork", "artwork_id", artwork.ID, "query", queryText)

	merged := p.fetchAll(ctx, queryText)
	ranked := RankCandidates(merged, queryText, museumText, p.bonusRules)

	// Enrich sequentially to limit load on the knowledge graph.
	rows := make([]model.Candidate, 0, len(ranked))
	for i, c := range ranked {
		c = p.enrichCandidate(ctx, c)
		c.ID = uuid.New().String()
		c.Rank = i + 1
		rows = append(rows, c)
	}

	// Replace the stored candidate set, then write the terminal status. A
	// persistence failure marks the artwork as errored instead of propagating.
	status := model.StatusError
	if err := p.store.ReplaceCandidates(ctx, artwork.ID, rows); err != nil {
		slog.Error("persist candidates failed", "artwork_id", artwork.ID, "error", err)
	} else if len(rows) > 0 {
		status = model.StatusReady
	}
	if err := p.store.UpdateArtworkStatus(ctx, artwork.ID, status); err != nil {
		slog.Error("status update failed", "artwork_id", artwork.ID, "status", status, "error", err)
	}

	// Report what is actually stored, not the in-memory set, so the response
	// reflects durable state even under partial failure.
	stored, err := p.store.ListCandidates(ctx, artwork.ID)
	if err != nil {
		return nil, fmt.Errorf("read stored candidates: %w", err)
	}
	if stored == nil {
		stored = []model.Candidate{}
	}
	return &model.IdentifyResult{ArtworkID: artwork.ID, Candidates: stored}, nil
}

// fetchAll invokes every source concurrently and merges the results in source
// order. A source failure contributes an empty slice and never cancels its
// siblings.
func (p *Pipeline) fetchAll(ctx context.Context, query string) []model.Candidate {
	results := make([][]model.Candidate, len(p.sources))
	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		go func(i int, src catalog.Source) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, p.sourceTimeout)
			defer cancel()
			candidates, err := src.FetchCandidates(fetchCtx, query)
			if err != nil {
				slog.Warn("source fetch failed", "source", src.Name(), "error", err)
				return
			}
			results[i] = candidates
		}(i, src)
	}
	wg.Wait()

	var merged []model.Candidate
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

// enrichCandidate back-fills missing candidate fields from the knowledge
// graph. Enrichment never overwrites a source-provided value and its failure
// leaves the candidate unchanged.
func (p *Pipeline) enrichCandidate(ctx context.Context, c model.Candidate) model.Candidate {
	enrichCtx, cancel := context.WithTimeout(ctx, p.enrichTimeout)
	defer cancel()

	e, err := p.enricher.Enrich(enrichCtx, deref(c.Title), deref(c.Artist))
	if err != nil {
		slog.Warn("enrichment failed", "source", c.Source, "error", err)
		return c
	}
	if e == nil {
		return c
	}

	fill := func(field **string, value string) {
		if *field == nil && value != "" {
			v := value
			*field = &v
		}
	}
	fill(&c.DateCreated, e.Inception)
	fill(&c.LocationPainted, e.LocationLabel)
	fill(&c.Style, e.StyleLabel)
	fill(&c.Medium, e.MaterialLabel)
	return c
}

// buildQuery assembles the museum context and the dispatched query text.
// Request-supplied museum fields take precedence over the stored artwork's;
// the query falls back to "painting" so the sources never see an empty query,
// and is truncated to the first queryTokenLimit tokens.
func buildQuery(artwork *model.Artwork, req model.IdentifyRequest) (queryText, museumText string) {
	name := coalesce(req.MuseumName, artwork.MuseumName)
	city := coalesce(req.MuseumCity, deref(artwork.MuseumCity))
	country := coalesce(req.MuseumCountry, deref(artwork.MuseumCountry))
	museumText = strings.TrimSpace(name + " " + city + " " + country)

	var signalsText string
	if s := req.TextSignals; s != nil {
		signalsText = strings.TrimSpace(s.Caption + "\n" + s.OCRText + "\n" + strings.Join(s.Keywords, " "))
	}

	queryText = strings.TrimSpace(museumText + " " + signalsText)
	if queryText == "" {
		queryText = "painting"
	}

	tokens := strings.Fields(queryText)
	if len(tokens) > queryTokenLimit {
		tokens = tokens[:queryTokenLimit]
	}
	return strings.Join(tokens, " "), museumText
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
