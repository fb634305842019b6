// Package enrich provides best-effort secondary lookups that fill gaps in a
// candidate's attributes. Enrichment must never fail the identification
// pipeline: every failure degrades to a nil result.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Enrichment holds secondary attributes looked up for a (title, artist) pair.
type Enrichment struct {
	Inception     string
	LocationLabel string
	StyleLabel    string
	MaterialLabel string
}

// Enricher abstracts the knowledge-graph lookup.
type Enricher interface {
	Enrich(ctx context.Context, title, artist string) (*Enrichment, error)
}

// WikidataEnricher queries the Wikidata SPARQL endpoint for a painting whose
// label contains the title and whose creator's label contains the artist.
type WikidataEnricher struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

// WikidataOption configures the enricher.
type WikidataOption func(*WikidataEnricher)

// WithEndpoint overrides the SPARQL endpoint (default: https://query.wikidata.org/sparql).
func WithEndpoint(u string) WikidataOption {
	return func(e *WikidataEnricher) { e.endpoint = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) WikidataOption {
	return func(e *WikidataEnricher) { e.httpClient = c }
}

// NewWikidataEnricher creates a new Wikidata enricher.
func NewWikidataEnricher(opts ...WikidataOption) *WikidataEnricher {
	e := &WikidataEnricher{
		endpoint: "https://query.wikidata.org/sparql",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent: "artseen/0.1 (museum painting log)",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sparqlResponse matches the SPARQL JSON results format.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Enrich looks up secondary attributes for the given title and artist.
// It returns nil when either input is empty after normalization, when no
// match exists, or on any transport or parse failure.
func (e *WikidataEnricher) Enrich(ctx context.Context, title, artist string) (*Enrichment, error) {
	t := strings.ToLower(strings.TrimSpace(title))
	a := strings.ToLower(strings.TrimSpace(artist))
	if t == "" || a == "" {
		return nil, nil
	}

	query := buildSPARQL(t, a)
	params := url.Values{
		"format": {"json"},
		"query":  {query},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query: HTTP %d", resp.StatusCode)
	}

	var sr sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if len(sr.Results.Bindings) == 0 {
		return nil, nil
	}

	b := sr.Results.Bindings[0]
	return &Enrichment{
		Inception:     b["inception"].Value,
		LocationLabel: b["locationLabel"].Value,
		StyleLabel:    b["styleLabel"].Value,
		MaterialLabel: b["materialLabel"].Value,
	}, nil
}

// buildSPARQL renders the single-match lookup query. The inputs are already
// case-folded; embedded quotes are escaped.
func buildSPARQL(title, artist string) string {
	esc := func(s string) string { return strings.ReplaceAll(s, `"`, `\"`) }
	return fmt.Sprintf(`
SELECT ?inception ?locationLabel ?styleLabel ?materialLabel WHERE {
  ?item rdfs:label ?titleLabel .
  FILTER(LANG(?titleLabel) = "en") .
  FILTER(CONTAINS(LCASE(STR(?titleLabel)), "%s")) .
  ?item wdt:P170 ?creator .
  ?creator rdfs:label ?creatorLabel .
  FILTER(LANG(?creatorLabel) = "en") .
  FILTER(CONTAINS(LCASE(STR(?creatorLabel)), "%s")) .
  OPTIONAL { ?item wdt:P571 ?inception . }
  OPTIONAL { ?item wdt:P1071 ?location . }
  OPTIONAL { ?item wdt:P136 ?style . }
  OPTIONAL { ?item wdt:P186 ?material . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 1`, esc(title), esc(artist))
}
