package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/artseen/artseen/internal/model"
)

// MetSource fetches candidates from the Metropolitan Museum of Art public API.
// The Met API only returns object IDs from search, so each candidate requires
// a secondary object lookup. Lookups run sequentially, bounded by maxResults,
// to avoid unbounded concurrent outbound requests.
type MetSource struct {
	baseURL    string
	httpClient *http.Client
}

// MetOption configures the Met source.
type MetOption func(*MetSource)

// WithMetBaseURL overrides the API endpoint
// (default: https://collectionapi.metmuseum.org/public/collection/v1).
func WithMetBaseURL(u string) MetOption {
	return func(s *MetSource) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithMetHTTPClient overrides the HTTP client.
func WithMetHTTPClient(c *http.Client) MetOption {
	return func(s *MetSource) { s.httpClient = c }
}

// NewMetSource creates a new Met source.
func NewMetSource(opts ...MetOption) *MetSource {
	s := &MetSource{
		baseURL: "https://collectionapi.metmuseum.org/public/collection/v1",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the catalog identifier.
func (s *MetSource) Name() string { return model.SourceMet }

type metSearchResponse struct {
	ObjectIDs []int `json:"objectIDs"`
}

type metObject struct {
	ArtistDisplayName string `json:"artistDisplayName"`
	Title             string `json:"title"`
	ObjectDate        string `json:"objectDate"`
	City              string `json:"city"`
	Country           string `json:"country"`
	Region            string `json:"region"`
	Period            string `json:"period"`
	Style             string `json:"style"`
	Culture           string `json:"culture"`
	Medium            string `json:"medium"`
}

// FetchCandidates searches the Met collection and fetches object details for
// the first maxResults hits. A failing object lookup skips that object only.
func (s *MetSource) FetchCandidates(ctx context.Context, query string) ([]model.Candidate, error) {
	params := url.Values{
		"q":         {query},
		"hasImages": {"true"},
	}
	ids, err := s.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}

	candidates := make([]model.Candidate, 0, len(ids))
	for _, id := range ids {
		c, err := s.fetchObject(ctx, id)
		if err != nil {
			continue
		}
		candidates = append(candidates, *c)
	}
	return candidates, nil
}

func (s *MetSource) search(ctx context.Context, params url.Values) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: HTTP %d", resp.StatusCode)
	}

	var sr metSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("unmarshal search: %w", err)
	}
	return sr.ObjectIDs, nil
}

func (s *MetSource) fetchObject(ctx context.Context, id int) (*model.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/objects/%d", s.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("object %d: HTTP %d", id, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var o metObject
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("unmarshal object %d: %w", id, err)
	}

	return &model.Candidate{
		Source:          model.SourceMet,
		Confidence:      0,
		Artist:          optString(o.ArtistDisplayName),
		Title:           optString(o.Title),
		DateCreated:     optString(o.ObjectDate),
		LocationPainted: optString(firstNonEmpty(o.City, o.Country, o.Region)),
		Style:           optString(firstNonEmpty(o.Period, o.Style, o.Culture)),
		Medium:          optString(o.Medium),
		RawJSON:         raw,
	}, nil
}
