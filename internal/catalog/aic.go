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

// AICSource fetches candidates from the Art Institute of Chicago public API.
type AICSource struct {
	baseURL    string
	httpClient *http.Client
}

// AICOption configures the AIC source.
type AICOption func(*AICSource)

// WithAICBaseURL overrides the API endpoint (default: https://api.artic.edu/api/v1).
func WithAICBaseURL(u string) AICOption {
	return func(s *AICSource) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithAICHTTPClient overrides the HTTP client.
func WithAICHTTPClient(c *http.Client) AICOption {
	return func(s *AICSource) { s.httpClient = c }
}

// NewAICSource creates a new Art Institute of Chicago source.
func NewAICSource(opts ...AICOption) *AICSource {
	s := &AICSource{
		baseURL: "https://api.artic.edu/api/v1",
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
func (s *AICSource) Name() string { return model.SourceAIC }

type aicArtwork struct {
	ArtistTitle   string `json:"artist_title"`
	Title         string `json:"title"`
	DateDisplay   string `json:"date_display"`
	PlaceOfOrigin string `json:"place_of_origin"`
	StyleTitle    string `json:"style_title"`
	MediumDisplay string `json:"medium_display"`
}

type aicSearchResponse struct {
	Data []json.RawMessage `json:"data"`
}

// FetchCandidates searches AIC artworks and maps them to candidates.
func (s *AICSource) FetchCandidates(ctx context.Context, query string) ([]model.Candidate, error) {
	params := url.Values{
		"q":      {query},
		"fields": {"id,title,artist_title,date_display,style_title,medium_display,place_of_origin,image_id"},
		"limit":  {fmt.Sprintf("%d", maxResults)},
	}
	searchURL := s.baseURL + "/artworks/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var sr aicSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal search: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(sr.Data))
	for _, raw := range sr.Data {
		var a aicArtwork
		if err := json.Unmarshal(raw, &a); err != nil {
			// Skip unparseable entries instead of aborting the batch.
			continue
		}
		candidates = append(candidates, model.Candidate{
			Source:          model.SourceAIC,
			Confidence:      0,
			Artist:          optString(a.ArtistTitle),
			Title:           optString(a.Title),
			DateCreated:     optString(a.DateDisplay),
			LocationPainted: optString(a.PlaceOfOrigin),
			Style:           optString(a.StyleTitle),
			Medium:          optString(a.MediumDisplay),
			RawJSON:         raw,
		})
	}
	return candidates, nil
}
