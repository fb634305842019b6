package catalog

import (
	"context"

	"github.com/artseen/artseen/internal/model"
)

// maxResults bounds the number of candidates fetched per source call.
const maxResults = 10

// Source abstracts one external art catalog. Implementations map a free-text
// query to candidates in the common shape, with confidence left at 0
// (scoring is a separate concern). A failed call returns an error; the caller
// treats it as an empty result.
type Source interface {
	Name() string
	FetchCandidates(ctx context.Context, query string) ([]model.Candidate, error)
}

// optString returns nil for empty strings so that absent source fields stay
// null instead of becoming "".
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// firstNonEmpty returns the first non-empty value, or "".
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
