package catalog

import (
	"context"
	"encoding/json"

	"github.com/artseen/artseen/internal/model"
)

// StubSource returns fixed candidates (for offline mode and testing).
type StubSource struct {
	// SourceName defaults to "aic" when empty.
	SourceName string
	// Candidates overrides the default fixture when non-nil.
	Candidates []model.Candidate
	// Err, when set, is returned by every call.
	Err error
}

func (s *StubSource) Name() string {
	if s.SourceName == "" {
		return model.SourceAIC
	}
	return s.SourceName
}

func (s *StubSource) FetchCandidates(_ context.Context, query string) ([]model.Candidate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Candidates != nil {
		return s.Candidates, nil
	}
	artist := "Gustave Caillebotte"
	title := "Paris Street; Rainy Day"
	date := "1877"
	medium := "Oil on canvas"
	raw, _ := json.Marshal(map[string]string{"stub_query": query})
	return []model.Candidate{
		{
			Source:      s.Name(),
			Artist:      &artist,
			Title:       &title,
			DateCreated: &date,
			Medium:      &medium,
			RawJSON:     raw,
		},
	}, nil
}
