package enrich

import "context"

// StubEnricher returns a fixed enrichment (for offline mode and testing).
type StubEnricher struct {
	// Result is returned for every non-empty (title, artist) pair.
	Result *Enrichment
	// Err, when set, is returned by every call.
	Err error
}

func (e *StubEnricher) Enrich(_ context.Context, title, artist string) (*Enrichment, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if title == "" || artist == "" {
		return nil, nil
	}
	return e.Result, nil
}
