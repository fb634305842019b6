package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/artseen/artseen/internal/model"
)

// newMetTestServer serves a search result plus per-object details.
// Objects listed in failing return HTTP 500.
func newMetTestServer(t *testing.T, ids []int, objects map[int]map[string]string, failing map[int]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/search":
			if r.URL.Query().Get("hasImages") != "true" {
				t.Errorf("hasImages = %q, want true", r.URL.Query().Get("hasImages"))
			}
			json.NewEncoder(w).Encode(map[string]any{"objectIDs": ids})
		case strings.HasPrefix(r.URL.Path, "/objects/"):
			id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/objects/"))
			if failing[id] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			o, ok := objects[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(o)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestMetSource_FetchCandidates(t *testing.T) {
	objects := map[int]map[string]string{
		1: {
			"title":             "The Starry Night Study",
			"artistDisplayName": "Vincent van Gogh",
			"objectDate":        "1889",
			"country":           "France",
			"culture":           "Dutch",
			"medium":            "Oil on canvas",
		},
	}
	srv := newMetTestServer(t, []int{1}, objects, nil)
	defer srv.Close()

	s := NewMetSource(WithMetBaseURL(srv.URL))
	got, err := s.FetchCandidates(context.Background(), "starry night")
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1", len(got))
	}

	c := got[0]
	if c.Source != model.SourceMet {
		t.Errorf("source = %q", c.Source)
	}
	// No city/region: location falls back to country; no period/style:
	// style falls back to culture.
	if c.LocationPainted == nil || *c.LocationPainted != "France" {
		t.Errorf("location_painted = %v, want France", c.LocationPainted)
	}
	if c.Style == nil || *c.Style != "Dutch" {
		t.Errorf("style = %v, want Dutch (culture fallback)", c.Style)
	}
}

func TestMetSource_SkipsFailingObjects(t *testing.T) {
	objects := map[int]map[string]string{
		1: {"title": "First"},
		3: {"title": "Third"},
	}
	srv := newMetTestServer(t, []int{1, 2, 3}, objects, map[int]bool{2: true})
	defer srv.Close()

	s := NewMetSource(WithMetBaseURL(srv.URL))
	got, err := s.FetchCandidates(context.Background(), "anything")
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2 (object 2 skipped)", len(got))
	}
	if *got[0].Title != "First" || *got[1].Title != "Third" {
		t.Errorf("titles = %v, %v", got[0].Title, got[1].Title)
	}
}

func TestMetSource_CapsObjectLookups(t *testing.T) {
	var ids []int
	objects := map[int]map[string]string{}
	for i := 1; i <= 25; i++ {
		ids = append(ids, i)
		objects[i] = map[string]string{"title": fmt.Sprintf("Object %d", i)}
	}
	srv := newMetTestServer(t, ids, objects, nil)
	defer srv.Close()

	s := NewMetSource(WithMetBaseURL(srv.URL))
	got, err := s.FetchCandidates(context.Background(), "anything")
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(got) != maxResults {
		t.Fatalf("candidates = %d, want %d", len(got), maxResults)
	}
}

func TestMetSource_SearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewMetSource(WithMetBaseURL(srv.URL))
	if _, err := s.FetchCandidates(context.Background(), "anything"); err == nil {
		t.Fatal("expected error when search fails")
	}
}

func TestMetSource_NullObjectIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"objectIDs": null, "total": 0}`))
	}))
	defer srv.Close()

	s := NewMetSource(WithMetBaseURL(srv.URL))
	got, err := s.FetchCandidates(context.Background(), "no hits")
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %d, want 0", len(got))
	}
}
