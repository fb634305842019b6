package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/artseen/artseen/internal/auth"
	"github.com/artseen/artseen/internal/catalog"
	"github.com/artseen/artseen/internal/enrich"
	"github.com/artseen/artseen/internal/identify"
	"github.com/artseen/artseen/internal/model"
	"github.com/artseen/artseen/internal/store"
)

type testEnv struct {
	store    *store.Store
	verifier *auth.Verifier
	handler  http.Handler
}

// newTestEnv wires a real store and pipeline with stubbed catalog sources.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	pipeline := identify.NewPipeline(st, []catalog.Source{&catalog.StubSource{}}, &enrich.StubEnricher{})
	verifier := auth.NewVerifier("test-secret")
	srv := New(st, pipeline, verifier, "*")

	return &testEnv{store: st, verifier: verifier, handler: srv.Handler()}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.verifier.IssueToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// do sends a JSON request, with a bearer token when userID is non-empty.
func (e *testEnv) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
}

func createTestArtwork(t *testing.T, e *testEnv, userID string) model.Artwork {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/artworks", userID, map[string]interface{}{
		"museum_name": "Art Institute of Chicago",
		"image_url":   "https://img.example/a.jpg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create artwork: status %d: %s", rec.Code, rec.Body.String())
	}
	var artwork model.Artwork
	decode(t, rec, &artwork)
	return artwork
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/identify"},
		{http.MethodPost, "/api/artworks"},
		{http.MethodGet, "/api/artworks"},
		{http.MethodGet, "/api/artworks/some-id"},
		{http.MethodPut, "/api/profile"},
	} {
		rec := e.do(t, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestBadToken(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/artworks", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/identify", nil)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCreateArtwork(t *testing.T) {
	e := newTestEnv(t)

	artwork := createTestArtwork(t, e, "user-1")
	if artwork.ID == "" {
		t.Error("ID not assigned")
	}
	if artwork.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", artwork.Status, model.StatusPending)
	}
}

func TestCreateArtwork_MissingMuseum(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/artworks", "user-1", map[string]interface{}{
		"image_url": "https://img.example/a.jpg",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestIdentify(t *testing.T) {
	e := newTestEnv(t)
	artwork := createTestArtwork(t, e, "user-1")

	rec := e.do(t, http.MethodPost, "/api/identify", "user-1", map[string]interface{}{
		"artworkId": artwork.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var result model.IdentifyResult
	decode(t, rec, &result)
	if result.ArtworkID != artwork.ID {
		t.Errorf("artworkId = %q", result.ArtworkID)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(result.Candidates))
	}
	if result.Candidates[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", result.Candidates[0].Rank)
	}
}

func TestIdentify_MissingArtworkID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/identify", "user-1", map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestIdentify_UnknownArtwork(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/identify", "user-1", map[string]interface{}{
		"artworkId": "no-such-artwork",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIdentify_NotOwner(t *testing.T) {
	e := newTestEnv(t)
	artwork := createTestArtwork(t, e, "user-1")

	rec := e.do(t, http.MethodPost, "/api/identify", "intruder", map[string]interface{}{
		"artworkId": artwork.ID,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	// The rejected request must not have touched the artwork.
	get := e.do(t, http.MethodGet, "/api/artworks/"+artwork.ID, "user-1", nil)
	var got model.ArtworkWithCandidates
	decode(t, get, &got)
	if got.Status != model.StatusPending {
		t.Errorf("Status = %q, want untouched %q", got.Status, model.StatusPending)
	}
	if len(got.Candidates) != 0 {
		t.Errorf("candidates = %d, want 0", len(got.Candidates))
	}
}

func TestGetArtwork(t *testing.T) {
	e := newTestEnv(t)
	artwork := createTestArtwork(t, e, "user-1")

	rec := e.do(t, http.MethodGet, "/api/artworks/"+artwork.ID, "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got model.ArtworkWithCandidates
	decode(t, rec, &got)
	if got.ID != artwork.ID {
		t.Errorf("ID = %q", got.ID)
	}
	if got.Candidates == nil {
		t.Error("painting_candidates missing from response")
	}

	if rec := e.do(t, http.MethodGet, "/api/artworks/ghost", "user-1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown artwork: status = %d, want 404", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/api/artworks/"+artwork.ID, "intruder", nil); rec.Code != http.StatusForbidden {
		t.Errorf("foreign artwork: status = %d, want 403", rec.Code)
	}
}

func TestListArtworks(t *testing.T) {
	e := newTestEnv(t)
	createTestArtwork(t, e, "user-1")
	createTestArtwork(t, e, "user-2")

	rec := e.do(t, http.MethodGet, "/api/artworks", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Artworks []model.ArtworkWithCandidates `json:"artworks"`
	}
	decode(t, rec, &resp)
	if len(resp.Artworks) != 1 {
		t.Errorf("artworks = %d, want only the caller's", len(resp.Artworks))
	}
}

func TestSelectCandidate(t *testing.T) {
	e := newTestEnv(t)
	artwork := createTestArtwork(t, e, "user-1")

	rec := e.do(t, http.MethodPost, "/api/identify", "user-1", map[string]interface{}{
		"artworkId": artwork.ID,
	})
	var result model.IdentifyResult
	decode(t, rec, &result)
	candidateID := result.Candidates[0].ID

	rec = e.do(t, http.MethodPost, "/api/artworks/"+artwork.ID+"/select", "user-1", map[string]interface{}{
		"candidateId": candidateID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Artwork model.Artwork `json:"artwork"`
	}
	decode(t, rec, &resp)
	if resp.Artwork.Status != model.StatusConfirmed {
		t.Errorf("Status = %q, want %q", resp.Artwork.Status, model.StatusConfirmed)
	}
	if resp.Artwork.SelectedCandidateID == nil || *resp.Artwork.SelectedCandidateID != candidateID {
		t.Errorf("SelectedCandidateID = %v", resp.Artwork.SelectedCandidateID)
	}

	// A candidate id that does not belong to the artwork is a client error.
	rec = e.do(t, http.MethodPost, "/api/artworks/"+artwork.ID+"/select", "user-1", map[string]interface{}{
		"candidateId": "ghost",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSelectCandidate_NotOwner(t *testing.T) {
	e := newTestEnv(t)
	artwork := createTestArtwork(t, e, "user-1")

	rec := e.do(t, http.MethodPost, "/api/artworks/"+artwork.ID+"/select", "intruder", map[string]interface{}{
		"candidateId": "whatever",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestProfileAndPublicGallery(t *testing.T) {
	e := newTestEnv(t)
	createTestArtwork(t, e, "user-1")

	rec := e.do(t, http.MethodPut, "/api/profile", "user-1", map[string]interface{}{
		"username":     "collector",
		"display_name": "The Collector",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert profile: status = %d: %s", rec.Code, rec.Body.String())
	}

	// The gallery is readable without credentials.
	rec = e.do(t, http.MethodGet, "/api/public/collector", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public gallery: status = %d", rec.Code)
	}
	var resp struct {
		Profile  model.Profile                 `json:"profile"`
		Artworks []model.ArtworkWithCandidates `json:"artworks"`
	}
	decode(t, rec, &resp)
	if resp.Profile.Username != "collector" {
		t.Errorf("username = %q", resp.Profile.Username)
	}
	if len(resp.Artworks) != 1 {
		t.Errorf("artworks = %d, want 1", len(resp.Artworks))
	}
}

func TestPublicGallery_Hidden(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPut, "/api/profile", "user-1", map[string]interface{}{
		"username":  "hermit",
		"is_public": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert profile: status = %d", rec.Code)
	}

	if rec := e.do(t, http.MethodGet, "/api/public/hermit", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("private profile: status = %d, want 404", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/api/public/nobody", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown profile: status = %d, want 404", rec.Code)
	}
}

func TestProfile_MissingUsername(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPut, "/api/profile", "user-1", map[string]interface{}{
		"display_name": "Anonymous",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
