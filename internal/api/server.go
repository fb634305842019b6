package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/artseen/artseen/internal/auth"
	"github.com/artseen/artseen/internal/model"
	"github.com/artseen/artseen/internal/store"
)

// maxRequestBody is the maximum allowed request body size (1 MB).
const maxRequestBody int64 = 1 << 20

// Identifier runs the identification pipeline on behalf of a caller.
type Identifier interface {
	Identify(ctx context.Context, userID string, req model.IdentifyRequest) (*model.IdentifyResult, error)
}

// Server holds the HTTP handlers and dependencies.
type Server struct {
	store      store.Repository
	pipeline   Identifier
	verifier   *auth.Verifier
	corsOrigin string
	mux        *http.ServeMux
}

// New creates a new API server.
func New(s store.Repository, pipeline Identifier, verifier *auth.Verifier, corsOrigin string) *Server {
	srv := &Server{store: s, pipeline: pipeline, verifier: verifier, corsOrigin: corsOrigin, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

// Handler returns the root http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(limitBody(jsonContent(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/identify", s.authed(s.handleIdentify))
	s.mux.HandleFunc("POST /api/artworks", s.authed(s.handleCreateArtwork))
	s.mux.HandleFunc("GET /api/artworks", s.authed(s.handleListArtworks))
	s.mux.HandleFunc("GET /api/artworks/{id}", s.authed(s.handleGetArtwork))
	s.mux.HandleFunc("POST /api/artworks/{id}/select", s.authed(s.handleSelectCandidate))
	s.mux.HandleFunc("PUT /api/profile", s.authed(s.handleUpsertProfile))
	s.mux.HandleFunc("GET /api/public/{username}", s.handlePublicGallery)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

// corsMiddleware sets CORS headers and answers preflight requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origin := s.corsOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody restricts the request body to maxRequestBody bytes.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		next.ServeHTTP(w, r)
	})
}

func jsonContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// authed resolves the bearer credential and passes the user id to the handler.
func (s *Server) authed(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.verifier.UserFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, userID)
	}
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
