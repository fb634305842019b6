package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/artseen/artseen/internal/model"
)

// ---------------------------------------------------------------------------
// POST /api/identify
// ---------------------------------------------------------------------------

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request, userID string) {
	var req model.IdentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ArtworkID == "" {
		writeError(w, http.StatusBadRequest, "artworkId is required")
		return
	}

	result, err := s.pipeline.Identify(r.Context(), userID, req)
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "artwork not found")
		return
	case errors.Is(err, model.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "identification failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ---------------------------------------------------------------------------
// POST /api/artworks
// ---------------------------------------------------------------------------

type createArtworkRequest struct {
	ImageURL      string  `json:"image_url"`
	MuseumName    string  `json:"museum_name"`
	MuseumCity    *string `json:"museum_city"`
	MuseumCountry *string `json:"museum_country"`
	SawDate       *string `json:"saw_date"`
	Opinion       *string `json:"opinion"`
}

func (s *Server) handleCreateArtwork(w http.ResponseWriter, r *http.Request, userID string) {
	var req createArtworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MuseumName == "" {
		writeError(w, http.StatusBadRequest, "museum_name is required")
		return
	}

	artwork := model.NewArtwork(uuid.New().String(), userID, req.ImageURL, req.MuseumName)
	artwork.MuseumCity = req.MuseumCity
	artwork.MuseumCountry = req.MuseumCountry
	artwork.SawDate = req.SawDate
	artwork.Opinion = req.Opinion

	if err := s.store.CreateArtwork(r.Context(), artwork); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create artwork")
		return
	}

	// The background worker picks up pending artworks and identifies them.
	writeJSON(w, http.StatusCreated, artwork)
}

// ---------------------------------------------------------------------------
// GET /api/artworks
// ---------------------------------------------------------------------------

func (s *Server) handleListArtworks(w http.ResponseWriter, r *http.Request, userID string) {
	artworks, err := s.store.ListArtworksByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list artworks")
		return
	}
	if artworks == nil {
		artworks = []model.ArtworkWithCandidates{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"artworks": artworks})
}

// ---------------------------------------------------------------------------
// GET /api/artworks/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleGetArtwork(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")

	artwork, err := s.store.GetArtworkWithCandidates(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "artwork not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get artwork")
		return
	}
	if artwork.UserID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, artwork)
}

// ---------------------------------------------------------------------------
// POST /api/artworks/{id}/select
// ---------------------------------------------------------------------------

type selectRequest struct {
	CandidateID string `json:"candidateId"`
}

func (s *Server) handleSelectCandidate(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CandidateID == "" {
		writeError(w, http.StatusBadRequest, "candidateId is required")
		return
	}

	artwork, err := s.store.GetArtwork(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "artwork not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get artwork")
		return
	}
	if artwork.UserID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	updated, err := s.store.SelectCandidate(r.Context(), id, req.CandidateID)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "invalid candidateId")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to select candidate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"artwork": updated})
}

// ---------------------------------------------------------------------------
// PUT /api/profile
// ---------------------------------------------------------------------------

type profileRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsPublic    *bool  `json:"is_public"`
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request, userID string) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	profile := model.Profile{
		UserID:      userID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		profile.IsPublic = *req.IsPublic
	}

	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// ---------------------------------------------------------------------------
// GET /api/public/{username}
// ---------------------------------------------------------------------------

func (s *Server) handlePublicGallery(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profile, err := s.store.GetProfileByUsername(r.Context(), username)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if !profile.IsPublic {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	artworks, err := s.store.ListArtworksByUser(r.Context(), profile.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list artworks")
		return
	}
	if artworks == nil {
		artworks = []model.ArtworkWithCandidates{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":  profile,
		"artworks": artworks,
	})
}
