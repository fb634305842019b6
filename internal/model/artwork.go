package model

import "time"

// Artwork status constants
const (
	StatusPending     = "pending_identification"
	StatusIdentifying = "identifying"
	StatusReady       = "candidates_ready"
	StatusError       = "error"
	StatusConfirmed   = "confirmed"
)

// Artwork represents a painting logged by a user at a museum.
type Artwork struct {
	ID                  string  `json:"id"`
	UserID              string  `json:"user_id"`
	ImageURL            string  `json:"image_url,omitempty"`
	MuseumName          string  `json:"museum_name"`
	MuseumCity          *string `json:"museum_city,omitempty"`
	MuseumCountry       *string `json:"museum_country,omitempty"`
	SawDate             *string `json:"saw_date,omitempty"`
	Opinion             *string `json:"opinion,omitempty"`
	Status              string  `json:"status"`
	SelectedCandidateID *string `json:"selected_candidate_id,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// ArtworkWithCandidates is an Artwork together with its stored candidates.
type ArtworkWithCandidates struct {
	Artwork
	Candidates []Candidate `json:"painting_candidates"`
}

// NewArtwork creates a new Artwork with pending_identification status.
func NewArtwork(id, userID, imageURL, museumName string) Artwork {
	now := time.Now().UTC().Format(time.RFC3339)
	return Artwork{
		ID:         id,
		UserID:     userID,
		ImageURL:   imageURL,
		MuseumName: museumName,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Profile maps a user id to a public gallery username.
type Profile struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	IsPublic    bool   `json:"is_public"`
}
