package store

import (
	"context"

	"github.com/artseen/artseen/internal/model"
)

// ArtworkReader provides read access to artworks.
type ArtworkReader interface {
	GetArtwork(ctx context.Context, id string) (*model.Artwork, error)
	GetArtworkWithCandidates(ctx context.Context, id string) (*model.ArtworkWithCandidates, error)
	ListArtworksByUser(ctx context.Context, userID string) ([]model.ArtworkWithCandidates, error)
}

// ArtworkWriter provides write access to artworks.
type ArtworkWriter interface {
	CreateArtwork(ctx context.Context, a model.Artwork) error
	UpdateArtworkStatus(ctx context.Context, id, status string) error
	SelectCandidate(ctx context.Context, artworkID, candidateID string) (*model.Artwork, error)
}

// CandidateStore provides access to identification candidates.
type CandidateStore interface {
	ReplaceCandidates(ctx context.Context, artworkID string, candidates []model.Candidate) error
	ListCandidates(ctx context.Context, artworkID string) ([]model.Candidate, error)
}

// ArtworkClaimer provides atomic claim operations for background identification.
type ArtworkClaimer interface {
	ClaimNextPending(ctx context.Context) (*model.Artwork, error)
	ResetStaleIdentifying(ctx context.Context) (int64, error)
}

// ProfileStore provides access to public gallery profiles.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, p model.Profile) error
	GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
}

// Repository combines all operations needed by the API layer.
type Repository interface {
	ArtworkReader
	ArtworkWriter
	CandidateStore
	ProfileStore
}
