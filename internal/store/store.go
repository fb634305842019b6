package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/artseen/artseen/internal/model"
)

// Verify at compile time that Store implements all interfaces.
var (
	_ ArtworkReader  = (*Store)(nil)
	_ ArtworkWriter  = (*Store)(nil)
	_ CandidateStore = (*Store)(nil)
	_ ArtworkClaimer = (*Store)(nil)
	_ ProfileStore   = (*Store)(nil)
)

// Store provides data access to the SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	// Ensure the schema_version table exists.
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database: initialize to version 0.
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// migrations is an ordered list of migration functions.
	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: artworks + painting_candidates
		s.migrateV2, // v1 → v2: public gallery profiles
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema (v0 → v1).
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artworks (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL,
		image_url             TEXT,
		museum_name           TEXT NOT NULL,
		museum_city           TEXT,
		museum_country        TEXT,
		saw_date              TEXT,
		opinion               TEXT,
		status                TEXT NOT NULL,
		selected_candidate_id TEXT,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artworks_user ON artworks(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_artworks_status ON artworks(status, created_at);

	CREATE TABLE IF NOT EXISTS painting_candidates (
		id               TEXT PRIMARY KEY,
		artwork_id       TEXT NOT NULL REFERENCES artworks(id),
		rank             INTEGER NOT NULL,
		confidence       REAL NOT NULL,
		artist           TEXT,
		title            TEXT,
		date_created     TEXT,
		location_painted TEXT,
		style            TEXT,
		medium           TEXT,
		source           TEXT NOT NULL,
		raw_json         TEXT,
		created_at       TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_candidates_rank ON painting_candidates(artwork_id, rank);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the profiles table for public galleries (v1 → v2).
func (s *Store) migrateV2() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			user_id      TEXT PRIMARY KEY,
			username     TEXT NOT NULL UNIQUE,
			display_name TEXT,
			is_public    INTEGER NOT NULL DEFAULT 1
		)`)
	return err
}

// ---------------------------------------------------------------------------
// Artworks
// ---------------------------------------------------------------------------

const artworkColumns = `id, user_id, image_url, museum_name, museum_city, museum_country, saw_date, opinion, status, selected_candidate_id, created_at, updated_at`

// CreateArtwork inserts a new artwork.
func (s *Store) CreateArtwork(ctx context.Context, a model.Artwork) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artworks (`+artworkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.ImageURL, a.MuseumName, a.MuseumCity, a.MuseumCountry,
		a.SawDate, a.Opinion, a.Status, a.SelectedCandidateID, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// GetArtwork returns a single artwork without its candidates.
func (s *Store) GetArtwork(ctx context.Context, id string) (*model.Artwork, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artworkColumns+` FROM artworks WHERE id = ?`, id)
	return scanArtwork(row)
}

// GetArtworkWithCandidates returns an artwork together with its stored candidates.
func (s *Store) GetArtworkWithCandidates(ctx context.Context, id string) (*model.ArtworkWithCandidates, error) {
	a, err := s.GetArtwork(ctx, id)
	if err != nil {
		return nil, err
	}
	candidates, err := s.ListCandidates(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.ArtworkWithCandidates{Artwork: *a, Candidates: candidates}, nil
}

// ListArtworksByUser returns all of a user's artworks with candidates,
// newest first.
func (s *Store) ListArtworksByUser(ctx context.Context, userID string) ([]model.ArtworkWithCandidates, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artworkColumns+` FROM artworks WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ArtworkWithCandidates
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ArtworkWithCandidates{Artwork: *a})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		candidates, err := s.ListCandidates(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Candidates = candidates
	}
	return out, nil
}

// UpdateArtworkStatus changes the status of an artwork.
func (s *Store) UpdateArtworkStatus(ctx context.Context, id, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `UPDATE artworks SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	return err
}

// SelectCandidate marks a candidate as the confirmed identification of an
// artwork. The candidate must belong to the artwork.
func (s *Store) SelectCandidate(ctx context.Context, artworkID, candidateID string) (*model.Artwork, error) {
	var owner string
	err := s.db.QueryRowContext(ctx,
		`SELECT artwork_id FROM painting_candidates WHERE id = ?`, candidateID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != artworkID) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE artworks SET selected_candidate_id = ?, status = ?, updated_at = ? WHERE id = ?`,
		candidateID, model.StatusConfirmed, now, artworkID,
	); err != nil {
		return nil, err
	}
	return s.GetArtwork(ctx, artworkID)
}

// ClaimNextPending atomically picks the oldest pending artwork and sets it to
// identifying. Returns nil if no artwork is available.
func (s *Store) ClaimNextPending(ctx context.Context) (*model.Artwork, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx, `
		UPDATE artworks SET status = ?, updated_at = ?
		WHERE id = (SELECT id FROM artworks WHERE status = ? ORDER BY created_at ASC LIMIT 1)
		RETURNING `+artworkColumns,
		model.StatusIdentifying, now, model.StatusPending,
	)
	a, err := scanArtwork(row)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

// ResetStaleIdentifying resets any identifying artworks back to pending
// (for server restart).
func (s *Store) ResetStaleIdentifying(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE artworks SET status = ?, updated_at = ? WHERE status = ?`,
		model.StatusPending, now, model.StatusIdentifying)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------------------------------------------------------------------
// Candidates
// ---------------------------------------------------------------------------

const candidateColumns = `id, artwork_id, rank, confidence, artist, title, date_created, location_painted, style, medium, source, raw_json`

// ReplaceCandidates replaces the full candidate set of an artwork in one
// transaction (delete then insert). A rerun never leaves stale ranks behind.
func (s *Store) ReplaceCandidates(ctx context.Context, artworkID string, candidates []model.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM painting_candidates WHERE artwork_id = ?`, artworkID); err != nil {
		return fmt.Errorf("delete candidates: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range candidates {
		var raw any
		if len(c.RawJSON) > 0 {
			raw = string(c.RawJSON)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO painting_candidates (`+candidateColumns+`, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, artworkID, c.Rank, c.Confidence, c.Artist, c.Title, c.DateCreated,
			c.LocationPainted, c.Style, c.Medium, c.Source, raw, now,
		); err != nil {
			return fmt.Errorf("insert candidate rank %d: %w", c.Rank, err)
		}
	}

	return tx.Commit()
}

// ListCandidates returns an artwork's stored candidates ordered by rank.
func (s *Store) ListCandidates(ctx context.Context, artworkID string) ([]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM painting_candidates WHERE artwork_id = ? ORDER BY rank ASC`, artworkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		var c model.Candidate
		var artworkIDCol string
		var raw sql.NullString
		if err := rows.Scan(&c.ID, &artworkIDCol, &c.Rank, &c.Confidence, &c.Artist, &c.Title,
			&c.DateCreated, &c.LocationPainted, &c.Style, &c.Medium, &c.Source, &raw); err != nil {
			return nil, err
		}
		if raw.Valid {
			c.RawJSON = []byte(raw.String)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

// UpsertProfile inserts or updates a user's public gallery profile.
func (s *Store) UpsertProfile(ctx context.Context, p model.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, display_name, is_public)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			is_public = excluded.is_public`,
		p.UserID, p.Username, p.DisplayName, boolToInt(p.IsPublic),
	)
	return err
}

// GetProfileByUsername returns the profile with the given username.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var p model.Profile
	var displayName sql.NullString
	var isPublic int
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, display_name, is_public FROM profiles WHERE username = ?`, username,
	).Scan(&p.UserID, &p.Username, &displayName, &isPublic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.DisplayName = displayName.String
	p.IsPublic = isPublic != 0
	return &p, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArtwork(row scanner) (*model.Artwork, error) {
	var a model.Artwork
	var imageURL sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &imageURL, &a.MuseumName, &a.MuseumCity, &a.MuseumCountry,
		&a.SawDate, &a.Opinion, &a.Status, &a.SelectedCandidateID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.ImageURL = imageURL.String
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
