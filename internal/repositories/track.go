package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
)

// CachedTrack is a cached track with the time it was stored.
type CachedTrack struct {
	models.Track
	CachedAt time.Time
}

// TrackRepository caches track metadata by track id.
type TrackRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Upsert stores tracks, replacing cached rows with the same id.
func (r *TrackRepository) Upsert(tracks ...models.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tracks (id, title, artist_name, duration_ms, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist_name = excluded.artist_name,
			duration_ms = excluded.duration_ms,
			cached_at = excluded.cached_at
	`

	now := r.now()
	return inTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, t := range tracks {
			if t.ID == "" {
				return fmt.Errorf("%w: track id is required", shared.ErrInvalidInput)
			}
			if _, err := stmt.Exec(t.ID, t.Title, t.ArtistName, t.Duration.Milliseconds(), now); err != nil {
				return fmt.Errorf("failed to upsert track %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// Get retrieves a cached track by id.
func (r *TrackRepository) Get(id string) (CachedTrack, error) {
	query := `
		SELECT id, title, artist_name, duration_ms, cached_at
		FROM tracks
		WHERE id = ?
	`

	t, err := scanTrack(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return CachedTrack{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return t, err
}

// GetMany returns the cached tracks among ids, keyed by id. Rows cached before since are skipped; a zero since
// returns every row.
func (r *TrackRepository) GetMany(ids []string, since time.Time) (map[string]CachedTrack, error) {
	found := make(map[string]CachedTrack, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query := fmt.Sprintf(`
		SELECT id, title, artist_name, duration_ms, cached_at
		FROM tracks
		WHERE id IN (%s)
	`, placeholders(len(ids)))

	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	if !since.IsZero() {
		query += " AND cached_at >= ?"
		args = append(args, since.UTC())
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		found[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return found, nil
}

// Delete removes a cached track.
func (r *TrackRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return affectedOne(result, shared.ErrTrackNotFound, id)
}

// Purge removes tracks cached before cutoff and returns how many were removed.
func (r *TrackRepository) Purge(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM tracks WHERE cached_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge tracks: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// Count returns the number of cached tracks.
func (r *TrackRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

func scanTrack(s scanner) (CachedTrack, error) {
	var (
		t          CachedTrack
		durationMS int64
	)
	if err := s.Scan(&t.ID, &t.Title, &t.ArtistName, &durationMS, &t.CachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CachedTrack{}, err
		}
		return CachedTrack{}, fmt.Errorf("failed to scan track: %w", err)
	}
	t.Duration = time.Duration(durationMS) * time.Millisecond
	return t, nil
}
