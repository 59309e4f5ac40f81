package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/services"
)

// CachedTrackService serves track metadata from the [TrackRepository] and only asks the wrapped service for misses.
//
// Fetched tracks are written back to the cache. A failed write is logged and does not fail the fetch.
type CachedTrackService struct {
	repo   *TrackRepository
	next   services.TrackService
	maxAge time.Duration
	logger *log.Logger
}

// NewCachedTrackService wraps next. A zero maxAge keeps cached rows forever.
func NewCachedTrackService(repo *TrackRepository, next services.TrackService, maxAge time.Duration, logger *log.Logger) *CachedTrackService {
	return &CachedTrackService{repo: repo, next: next, maxAge: maxAge, logger: logger}
}

// FetchTracks returns the known tracks among ids in request order.
func (c *CachedTrackService) FetchTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	var since time.Time
	if c.maxAge > 0 {
		since = c.repo.now().Add(-c.maxAge)
	}

	cached, err := c.repo.GetMany(ids, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read track cache: %w", err)
	}

	var misses []string
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			misses = append(misses, id)
		}
	}

	found := make(map[string]models.Track, len(ids))
	for id, t := range cached {
		found[id] = t.Track
	}

	if len(misses) > 0 {
		fetched, err := c.next.FetchTracks(ctx, misses)
		if err != nil {
			return nil, err
		}
		if err := c.repo.Upsert(fetched...); err != nil {
			c.logger.Warn("failed to cache tracks", "count", len(fetched), "err", err)
		}
		for _, t := range fetched {
			found[t.ID] = t
		}
	}

	c.logger.Debug("tracks resolved", "requested", len(ids), "cached", len(cached), "fetched", len(misses))

	out := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := found[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}
