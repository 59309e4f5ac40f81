package services

import (
	"context"

	"github.com/desertthunder/roomsync/internal/models"
)

// TrackService resolves track metadata by id.
type TrackService interface {
	// FetchTracks returns metadata for the given ids. Unknown ids are omitted from the result;
	// the returned order follows ids.
	FetchTracks(ctx context.Context, ids []string) ([]models.Track, error)
}
