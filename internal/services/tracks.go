package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
)

// maxIDsPerRequest bounds the query string of a single metadata request.
const maxIDsPerRequest = 50

// TracksAPI implements [TrackService] with GET /tracks?ids=a,b on the room server.
type TracksAPI struct {
	api *APIService
}

// NewTracksAPI creates a [TracksAPI] on top of api.
func NewTracksAPI(api *APIService) *TracksAPI {
	return &TracksAPI{api: api}
}

type trackResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtistName string `json:"artistName"`
	DurationMs int64  `json:"duration"`
}

type tracksResponse struct {
	Tracks []trackResponse `json:"tracks"`
}

// FetchTracks implements [TrackService]. Large id lists are split into several requests.
func (t *TracksAPI) FetchTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	byID := make(map[string]models.Track, len(ids))

	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := min(start+maxIDsPerRequest, len(ids))
		batch, err := t.fetchBatch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, tr := range batch {
			byID[tr.ID] = tr
		}
	}

	tracks := make([]models.Track, 0, len(byID))
	for _, id := range ids {
		if tr, ok := byID[id]; ok {
			tracks = append(tracks, tr)
			delete(byID, id)
		}
	}
	return tracks, nil
}

func (t *TracksAPI) fetchBatch(ctx context.Context, ids []string) ([]models.Track, error) {
	path := "/tracks?ids=" + url.QueryEscape(strings.Join(ids, ","))
	resp, err := t.api.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: GET /tracks returned %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var body tracksResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode tracks: %v", shared.ErrAPIRequest, err)
	}

	tracks := make([]models.Track, len(body.Tracks))
	for i, tr := range body.Tracks {
		tracks[i] = models.Track{
			ID:         tr.ID,
			Title:      tr.Title,
			ArtistName: tr.ArtistName,
			Duration:   time.Duration(tr.DurationMs) * time.Millisecond,
		}
	}
	return tracks, nil
}
