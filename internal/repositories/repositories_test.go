package repositories

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
	tu "github.com/desertthunder/roomsync/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func track(id, title string) models.Track {
	return models.Track{ID: id, Title: title, ArtistName: "artist " + id, Duration: 3*time.Minute + 30*time.Second}
}

func TestTrackRepository(t *testing.T) {
	t.Run("Upsert and Get", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		if err := repo.Upsert(track("t1", "One")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		got, err := repo.Get("t1")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if got.Track != track("t1", "One") {
			t.Errorf("expected %+v, got %+v", track("t1", "One"), got.Track)
		}
		if got.CachedAt.IsZero() {
			t.Error("expected cached_at to be set")
		}
	})

	t.Run("Upsert replaces existing rows", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		repo.Upsert(track("t1", "One"))
		if err := repo.Upsert(track("t1", "Uno")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		got, _ := repo.Get("t1")
		if got.Title != "Uno" {
			t.Errorf("expected title Uno, got %q", got.Title)
		}
		if n, _ := repo.Count(); n != 1 {
			t.Errorf("expected 1 row, got %d", n)
		}
	})

	t.Run("Upsert rejects empty ids", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		err := repo.Upsert(track("t1", "One"), models.Track{Title: "no id"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("expected the batch to be rolled back, got %d rows", n)
		}
	})

	t.Run("Get missing track", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("GetMany", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		repo.Upsert(track("t1", "One"), track("t2", "Two"), track("t3", "Three"))

		got, err := repo.GetMany([]string{"t1", "t3", "t9"}, time.Time{})
		if err != nil {
			t.Fatalf("failed to get tracks: %v", err)
		}
		if len(got) != 2 || got["t1"].Title != "One" || got["t3"].Title != "Three" {
			t.Errorf("unexpected tracks %+v", got)
		}
	})

	t.Run("GetMany skips stale rows", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return base }
		repo.Upsert(track("old", "Old"))
		repo.now = func() time.Time { return base.Add(time.Hour) }
		repo.Upsert(track("new", "New"))

		got, err := repo.GetMany([]string{"old", "new"}, base.Add(30*time.Minute))
		if err != nil {
			t.Fatalf("failed to get tracks: %v", err)
		}
		if _, ok := got["old"]; ok || len(got) != 1 {
			t.Errorf("expected only the fresh track, got %+v", got)
		}
	})

	t.Run("Delete and Purge", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return base }
		repo.Upsert(track("t1", "One"), track("t2", "Two"))
		repo.now = func() time.Time { return base.Add(48 * time.Hour) }
		repo.Upsert(track("t3", "Three"))

		if err := repo.Delete("t1"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete("t1"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound on second delete, got %v", err)
		}

		n, err := repo.Purge(base.Add(24 * time.Hour))
		if err != nil {
			t.Fatalf("failed to purge: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 purged row, got %d", n)
		}
		if count, _ := repo.Count(); count != 1 {
			t.Errorf("expected 1 remaining row, got %d", count)
		}
	})
}

func TestCachedTrackService(t *testing.T) {
	t.Run("fetches only misses and keeps request order", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		repo.Upsert(track("t2", "Cached"))
		next := &tu.MockTrackService{Tracks: map[string]models.Track{
			"t1": track("t1", "One"),
			"t3": track("t3", "Three"),
		}}
		svc := NewCachedTrackService(repo, next, 0, shared.NewLogger(io.Discard))

		got, err := svc.FetchTracks(context.Background(), []string{"t3", "t2", "t1", "t9"})
		if err != nil {
			t.Fatalf("failed to fetch: %v", err)
		}

		var ids []string
		for _, tr := range got {
			ids = append(ids, tr.ID)
		}
		if !reflect.DeepEqual(ids, []string{"t3", "t2", "t1"}) {
			t.Errorf("expected [t3 t2 t1], got %v", ids)
		}
		if got[1].Title != "Cached" {
			t.Errorf("expected cached title, got %q", got[1].Title)
		}
		if calls := next.Calls(); !reflect.DeepEqual(calls, [][]string{{"t3", "t1", "t9"}}) {
			t.Errorf("expected one fetch for misses, got %v", calls)
		}
	})

	t.Run("stores fetched tracks", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		next := &tu.MockTrackService{Tracks: map[string]models.Track{"t1": track("t1", "One")}}
		svc := NewCachedTrackService(repo, next, time.Hour, shared.NewLogger(io.Discard))

		svc.FetchTracks(context.Background(), []string{"t1"})
		svc.FetchTracks(context.Background(), []string{"t1"})

		if calls := next.Calls(); len(calls) != 1 {
			t.Errorf("expected the second fetch to hit the cache, got %v", calls)
		}
	})

	t.Run("propagates upstream errors", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		next := &tu.MockTrackService{Err: shared.ErrServiceUnavailable}
		svc := NewCachedTrackService(repo, next, 0, shared.NewLogger(io.Discard))

		if _, err := svc.FetchTracks(context.Background(), []string{"t1"}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestRoomSnapshotRepository(t *testing.T) {
	room := func(id, name string, trackIDs ...string) models.Room {
		r := models.NewRoom(id)
		r.Name = name
		r.UsersLength = 2
		for _, tid := range trackIDs {
			r.Tracks = append(r.Tracks, track(tid, "title "+tid))
		}
		return *r
	}

	t.Run("Save and Get", func(t *testing.T) {
		repo := NewRoomSnapshotRepository(setupTestDB(t))
		if err := repo.Save(room("r1", "Road trip", "t1", "t2")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got, err := repo.Get("r1")
		if err != nil {
			t.Fatalf("failed to get room: %v", err)
		}
		if got.Name != "Road trip" || got.UsersLength != 2 || !reflect.DeepEqual(got.TrackIDs(), []string{"t1", "t2"}) {
			t.Errorf("unexpected room %+v", got)
		}
	})

	t.Run("Save replaces and List returns all", func(t *testing.T) {
		repo := NewRoomSnapshotRepository(setupTestDB(t))
		repo.Save(room("r1", "first"), room("r2", "second"))
		repo.Save(room("r1", "renamed"))

		rooms, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(rooms) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(rooms))
		}
		if rooms[0].ID != "r1" || rooms[0].Name != "renamed" {
			t.Errorf("expected most recent r1 first, got %+v", rooms[0])
		}
	})

	t.Run("missing rooms", func(t *testing.T) {
		repo := NewRoomSnapshotRepository(setupTestDB(t))
		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrRoomNotFound) {
			t.Errorf("expected ErrRoomNotFound, got %v", err)
		}
		if err := repo.Delete("nope"); !errors.Is(err, shared.ErrRoomNotFound) {
			t.Errorf("expected ErrRoomNotFound, got %v", err)
		}
	})
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d): expected %q, got %q", tt.n, tt.want, got)
		}
	}
}
