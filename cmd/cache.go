package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/formatter"
	"github.com/desertthunder/roomsync/internal/repositories"
	"github.com/desertthunder/roomsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) openCache(cmd *cli.Command) (*sql.DB, error) {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("%w: database.path is not set", shared.ErrMissingConfig)
	}
	return shared.OpenDatabase(cfg.Database)
}

// CacheTracks resolves track metadata through the local cache, fetching and storing misses.
func (r *Runner) CacheTracks(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one --id is required", shared.ErrMissingArgument)
	}

	db, err := r.openCache(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := repositories.NewCachedTrackService(repositories.NewTrackRepository(db), r.tracks, trackCacheMaxAge, r.logger)
	tracks, err := svc.FetchTracks(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch tracks: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	for _, t := range tracks {
		if err := r.writePlain("%s\t%s - %s (%s)\n", t.ID, t.Title, t.ArtistName, formatter.FormatDuration(t.Duration)); err != nil {
			return err
		}
	}
	if missing := len(ids) - len(tracks); missing > 0 {
		r.logger.Warn("some tracks are unknown", "missing", missing)
	}
	return nil
}

// CachePurge deletes cached tracks older than --older-than.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	age := cmd.Duration("older-than")
	if age <= 0 {
		return fmt.Errorf("%w: --older-than must be positive", shared.ErrInvalidArgument)
	}

	db, err := r.openCache(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repositories.NewTrackRepository(db).Purge(time.Now().Add(-age))
	if err != nil {
		return err
	}

	r.logger.Info("track cache purged", "older_than", age, "deleted", n)
	return r.writePlain("✓ Purged %d cached tracks\n", n)
}

// CacheRooms prints the room snapshots saved by earlier sessions.
func (r *Runner) CacheRooms(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openCache(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	rooms, err := repositories.NewRoomSnapshotRepository(db).List()
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		return r.writePlain("No saved rooms\n")
	}

	snaps := make([]actors.RoomSnapshot, len(rooms))
	for i, room := range rooms {
		snaps[i] = actors.RoomSnapshot{Room: room}
	}
	return r.printRooms(format, cmd.String("output"), snaps)
}

// cacheCommand handles the local track and room cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and maintain the local cache",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "Resolve tracks through the cache",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringSliceFlag{
						Name:     "id",
						Usage:    "Track ID to resolve (repeatable)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CacheTracks,
			},
			{
				Name:  "purge",
				Usage: "Delete stale cached tracks",
				Flags: []cli.Flag{
					configFlag(),
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Delete tracks cached longer ago than this",
						Value: trackCacheMaxAge,
					},
				},
				Action: r.CachePurge,
			},
			{
				Name:  "rooms",
				Usage: "Print rooms saved by earlier sessions",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv or json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.CacheRooms,
			},
		},
	}
}
