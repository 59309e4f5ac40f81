package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/metrics"
	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/repositories"
	"github.com/desertthunder/roomsync/internal/services"
	"github.com/desertthunder/roomsync/internal/shared"
	"github.com/desertthunder/roomsync/internal/transport"
	"github.com/urfave/cli/v3"
)

// Cached track metadata older than this is fetched again.
const trackCacheMaxAge = 7 * 24 * time.Hour

// presenter receives the supervisor's navigation, notifications and view updates.
type presenter interface {
	actors.Navigator
	actors.Notifier
}

// session is one connection to the room server and the supervisor consuming it.
type session struct {
	supervisor *actors.Supervisor
	transport  transport.Transport
	metrics    *metrics.Metrics
	db         *sql.DB
	rooms      *repositories.RoomSnapshotRepository
	logger     *log.Logger
}

// loadConfig returns the runner config, or the file named by --config when it differs from the default.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return r.config, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	cfg, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	shared.ApplyEnv(cfg)
	if cfg.Server.DeviceID == "" {
		cfg.Server.DeviceID = shared.GenerateID()
	}
	return cfg, nil
}

// openSession opens the database when configured, dials the room server and builds the supervisor.
//
// A database that cannot be opened only disables caching.
func (r *Runner) openSession(ctx context.Context, cfg *shared.Config, p presenter, observer actors.Observer, logger *log.Logger) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sess := &session{metrics: metrics.New(), logger: logger}

	var tracks services.TrackService = r.tracks
	if cfg.Database.Path != "" {
		db, err := shared.OpenDatabase(cfg.Database)
		if err != nil {
			logger.Warn("track cache disabled", "path", cfg.Database.Path, "error", err)
		} else {
			sess.db = db
			sess.rooms = repositories.NewRoomSnapshotRepository(db)
			tracks = repositories.NewCachedTrackService(repositories.NewTrackRepository(db), r.tracks, trackCacheMaxAge, logger)
		}
	}

	dialOpts := transport.DialOptionsFromConfig(cfg, nil, logger)
	if ts, err := services.TokenSource(ctx, cfg.Credentials); err == nil {
		dialOpts.TokenSource = ts
	} else if !errors.Is(err, shared.ErrMissingCredentials) {
		sess.closeDB()
		return nil, err
	}

	conn, err := r.dial(ctx, dialOpts)
	if err != nil {
		sess.closeDB()
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	sess.transport = conn

	opts := actors.OptionsFromConfig(cfg)
	opts.Transport = conn
	opts.Navigator = p
	opts.Notifier = p
	opts.Observer = observer
	opts.Tracks = tracks
	opts.Logger = logger
	opts.Metrics = sess.metrics
	sess.supervisor = actors.NewSupervisor(opts)

	return sess, nil
}

// saveRooms stores the final state of every room. It is a no-op without a database.
func (s *session) saveRooms() {
	if s.rooms == nil {
		return
	}
	snaps := s.supervisor.Rooms()
	rooms := make([]models.Room, 0, len(snaps))
	for _, snap := range snaps {
		rooms = append(rooms, snap.Room)
	}
	if len(rooms) == 0 {
		return
	}
	if err := s.rooms.Save(rooms...); err != nil {
		s.logger.Warn("failed to save rooms", "error", err)
		return
	}
	s.logger.Info("rooms saved", "count", len(rooms))
}

func (s *session) closeDB() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *session) Close() error {
	defer s.closeDB()
	if s.transport == nil {
		return nil
	}
	return s.transport.Close()
}

// endedNormally reports whether the supervisor stopped because the user or the server ended the session.
func endedNormally(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, shared.ErrTransportClosed)
}
