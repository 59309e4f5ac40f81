package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/formatter"
	"github.com/desertthunder/roomsync/internal/server"
	"github.com/urfave/cli/v3"
)

// Connect joins rooms headlessly and logs navigation and notifications until interrupted or disconnected.
//
// When the session ends the final room state is optionally saved and printed.
func (r *Runner) Connect(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	var format formatter.Format
	if p := cmd.String("print"); p != "none" {
		if format, err = formatter.ParseFormat(p); err != nil {
			return err
		}
	}

	if addr := cmd.String("status-addr"); addr != "" {
		c := *cfg
		c.Status.Addr = addr
		cfg = &c
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := r.openSession(ctx, cfg, actors.LogPresenter{Logger: r.logger}, nil, r.logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	statusErr := make(chan error, 1)
	if cfg.Status.Addr != "" {
		router := server.NewStatusRouter(sess.supervisor, sess.metrics, r.logger)
		go func() { statusErr <- server.Serve(ctx, cfg.Status.Addr, router, r.logger) }()
	} else {
		statusErr <- nil
	}

	for _, id := range cmd.StringSlice("join") {
		sess.supervisor.JoinRoom(id)
	}
	if id := cmd.String("display"); id != "" {
		sess.supervisor.DisplayRoomView(id)
	}

	r.logger.Info("connected", "url", cfg.Server.SocketURL, "device", cfg.Server.DeviceID)
	runErr := sess.supervisor.Run(ctx)
	cancel()
	if err := <-statusErr; err != nil {
		r.logger.Warn("status server stopped", "error", err)
	}
	if !endedNormally(runErr) {
		return runErr
	}

	if cmd.Bool("save") {
		sess.saveRooms()
	}
	return r.printRooms(format, cmd.String("output"), sess.supervisor.Rooms())
}

// printRooms writes rooms to path, or to the runner output when path is empty.
// An empty format prints nothing.
func (r *Runner) printRooms(format formatter.Format, path string, rooms []actors.RoomSnapshot) error {
	if format == "" {
		return nil
	}

	if path != "" {
		if err := formatter.WriteExport(format, rooms, path); err != nil {
			return err
		}
		r.logger.Info("rooms exported", "path", path, "format", format, "count", len(rooms))
		return nil
	}

	out, err := formatter.Render(format, rooms)
	if err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
