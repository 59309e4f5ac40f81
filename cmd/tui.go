package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roomsync/internal/shared"
	"github.com/desertthunder/roomsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI on top of a live session.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLevel(cfg.Log.Level))
	r.SetLogger(fileLogger)

	bridge := ui.NewBridge()
	sess, err := r.openSession(ctx, cfg, bridge, bridge, fileLogger)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel(sess.supervisor), tea.WithAltScreen(), tea.WithContext(ctx))
	go bridge.Run(ctx, p.Send)

	runErr := make(chan error, 1)
	go func() {
		runErr <- sess.supervisor.Run(ctx)
		p.Quit()
	}()

	for _, id := range cmd.StringSlice("join") {
		sess.supervisor.JoinRoom(id)
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}

	cancel()
	err = <-runErr
	sess.saveRooms()
	if !endedNormally(err) {
		return err
	}
	return nil
}
