// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// setupCommand handles first-run configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and local database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// connectCommand runs a headless session
func connectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "Join rooms and follow them until interrupted",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringSliceFlag{
				Name:    "join",
				Aliases: []string{"j"},
				Usage:   "Room ID to join (repeatable)",
			},
			&cli.StringFlag{
				Name:  "display",
				Usage: "Room ID to display on connect",
			},
			&cli.StringFlag{
				Name:    "print",
				Aliases: []string{"p"},
				Usage:   "Print rooms on exit: text, markdown, csv, json or none",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the printed rooms to a file",
			},
			&cli.StringFlag{
				Name:  "status-addr",
				Usage: "Serve room status and metrics on this address",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save room snapshots to the database on exit",
			},
		},
		Action: r.Connect,
	}
}

// tuiCommand runs the interactive client
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive terminal client",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringSliceFlag{
				Name:    "join",
				Aliases: []string{"j"},
				Usage:   "Room ID to join (repeatable)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log destination while the UI owns the terminal",
				Value: "./tmp/roomsync-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// apiCommand handles direct API access
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct access to the room server HTTP API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST JSON to a path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON request body",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}
