package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/roomsync/internal/services"
	"github.com/desertthunder/roomsync/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	ctx := context.Background()
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.ApplyEnv(config)
	shared.SetLogLevel(logger, shared.ParseLevel(config.Log.Level))

	if config.Server.DeviceID == "" {
		config.Server.DeviceID = shared.GenerateID()
	}

	tokens, err := services.TokenSource(ctx, config.Credentials)
	if err != nil {
		logger.Debug("connecting without credentials", "reason", err)
	}
	httpClient := services.NewAuthenticatedClient(ctx, tokens)
	api := services.NewAPIService(config.Server.APIURL, httpClient)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		API:        api,
		Tracks:     services.NewTracksAPI(api),
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "roomsync",
		Usage:    "Collaborative playlist room client",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
