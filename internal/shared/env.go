package shared

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override config file values.
const (
	EnvMode         = "ROOMSYNC_MODE"
	EnvSocketURL    = "ROOMSYNC_SOCKET_URL"
	EnvAPIURL       = "ROOMSYNC_API_URL"
	EnvAccessToken  = "ROOMSYNC_ACCESS_TOKEN"
	EnvClientID     = "ROOMSYNC_CLIENT_ID"
	EnvClientSecret = "ROOMSYNC_CLIENT_SECRET"
	EnvDatabasePath = "ROOMSYNC_DATABASE_PATH"
	EnvAckTimeout   = "ROOMSYNC_ACK_TIMEOUT"
	EnvStatusAddr   = "ROOMSYNC_STATUS_ADDR"
	EnvLogLevel     = "ROOMSYNC_LOG_LEVEL"
)

// ApplyEnv loads the given dotenv files (".env" when none are given) and overlays any ROOMSYNC_* variables onto cfg.
//
// A missing dotenv file is not an error; secrets are usually supplied through the process environment.
func ApplyEnv(cfg *Config, paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}

	cfg.Mode = GetEnv(EnvMode, cfg.Mode)
	cfg.Server.SocketURL = GetEnv(EnvSocketURL, cfg.Server.SocketURL)
	cfg.Server.APIURL = GetEnv(EnvAPIURL, cfg.Server.APIURL)
	cfg.Credentials.AccessToken = GetEnv(EnvAccessToken, cfg.Credentials.AccessToken)
	cfg.Credentials.ClientID = GetEnv(EnvClientID, cfg.Credentials.ClientID)
	cfg.Credentials.ClientSecret = GetEnv(EnvClientSecret, cfg.Credentials.ClientSecret)
	cfg.Database.Path = GetEnv(EnvDatabasePath, cfg.Database.Path)
	cfg.Sync.AcknowledgementTimeout = GetEnvDuration(EnvAckTimeout, cfg.Sync.AcknowledgementTimeout)
	cfg.Status.Addr = GetEnv(EnvStatusAddr, cfg.Status.Addr)
	cfg.Log.Level = GetEnv(EnvLogLevel, cfg.Log.Level)
}

// GetEnv returns the value of the environment variable named by key, or fallback if it is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvDuration parses the environment variable named by key as a [time.Duration], or returns fallback.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}
