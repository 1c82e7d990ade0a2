package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultTickInterval = time.Second
	DefaultLogLevel     = "warn"

	envTickInterval = "FASTRACK_TICK_INTERVAL"
	envLogLevel     = "FASTRACK_LOG_LEVEL"
)

type Config struct {
	DataDir      string
	StatePath    string
	DBPath       string
	JournalDir   string
	LogPath      string
	TickInterval time.Duration
	LogLevel     string
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data directory is required")
	}
	return Config{
		DataDir:      dataDir,
		StatePath:    filepath.Join(dataDir, ".fastrack", "state.json"),
		DBPath:       filepath.Join(dataDir, ".fastrack", "fastrack.db"),
		JournalDir:   filepath.Join(dataDir, "fasts"),
		LogPath:      filepath.Join(dataDir, ".fastrack", "fastrack.log"),
		TickInterval: DefaultTickInterval,
		LogLevel:     DefaultLogLevel,
	}, nil
}

// Load builds the config for dataDir and applies overrides from
// <dataDir>/.env and the process environment, the latter taking precedence.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	values := map[string]string{}
	envFile := filepath.Join(dataDir, ".env")
	if _, statErr := os.Stat(envFile); statErr == nil {
		values, err = godotenv.Read(envFile)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	for _, key := range []string{envTickInterval, envLogLevel} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	if raw := strings.TrimSpace(values[envTickInterval]); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", envTickInterval, err)
		}
		if interval <= 0 {
			return Config{}, fmt.Errorf("%s must be positive", envTickInterval)
		}
		cfg.TickInterval = interval
	}
	if raw := strings.TrimSpace(values[envLogLevel]); raw != "" {
		cfg.LogLevel = strings.ToLower(raw)
	}
	return cfg, nil
}

// DefaultDataDir is ~/.local/share/fastrack, falling back to the working
// directory when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share", "fastrack")
}
