package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr = ":8080"
	defaultDataDir    = "data"
	defaultEngine     = "lattice"
	defaultMaxWorkers = 4
	defaultQueueDepth = 64
	defaultSinkPath   = "foldd.db"

	envConfigFile = "FOLDD_CONFIG"
	envListenAddr = "FOLDD_LISTEN_ADDR"
	envDataDir    = "FOLDD_DATA_DIR"
	envEngine     = "FOLDD_ENGINE"
	envMaxWorkers = "FOLDD_MAX_WORKERS"
	envQueueDepth = "FOLDD_QUEUE_DEPTH"
	envSinkPath   = "FOLDD_SINK_PATH"
	envSinkDSN    = "FOLDD_SINK_DSN"
	envLogLevel   = "FOLDD_LOG_LEVEL"
)

// Config holds application configuration. Values come from an optional YAML
// file plus environment variables; environment variables win.
type Config struct {
	ListenAddr string
	DataDir    string
	Engine     string
	MaxWorkers int
	QueueDepth int
	SinkPath   string
	SinkDSN    string
	LogLevel   slog.Level
}

// fileConfig mirrors Config for YAML decoding; LogLevel is a string there.
type fileConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`
	Engine     string `yaml:"engine"`
	MaxWorkers int    `yaml:"max_workers"`
	QueueDepth int    `yaml:"queue_depth"`
	SinkPath   string `yaml:"sink_path"`
	SinkDSN    string `yaml:"sink_dsn"`
	LogLevel   string `yaml:"log_level"`
}

// Load reads configuration with sensible defaults. If FOLDD_CONFIG names a
// YAML file it is loaded first, then environment variables override it.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr: defaultListenAddr,
		DataDir:    defaultDataDir,
		Engine:     defaultEngine,
		MaxWorkers: defaultMaxWorkers,
		QueueDepth: defaultQueueDepth,
		SinkPath:   defaultSinkPath,
		LogLevel:   slog.LevelInfo,
	}

	if path := os.Getenv(envConfigFile); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(envEngine); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv(envMaxWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", envMaxWorkers, err)
		}
		cfg.MaxWorkers = n
	}
	if v := os.Getenv(envQueueDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", envQueueDepth, err)
		}
		cfg.QueueDepth = n
	}
	if v := os.Getenv(envSinkPath); v != "" {
		cfg.SinkPath = v
	}
	if v := os.Getenv(envSinkDSN); v != "" {
		cfg.SinkDSN = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.Engine != "" {
		cfg.Engine = fc.Engine
	}
	if fc.MaxWorkers != 0 {
		cfg.MaxWorkers = fc.MaxWorkers
	}
	if fc.QueueDepth != 0 {
		cfg.QueueDepth = fc.QueueDepth
	}
	if fc.SinkPath != "" {
		cfg.SinkPath = fc.SinkPath
	}
	if fc.SinkDSN != "" {
		cfg.SinkDSN = fc.SinkDSN
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
	return nil
}

func (c Config) validate() error {
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be positive, got %d", c.MaxWorkers)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("queue depth must be positive, got %d", c.QueueDepth)
	}
	switch c.Engine {
	case "lattice", "stub":
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
