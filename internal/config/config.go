// Package config reads tracker settings from the environment.
//
// Values come from JNT_* variables. An optional env file is loaded first;
// variables already set in the process environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/roach88/jobtracker/internal/digest"
)

// Environment variable names.
const (
	EnvDB          = "JNT_DB"
	EnvListenAddr  = "JNT_LISTEN_ADDR"
	EnvDigestDelay = "JNT_DIGEST_DELAY"
	EnvLogLevel    = "JNT_LOG_LEVEL"
	EnvCatalog     = "JNT_CATALOG"
)

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// Defaults.
const (
	DefaultDB         = "jnt.db"
	DefaultListenAddr = "127.0.0.1:8080"
)

// Config holds the tracker settings.
type Config struct {
	DB          string
	ListenAddr  string
	DigestDelay time.Duration
	LogLevel    slog.Level
	// Catalog is a CUE catalog path; empty uses the built-in catalog.
	Catalog string
}

// Load reads the configuration. envFile names an env file to load; it must
// exist. An empty envFile loads DefaultEnvFile if present.
func Load(envFile string) (Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DB:         getenv(EnvDB, DefaultDB),
		ListenAddr: getenv(EnvListenAddr, DefaultListenAddr),
		Catalog:    os.Getenv(EnvCatalog),
	}

	delay, err := getenvDuration(EnvDigestDelay, digest.DefaultDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.DigestDelay = delay

	level, err := getenvLevel(EnvLogLevel, slog.LevelInfo)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	// Bare integers are milliseconds.
	if ms, err := strconv.Atoi(v); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("%s: negative delay %d", key, ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative delay %s", key, d)
	}
	return d, nil
}

func getenvLevel(key string, def slog.Level) (slog.Level, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return level, nil
}
