package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "soundblanket/internal/platform/errors"
)

const FileName = "soundblanket.yaml"

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"

	BackendAuto   = "auto"
	BackendDevice = "device"
	BackendSystem = "system"
)

type Config struct {
	DataDir       string        `yaml:"-"`
	SoundsDir     string        `yaml:"sounds_dir"`
	Store         string        `yaml:"store"`
	StorePath     string        `yaml:"store_path"`
	Backend       string        `yaml:"backend"`
	DefaultVolume float64       `yaml:"default_volume"`
	SampleRate    int           `yaml:"sample_rate"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	ApplyDelay    time.Duration `yaml:"apply_delay"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file"`
}

// New derives defaults from dataDir and overlays the YAML file at configPath.
// An empty configPath falls back to <dataDir>/soundblanket.yaml when it exists.
func New(dataDir, configPath string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", apperrors.ErrInvalidInput)
	}
	cfg := Config{
		DataDir:       dataDir,
		SoundsDir:     filepath.Join(dataDir, "sounds"),
		Store:         StoreJSON,
		Backend:       BackendAuto,
		DefaultVolume: 0.7,
		SampleRate:    44100,
		RetryDelay:    time.Second,
		ApplyDelay:    200 * time.Millisecond,
		LogLevel:      "info",
		LogFile:       filepath.Join(dataDir, "soundblanket.log"),
	}

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(dataDir, FileName)
	}
	payload, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if cfg.StorePath == "" {
		cfg.StorePath = defaultStorePath(dataDir, cfg.Store)
	}
	cfg.SoundsDir = resolve(dataDir, cfg.SoundsDir)
	cfg.StorePath = resolve(dataDir, cfg.StorePath)
	if cfg.LogFile != "" {
		cfg.LogFile = resolve(dataDir, cfg.LogFile)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("%w: store must be json or sqlite, got %q", apperrors.ErrInvalidInput, c.Store)
	}
	switch c.Backend {
	case BackendAuto, BackendDevice, BackendSystem:
	default:
		return fmt.Errorf("%w: backend must be auto, device or system, got %q", apperrors.ErrInvalidInput, c.Backend)
	}
	if c.DefaultVolume < 0 || c.DefaultVolume > 1 {
		return fmt.Errorf("%w: default_volume must be within [0,1]", apperrors.ErrInvalidInput)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive", apperrors.ErrInvalidInput)
	}
	if c.RetryDelay <= 0 || c.ApplyDelay < 0 {
		return fmt.Errorf("%w: retry_delay must be positive and apply_delay non-negative", apperrors.ErrInvalidInput)
	}
	return nil
}

func defaultStorePath(dataDir, store string) string {
	if store == StoreSQLite {
		return filepath.Join(dataDir, "data", "mixes.db")
	}
	return filepath.Join(dataDir, "data", "mixes.json")
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
