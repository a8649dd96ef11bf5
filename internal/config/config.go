// Package config loads runtime settings from a TOML settings file overlaid
// with FIELDAGENT_* environment variables. Environment always wins; the
// file covers everything a user would rather not repeat per shell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything the CLI and services need at runtime.
type Config struct {
	StorageDir       string        // FIELDAGENT_STORAGE_DIR (default ~/.local/state/fieldagent)
	DatabaseURL      string        // FIELDAGENT_DATABASE_URL (optional; empty = in-memory store)
	MaxStoredConfigs int           // FIELDAGENT_MAX_STORED_CONFIGS (default 50; 0 = unlimited)
	RetryAttempts    int           // FIELDAGENT_RETRY_ATTEMPTS (default 3)
	RetryDelay       time.Duration // FIELDAGENT_RETRY_DELAY (default 500ms)
	LogLevel         string        // FIELDAGENT_LOG_LEVEL (default "info")

	// Planner settings
	PlannerModel string // FIELDAGENT_PLANNER_MODEL (default "gemini-2.0-flash")
	GeminiAPIKey string // FIELDAGENT_GEMINI_API_KEY, falls back to GEMINI_API_KEY

	// Event settings
	NATSURL string // FIELDAGENT_NATS_URL (optional, empty = no events)

	// Backup settings
	BackupInterval   time.Duration // FIELDAGENT_BACKUP_INTERVAL (default 0 = disabled)
	BackupS3Bucket   string        // FIELDAGENT_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Endpoint string        // FIELDAGENT_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
	BackupS3Region   string        // FIELDAGENT_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Key      string        // FIELDAGENT_BACKUP_S3_KEY (default "fieldagent/backup.jsonl")
}

// fileSettings is the TOML shape of the settings file.
type fileSettings struct {
	StorageDir       string `toml:"storage_dir"`
	DatabaseURL      string `toml:"database_url"`
	MaxStoredConfigs *int   `toml:"max_stored_configs"`
	RetryAttempts    *int   `toml:"retry_attempts"`
	RetryDelay       string `toml:"retry_delay"`
	LogLevel         string `toml:"log_level"`

	PlannerModel string `toml:"planner_model"`
	GeminiAPIKey string `toml:"gemini_api_key"`

	NATSURL string `toml:"nats_url"`

	BackupInterval   string `toml:"backup_interval"`
	BackupS3Bucket   string `toml:"backup_s3_bucket"`
	BackupS3Endpoint string `toml:"backup_s3_endpoint"`
	BackupS3Region   string `toml:"backup_s3_region"`
	BackupS3Key      string `toml:"backup_s3_key"`
}

// DefaultStorageDir returns the default state directory.
func DefaultStorageDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "fieldagent"), nil
}

// SettingsPath returns the settings file location: FIELDAGENT_CONFIG when
// set, otherwise settings.toml inside the default storage dir.
func SettingsPath() (string, error) {
	if p := os.Getenv("FIELDAGENT_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := DefaultStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.toml"), nil
}

// Load builds the config: baked-in defaults, then the settings file, then
// environment variables.
func Load() (*Config, error) {
	c := &Config{
		MaxStoredConfigs: 50,
		RetryAttempts:    3,
		RetryDelay:       500 * time.Millisecond,
		LogLevel:         "info",
		PlannerModel:     "gemini-2.0-flash",
		BackupS3Region:   "us-east-1",
		BackupS3Key:      "fieldagent/backup.jsonl",
	}

	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}
	if err := applyFile(c, path); err != nil {
		return nil, err
	}
	if err := applyEnv(c); err != nil {
		return nil, err
	}

	if c.StorageDir == "" {
		dir, err := DefaultStorageDir()
		if err != nil {
			return nil, err
		}
		c.StorageDir = dir
	}
	return c, nil
}

func applyFile(c *Config, path string) error {
	var fs fileSettings
	if _, err := toml.DecodeFile(path, &fs); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings file %s: %w", path, err)
	}

	if fs.StorageDir != "" {
		c.StorageDir = fs.StorageDir
	}
	if fs.DatabaseURL != "" {
		c.DatabaseURL = fs.DatabaseURL
	}
	if fs.MaxStoredConfigs != nil {
		c.MaxStoredConfigs = *fs.MaxStoredConfigs
	}
	if fs.RetryAttempts != nil {
		c.RetryAttempts = *fs.RetryAttempts
	}
	if fs.RetryDelay != "" {
		d, err := time.ParseDuration(fs.RetryDelay)
		if err != nil {
			return fmt.Errorf("settings retry_delay: %w", err)
		}
		c.RetryDelay = d
	}
	if fs.LogLevel != "" {
		c.LogLevel = fs.LogLevel
	}
	if fs.PlannerModel != "" {
		c.PlannerModel = fs.PlannerModel
	}
	if fs.GeminiAPIKey != "" {
		c.GeminiAPIKey = fs.GeminiAPIKey
	}
	if fs.NATSURL != "" {
		c.NATSURL = fs.NATSURL
	}
	if fs.BackupInterval != "" {
		d, err := time.ParseDuration(fs.BackupInterval)
		if err != nil {
			return fmt.Errorf("settings backup_interval: %w", err)
		}
		c.BackupInterval = d
	}
	if fs.BackupS3Bucket != "" {
		c.BackupS3Bucket = fs.BackupS3Bucket
	}
	if fs.BackupS3Endpoint != "" {
		c.BackupS3Endpoint = fs.BackupS3Endpoint
	}
	if fs.BackupS3Region != "" {
		c.BackupS3Region = fs.BackupS3Region
	}
	if fs.BackupS3Key != "" {
		c.BackupS3Key = fs.BackupS3Key
	}
	return nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("FIELDAGENT_STORAGE_DIR"); v != "" {
		c.StorageDir = v
	}
	if v := os.Getenv("FIELDAGENT_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("FIELDAGENT_MAX_STORED_CONFIGS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FIELDAGENT_MAX_STORED_CONFIGS: %w", err)
		}
		c.MaxStoredConfigs = n
	}
	if v := os.Getenv("FIELDAGENT_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FIELDAGENT_RETRY_ATTEMPTS: %w", err)
		}
		c.RetryAttempts = n
	}
	if v := os.Getenv("FIELDAGENT_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FIELDAGENT_RETRY_DELAY: %w", err)
		}
		c.RetryDelay = d
	}
	if v := os.Getenv("FIELDAGENT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FIELDAGENT_PLANNER_MODEL"); v != "" {
		c.PlannerModel = v
	}
	if v := os.Getenv("FIELDAGENT_GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	} else if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if v := os.Getenv("FIELDAGENT_NATS_URL"); v != "" {
		c.NATSURL = v
	}
	if v := os.Getenv("FIELDAGENT_BACKUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FIELDAGENT_BACKUP_INTERVAL: %w", err)
		}
		c.BackupInterval = d
	}
	if v := os.Getenv("FIELDAGENT_BACKUP_S3_BUCKET"); v != "" {
		c.BackupS3Bucket = v
	}
	if v := os.Getenv("FIELDAGENT_BACKUP_S3_ENDPOINT"); v != "" {
		c.BackupS3Endpoint = v
	}
	if v := os.Getenv("FIELDAGENT_BACKUP_S3_REGION"); v != "" {
		c.BackupS3Region = v
	}
	if v := os.Getenv("FIELDAGENT_BACKUP_S3_KEY"); v != "" {
		c.BackupS3Key = v
	}
	return nil
}
