package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	PolicyStrict     = "strict"
	PolicyBestEffort = "best-effort"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	MinecraftVersion string        `mapstructure:"MINECRAFT_VERSION"`
	MinecraftLoader  string        `mapstructure:"MINECRAFT_LOADER"`
	UserAgent        string        `mapstructure:"USERAGENT"`
	ModrinthAPIURL   string        `mapstructure:"MODRINTH_API_URL"`
	GameVersionsURL  string        `mapstructure:"GAME_VERSIONS_URL"`
	OutputDir        string        `mapstructure:"OUTPUT_DIR"`
	DatabasePath     string        `mapstructure:"DATABASE_PATH"`
	Concurrency      int           `mapstructure:"CONCURRENCY"`
	SearchTimeout    time.Duration `mapstructure:"SEARCH_TIMEOUT"`
	VersionsTimeout  time.Duration `mapstructure:"VERSIONS_TIMEOUT"`
	DownloadTimeout  time.Duration `mapstructure:"DOWNLOAD_TIMEOUT"`
	ArchivePolicy    string        `mapstructure:"ARCHIVE_POLICY"`
	LogFile          string        `mapstructure:"LOG_FILE"`
}

var envKeys = []string{
	"MINECRAFT_VERSION",
	"MINECRAFT_LOADER",
	"USERAGENT",
	"MODRINTH_API_URL",
	"GAME_VERSIONS_URL",
	"OUTPUT_DIR",
	"DATABASE_PATH",
	"CONCURRENCY",
	"SEARCH_TIMEOUT",
	"VERSIONS_TIMEOUT",
	"DOWNLOAD_TIMEOUT",
	"ARCHIVE_POLICY",
	"LOG_FILE",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := viper.BindEnv(strings.ToLower(key), key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// processConfigDefaults fills every unset value with its default.
func processConfigDefaults(cfg *Config) {
	if cfg.MinecraftLoader == "" {
		cfg.MinecraftLoader = "fabric"
	}
	cfg.MinecraftLoader = strings.ToLower(cfg.MinecraftLoader)
	if cfg.UserAgent == "" {
		cfg.UserAgent = "modpack-builder/dev (unknown-user)"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
	if cfg.ModrinthAPIURL == "" {
		cfg.ModrinthAPIURL = "https://api.modrinth.com/v2"
	}
	if cfg.GameVersionsURL == "" {
		cfg.GameVersionsURL = "https://mc-versions-api.net/api/java"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.OutputDir, "modpacks.db")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	if cfg.VersionsTimeout <= 0 {
		cfg.VersionsTimeout = 20 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 30 * time.Second
	}
	if cfg.ArchivePolicy == "" {
		cfg.ArchivePolicy = PolicyStrict
	}
	cfg.ArchivePolicy = strings.ToLower(cfg.ArchivePolicy)
	if cfg.LogFile == "" {
		cfg.LogFile = "modpack-builder.log"
	}
}

// validateAndEnsureDirectories checks values that have no sensible default
// and creates the output directory.
func validateAndEnsureDirectories(cfg *Config) error {
	if cfg.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	switch cfg.ArchivePolicy {
	case PolicyStrict, PolicyBestEffort:
	default:
		return fmt.Errorf("ARCHIVE_POLICY must be %q or %q, got %q", PolicyStrict, PolicyBestEffort, cfg.ArchivePolicy)
	}

	if _, err := os.Stat(cfg.OutputDir); os.IsNotExist(err) {
		slog.Info("Output directory does not exist, creating it", "path", cfg.OutputDir)
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			slog.Error("Failed to create output directory", "path", cfg.OutputDir, "error", err)
			return err
		}
	} else if err != nil {
		slog.Error("Failed to check output directory", "path", cfg.OutputDir, "error", err)
		return err
	}
	return nil
}
