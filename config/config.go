package config

import (
	"fmt"
	"os"
	"path/filepath"

	"coverTonic/artwork"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config struct {
	CacheDir          string `mapstructure:"cache_dir"`
	ArtworkResolution string `mapstructure:"artwork_resolution"`
	MemoryCapacity    int    `mapstructure:"memory_capacity"`

	CatalogURL        string  `mapstructure:"catalog_url"`
	Country           string  `mapstructure:"country"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	RequestTimeout    int     `mapstructure:"request_timeout"`
	ResolveTimeout    int     `mapstructure:"resolve_timeout"`

	LogLevel string `mapstructure:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		CacheDir:          "",
		ArtworkResolution: string(artwork.Normal),
		MemoryCapacity:    artwork.DefaultMemoryCapacity,
		CatalogURL:        "https://itunes.apple.com",
		Country:           "de",
		RequestsPerSecond: 3,
		RequestTimeout:    15,
		ResolveTimeout:    45,
		LogLevel:          "info",
	}
}

// LoadConfig reads the config file registered with viper (see cmd) over
// the defaults. A missing file is not an error.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	for key, value := range map[string]interface{}{
		"cache_dir":           config.CacheDir,
		"artwork_resolution":  config.ArtworkResolution,
		"memory_capacity":     config.MemoryCapacity,
		"catalog_url":         config.CatalogURL,
		"country":             config.Country,
		"requests_per_second": config.RequestsPerSecond,
		"request_timeout":     config.RequestTimeout,
		"resolve_timeout":     config.ResolveTimeout,
		"log_level":           config.LogLevel,
	} {
		viper.SetDefault(key, value)
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.CacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		config.CacheDir = dir
	} else if expanded, err := homedir.Expand(config.CacheDir); err == nil {
		config.CacheDir = expanded
	}

	return config, nil
}

func DefaultCacheDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".coverTonic", "artwork"), nil
}

// SaveConfig writes config to the file viper loaded, or to the default
// path when none was found. A process watching that file picks the change up.
func SaveConfig(config *Config) (string, error) {
	configFile, err := ConfigFile()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	viper.SetConfigFile(configFile)

	viper.Set("cache_dir", config.CacheDir)
	viper.Set("artwork_resolution", config.ArtworkResolution)
	viper.Set("memory_capacity", config.MemoryCapacity)
	viper.Set("catalog_url", config.CatalogURL)
	viper.Set("country", config.Country)
	viper.Set("requests_per_second", config.RequestsPerSecond)
	viper.Set("request_timeout", config.RequestTimeout)
	viper.Set("resolve_timeout", config.ResolveTimeout)
	viper.Set("log_level", config.LogLevel)

	if err := viper.WriteConfig(); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return configFile, nil
}

// ConfigFile is the file viper loaded, falling back to GetConfigPath.
func ConfigFile() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	return GetConfigPath()
}

// GetConfigPath is where the CLI looks for its config when --config is not given.
func GetConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".coverTonic.yaml"), nil
}

// SetResolution persists a new artwork resolution and returns the file
// written.
func SetResolution(raw string) (string, error) {
	r, err := artwork.ParseResolution(raw)
	if err != nil {
		return "", err
	}
	config, err := LoadConfig()
	if err != nil {
		return "", err
	}
	config.ArtworkResolution = string(r)
	if err := ValidateConfig(config); err != nil {
		return "", err
	}
	return SaveConfig(config)
}

func ValidateConfig(config *Config) error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	found := false
	for _, level := range validLogLevels {
		if config.LogLevel == level {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	if _, err := artwork.ParseResolution(config.ArtworkResolution); err != nil {
		return err
	}
	if config.MemoryCapacity <= 0 {
		return fmt.Errorf("memory_capacity must be positive: %d", config.MemoryCapacity)
	}
	if config.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative: %v", config.RequestsPerSecond)
	}
	if config.RequestTimeout <= 0 || config.ResolveTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if config.CatalogURL == "" {
		return fmt.Errorf("catalog_url is required")
	}

	return nil
}
