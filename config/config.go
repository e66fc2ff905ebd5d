package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultGeocoderTimeout      = 5 * time.Second
	defaultLocationTimeout      = 10 * time.Second
	defaultLocationMaxAge       = 5 * time.Minute
	defaultHistoryRetention     = 90 * 24 * time.Hour
	defaultHistoryPruneSchedule = "30 3 * * *"
)

type Config struct {
	env    string
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		env:    env,
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetEnv() string {
	return c.env
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

func (c *Config) GetKVDBPath() string {
	kvdbPath := c.config.GetString("KVDB_PATH")
	if len(kvdbPath) == 0 {
		kvdbPath = c.config.GetString("database.kvdb_path")
	}

	return kvdbPath
}

func (c *Config) GetIndexPath() string {
	indexPath := c.config.GetString("INDEX_PATH")
	if len(indexPath) == 0 {
		indexPath = c.config.GetString("database.index_path")
	}

	return indexPath
}

func (c *Config) GetStoragePath() string {
	storagePath := c.config.GetString("STORAGE_PATH")
	if len(storagePath) == 0 {
		storagePath = c.config.GetString("database.storage_path")
	}

	return storagePath
}

func (c *Config) GetCatalogSeedPath() string {
	seedPath := c.config.GetString("CATALOG_SEED_PATH")
	if len(seedPath) == 0 {
		seedPath = c.config.GetString("catalog.seed_path")
	}

	return seedPath
}

func (c *Config) GetGeocoderURL() string {
	geocoderURL := c.config.GetString("GEOCODER_URL")
	if len(geocoderURL) == 0 {
		geocoderURL = c.config.GetString("geocoder.base_url")
	}

	return geocoderURL
}

func (c *Config) GetGeocoderUserAgent() string {
	userAgent := c.config.GetString("GEOCODER_USER_AGENT")
	if len(userAgent) == 0 {
		userAgent = c.config.GetString("geocoder.user_agent")
	}

	return userAgent
}

func (c *Config) GetGeocoderTimeout() time.Duration {
	return c.getDuration("GEOCODER_TIMEOUT", "geocoder.timeout", defaultGeocoderTimeout)
}

func (c *Config) GetLocationTimeout() time.Duration {
	return c.getDuration("LOCATION_TIMEOUT", "location.timeout", defaultLocationTimeout)
}

func (c *Config) GetLocationMaxAge() time.Duration {
	return c.getDuration("LOCATION_MAX_AGE", "location.max_age", defaultLocationMaxAge)
}

func (c *Config) GetHistoryRetention() time.Duration {
	return c.getDuration("HISTORY_RETENTION", "history.retention", defaultHistoryRetention)
}

func (c *Config) GetHistoryPruneSchedule() string {
	schedule := c.config.GetString("HISTORY_PRUNE_SCHEDULE")
	if len(schedule) == 0 {
		schedule = c.config.GetString("history.prune_schedule")
	}
	if len(schedule) == 0 {
		schedule = defaultHistoryPruneSchedule
	}

	return schedule
}

func (c *Config) getDuration(envKey string, fileKey string, fallback time.Duration) time.Duration {
	if c.config.IsSet(envKey) {
		return c.config.GetDuration(envKey)
	}
	if c.config.IsSet(fileKey) {
		return c.config.GetDuration(fileKey)
	}

	return fallback
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
