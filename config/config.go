package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/laborwatch/cluedash/consts"
	"github.com/pelletier/go-toml/v2"
)

// Config is the settings shared by the server and the CLI.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Backend BackendConfig `toml:"backend"`
	Data    DataConfig    `toml:"data"`
}

type ServerConfig struct {
	Port              string `toml:"port"`
	RateLimitRequests int    `toml:"rate_limit_requests"`
	SessionTTLMinutes int    `toml:"session_ttl_minutes"`
	EvictSchedule     string `toml:"evict_schedule"`
}

type BackendConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type DataConfig struct {
	Folder string `toml:"folder"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              consts.DefaultPort,
			RateLimitRequests: consts.RateLimitRequests,
			SessionTTLMinutes: int(consts.SessionTTL / time.Minute),
			EvictSchedule:     consts.CronEvictSessions,
		},
		Backend: BackendConfig{
			URL:            consts.DefaultBackendURL,
			TimeoutSeconds: int(consts.RequestTimeout / time.Second),
		},
		Data: DataConfig{
			Folder: ".",
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies the BACKEND_URL,
// PORT, DATA_FOLDER and REQUEST_TIMEOUT environment variables. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	cfg.Backend.URL = cmp.Or(os.Getenv("BACKEND_URL"), cfg.Backend.URL)
	cfg.Server.Port = cmp.Or(os.Getenv("PORT"), cfg.Server.Port)
	cfg.Data.Folder = cmp.Or(os.Getenv("DATA_FOLDER"), cfg.Data.Folder)
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.Backend.TimeoutSeconds = seconds
	}
	return cfg, nil
}

// Save writes cfg as TOML.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, consts.FilePermissions)
}

func (c *Config) RequestTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return consts.RequestTimeout
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	if c.Server.SessionTTLMinutes <= 0 {
		return consts.SessionTTL
	}
	return time.Duration(c.Server.SessionTTLMinutes) * time.Minute
}
