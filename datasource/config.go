package datasource

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	OpenMeteo struct {
		GeocodingURL string        `yaml:"geocodingURL"`
		ForecastURL  string        `yaml:"forecastURL"`
		Language     string        `yaml:"language"` // single fixed locale for geocoding results
		ForecastDays int           `yaml:"forecastDays"`
		Timeout      time.Duration `yaml:"timeout"`
		UserAgent    string        `yaml:"userAgent"`
	} `yaml:"openMeteo"`

	Search struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"search"`

	Geolocation struct {
		Provider  string        `yaml:"provider"` // "ip", "static" or "none"
		IPURL     string        `yaml:"ipURL"`
		Latitude  float64       `yaml:"latitude"`
		Longitude float64       `yaml:"longitude"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"geolocation"`

	Storage struct {
		Driver string `yaml:"driver"` // "sqlite", "memory" or "postgres"
		Path   string `yaml:"path"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Theme struct {
		Default string `yaml:"default"`
	} `yaml:"theme"`

	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfig creates a configuration that works without a file
func DefaultConfig() *Config {
	config := &Config{}
	config.OpenMeteo.GeocodingURL = "https://geocoding-api.open-meteo.com"
	config.OpenMeteo.ForecastURL = "https://api.open-meteo.com"
	config.OpenMeteo.Language = "pt"
	config.OpenMeteo.ForecastDays = 5
	config.OpenMeteo.Timeout = 10 * time.Second
	config.OpenMeteo.UserAgent = "weather-lookup/1.0"
	config.Search.Debounce = 600 * time.Millisecond
	config.Geolocation.Provider = "ip"
	config.Geolocation.IPURL = "http://ip-api.com/json"
	config.Geolocation.Timeout = 10 * time.Second
	config.Storage.Driver = "sqlite"
	config.Storage.Path = "weather.db"
	config.Theme.Default = "light"
	config.Server.Port = 8080
	config.Server.AllowedOrigins = []string{"*"}
	config.Log.Level = "info"
	return config
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// A missing file is not an error. WEATHER_* environment variables win over both.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("WEATHER_LANGUAGE"); ok && v != "" {
		c.OpenMeteo.Language = v
	}
	if v, ok := lookup("WEATHER_STORAGE_DRIVER"); ok && v != "" {
		c.Storage.Driver = v
	}
	if v, ok := lookup("WEATHER_STORAGE_PATH"); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup("WEATHER_STORAGE_DSN"); ok && v != "" {
		c.Storage.DSN = v
	}
	if v, ok := lookup("WEATHER_GEOLOCATION_PROVIDER"); ok && v != "" {
		c.Geolocation.Provider = v
	}
	if v, ok := lookup("WEATHER_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("WEATHER_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WEATHER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks values that would otherwise fail later at wiring time
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver postgres requires a dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Geolocation.Provider {
	case "ip", "static", "none":
	default:
		return fmt.Errorf("unknown geolocation provider %q", c.Geolocation.Provider)
	}

	if c.OpenMeteo.Language == "" {
		return fmt.Errorf("openMeteo.language must not be empty")
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search.debounce must be positive")
	}
	return nil
}

// LogLevel parses the configured level, defaulting to info
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
