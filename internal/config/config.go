package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config captures the runtime configuration for the DayLight client.
//
// Sources, in descending priority: an explicit path passed by the caller,
// the DAYLIGHT_CONFIG environment variable, ./daylight.yaml, and finally
// environment variables alone.
type Config struct {
	Env       string    `yaml:"env" env:"DAYLIGHT_ENV" env-default:"local"`
	API       APIConfig `yaml:"api"`
	Log       LogConfig `yaml:"log"`
	TokenFile string    `yaml:"token_file" env:"DAYLIGHT_TOKEN_FILE"`
}

// APIConfig describes the remote DayLight REST API and how politely to call it.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" env:"DAYLIGHT_API_BASE_URL" env-default:"https://api.daylight.community/api/"`
	Timeout           time.Duration `yaml:"timeout" env:"DAYLIGHT_API_TIMEOUT" env-default:"15s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"DAYLIGHT_API_RPS" env-default:"5"`
	Burst             int           `yaml:"burst" env:"DAYLIGHT_API_BURST" env-default:"10"`
}

// LogConfig controls the slog handler built at startup.
type LogConfig struct {
	Level  string `yaml:"level" env:"DAYLIGHT_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"DAYLIGHT_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration using the source priority documented on Config.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("DAYLIGHT_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat("daylight.yaml"); err == nil {
			path = "daylight.yaml"
		}
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config from environment: %w", err)
	}

	if cfg.TokenFile == "" {
		tokenFile, err := defaultTokenFile()
		if err != nil {
			return Config{}, err
		}
		cfg.TokenFile = tokenFile
	}

	return cfg, nil
}

// MustLoad is Load that panics on failure, for use in command wiring.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func defaultTokenFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "daylight", "tokens.json"), nil
}
