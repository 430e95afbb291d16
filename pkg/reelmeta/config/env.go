package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Env is the process environment configuration. Every provider
// credential is optional; a blank one disables that provider.
type Env struct {
	Credentials Credentials
	Log         LogConfig

	ProviderTimeout time.Duration `env:"REELMETA_PROVIDER_TIMEOUT" env-default:"15s"`
	SearchWorkers   int           `env:"REELMETA_SEARCH_WORKERS" env-default:"3"`
	DownloadWorkers int           `env:"REELMETA_DOWNLOAD_WORKERS" env-default:"4"`
	DownloadTimeout time.Duration `env:"REELMETA_DOWNLOAD_TIMEOUT" env-default:"2m"`
	DefaultLang     string        `env:"REELMETA_DEFAULT_LANG" env-default:"ja"`
	PushgatewayURL  string        `env:"PUSHGATEWAY_URL"`
}

// Credentials holds the media provider API keys.
type Credentials struct {
	PixabayKey      string `env:"PIXABAY_API_KEY"`
	PixabayVideoKey string `env:"PIXABAY_VIDEO_API_KEY"` // falls back to PixabayKey
	PexelsKey       string `env:"PEXELS_API_KEY"`
	UnsplashKey     string `env:"UNSPLASH_ACCESS_KEY"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level    string `env:"LOG_LEVEL" env-default:"info"`
	Encoding string `env:"LOG_ENCODING" env-default:"console"`
	Output   string `env:"LOG_OUTPUT" env-default:"stderr"`
}

// LoadEnv loads optional dotenv files, then reads the environment.
// Missing dotenv files are ignored; variables already set win.
func LoadEnv(dotenvPaths ...string) (*Env, error) {
	for _, path := range dotenvPaths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if env.Credentials.PixabayVideoKey == "" {
		env.Credentials.PixabayVideoKey = env.Credentials.PixabayKey
	}
	if env.SearchWorkers < 1 {
		env.SearchWorkers = 1
	}
	if env.DownloadWorkers < 1 {
		env.DownloadWorkers = 1
	}
	return &env, nil
}
