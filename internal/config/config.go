package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	BackendAWS   = "aws"
	BackendLocal = "local"
)

// Config holds the environment driven process configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Backend         string        `env:"BACKEND" envDefault:"aws"`
	StoragePath     string        `env:"STORAGE_PATH" envDefault:"./data/sdstudio.db"`
	ObjectsPath     string        `env:"OBJECTS_PATH" envDefault:"./data/objects"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	BodyLimit       int           `env:"BODY_LIMIT" envDefault:"33554432"`

	// Generation
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"300s"`
	InferenceRPS     float64       `env:"INFERENCE_RPS" envDefault:"1"`
	PersistWorkers   int           `env:"PERSIST_WORKERS" envDefault:"8"`

	// Initial values for the settings store. Only applied to keys that have
	// never been saved.
	Seed SeedSettings `envPrefix:"STUDIO_"`
}

type SeedSettings struct {
	ModelsJSON        string `env:"MODELS_JSON"`
	Region            string `env:"REGION"`
	IdentityPoolID    string `env:"COGNITO_IDENTITY_POOL_ID"`
	StoreGenerations  string `env:"STORE_GENERATIONS"`
	GenerationsTable  string `env:"GENERATIONS_TABLE"`
	GenerationsBucket string `env:"GENERATIONS_BUCKET"`
	ProjectID         string `env:"PROJECT_ID"`
}

// Values returns the non-empty seeds keyed by setting name.
func (s SeedSettings) Values() map[string]string {
	out := make(map[string]string)
	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			out[key] = value
		}
	}
	add(KeyModelsJSON, s.ModelsJSON)
	add(KeyRegion, s.Region)
	add(KeyIdentityPoolID, s.IdentityPoolID)
	add(KeyStoreGenerations, s.StoreGenerations)
	add(KeyGenerationsTable, s.GenerationsTable)
	add(KeyGenerationsBucket, s.GenerationsBucket)
	add(KeyProjectID, s.ProjectID)
	return out
}

// Load reads .env (when present) over the environment and parses the
// result into Config. Values in .env win.
func Load() (*Config, error) {
	if err := godotenv.Overload(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.StoragePath = strings.TrimSpace(cfg.StoragePath)
	cfg.ObjectsPath = strings.TrimSpace(cfg.ObjectsPath)

	switch cfg.Backend {
	case BackendAWS, BackendLocal:
	default:
		return nil, fmt.Errorf("BACKEND must be %q or %q, got %q", BackendAWS, BackendLocal, cfg.Backend)
	}
	if cfg.StoragePath == "" {
		return nil, errors.New("STORAGE_PATH is required")
	}
	if cfg.Backend == BackendLocal && cfg.ObjectsPath == "" {
		return nil, errors.New("OBJECTS_PATH is required for the local backend")
	}
	if cfg.InferenceRPS <= 0 {
		return nil, errors.New("INFERENCE_RPS must be positive")
	}
	if cfg.PersistWorkers <= 0 {
		cfg.PersistWorkers = 8
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 32 * 1024 * 1024
	}
	return cfg, nil
}
