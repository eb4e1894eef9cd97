package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/pkg/types"
)

// Setting names, as stored.
const (
	KeyModelsJSON        = "modelsJson"
	KeyRegion            = "region"
	KeyIdentityPoolID    = "cognitoIdentityPoolId"
	KeyStoreGenerations  = "storeGenerations"
	KeyGenerationsTable  = "generationsTable"
	KeyGenerationsBucket = "generationsBucket"
	KeyProjectID         = "projectId"
)

var knownKeys = map[string]bool{
	KeyModelsJSON:        true,
	KeyRegion:            true,
	KeyIdentityPoolID:    true,
	KeyStoreGenerations:  true,
	KeyGenerationsTable:  true,
	KeyGenerationsBucket: true,
	KeyProjectID:         true,
}

// Store persists named settings.
type Store interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, key, value string) error
}

// Settings is a read-only snapshot of the settings store taken at the start
// of an operation.
type Settings struct {
	ModelsJSON        string
	Region            string
	IdentityPoolID    string
	StoreGenerations  bool
	GenerationsTable  string
	GenerationsBucket string
	ProjectID         string
}

func settingsFromValues(values map[string]string) Settings {
	get := func(key string) string { return strings.TrimSpace(values[key]) }
	store, _ := strconv.ParseBool(get(KeyStoreGenerations))
	return Settings{
		ModelsJSON:        get(KeyModelsJSON),
		Region:            get(KeyRegion),
		IdentityPoolID:    get(KeyIdentityPoolID),
		StoreGenerations:  store,
		GenerationsTable:  get(KeyGenerationsTable),
		GenerationsBucket: get(KeyGenerationsBucket),
		ProjectID:         get(KeyProjectID),
	}
}

// Values returns the snapshot keyed by setting name.
func (s Settings) Values() map[string]string {
	return map[string]string{
		KeyModelsJSON:        s.ModelsJSON,
		KeyRegion:            s.Region,
		KeyIdentityPoolID:    s.IdentityPoolID,
		KeyStoreGenerations:  strconv.FormatBool(s.StoreGenerations),
		KeyGenerationsTable:  s.GenerationsTable,
		KeyGenerationsBucket: s.GenerationsBucket,
		KeyProjectID:         s.ProjectID,
	}
}

// Endpoints parses the endpoint catalog. An unset catalog is empty.
func (s Settings) Endpoints() ([]types.EndpointDescriptor, error) {
	if s.ModelsJSON == "" {
		return []types.EndpointDescriptor{}, nil
	}
	return parseCatalog(s.ModelsJSON)
}

// RequireEndpoint resolves the endpoint serving modelID.
func (s Settings) RequireEndpoint(modelID string) (types.EndpointDescriptor, error) {
	if s.ModelsJSON == "" {
		return types.EndpointDescriptor{}, apperrors.Missing(KeyModelsJSON)
	}
	catalog, err := parseCatalog(s.ModelsJSON)
	if err != nil {
		return types.EndpointDescriptor{}, err
	}
	for _, e := range catalog {
		if e.ModelID == modelID {
			return e, nil
		}
	}
	return types.EndpointDescriptor{}, &apperrors.ConfigurationError{
		Setting: KeyModelsJSON,
		Message: fmt.Sprintf("no endpoint for model %q", modelID),
	}
}

// RequireAWS checks the settings needed to obtain cloud credentials.
func (s Settings) RequireAWS() error {
	if s.Region == "" {
		return apperrors.Missing(KeyRegion)
	}
	if s.IdentityPoolID == "" {
		return apperrors.Missing(KeyIdentityPoolID)
	}
	return nil
}

// RequireStorage checks the settings needed to persist or read history.
func (s Settings) RequireStorage() error {
	if s.GenerationsTable == "" {
		return apperrors.Missing(KeyGenerationsTable)
	}
	if s.GenerationsBucket == "" {
		return apperrors.Missing(KeyGenerationsBucket)
	}
	if s.ProjectID == "" {
		return apperrors.Missing(KeyProjectID)
	}
	return nil
}

func parseCatalog(raw string) ([]types.EndpointDescriptor, error) {
	var catalog []types.EndpointDescriptor
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
		return nil, &apperrors.ConfigurationError{Setting: KeyModelsJSON, Message: "invalid JSON: " + err.Error()}
	}
	for i, e := range catalog {
		if e.ModelID == "" || e.EndpointName == "" {
			return nil, &apperrors.ConfigurationError{
				Setting: KeyModelsJSON,
				Message: fmt.Sprintf("entry %d needs modelId and endpointName", i),
			}
		}
	}
	return catalog, nil
}

// Resolver hands out settings snapshots and applies explicit changes.
type Resolver struct {
	store Store
	mu    sync.Mutex
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Seed saves each value whose key has never been stored.
func (r *Resolver) Seed(ctx context.Context, seeds map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	for key, value := range seeds {
		if _, ok := current[key]; ok || !knownKeys[key] {
			continue
		}
		if err := r.store.Save(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}

func (r *Resolver) Snapshot(ctx context.Context) (Settings, error) {
	values, err := r.store.Load(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settingsFromValues(values), nil
}

// Set validates and saves one setting.
func (r *Resolver) Set(ctx context.Context, key, value string) error {
	if !knownKeys[key] {
		return &apperrors.ValidationError{Field: "key", Message: fmt.Sprintf("unknown setting %q", key)}
	}
	value = strings.TrimSpace(value)
	switch key {
	case KeyStoreGenerations:
		if _, err := strconv.ParseBool(value); err != nil {
			return &apperrors.ValidationError{Field: key, Message: "must be true or false"}
		}
	case KeyModelsJSON:
		if value != "" {
			if _, err := parseCatalog(value); err != nil {
				return &apperrors.ValidationError{Field: key, Message: err.Error()}
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore(initial map[string]string) *MemoryStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryStore{values: values}
}

func (m *MemoryStore) Load(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
