// Package generation turns user requests into endpoint invocations, keeps
// generation history and erases it.
package generation

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/georgeshao/sdstudio/internal/backend"
	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/pkg/types"
)

type Options struct {
	InferenceTimeout  time.Duration
	RequestsPerSecond float64
	PersistWorkers    int
}

func DefaultOptions() Options {
	return Options{
		InferenceTimeout:  300 * time.Second,
		RequestsPerSecond: 1,
		PersistWorkers:    8,
	}
}

type Service struct {
	resolver *config.Resolver
	backend  backend.Backend
	opts     Options
	log      zerolog.Logger

	newGenerationID func() string
	newArtifactID   func() string
	randomPrompt    func() string

	mu           sync.Mutex
	rateLimiters map[string]*rate.Limiter
}

func NewService(resolver *config.Resolver, b backend.Backend, opts Options, log zerolog.Logger) *Service {
	if opts.PersistWorkers <= 0 {
		opts.PersistWorkers = DefaultOptions().PersistWorkers
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultOptions().RequestsPerSecond
	}
	if opts.InferenceTimeout <= 0 {
		opts.InferenceTimeout = DefaultOptions().InferenceTimeout
	}
	return &Service{
		resolver:        resolver,
		backend:         b,
		opts:            opts,
		log:             log.With().Str("component", "generation").Str("backend", b.Name()).Logger(),
		newGenerationID: newGenerationID,
		newArtifactID:   uuid.NewString,
		randomPrompt:    randomPrompt,
		rateLimiters:    make(map[string]*rate.Limiter),
	}
}

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
	entropyMu   sync.Mutex
)

// newGenerationID returns a lower-case ULID, so sort key order follows
// creation order.
func newGenerationID() string {
	entropyOnce.Do(func() {
		entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	})
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

func (s *Service) getRateLimiter(endpoint string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.rateLimiters[endpoint]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.opts.RequestsPerSecond), 1)
		s.rateLimiters[endpoint] = limiter
	}
	return limiter
}

// DefaultInput returns the input a new generation starts from.
func (s *Service) DefaultInput(ctx context.Context) (types.GenerationInput, error) {
	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return types.GenerationInput{}, err
	}
	catalog, err := settings.Endpoints()
	if err != nil {
		return types.GenerationInput{}, err
	}
	return defaultInput(s.randomPrompt(), catalog), nil
}

func (s *Service) Endpoints(ctx context.Context) ([]types.EndpointDescriptor, error) {
	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Endpoints()
}

func (s *Service) Status(ctx context.Context) types.Status {
	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return types.Status{Indicator: types.StatusWarning, Text: err.Error()}
	}
	if _, err := settings.Endpoints(); err != nil {
		return types.Status{Indicator: types.StatusWarning, Text: err.Error()}
	}
	if err := s.backend.Check(settings); err != nil {
		return types.Status{Indicator: types.StatusWarning, Text: err.Error()}
	}
	if settings.StoreGenerations {
		if err := settings.RequireStorage(); err != nil {
			return types.Status{Indicator: types.StatusWarning, Text: err.Error()}
		}
	}
	return types.Status{Indicator: types.StatusOK, Text: "Ready"}
}

func (s *Service) Settings(ctx context.Context) (map[string]string, error) {
	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Values(), nil
}

func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	if err := s.resolver.Set(ctx, key, value); err != nil {
		return err
	}
	s.log.Info().Str("key", key).Msg("setting saved")
	return nil
}

// EnsureProjectID saves a project id when none is set. It prefers the
// credential identity and falls back to a random UUID.
func (s *Service) EnsureProjectID(ctx context.Context) (string, error) {
	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if settings.ProjectID != "" {
		return settings.ProjectID, nil
	}

	projectID := ""
	if sess, err := s.backend.Open(ctx, settings); err == nil && sess.Identity != nil {
		if projectID, err = sess.Identity.IdentityID(ctx); err != nil {
			s.log.Warn().Err(err).Msg("identity unavailable, using a random project id")
			projectID = ""
		}
	}
	if projectID == "" {
		projectID = uuid.NewString()
	}

	if err := s.resolver.Set(ctx, config.KeyProjectID, projectID); err != nil {
		return "", err
	}
	s.log.Info().Str("project_id", projectID).Msg("project id assigned")
	return projectID, nil
}
