package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/internal/backend"
	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/internal/inference"
	"github.com/georgeshao/sdstudio/internal/metrics"
	"github.com/georgeshao/sdstudio/internal/storage"
	"github.com/georgeshao/sdstudio/pkg/types"
)

// MaxCount bounds the images of one generation.
const MaxCount = 10

// Generate runs count sequential single-image invocations against the
// endpoint serving input's model. When storage is enabled every artifact is
// written before the index record; any failure returns no result.
func (s *Service) Generate(ctx context.Context, input types.GenerationInput, count int) (*types.GenerationResult, error) {
	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := settings.Endpoints()
	if err != nil {
		return nil, err
	}

	resolved := resolveInput(input, defaultInput(s.randomPrompt(), catalog), s.randomPrompt)
	if resolved.Model == nil {
		return nil, apperrors.Missing(config.KeyModelsJSON)
	}
	endpoint, err := settings.RequireEndpoint(*resolved.Model)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = DefaultCount
	}
	if count > MaxCount {
		return nil, &apperrors.ValidationError{Field: "count", Message: fmt.Sprintf("at most %d images per generation", MaxCount)}
	}
	if settings.StoreGenerations {
		if err := settings.RequireStorage(); err != nil {
			return nil, err
		}
	}

	sess, err := s.backend.Open(ctx, settings)
	if err != nil {
		return nil, err
	}

	generationID := s.newGenerationID()
	log := s.log.With().
		Str("generation_id", generationID).
		Str("endpoint", endpoint.EndpointName).
		Logger()
	log.Info().Int("count", count).Msg("generation started")

	limiter := s.getRateLimiter(endpoint.EndpointName)
	images := make([]types.GeneratedImage, 0, count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req := buildRequest(resolved, i)
		resp, err := s.invoke(ctx, sess.Inference, endpoint.EndpointName, req)
		if err != nil {
			log.Error().Err(err).Int("sample", i).Msg("generation failed")
			return nil, err
		}

		for _, a := range resp.Artifacts {
			if a.FinishReason != types.FinishReasonSuccess {
				log.Warn().
					Int("sample", i).
					Int64("seed", a.Seed).
					Str("finish_reason", a.FinishReason).
					Msg("artifact not successful")
			}
			images = append(images, types.GeneratedImage{
				ID:           s.newArtifactID(),
				Seed:         a.Seed,
				FinishReason: a.FinishReason,
				Base64:       a.Base64,
				Input:        withSeed(resolved, req.Seed),
			})
		}
	}

	if settings.StoreGenerations {
		if err := s.persist(ctx, sess, settings.ProjectID, generationID, resolved, images, log); err != nil {
			log.Error().Err(err).Msg("generation not persisted")
			return nil, err
		}
	}

	log.Info().Int("images", len(images)).Bool("stored", settings.StoreGenerations).Msg("generation completed")
	return &types.GenerationResult{ID: generationID, Images: images}, nil
}

func (s *Service) invoke(ctx context.Context, client inference.Client, endpoint string, req *types.GenerationRequest) (*types.GenerationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.InferenceTimeout)
	defer cancel()
	return client.Invoke(ctx, endpoint, req)
}

// persist writes every artifact, then the index record. The index write is
// only issued once all object writes have succeeded.
func (s *Service) persist(ctx context.Context, sess *backend.Session, projectID, generationID string, input types.GenerationInput, images []types.GeneratedImage, log zerolog.Logger) error {
	keys := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.PersistWorkers)
	for i, img := range images {
		key := storage.ObjectKey(projectID, generationID, img.ID)
		keys[i] = key
		g.Go(func() error {
			data, err := base64.StdEncoding.DecodeString(img.Base64)
			if err != nil {
				return &apperrors.PersistenceError{Op: "decode artifact", Key: key, Err: err}
			}
			err = sess.Objects.PutObject(gctx, key, data, mimetype.Detect(data).String())
			metrics.RecordObjectOperation("put", err)
			if err != nil {
				return &apperrors.PersistenceError{Op: "put object", Key: key, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return &apperrors.PersistenceError{Op: "encode input", Err: fmt.Errorf("failed to marshal input: %w", err)}
	}
	rec := &storage.GenerationRecord{
		ProjectID:    projectID,
		GenerationID: generationID,
		Input:        raw,
		ObjectKeys:   keys,
	}
	if err := sess.Index.PutGeneration(ctx, rec); err != nil {
		return &apperrors.PersistenceError{Op: "put generation", Key: generationID, Err: err}
	}

	metrics.RecordPersisted()
	log.Debug().Int("objects", len(keys)).Msg("generation persisted")
	return nil
}
