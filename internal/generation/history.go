package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/internal/metrics"
	"github.com/georgeshao/sdstudio/internal/storage"
	"github.com/georgeshao/sdstudio/pkg/types"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PageOptions struct {
	Limit int
	// After is the continuation token of the previous page.
	After string
}

// ListGenerations pages through the project's history and reads back every
// stored artifact. It returns an empty page when storage is disabled.
func (s *Service) ListGenerations(ctx context.Context, opts PageOptions) (*types.ListGenerationsResponse, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	resp := &types.ListGenerationsResponse{Generations: []types.StoredGeneration{}, Limit: limit}

	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.StoreGenerations {
		return resp, nil
	}
	if err := settings.RequireStorage(); err != nil {
		return nil, err
	}
	sess, err := s.backend.Open(ctx, settings)
	if err != nil {
		return nil, err
	}

	page, err := sess.Index.QueryGenerations(ctx, storage.GenerationQuery{
		ProjectID: settings.ProjectID,
		Limit:     limit,
		After:     opts.After,
	})
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "query generations", Err: err}
	}

	for i, rec := range page.Records {
		gen, err := s.hydrate(ctx, sess.Objects, rec)
		if err != nil {
			return nil, err
		}
		if i == len(page.Records)-1 && page.NextToken != "" {
			token := page.NextToken
			gen.NextToken = &token
		}
		resp.Generations = append(resp.Generations, *gen)
	}
	if page.NextToken != "" {
		resp.NextToken = &page.NextToken
	}
	return resp, nil
}

// hydrate reads a record's objects concurrently, keeping the stored order.
func (s *Service) hydrate(ctx context.Context, objects storage.ObjectStore, rec *storage.GenerationRecord) (*types.StoredGeneration, error) {
	gen := &types.StoredGeneration{
		ID:     rec.GenerationID,
		Images: make([]types.StoredImage, len(rec.ObjectKeys)),
	}
	if len(rec.Input) > 0 {
		if err := json.Unmarshal(rec.Input, &gen.Input); err != nil {
			return nil, &apperrors.PersistenceError{Op: "decode input", Key: rec.GenerationID, Err: err}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.PersistWorkers)
	for i, key := range rec.ObjectKeys {
		g.Go(func() error {
			data, err := objects.GetObject(gctx, key)
			metrics.RecordObjectOperation("get", err)
			if err != nil {
				return &apperrors.PersistenceError{Op: "get object", Key: key, Err: err}
			}
			gen.Images[i] = types.StoredImage{ID: key, Base64: base64.StdEncoding.EncodeToString(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return gen, nil
}

type DeleteRequest struct {
	// GenerationID may be empty, in which case it is taken from the first
	// object key.
	GenerationID string
	ObjectKeys   []string
}

type DeleteOutcome struct {
	GenerationID string
	Requested    int
	Deleted      int
	IndexRemoved bool
	Warning      *apperrors.PartialDeleteWarning
}

// DeleteGeneration removes a generation's objects, then its index record.
// The record is only removed when every object deletion was confirmed;
// otherwise the outcome carries a PartialDeleteWarning and the record stays.
func (s *Service) DeleteGeneration(ctx context.Context, req DeleteRequest) (*DeleteOutcome, error) {
	settings, err := s.resolver.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	keys, generationID, err := validateDelete(req, settings.ProjectID)
	if err != nil {
		return nil, err
	}
	out := &DeleteOutcome{GenerationID: generationID, Requested: len(keys)}
	if !settings.StoreGenerations {
		return out, nil
	}
	if err := settings.RequireStorage(); err != nil {
		return nil, err
	}
	sess, err := s.backend.Open(ctx, settings)
	if err != nil {
		return nil, err
	}

	log := s.log.With().Str("generation_id", generationID).Logger()

	deleted, err := sess.Objects.DeleteObjects(ctx, keys)
	metrics.RecordObjectOperation("delete", err)
	out.Deleted = deleted
	if err != nil {
		log.Error().Err(err).Int("deleted", deleted).Msg("object delete failed, index record kept")
		return nil, &apperrors.PersistenceError{Op: "delete objects", Key: generationID, Err: err}
	}

	if deleted != len(keys) {
		out.Warning = &apperrors.PartialDeleteWarning{
			GenerationID: generationID,
			Requested:    len(keys),
			Deleted:      deleted,
		}
		metrics.RecordPartialDelete()
		log.Warn().Err(out.Warning).Msg("partial delete")
		return out, nil
	}

	if err := sess.Index.DeleteGeneration(ctx, settings.ProjectID, generationID); err != nil {
		return nil, &apperrors.PersistenceError{Op: "delete generation", Key: generationID, Err: err}
	}
	out.IndexRemoved = true
	log.Info().Int("objects", deleted).Msg("generation deleted")
	return out, nil
}

// validateDelete dedupes the keys and checks they all belong to one
// generation of the current project.
func validateDelete(req DeleteRequest, projectID string) ([]string, string, error) {
	if len(req.ObjectKeys) == 0 {
		return nil, "", &apperrors.ValidationError{Field: "objectKeys", Message: "at least one key is required"}
	}

	generationID := req.GenerationID
	seen := make(map[string]bool, len(req.ObjectKeys))
	keys := make([]string, 0, len(req.ObjectKeys))
	for _, key := range req.ObjectKeys {
		parts, err := storage.ParseObjectKey(key)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidObjectKey) {
				return nil, "", &apperrors.ValidationError{Field: "objectKeys", Message: err.Error()}
			}
			return nil, "", err
		}
		if generationID == "" {
			generationID = parts.GenerationID
		}
		if parts.GenerationID != generationID {
			return nil, "", &apperrors.ValidationError{
				Field:   "objectKeys",
				Message: fmt.Sprintf("key %q is not part of generation %q", key, generationID),
			}
		}
		if projectID != "" && parts.ProjectID != projectID {
			return nil, "", &apperrors.ValidationError{
				Field:   "objectKeys",
				Message: fmt.Sprintf("key %q is not part of project %q", key, projectID),
			}
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, generationID, nil
}
