// Package inference invokes Stable Diffusion endpoints. Each Invoke is
// exactly one attempt; callers own any retry policy.
package inference

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/pkg/types"
)

const (
	contentTypeJSON = "application/json"
	acceptPNGJSON   = "application/json;png"
)

type Client interface {
	Invoke(ctx context.Context, endpoint string, req *types.GenerationRequest) (*types.GenerationResponse, error)
}

// decodeResponse parses an endpoint body and turns a populated error field
// into an InferenceError.
func decodeResponse(endpoint string, body []byte) (*types.GenerationResponse, error) {
	var resp types.GenerationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &apperrors.InferenceError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if resp.Failed() {
		return nil, &apperrors.InferenceError{
			Endpoint: endpoint,
			ID:       resp.Error.ID,
			Name:     resp.Error.Name,
			Message:  resp.Error.Message,
		}
	}
	return &resp, nil
}
