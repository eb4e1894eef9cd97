package inference

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/internal/metrics"
	"github.com/georgeshao/sdstudio/pkg/types"
)

const headerInferenceID = "X-Inference-Id"

// HTTP invokes self-hosted endpoints. The endpoint is the full URL of the
// generation route.
type HTTP struct {
	client *resty.Client
}

var _ Client = (*HTTP)(nil)

func NewHTTP(timeout time.Duration) *HTTP {
	client := resty.New().
		SetHeader("Content-Type", contentTypeJSON).
		SetHeader("Accept", acceptPNGJSON).
		SetTimeout(timeout)
	return &HTTP{client: client}
}

func (h *HTTP) Invoke(ctx context.Context, endpoint string, req *types.GenerationRequest) (out *types.GenerationResponse, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordInference(endpoint, err, time.Since(start).Seconds())
	}()

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader(headerInferenceID, uuid.New().String()).
		SetBody(req).
		Post(endpoint)
	if err != nil {
		return nil, &apperrors.InferenceError{Endpoint: endpoint, Err: err}
	}

	out, decodeErr := decodeResponse(endpoint, resp.Body())
	if resp.IsError() {
		// Prefer the endpoint's own error payload when it sent one.
		var ie *apperrors.InferenceError
		if errors.As(decodeErr, &ie) && ie.Err == nil {
			return nil, ie
		}
		return nil, &apperrors.InferenceError{
			Endpoint: endpoint,
			Name:     resp.Status(),
			Message:  string(resp.Body()),
		}
	}
	return out, decodeErr
}
