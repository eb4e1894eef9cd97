package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/internal/metrics"
	"github.com/georgeshao/sdstudio/pkg/types"
)

// SageMakerAPI is the subset of the SageMaker runtime client used here.
type SageMakerAPI interface {
	InvokeEndpoint(ctx context.Context, in *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// SageMaker invokes hosted SageMaker endpoints by name.
type SageMaker struct {
	client SageMakerAPI
	log    zerolog.Logger
}

var _ Client = (*SageMaker)(nil)

func NewSageMaker(client SageMakerAPI, log zerolog.Logger) *SageMaker {
	return &SageMaker{
		client: client,
		log:    log.With().Str("component", "sagemaker").Logger(),
	}
}

func (s *SageMaker) Invoke(ctx context.Context, endpoint string, req *types.GenerationRequest) (out *types.GenerationResponse, err error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	inferenceID := uuid.New().String()
	start := time.Now()
	defer func() {
		metrics.RecordInference(endpoint, err, time.Since(start).Seconds())
	}()

	resp, err := s.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpoint),
		Body:         body,
		ContentType:  aws.String(contentTypeJSON),
		Accept:       aws.String(acceptPNGJSON),
		InferenceId:  aws.String(inferenceID),
	})
	if err != nil {
		return nil, &apperrors.InferenceError{Endpoint: endpoint, Err: err}
	}

	s.log.Debug().
		Str("endpoint", endpoint).
		Str("inference_id", inferenceID).
		Int64("seed", req.Seed).
		Dur("latency", time.Since(start)).
		Msg("endpoint invoked")

	return decodeResponse(endpoint, resp.Body)
}
