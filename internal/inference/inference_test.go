package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/pkg/types"
)

type fakeSageMaker struct {
	inputs []*sagemakerruntime.InvokeEndpointInput
	body   []byte
	err    error
}

func (f *fakeSageMaker) InvokeEndpoint(ctx context.Context, in *sagemakerruntime.InvokeEndpointInput, _ ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sagemakerruntime.InvokeEndpointOutput{Body: f.body}, nil
}

func sampleRequest() *types.GenerationRequest {
	return &types.GenerationRequest{
		Height:      1024,
		Width:       1024,
		TextPrompts: []types.TextPrompt{{Text: "a lighthouse", Weight: types.Float64Ptr(1)}},
		CFGScale:    7,
		Sampler:     "DDIM",
		Samples:     1,
		Seed:        42,
		Steps:       50,
		StylePreset: "enhance",
	}
}

func TestSageMakerInvoke(t *testing.T) {
	fake := &fakeSageMaker{body: []byte(`{"result":"success","artifacts":[{"seed":42,"base64":"aGk=","finishReason":"SUCCESS"}]}`)}
	client := NewSageMaker(fake, zerolog.Nop())

	resp, err := client.Invoke(context.Background(), "sdxl-endpoint", sampleRequest())
	require.NoError(t, err)
	require.Len(t, resp.Artifacts, 1)
	assert.Equal(t, int64(42), resp.Artifacts[0].Seed)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "sdxl-endpoint", aws.ToString(in.EndpointName))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	assert.Equal(t, "application/json;png", aws.ToString(in.Accept))
	assert.NotEmpty(t, aws.ToString(in.InferenceId))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(in.Body, &sent))
	assert.EqualValues(t, 1, sent["samples"])
	assert.EqualValues(t, 42, sent["seed"])
	assert.Equal(t, "enhance", sent["style_preset"])
	assert.NotContains(t, sent, "init_image")
}

func TestSageMakerFreshInferenceIDs(t *testing.T) {
	fake := &fakeSageMaker{body: []byte(`{"artifacts":[]}`)}
	client := NewSageMaker(fake, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := client.Invoke(context.Background(), "e", sampleRequest())
		require.NoError(t, err)
	}
	assert.NotEqual(t, aws.ToString(fake.inputs[0].InferenceId), aws.ToString(fake.inputs[1].InferenceId))
}

func TestSageMakerErrorField(t *testing.T) {
	fake := &fakeSageMaker{body: []byte(`{"artifacts":[],"error":{"id":"e-1","name":"invalid_prompts","message":"prompt rejected"}}`)}
	client := NewSageMaker(fake, zerolog.Nop())

	_, err := client.Invoke(context.Background(), "e", sampleRequest())
	var ie *apperrors.InferenceError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "e-1", ie.ID)
	assert.Equal(t, "invalid_prompts", ie.Name)
	assert.Equal(t, "prompt rejected", ie.Message)
}

func TestSageMakerTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	client := NewSageMaker(&fakeSageMaker{err: cause}, zerolog.Nop())

	_, err := client.Invoke(context.Background(), "e", sampleRequest())
	assert.True(t, apperrors.IsInferenceError(err))
	assert.ErrorIs(t, err, cause)
}

func TestHTTPInvoke(t *testing.T) {
	var gotID string
	var got types.GenerationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(headerInferenceID)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"success","artifacts":[{"seed":7,"base64":"aGk=","finishReason":"CONTENT_FILTERED"}]}`))
	}))
	defer srv.Close()

	client := NewHTTP(5 * time.Second)
	resp, err := client.Invoke(context.Background(), srv.URL+"/generate", sampleRequest())
	require.NoError(t, err)
	require.Len(t, resp.Artifacts, 1)
	assert.Equal(t, types.FinishReasonContentFiltered, resp.Artifacts[0].FinishReason)
	assert.NotEmpty(t, gotID)
	assert.Equal(t, int64(42), got.Seed)
}

func TestHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"id":"x","name":"bad_request","message":"steps too high"}}`))
	}))
	defer srv.Close()

	_, err := NewHTTP(5*time.Second).Invoke(context.Background(), srv.URL, sampleRequest())
	var ie *apperrors.InferenceError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "bad_request", ie.Name)
}

func TestHTTPPlainErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP(5*time.Second).Invoke(context.Background(), srv.URL, sampleRequest())
	var ie *apperrors.InferenceError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Message, "overloaded")
}
