package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/georgeshao/sdstudio/internal/apperrors"
	"github.com/georgeshao/sdstudio/internal/backend"
	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/internal/storage"
	"github.com/georgeshao/sdstudio/pkg/types"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	// deleteShort makes DeleteObjects confirm this many fewer keys.
	deleteShort int
	deleteCalls int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) GetObject(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (f *fakeObjects) DeleteObjects(ctx context.Context, keys []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	confirmed := len(keys) - f.deleteShort
	for _, key := range keys[:confirmed] {
		delete(f.objects, key)
	}
	return confirmed, nil
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakeIndex struct {
	objects *fakeObjects
	records map[string]*storage.GenerationRecord
	queries int
	// set when PutGeneration saw a key with no stored object
	danglingKey string
	putErr      error
	// objects stored when PutGeneration was last called
	objectsAtPut int
}

func newFakeIndex(objects *fakeObjects) *fakeIndex {
	return &fakeIndex{objects: objects, records: map[string]*storage.GenerationRecord{}}
}

func (f *fakeIndex) PutGeneration(ctx context.Context, rec *storage.GenerationRecord) error {
	f.objectsAtPut = f.objects.count()
	for _, key := range rec.ObjectKeys {
		if _, err := f.objects.GetObject(ctx, key); err != nil {
			f.danglingKey = key
		}
	}
	if f.putErr != nil {
		return f.putErr
	}
	f.records[rec.ProjectID+"|"+rec.GenerationID] = rec
	return nil
}

func (f *fakeIndex) QueryGenerations(ctx context.Context, q storage.GenerationQuery) (*storage.GenerationPage, error) {
	f.queries++
	var records []*storage.GenerationRecord
	for _, rec := range f.records {
		if rec.ProjectID == q.ProjectID && rec.GenerationID > q.After {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].GenerationID < records[j].GenerationID })
	if len(records) > q.Limit+1 {
		records = records[:q.Limit+1]
	}
	return storage.TrimPage(records, q.Limit), nil
}

func (f *fakeIndex) DeleteGeneration(ctx context.Context, projectID, generationID string) error {
	delete(f.records, projectID+"|"+generationID)
	return nil
}

func (f *fakeIndex) has(projectID, generationID string) bool {
	_, ok := f.records[projectID+"|"+generationID]
	return ok
}

type fakeInference struct {
	requests []*types.GenerationRequest
	// failAt is the 1-based invocation that fails; 0 never fails.
	failAt       int
	finishReason string
}

func (f *fakeInference) Invoke(ctx context.Context, endpoint string, req *types.GenerationRequest) (*types.GenerationResponse, error) {
	f.requests = append(f.requests, req)
	if f.failAt == len(f.requests) {
		return nil, &apperrors.InferenceError{Endpoint: endpoint, ID: "e1", Name: "server_error", Message: "boom"}
	}
	reason := f.finishReason
	if reason == "" {
		reason = types.FinishReasonSuccess
	}
	return &types.GenerationResponse{
		Result: "success",
		Artifacts: []types.Artifact{{
			Seed:         req.Seed,
			Base64:       base64.StdEncoding.EncodeToString(pngBytes),
			FinishReason: reason,
		}},
	}, nil
}

func (f *fakeInference) seeds() []int64 {
	out := make([]int64, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Seed
	}
	return out
}

type fakeIdentity struct {
	id  string
	err error
}

func (f fakeIdentity) IdentityID(ctx context.Context) (string, error) {
	return f.id, f.err
}

type fakeBackend struct {
	objects   *fakeObjects
	index     *fakeIndex
	inference *fakeInference
	identity  backend.IdentitySource
	checkErr  error
	opens     int
}

func newFakeBackend() *fakeBackend {
	objects := newFakeObjects()
	return &fakeBackend{
		objects:   objects,
		index:     newFakeIndex(objects),
		inference: &fakeInference{},
	}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Check(s config.Settings) error { return f.checkErr }

func (f *fakeBackend) Open(ctx context.Context, s config.Settings) (*backend.Session, error) {
	f.opens++
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return &backend.Session{
		Objects:   f.objects,
		Index:     f.index,
		Inference: f.inference,
		Identity:  f.identity,
	}, nil
}

var (
	errPut      = errors.New("bucket unavailable")
	errIndexPut = errors.New("table unavailable")
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%02d", prefix, n)
	}
}
