package s3store

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/georgeshao/sdstudio/internal/storage"
)

// S3 accepts at most 1000 keys per DeleteObjects call.
const maxDeleteBatch = 1000

// API is the subset of the S3 client used here.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Store keeps generation artifacts in one S3 bucket.
type Store struct {
	client API
	bucket string
	log    zerolog.Logger
}

var _ storage.ObjectStore = (*Store)(nil)

func New(client API, bucket string, log zerolog.Logger) *Store {
	return &Store{
		client: client,
		bucket: strings.TrimSpace(bucket),
		log:    log.With().Str("component", "s3-store").Str("bucket", bucket).Logger(),
	}
}

func (s *Store) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (s *Store) GetObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return decodeLegacy(data, aws.ToString(out.ContentEncoding)), nil
}

// decodeLegacy unwraps objects the old plugin wrote as base64 text with a
// base64 content encoding. Anything else is returned as stored.
func decodeLegacy(data []byte, contentEncoding string) []byte {
	if !strings.EqualFold(contentEncoding, "base64") {
		return data
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return data
	}
	return decoded
}

// DeleteObjects issues one DeleteObjects call per 1000 keys and returns the
// number of keys S3 reported as deleted.
func (s *Store) DeleteObjects(ctx context.Context, keys []string) (int, error) {
	deleted := 0
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		ids := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(false)},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete objects: %w", err)
		}

		deleted += len(out.Deleted)
		for _, e := range out.Errors {
			s.log.Warn().
				Str("key", aws.ToString(e.Key)).
				Str("code", aws.ToString(e.Code)).
				Msg(aws.ToString(e.Message))
		}
	}
	return deleted, nil
}
