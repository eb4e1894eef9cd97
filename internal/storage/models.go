package storage

import (
	"encoding/json"
	"fmt"
)

// GenerationRecord is one index entry. Input is the serialized resolved
// input; ObjectKeys are in artifact order.
type GenerationRecord struct {
	ProjectID    string
	GenerationID string
	Input        json.RawMessage
	ObjectKeys   []string
}

type GenerationQuery struct {
	ProjectID string
	Limit     int
	After     string
}

// GenerationPage is one page of records. NextToken is empty on the last page.
type GenerationPage struct {
	Records   []*GenerationRecord
	NextToken string
}

// EncodeKeys serializes object keys for the s3_object_keys attribute.
func EncodeKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	b, err := json.Marshal(keys)
	if err != nil {
		return "", fmt.Errorf("failed to marshal object keys: %w", err)
	}
	return string(b), nil
}

func DecodeKeys(raw string) ([]string, error) {
	var keys []string
	if raw == "" {
		return keys, nil
	}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("failed to unmarshal object keys: %w", err)
	}
	return keys, nil
}

// TrimPage cuts records fetched with limit+1 down to limit and sets the
// continuation token when a further record exists.
func TrimPage(records []*GenerationRecord, limit int) *GenerationPage {
	page := &GenerationPage{Records: records}
	if limit > 0 && len(records) > limit {
		page.Records = records[:limit]
		page.NextToken = page.Records[limit-1].GenerationID
	}
	return page
}
