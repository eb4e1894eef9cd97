package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/georgeshao/sdstudio/internal/storage"
)

// API is the subset of the DynamoDB client used here.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// item is the table layout: project_id is the partition key and
// generation_id the sort key. Both JSON attributes are stored as strings.
type item struct {
	ProjectID    string `dynamodbav:"project_id"`
	GenerationID string `dynamodbav:"generation_id"`
	InputObj     string `dynamodbav:"input_obj"`
	ObjectKeys   string `dynamodbav:"s3_object_keys"`
}

type itemKey struct {
	ProjectID    string `dynamodbav:"project_id"`
	GenerationID string `dynamodbav:"generation_id"`
}

// Store is a storage.IndexStore over one DynamoDB table.
type Store struct {
	client API
	table  string
}

var _ storage.IndexStore = (*Store)(nil)

func New(client API, table string) *Store {
	return &Store{client: client, table: table}
}

func (s *Store) PutGeneration(ctx context.Context, rec *storage.GenerationRecord) error {
	keys, err := storage.EncodeKeys(rec.ObjectKeys)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(item{
		ProjectID:    rec.ProjectID,
		GenerationID: rec.GenerationID,
		InputObj:     string(rec.Input),
		ObjectKeys:   keys,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal generation: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to put generation: %w", err)
	}
	return nil
}

func (s *Store) QueryGenerations(ctx context.Context, q storage.GenerationQuery) (*storage.GenerationPage, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("project_id = :projectId"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":projectId": &ddbtypes.AttributeValueMemberS{Value: q.ProjectID},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if q.Limit > 0 {
		// One extra item tells us whether another page exists.
		in.Limit = aws.Int32(int32(q.Limit + 1))
	}
	if q.After != "" {
		start, err := attributevalue.MarshalMap(itemKey{ProjectID: q.ProjectID, GenerationID: q.After})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal start key: %w", err)
		}
		in.ExclusiveStartKey = start
	}

	out, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}

	var items []item
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generations: %w", err)
	}

	records := make([]*storage.GenerationRecord, 0, len(items))
	for _, it := range items {
		keys, err := storage.DecodeKeys(it.ObjectKeys)
		if err != nil {
			return nil, err
		}
		records = append(records, &storage.GenerationRecord{
			ProjectID:    it.ProjectID,
			GenerationID: it.GenerationID,
			Input:        []byte(it.InputObj),
			ObjectKeys:   keys,
		})
	}

	page := storage.TrimPage(records, q.Limit)
	// The response was cut short by the 1MB limit rather than by Limit.
	if page.NextToken == "" && len(out.LastEvaluatedKey) > 0 && len(page.Records) > 0 && (q.Limit <= 0 || len(records) <= q.Limit) {
		page.NextToken = page.Records[len(page.Records)-1].GenerationID
	}
	return page, nil
}

func (s *Store) DeleteGeneration(ctx context.Context, projectID, generationID string) error {
	key, err := attributevalue.MarshalMap(itemKey{ProjectID: projectID, GenerationID: generationID})
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	}); err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}
	return nil
}
