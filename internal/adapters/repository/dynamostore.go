package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/okian/matchpoint/pkg/metrics"
)

// Default table name, matching the provisioning default.
const defaultTableName = "TournamentTable"

// DynamoStore implements Store on a single DynamoDB table with a
// PK/SK composite key schema.
type DynamoStore struct {
	client *dynamodb.Client
	table  string

	region   string
	endpoint string
}

// NewDynamoStore creates a DynamoStore, resolving AWS configuration from
// the environment unless overridden by options.
func NewDynamoStore(ctx context.Context, opts ...DynamoOption) (*DynamoStore, error) {
	s := &DynamoStore{table: defaultTableName}
	for _, opt := range opts {
		opt(s)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if s.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(s.region))
	}
	if s.endpoint != "" {
		// Local DynamoDB accepts any credentials; static ones keep the SDK
		// from searching the environment.
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s.client = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
		}
	})
	return s, nil
}

// Client exposes the underlying DynamoDB client for provisioning.
func (s *DynamoStore) Client() *dynamodb.Client {
	return s.client
}

// Table returns the configured table name.
func (s *DynamoStore) Table() string {
	return s.table
}

// Get fetches one item by key.
func (s *DynamoStore) Get(ctx context.Context, key Key) (Item, error) {
	defer observe("get", time.Now())
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       marshalKey(key),
	})
	if err != nil {
		metrics.RecordStoreOpError("get")
		return nil, fmt.Errorf("get %s/%s: %w", key.PK, key.SK, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", key.PK, key.SK, ErrNotFound)
	}
	var it Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", key.PK, key.SK, err)
	}
	return it, nil
}

// Put fully upserts an item.
func (s *DynamoStore) Put(ctx context.Context, it Item) error {
	defer observe("put", time.Now())
	av, err := attributevalue.MarshalMap(map[string]any(it))
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		metrics.RecordStoreOpError("put")
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Update applies a SET/ADD expression, passed through to DynamoDB.
func (s *DynamoStore) Update(ctx context.Context, key Key, expr string, names map[string]string, values map[string]any) error {
	defer observe("update", time.Now())
	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              marshalKey(key),
		UpdateExpression: aws.String(expr),
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	if len(values) > 0 {
		av, err := attributevalue.MarshalMap(values)
		if err != nil {
			return fmt.Errorf("encode update values: %w", err)
		}
		input.ExpressionAttributeValues = av
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		metrics.RecordStoreOpError("update")
		return fmt.Errorf("update %s/%s: %w", key.PK, key.SK, err)
	}
	return nil
}

// Delete removes an item by key.
func (s *DynamoStore) Delete(ctx context.Context, key Key) error {
	defer observe("delete", time.Now())
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       marshalKey(key),
	}); err != nil {
		metrics.RecordStoreOpError("delete")
		return fmt.Errorf("delete %s/%s: %w", key.PK, key.SK, err)
	}
	return nil
}

// QueryByTypePrefix returns pk's items whose sort key starts with "<prefix>#".
func (s *DynamoStore) QueryByTypePrefix(ctx context.Context, pk, prefix string) ([]Item, error) {
	cond := expression.Key(AttrPK).Equal(expression.Value(pk)).
		And(expression.Key(AttrSK).BeginsWith(prefix + "#"))
	return s.queryItems(ctx, cond)
}

// QueryAll returns every item under pk.
func (s *DynamoStore) QueryAll(ctx context.Context, pk string) ([]Item, error) {
	return s.queryItems(ctx, expression.Key(AttrPK).Equal(expression.Value(pk)))
}

func (s *DynamoStore) queryItems(ctx context.Context, cond expression.KeyConditionBuilder) ([]Item, error) {
	defer observe("query", time.Now())
	built, err := expression.NewBuilder().WithKeyCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}

	var out []Item
	pager := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    built.KeyCondition(),
		ExpressionAttributeNames:  built.Names(),
		ExpressionAttributeValues: built.Values(),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			metrics.RecordStoreOpError("query")
			return nil, fmt.Errorf("query items: %w", err)
		}
		for _, raw := range page.Items {
			var it Item
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, fmt.Errorf("decode query item: %w", err)
			}
			out = append(out, it)
		}
	}
	return out, nil
}

func marshalKey(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}
