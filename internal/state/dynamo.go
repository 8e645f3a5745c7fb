package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"heaterwatch/internal/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// dynamoItem is the table layout: a string partition key "id", the mode, and
// an RFC 3339 timestamp.
type dynamoItem struct {
	ID        string `dynamodbav:"id"`
	Mode      string `dynamodbav:"mode"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// DynamoStoreConfig configures a DynamoStore.
type DynamoStoreConfig struct {
	TableName string
	RecordID  string
	Logger    *slog.Logger
}

// DynamoStore keeps the mode record in a DynamoDB table. Reads are strongly
// consistent so a run never compares against a stale mode.
type DynamoStore struct {
	api    DynamoAPI
	table  string
	id     string
	logger *slog.Logger
}

// NewDynamoStore creates a DynamoStore.
func NewDynamoStore(api DynamoAPI, cfg DynamoStoreConfig) *DynamoStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := cfg.RecordID
	if id == "" {
		id = DefaultRecordID
	}
	return &DynamoStore{api: api, table: cfg.TableName, id: id, logger: logger}
}

// Get returns the stored record, or nil when the item does not exist.
func (s *DynamoStore) Get(ctx context.Context) (*Record, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": s.id})
	if err != nil {
		return nil, types.NewStateStoreError("failed to marshal state key", err)
	}

	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, types.NewStateStoreError("failed to read state record", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, types.NewAppError(types.ErrCodeStateCorrupt, "state record has unexpected shape", err)
	}

	var updatedAt time.Time
	if item.UpdatedAt != "" {
		updatedAt, err = time.Parse(time.RFC3339, item.UpdatedAt)
		if err != nil {
			s.logger.WarnContext(ctx, "state record has unparseable updated_at",
				"table", s.table,
				"updated_at", item.UpdatedAt,
			)
		}
	}
	return decodeRecord(item.Mode, updatedAt)
}

// Put overwrites the record with mode.
func (s *DynamoStore) Put(ctx context.Context, mode types.Mode, at time.Time) error {
	if !mode.Valid() {
		return types.NewStateStoreError(fmt.Sprintf("refusing to persist invalid mode %q", mode), nil)
	}

	item, err := attributevalue.MarshalMap(dynamoItem{
		ID:        s.id,
		Mode:      string(mode),
		UpdatedAt: at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return types.NewStateStoreError("failed to marshal state record", err)
	}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return types.NewStateStoreError("failed to write state record", err)
	}

	s.logger.InfoContext(ctx, "state record written",
		"table", s.table,
		"mode", string(mode),
	)
	return nil
}

// Probe checks that the table is reachable. Used by the health endpoint.
func (s *DynamoStore) Probe(ctx context.Context) error {
	_, err := s.Get(ctx)
	return err
}
