package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowgraph-backend/domain/core/aggregates"
	apperrors "flowgraph-backend/pkg/errors"
)

const graphKeyPrefix = "GRAPH#"

// GraphStore is a DynamoDB-backed keyed store of designer graphs. The
// graph document is stored as a JSON attribute so the table schema stays
// independent of the graph shape.
//
// Mutation exclusivity is process-local: Mutate serializes against other
// Mutate calls in the same process via a per-graph mutex, then persists
// with a read-modify-write. Running multiple writer processes against
// the same table needs external coordination.
type GraphStore struct {
	client *awsdynamodb.Client
	table  string
	locks  sync.Map // graph ID -> *sync.Mutex
	logger *zap.Logger
}

type graphRecord struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	GraphID   string `dynamodbav:"GraphID"`
	Name      string `dynamodbav:"Name"`
	AutoStart bool   `dynamodbav:"AutoStart"`
	BaseDir   string `dynamodbav:"BaseDir,omitempty"`
	Document  string `dynamodbav:"Document"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// NewGraphStore creates a DynamoDB graph store.
func NewGraphStore(client *awsdynamodb.Client, table string, logger *zap.Logger) *GraphStore {
	return &GraphStore{
		client: client,
		table:  table,
		logger: logger,
	}
}

// Get retrieves the graph entry by ID.
func (s *GraphStore) Get(ctx context.Context, id uuid.UUID) (*aggregates.GraphInfo, error) {
	result, err := s.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       graphKey(id),
	})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read graph from DynamoDB").WithCause(err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError("graph")
	}
	return unmarshalGraphRecord(result.Item)
}

// List retrieves all graph entries, ordered by name.
func (s *GraphStore) List(ctx context.Context) ([]*aggregates.GraphInfo, error) {
	var infos []*aggregates.GraphInfo
	paginator := awsdynamodb.NewScanPaginator(s.client, &awsdynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: graphKeyPrefix},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewExternalError("failed to list graphs from DynamoDB").WithCause(err)
		}
		for _, item := range page.Items {
			info, err := unmarshalGraphRecord(item)
			if err != nil {
				s.logger.Warn("Skipping unreadable graph record", zap.Error(err))
				continue
			}
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Put registers or replaces a graph entry.
func (s *GraphStore) Put(ctx context.Context, info *aggregates.GraphInfo) error {
	item, err := marshalGraphRecord(info)
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return apperrors.NewExternalError("failed to write graph to DynamoDB").WithCause(err)
	}
	return nil
}

// Mutate runs fn against the stored graph entry under the process-local
// writer lock for that graph, then persists the result. When fn fails,
// nothing is written back.
func (s *GraphStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*aggregates.GraphInfo) error) error {
	lockAny, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	info, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(info); err != nil {
		return err
	}
	return s.Put(ctx, info)
}

func graphKey(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: graphKeyPrefix + id.String()},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func marshalGraphRecord(info *aggregates.GraphInfo) (map[string]types.AttributeValue, error) {
	document, err := json.Marshal(info.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph document: %w", err)
	}
	record := graphRecord{
		PK:        graphKeyPrefix + info.ID.String(),
		SK:        "METADATA",
		GraphID:   info.ID.String(),
		Name:      info.Name,
		AutoStart: info.AutoStart,
		BaseDir:   info.BaseDir,
		Document:  string(document),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph record: %w", err)
	}
	return item, nil
}

func unmarshalGraphRecord(item map[string]types.AttributeValue) (*aggregates.GraphInfo, error) {
	var record graphRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph record: %w", err)
	}
	id, err := uuid.Parse(record.GraphID)
	if err != nil {
		return nil, fmt.Errorf("graph record has invalid ID %q: %w", record.GraphID, err)
	}
	graph := &aggregates.Graph{}
	if record.Document != "" {
		if err := json.Unmarshal([]byte(record.Document), graph); err != nil {
			return nil, fmt.Errorf("failed to decode graph document: %w", err)
		}
	}
	return &aggregates.GraphInfo{
		ID:        id,
		Name:      record.Name,
		AutoStart: record.AutoStart,
		BaseDir:   record.BaseDir,
		Graph:     graph,
	}, nil
}
