package dynamodel

import (
	"context"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DynamoDBClient is the slice of the DynamoDB API consumed by the store.
// Declared as an interface for easier testing and connection management.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store is a thin typed accessor over the key-value store. It owns no
// business rules; every operation is a single point request or a single
// range query, and conditional writes report their outcome as result values
// rather than control-flow exceptions.
//
// Store issues no retries itself; transient store errors propagate unchanged
// so the embedder can apply its own retry policy (see Retry).
type Store struct {
	client       DynamoDBClient
	table        *Table
	logger       *zap.Logger
	clock        Clock
	scanSegments int
}

// NewStore creates a Store bound to the provided client and table.
func NewStore(client DynamoDBClient, table *Table, opts ...func(*Store)) *Store {
	s := &Store{
		client:       client,
		table:        table,
		logger:       zap.NewNop(),
		clock:        DefaultClock,
		scanSegments: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger configures the store to emit debug logs through the provided logger.
func WithLogger(logger *zap.Logger) func(*Store) {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(clock Clock) func(*Store) {
	return func(s *Store) { s.clock = clock }
}

// WithScanSegments sets the number of parallel segments used by ScanAll.
func WithScanSegments(n int) func(*Store) {
	return func(s *Store) {
		if n > 0 {
			s.scanSegments = n
		}
	}
}

// Table returns the table configuration the store is bound to.
func (s *Store) Table() *Table { return s.table }

// Get retrieves the entity stored under the exact (pk, sk) pair, or
// ErrItemNotFound when the key is unoccupied.
func (s *Store) Get(ctx context.Context, pk, sk string) (*Entity, error) {
	s.logger.Debug("get item", zap.String("pk", pk), zap.String("sk", sk))

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table.TableName),
		Key:       Key(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	entity, err := UnmarshalItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// CreateIfAbsent atomically writes the entity if and only if no entity
// currently occupies its key pair. Returns ErrAlreadyExists when the key is
// taken; the condition is evaluated and applied atomically by the store, so
// exactly one of two concurrent creates on the same key succeeds.
func (s *Store) CreateIfAbsent(ctx context.Context, e *Entity) error {
	s.logger.Debug("create item",
		zap.String("pk", e.PK),
		zap.String("sk", e.SK),
		zap.String("type", string(e.Type)),
	)

	if e.Attributes == nil {
		e.Attributes = map[string]string{}
	}

	item, err := MarshalItem(e)
	if err != nil {
		return err
	}

	cond := expression.AttributeNotExists(expression.Name(AttributeNamePK)).
		And(expression.AttributeNotExists(expression.Name(AttributeNameSK)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.table.TableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if conditionFailed(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// UpdateAttributeIfExists sets a single named attribute on an existing
// entity. Returns ErrItemNotFound when no entity occupies the key pair; the
// update never creates a row. This is the only in-place mutation the model
// permits.
func (s *Store) UpdateAttributeIfExists(ctx context.Context, pk, sk, name, value string) error {
	s.logger.Debug("update attribute",
		zap.String("pk", pk),
		zap.String("sk", sk),
		zap.String("attribute", name),
	)

	update := expression.Set(
		expression.Name(AttributeNameAttributes+"."+name),
		expression.Value(value),
	)
	cond := expression.AttributeExists(expression.Name(AttributeNamePK)).
		And(expression.AttributeExists(expression.Name(AttributeNameSK)))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table.TableName),
		Key:                       Key(pk, sk),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if conditionFailed(err) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// DeleteIfExists removes the entity under the key pair. Returns
// ErrItemNotFound when the key was already unoccupied.
func (s *Store) DeleteIfExists(ctx context.Context, pk, sk string) error {
	s.logger.Debug("delete item", zap.String("pk", pk), zap.String("sk", sk))

	cond := expression.AttributeExists(expression.Name(AttributeNamePK)).
		And(expression.AttributeExists(expression.Name(AttributeNameSK)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.table.TableName),
		Key:                       Key(pk, sk),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if conditionFailed(err) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// QueryPartition returns all entities sharing the partition key, ordered by
// sort key ascending. The sequence is lazy and restartable: each range over
// it re-issues the query from the beginning, and the store may page
// internally across multiple round trips.
func (s *Store) QueryPartition(ctx context.Context, pk string) iter.Seq2[Entity, error] {
	keyCond := expression.Key(AttributeNamePK).Equal(expression.Value(pk))
	return s.query(ctx, keyCond, "")
}

// QueryLookup returns all entities whose sort key equals sk, via the lookup
// secondary index. The index converges with primary writes asynchronously;
// callers must tolerate a short propagation delay after writes.
func (s *Store) QueryLookup(ctx context.Context, sk string) iter.Seq2[Entity, error] {
	keyCond := expression.Key(AttributeNameSK).Equal(expression.Value(sk))
	return s.query(ctx, keyCond, s.table.LookupIndexName)
}

func (s *Store) query(ctx context.Context, keyCond expression.KeyConditionBuilder, indexName string) iter.Seq2[Entity, error] {
	return func(yield func(Entity, error) bool) {
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
		if err != nil {
			yield(Entity{}, fmt.Errorf("failed to build expression: %w", err))
			return
		}

		input := &dynamodb.QueryInput{
			TableName:                 aws.String(s.table.TableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(true),
		}
		if indexName != "" {
			input.IndexName = aws.String(indexName)
		}

		paginator := dynamodb.NewQueryPaginator(s.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(Entity{}, fmt.Errorf("query page failed: %w", err))
				return
			}
			for _, item := range page.Items {
				entity, err := UnmarshalItem(item)
				if !yield(entity, err) {
					return
				}
			}
		}
	}
}

// ScanAll returns every entity in the table, unordered, fanning out across
// parallel scan segments. It exists for diagnostics and dumps only and is
// deliberately kept out of the production query path.
func (s *Store) ScanAll(ctx context.Context) iter.Seq2[Entity, error] {
	return func(yield func(Entity, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		out := make(chan Entity)
		g, gctx := errgroup.WithContext(ctx)

		for segment := range s.scanSegments {
			g.Go(func() error {
				input := &dynamodb.ScanInput{
					TableName: aws.String(s.table.TableName),
				}
				if s.scanSegments > 1 {
					input.Segment = aws.Int32(int32(segment))
					input.TotalSegments = aws.Int32(int32(s.scanSegments))
				}

				paginator := dynamodb.NewScanPaginator(s.client, input)
				for paginator.HasMorePages() {
					page, err := paginator.NextPage(gctx)
					if err != nil {
						return fmt.Errorf("scan segment %d: %w", segment, err)
					}
					for _, item := range page.Items {
						entity, err := UnmarshalItem(item)
						if err != nil {
							return err
						}
						select {
						case out <- entity:
						case <-gctx.Done():
							return gctx.Err()
						}
					}
				}
				return nil
			})
		}

		done := make(chan error, 1)
		go func() {
			done <- g.Wait()
			close(out)
		}()

		for {
			select {
			case entity, ok := <-out:
				if !ok {
					if err := <-done; err != nil && ctx.Err() == nil {
						yield(Entity{}, err)
					}
					return
				}
				if !yield(entity, nil) {
					return
				}
			case <-ctx.Done():
				yield(Entity{}, ctx.Err())
				return
			}
		}
	}
}
