package dynamodel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

func init() {
	// Register DynamoDB types with gob
	gob.Register(map[string]types.AttributeValue{})
	gob.Register(&types.AttributeValueMemberS{})
	gob.Register(&types.AttributeValueMemberN{})
	gob.Register(&types.AttributeValueMemberB{})
	gob.Register(&types.AttributeValueMemberSS{})
	gob.Register(&types.AttributeValueMemberNS{})
	gob.Register(&types.AttributeValueMemberBS{})
	gob.Register(&types.AttributeValueMemberM{})
	gob.Register(&types.AttributeValueMemberL{})
	gob.Register(&types.AttributeValueMemberNULL{})
	gob.Register(&types.AttributeValueMemberBOOL{})
}

// Paginator converts last evaluated keys into opaque string cursors for
// clients, and client cursors back into start keys to resume paging. It is
// an embedder-facing convenience; the iterator-returning query methods do
// not use it.
type Paginator interface {
	// PageCursor generates a cursor from the provided last evaluated key.
	// Returns an empty cursor when the key is nil or empty.
	PageCursor(ctx context.Context, lastKey Item) (string, error)
	// StartKey resolves a client cursor back into a start key. Returns a nil
	// key when the cursor is empty, unknown, or expired.
	StartKey(ctx context.Context, cursor string) (Item, error)
}

// cursorPartition is the partition that holds all stored cursor rows. The
// leading dashes keep it clear of any absolute path or entity id.
const cursorPartition = "--cursor--"

const (
	attrCursorStartKey = "start_key"
	attrCursorExpires  = "expires_at"
)

// TablePaginator implements Paginator by storing start keys in the same
// table, as internal cursor-typed rows with a bounded lifetime.
type TablePaginator struct {
	store *Store
}

// Paginator returns a Paginator that stores cursors through the store.
func (s *Store) Paginator() Paginator {
	return &TablePaginator{store: s}
}

// PageCursor gob-encodes the last evaluated key and stores it under a fresh
// cursor id.
func (p *TablePaginator) PageCursor(ctx context.Context, lastKey Item) (string, error) {
	if len(lastKey) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(lastKey); err != nil {
		return "", fmt.Errorf("failed to encode last key: %w", err)
	}

	cursor := uuid.NewString()
	expires := p.store.clock().Add(p.store.table.CursorTTL)

	err := p.store.CreateIfAbsent(ctx, &Entity{
		PK:   cursorPartition,
		SK:   cursor,
		Type: typeCursor,
		Attributes: map[string]string{
			attrCursorStartKey: base64.StdEncoding.EncodeToString(buf.Bytes()),
			attrCursorExpires:  expires.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to store page cursor: %w", err)
	}
	return cursor, nil
}

// StartKey retrieves the cursor row and decodes its stored start key.
// Unknown and expired cursors resolve to a nil key, restarting the page
// sequence from the beginning.
func (p *TablePaginator) StartKey(ctx context.Context, cursor string) (Item, error) {
	if cursor == "" {
		return nil, nil
	}

	entity, err := p.store.Get(ctx, cursorPartition, cursor)
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page cursor: %w", err)
	}

	// A cursor whose expiry cannot be parsed is as dead as an expired one.
	exp, err := time.Parse(time.RFC3339, entity.Attribute(attrCursorExpires))
	if err != nil || p.store.clock().After(exp) {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(entity.Attribute(attrCursorStartKey))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page cursor: %w", err)
	}

	var key Item
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&key); err != nil {
		return nil, fmt.Errorf("failed to decode last key: %w", err)
	}
	return key, nil
}

// QueryPartitionPage runs a single bounded page of a partition query,
// resuming from startKey when provided. It returns the page of entities and
// the last evaluated key, which is nil once the partition is exhausted.
// Combine with Paginator to hand opaque cursors to clients.
func (s *Store) QueryPartitionPage(ctx context.Context, pk string, limit int32, startKey Item) ([]Entity, Item, error) {
	keyCond := expression.Key(AttributeNamePK).Equal(expression.Value(pk))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	if startKey != nil {
		input.ExclusiveStartKey = startKey
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("query page failed: %w", err)
	}

	entities := make([]Entity, 0, len(out.Items))
	for _, item := range out.Items {
		entity, err := UnmarshalItem(item)
		if err != nil {
			return nil, nil, err
		}
		entities = append(entities, entity)
	}

	var lastKey Item
	if len(out.LastEvaluatedKey) > 0 {
		lastKey = out.LastEvaluatedKey
	}
	return entities, lastKey, nil
}
