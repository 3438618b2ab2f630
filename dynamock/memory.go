package dynamock

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
)

// Server is an in-memory stand-in for a single DynamoDB table with the
// dynamodel schema: a (pk, sk) primary key and a lookup GSI keyed by sk.
//
// It implements the conditional write and range read contract the store
// relies on: conditional put/update/delete evaluated atomically under one
// lock, queries ordered by sort key, Limit/ExclusiveStartKey pagination, and
// segmented scans. It does not parse arbitrary condition expressions; it
// evaluates exactly the existence conditions this library emits, which is
// all the store ever sends.
type Server struct {
	mu    sync.Mutex
	items map[string]dynamodel.Item
}

var _ dynamodel.DynamoDBClient = (*Server)(nil)

// NewServer creates an empty in-memory table.
func NewServer() *Server {
	return &Server{items: make(map[string]dynamodel.Item)}
}

const keySep = "\x00"

func itemKey(item dynamodel.Item) (string, bool) {
	pk, pkOK := stringAttr(item, dynamodel.AttributeNamePK)
	sk, skOK := stringAttr(item, dynamodel.AttributeNameSK)
	if !pkOK || !skOK {
		return "", false
	}
	return pk + keySep + sk, true
}

func stringAttr(item dynamodel.Item, name string) (string, bool) {
	attr, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return attr.Value, true
}

// Len returns the number of stored items.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// PutItem stores the item, honoring attribute_not_exists conditions.
func (s *Server) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := itemKey(params.Item)
	if !ok {
		return nil, &types.InternalServerError{Message: aws.String("item missing key attributes")}
	}

	if params.ConditionExpression != nil &&
		strings.Contains(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := s.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{
				Message: aws.String("The conditional request failed"),
			}
		}
	}

	s.items[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem returns the item under the exact key pair, or an empty output.
func (s *Server) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := itemKey(params.Key)
	if !ok {
		return nil, &types.InternalServerError{Message: aws.String("request missing key attributes")}
	}

	item, exists := s.items[key]
	if !exists {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

// DeleteItem removes the item, honoring attribute_exists conditions.
func (s *Server) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := itemKey(params.Key)
	if !ok {
		return nil, &types.InternalServerError{Message: aws.String("request missing key attributes")}
	}

	_, exists := s.items[key]
	if params.ConditionExpression != nil &&
		strings.Contains(*params.ConditionExpression, "attribute_exists") && !exists {
		return nil, &types.ConditionalCheckFailedException{
			Message: aws.String("The conditional request failed"),
		}
	}

	delete(s.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

// UpdateItem applies the single nested SET the store emits
// (attributes.<name> = value), honoring attribute_exists conditions.
func (s *Server) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := itemKey(params.Key)
	if !ok {
		return nil, &types.InternalServerError{Message: aws.String("request missing key attributes")}
	}

	item, exists := s.items[key]
	if !exists {
		return nil, &types.ConditionalCheckFailedException{
			Message: aws.String("The conditional request failed"),
		}
	}

	// Resolve the attribute name inside the attributes map from the
	// expression name placeholders.
	var attrName string
	for _, name := range params.ExpressionAttributeNames {
		switch name {
		case dynamodel.AttributeNamePK, dynamodel.AttributeNameSK, dynamodel.AttributeNameAttributes:
		default:
			attrName = name
		}
	}
	if attrName == "" {
		return nil, &types.InternalServerError{Message: aws.String("unsupported update expression")}
	}

	var value string
	for _, attr := range params.ExpressionAttributeValues {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			value = v.Value
		}
	}

	attrs, ok := item[dynamodel.AttributeNameAttributes].(*types.AttributeValueMemberM)
	if !ok {
		return nil, &types.InternalServerError{Message: aws.String("attributes document path missing")}
	}
	attrs.Value[attrName] = &types.AttributeValueMemberS{Value: value}

	return &dynamodb.UpdateItemOutput{}, nil
}

// Query returns items matching the single equality key condition, either on
// pk (main table, ordered by sk) or on sk (lookup index, ordered by pk).
func (s *Server) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var want string
	for _, attr := range params.ExpressionAttributeValues {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			want = v.Value
		}
	}

	onIndex := params.IndexName != nil

	var matches []dynamodel.Item
	for _, item := range s.items {
		pk, _ := stringAttr(item, dynamodel.AttributeNamePK)
		sk, _ := stringAttr(item, dynamodel.AttributeNameSK)
		if (onIndex && sk == want) || (!onIndex && pk == want) {
			matches = append(matches, item)
		}
	}

	// Main table orders a partition by sort key; the lookup index orders by
	// its own range key, the table partition key.
	sort.Slice(matches, func(i, j int) bool {
		if onIndex {
			a, _ := stringAttr(matches[i], dynamodel.AttributeNamePK)
			b, _ := stringAttr(matches[j], dynamodel.AttributeNamePK)
			return a < b
		}
		a, _ := stringAttr(matches[i], dynamodel.AttributeNameSK)
		b, _ := stringAttr(matches[j], dynamodel.AttributeNameSK)
		return a < b
	})

	// Resume after the exclusive start key, if provided.
	start := 0
	if params.ExclusiveStartKey != nil {
		if startKey, ok := itemKey(params.ExclusiveStartKey); ok {
			for i, item := range matches {
				if key, _ := itemKey(item); key == startKey {
					start = i + 1
					break
				}
			}
		}
	}

	end := len(matches)
	if params.Limit != nil && start+int(*params.Limit) < end {
		end = start + int(*params.Limit)
	}

	out := &dynamodb.QueryOutput{}
	for _, item := range matches[start:end] {
		out.Items = append(out.Items, copyItem(item))
	}
	if end < len(matches) && end > start {
		last := matches[end-1]
		pk, _ := stringAttr(last, dynamodel.AttributeNamePK)
		sk, _ := stringAttr(last, dynamodel.AttributeNameSK)
		out.LastEvaluatedKey = dynamodel.Key(pk, sk)
	}
	return out, nil
}

// Scan returns all items, honoring Segment/TotalSegments fan-out. Items are
// assigned to segments by key hash, so segments are disjoint and complete.
func (s *Server) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := int32(1)
	segment := int32(0)
	if params.TotalSegments != nil {
		total = *params.TotalSegments
	}
	if params.Segment != nil {
		segment = *params.Segment
	}

	out := &dynamodb.ScanOutput{}
	for key, item := range s.items {
		h := fnv.New32a()
		h.Write([]byte(key))
		if int32(h.Sum32()%uint32(total)) == segment {
			out.Items = append(out.Items, copyItem(item))
		}
	}
	return out, nil
}

func copyItem(item dynamodel.Item) dynamodel.Item {
	dup := make(dynamodel.Item, len(item))
	for k, v := range item {
		if m, ok := v.(*types.AttributeValueMemberM); ok {
			inner := make(map[string]types.AttributeValue, len(m.Value))
			for ik, iv := range m.Value {
				inner[ik] = iv
			}
			dup[k] = &types.AttributeValueMemberM{Value: inner}
			continue
		}
		dup[k] = v
	}
	return dup
}
