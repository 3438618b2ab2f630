package dynamock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
)

type apiCall[T, U any] = func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error)

// MockClient is a simple expectation-based mock for the store's client
// surface. Set a func field per operation the test expects; any operation
// without an expectation fails the test. Use it for failure injection;
// use Server when you want working table semantics.
type MockClient struct {
	PutFunc    apiCall[dynamodb.PutItemInput, dynamodb.PutItemOutput]
	GetFunc    apiCall[dynamodb.GetItemInput, dynamodb.GetItemOutput]
	QueryFunc  apiCall[dynamodb.QueryInput, dynamodb.QueryOutput]
	UpdateFunc apiCall[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput]
	DeleteFunc apiCall[dynamodb.DeleteItemInput, dynamodb.DeleteItemOutput]
	ScanFunc   apiCall[dynamodb.ScanInput, dynamodb.ScanOutput]
}

var _ dynamodel.DynamoDBClient = (*MockClient)(nil)

// NewMockClient creates a mock whose every operation fails the test until an
// expectation is set.
func NewMockClient(t *testing.T) *MockClient {
	return &MockClient{
		PutFunc:    defaultFunc[dynamodb.PutItemInput, dynamodb.PutItemOutput](t),
		GetFunc:    defaultFunc[dynamodb.GetItemInput, dynamodb.GetItemOutput](t),
		QueryFunc:  defaultFunc[dynamodb.QueryInput, dynamodb.QueryOutput](t),
		UpdateFunc: defaultFunc[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput](t),
		DeleteFunc: defaultFunc[dynamodb.DeleteItemInput, dynamodb.DeleteItemOutput](t),
		ScanFunc:   defaultFunc[dynamodb.ScanInput, dynamodb.ScanOutput](t),
	}
}

func defaultFunc[T, U any](t *testing.T) apiCall[T, U] {
	return func(ctx context.Context, params *T, optFns ...func(*dynamodb.Options)) (*U, error) {
		t.Helper()
		t.Fatal("unexpected call")
		return nil, nil
	}
}

func (m *MockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return m.PutFunc(ctx, params, optFns...)
}

func (m *MockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return m.GetFunc(ctx, params, optFns...)
}

func (m *MockClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return m.QueryFunc(ctx, params, optFns...)
}

func (m *MockClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return m.UpdateFunc(ctx, params, optFns...)
}

func (m *MockClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return m.DeleteFunc(ctx, params, optFns...)
}

func (m *MockClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return m.ScanFunc(ctx, params, optFns...)
}
