package dynamock

import (
	"context"
	"fmt"
	"testing"
	"time"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
)

// NewTestTable generates a unique table name for testing.
func NewTestTable(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// WithLocalDynamoDB runs a test function against a local DynamoDB instance,
// skipping when DynamoDB Local is not available or the test runs in short mode.
func WithLocalDynamoDB(t *testing.T, port int, fn func(local *LocalDynamoDB)) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	local := NewLocalDynamoDB(port)
	if !local.IsAvailable(context.Background()) {
		t.Skipf("DynamoDB Local not available on port %d", port)
	}

	fn(local)
}

// WithIsolatedTable runs a test function with a freshly provisioned table
// that is deleted afterwards, even if the test panics.
func WithIsolatedTable(t *testing.T, local *LocalDynamoDB, fn func(table *dynamodel.Table)) {
	ctx := context.Background()
	table := dynamodel.NewTable(NewTestTable("test-" + t.Name()))

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := local.DeleteTable(cleanupCtx, table.TableName); err != nil {
			t.Errorf("Failed to cleanup table %s: %v", table.TableName, err)
		}
	}()

	if err := local.CreateModelTable(ctx, table); err != nil {
		t.Fatalf("Failed to create test table %s: %v", table.TableName, err)
	}

	fn(table)
}
