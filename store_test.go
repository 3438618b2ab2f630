package dynamodel_test

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
	"github.com/MacHu-GWU/dynamodb-modeler-project/dynamock"
	"github.com/MacHu-GWU/dynamodb-modeler-project/dynamock/assert"
)

func newTestStore(t *testing.T) *dynamodel.Store {
	t.Helper()
	return dynamodel.NewStore(dynamock.NewServer(), dynamodel.NewTable("test-table"))
}

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	var out []T
	for v, err := range seq {
		if err != nil {
			t.Fatalf("iteration failed: %v", err)
		}
		out = append(out, v)
	}
	return out
}

func TestStoreCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entity := &dynamodel.Entity{PK: "s1", SK: dynamodel.SelfSortKey, Type: dynamodel.TypeStudent}
	if err := store.CreateIfAbsent(ctx, entity); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	err := store.CreateIfAbsent(ctx, &dynamodel.Entity{
		PK:   "s1",
		SK:   dynamodel.SelfSortKey,
		Type: dynamodel.TypeStudent,
	})
	if !errors.Is(err, dynamodel.ErrAlreadyExists) {
		t.Errorf("second create = %v, want ErrAlreadyExists", err)
	}
}

func TestStoreGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "nope", "nope")
	if !errors.Is(err, dynamodel.ErrItemNotFound) {
		t.Fatalf("Get on empty table = %v, want ErrItemNotFound", err)
	}

	want := &dynamodel.Entity{
		PK:         "c1",
		SK:         dynamodel.SelfSortKey,
		Type:       dynamodel.TypeCourse,
		Attributes: map[string]string{"department": "math"},
	}
	if err := store.CreateIfAbsent(ctx, want); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.Get(ctx, "c1", dynamodel.SelfSortKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Type != dynamodel.TypeCourse || got.Attribute("department") != "math" {
		t.Errorf("Get returned %+v", got)
	}
}

func TestStoreQueryPartitionOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Insert out of order; the partition must come back sorted by sort key.
	for _, sk := range []string{"images/", "deck2.ppt", "deck1.ppt"} {
		err := store.CreateIfAbsent(ctx, &dynamodel.Entity{
			PK:   "/documents/",
			SK:   sk,
			Type: dynamodel.TypeFile,
		})
		if err != nil {
			t.Fatalf("create %s failed: %v", sk, err)
		}
	}

	got := collect(t, store.QueryPartition(ctx, "/documents/"))
	assert.Entities(t, got).HasCount(3)
	for i, want := range []string{"deck1.ppt", "deck2.ppt", "images/"} {
		if got[i].SK != want {
			t.Errorf("result[%d].SK = %q, want %q", i, got[i].SK, want)
		}
	}
}

func TestStoreQueryIsRestartable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, sk := range []string{"a", "b", "c"} {
		err := store.CreateIfAbsent(ctx, &dynamodel.Entity{PK: "p", SK: sk, Type: dynamodel.TypeFile})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	seq := store.QueryPartition(ctx, "p")

	// Abandon the first pass early, then range again from the start.
	for range seq {
		break
	}
	assert.Entities(t, collect(t, seq)).HasCount(3)
}

func TestStoreQueryLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seed := []dynamodel.Entity{
		{PK: "s1", SK: "c1", Type: dynamodel.TypeEnrollment},
		{PK: "s2", SK: "c1", Type: dynamodel.TypeEnrollment},
		{PK: "s3", SK: "c2", Type: dynamodel.TypeEnrollment},
	}
	if err := dynamock.Seed(ctx, store, seed...); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got := collect(t, store.QueryLookup(ctx, "c1"))
	assert.Entities(t, got).
		HasCount(2).
		ContainsKey("s1", "c1").
		ContainsKey("s2", "c1")

	// Lookup index orders results by partition key.
	if got[0].PK != "s1" || got[1].PK != "s2" {
		t.Errorf("lookup order = %q, %q", got[0].PK, got[1].PK)
	}
}

func TestStoreUpdateAttributeIfExists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.UpdateAttributeIfExists(ctx, "c1", dynamodel.SelfSortKey, "department", "cs")
	if !errors.Is(err, dynamodel.ErrItemNotFound) {
		t.Fatalf("update of missing item = %v, want ErrItemNotFound", err)
	}

	entity := &dynamodel.Entity{
		PK:         "c1",
		SK:         dynamodel.SelfSortKey,
		Type:       dynamodel.TypeCourse,
		Attributes: map[string]string{"department": "math"},
	}
	if err := store.CreateIfAbsent(ctx, entity); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.UpdateAttributeIfExists(ctx, "c1", dynamodel.SelfSortKey, "department", "cs"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := store.Get(ctx, "c1", dynamodel.SelfSortKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Attribute("department") != "cs" {
		t.Errorf("department = %q, want cs", got.Attribute("department"))
	}
}

func TestStoreDeleteIfExists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.DeleteIfExists(ctx, "s1", "c1")
	if !errors.Is(err, dynamodel.ErrItemNotFound) {
		t.Fatalf("delete of missing item = %v, want ErrItemNotFound", err)
	}

	if err := store.CreateIfAbsent(ctx, &dynamodel.Entity{PK: "s1", SK: "c1", Type: dynamodel.TypeEnrollment}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.DeleteIfExists(ctx, "s1", "c1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "s1", "c1"); !errors.Is(err, dynamodel.ErrItemNotFound) {
		t.Errorf("item still present after delete")
	}
}

func TestStoreScanAll(t *testing.T) {
	ctx := context.Background()
	server := dynamock.NewServer()
	store := dynamodel.NewStore(server, dynamodel.NewTable("test-table"),
		dynamodel.WithScanSegments(4),
	)

	seed := []dynamodel.Entity{
		{PK: "/", SK: "documents/", Type: dynamodel.TypeDirectory},
		{PK: "/", SK: "file1.txt", Type: dynamodel.TypeFile},
		{PK: "s1", SK: dynamodel.SelfSortKey, Type: dynamodel.TypeStudent},
		{PK: "s1", SK: "c1", Type: dynamodel.TypeEnrollment},
	}
	if err := dynamock.Seed(ctx, store, seed...); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got := collect(t, store.ScanAll(ctx))
	assert.Entities(t, got).
		HasCount(4).
		ContainsKey("/", "documents/").
		ContainsKey("s1", "c1")
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	mock := dynamock.NewMockClient(t)
	mock.GetFunc = func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
		return nil, &types.InternalServerError{}
	}
	store := dynamodel.NewStore(mock, dynamodel.NewTable("test-table"))

	_, err := store.Get(ctx, "pk", "sk")
	var internal *types.InternalServerError
	if !errors.As(err, &internal) {
		t.Errorf("expected the store error to propagate unchanged, got %v", err)
	}
}
