package dynamodel_test

import (
	"context"
	"errors"
	"testing"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
	"github.com/MacHu-GWU/dynamodb-modeler-project/dynamock/assert"
)

// buildSampleTree creates the fixture tree used across hierarchy tests:
//
//	/
//	├── documents/
//	│   ├── deck1.ppt
//	│   ├── deck2.ppt
//	│   └── images/
//	│       └── logo.png
//	├── file1.txt
//	└── file2.txt
func buildSampleTree(t *testing.T, h *dynamodel.Hierarchy) {
	t.Helper()
	ctx := context.Background()

	if err := h.EnsureRoot(ctx); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	steps := []struct {
		name   string
		parent string
		dir    bool
	}{
		{name: "documents", parent: "/", dir: true},
		{name: "deck1.ppt", parent: "/documents/"},
		{name: "deck2.ppt", parent: "/documents/"},
		{name: "images", parent: "/documents/", dir: true},
		{name: "logo.png", parent: "/documents/images/"},
		{name: "file1.txt", parent: "/"},
		{name: "file2.txt", parent: "/"},
	}
	for _, step := range steps {
		var err error
		if step.dir {
			err = h.MakeDirectory(ctx, step.name, step.parent)
		} else {
			err = h.MakeFile(ctx, step.name, step.parent)
		}
		if err != nil {
			t.Fatalf("creating %s under %s failed: %v", step.name, step.parent, err)
		}
	}
}

func TestHierarchyEnsureRootIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := dynamodel.NewHierarchy(newTestStore(t))

	for i := 0; i < 3; i++ {
		if err := h.EnsureRoot(ctx); err != nil {
			t.Fatalf("EnsureRoot call %d failed: %v", i+1, err)
		}
	}
}

func TestHierarchyExists(t *testing.T) {
	ctx := context.Background()
	h := dynamodel.NewHierarchy(newTestStore(t))
	buildSampleTree(t, h)

	for _, path := range []string{
		"/",
		"/documents/",
		"/documents/deck1.ppt",
		"/documents/images/",
		"/documents/images/logo.png",
		"/file1.txt",
	} {
		ok, err := h.Exists(ctx, path)
		if err != nil {
			t.Fatalf("Exists(%q) failed: %v", path, err)
		}
		if !ok {
			t.Errorf("Exists(%q) = false, want true", path)
		}
	}

	for _, path := range []string{
		"/documents", // a file named documents was never created
		"/nope/",
		"/documents/deck3.ppt",
	} {
		ok, err := h.Exists(ctx, path)
		if err != nil {
			t.Fatalf("Exists(%q) failed: %v", path, err)
		}
		if ok {
			t.Errorf("Exists(%q) = true, want false", path)
		}
	}
}

func TestHierarchyMakeDirectoryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := dynamodel.NewHierarchy(newTestStore(t))
	if err := h.EnsureRoot(ctx); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := h.MakeDirectory(ctx, "documents", "/"); err != nil {
			t.Fatalf("MakeDirectory call %d failed: %v", i+1, err)
		}
		if err := h.MakeFile(ctx, "file1.txt", "/"); err != nil {
			t.Fatalf("MakeFile call %d failed: %v", i+1, err)
		}
	}

	got := collect(t, h.ListChildren(ctx, "/"))
	assert.Paths(t, got).Equals("/documents/", "/file1.txt")
}

func TestHierarchyMakeNodeValidation(t *testing.T) {
	ctx := context.Background()
	h := dynamodel.NewHierarchy(newTestStore(t))
	if err := h.EnsureRoot(ctx); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	if err := h.MakeFile(ctx, "a/b", "/"); !errors.Is(err, dynamodel.ErrInvalidPath) {
		t.Errorf("name with separator = %v, want ErrInvalidPath", err)
	}
	if err := h.MakeDirectory(ctx, "", "/"); !errors.Is(err, dynamodel.ErrInvalidPath) {
		t.Errorf("empty name = %v, want ErrInvalidPath", err)
	}
	if err := h.MakeFile(ctx, "orphan.txt", "/nope/"); !errors.Is(err, dynamodel.ErrMissingParent) {
		t.Errorf("missing parent = %v, want ErrMissingParent", err)
	}
}

func TestHierarchyRejectsTrailingSeparatorNames(t *testing.T) {
	ctx := context.Background()
	h := dynamodel.NewHierarchy(newTestStore(t))
	if err := h.EnsureRoot(ctx); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	// A file named "a/" must be rejected outright, never stored as a
	// directory-shaped FILE row.
	if err := h.MakeFile(ctx, "a/", "/"); !errors.Is(err, dynamodel.ErrInvalidPath) {
		t.Errorf("MakeFile with trailing separator = %v, want ErrInvalidPath", err)
	}
	if err := h.MakeDirectory(ctx, "a/", "/"); !errors.Is(err, dynamodel.ErrInvalidPath) {
		t.Errorf("MakeDirectory with trailing separator = %v, want ErrInvalidPath", err)
	}

	ok, err := h.Exists(ctx, "/a/")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("rejected name still produced a node at /a/")
	}
	assert.Paths(t, collect(t, h.ListChildren(ctx, "/"))).HasCount(0)
}

func TestHierarchyListChildren(t *testing.T) {
	ctx := context.Background()
	h := dynamodel.NewHierarchy(newTestStore(t))
	buildSampleTree(t, h)

	// Children come back in segment order; the root sentinel never shows up.
	assert.Paths(t, collect(t, h.ListChildren(ctx, "/"))).
		Equals("/documents/", "/file1.txt", "/file2.txt")

	assert.Paths(t, collect(t, h.ListChildren(ctx, "/documents/"))).
		Equals("/documents/deck1.ppt", "/documents/deck2.ppt", "/documents/images/")

	assert.Paths(t, collect(t, h.ListChildren(ctx, "/documents/images/"))).
		Equals("/documents/images/logo.png")

	// An empty directory and a nonexistent one both list nothing.
	assert.Paths(t, collect(t, h.ListChildren(ctx, "/nope/"))).HasCount(0)
}

func TestHierarchyDumpPaths(t *testing.T) {
	ctx := context.Background()
	h := dynamodel.NewHierarchy(newTestStore(t))
	buildSampleTree(t, h)

	got, err := h.DumpPaths(ctx)
	if err != nil {
		t.Fatalf("DumpPaths failed: %v", err)
	}
	assert.Paths(t, got).
		IsSorted().
		Equals(
			"/",
			"/documents/",
			"/documents/deck1.ppt",
			"/documents/deck2.ppt",
			"/documents/images/",
			"/documents/images/logo.png",
			"/file1.txt",
			"/file2.txt",
		)
}

func TestHierarchySharesTableWithRelations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	h := dynamodel.NewHierarchy(store)
	buildSampleTree(t, h)

	// Adjacency rows in the same table must not leak into tree listings.
	relations := dynamodel.NewRelations(store, dynamodel.TypeEnrollment)
	if _, err := relations.CreateEntity(ctx, dynamodel.TypeStudent, "s1", nil); err != nil {
		t.Fatalf("CreateEntity failed: %v", err)
	}
	if _, err := relations.CreateEdge(ctx, "s1", "c1", nil); err != nil {
		t.Fatalf("CreateEdge failed: %v", err)
	}

	got, err := h.DumpPaths(ctx)
	if err != nil {
		t.Fatalf("DumpPaths failed: %v", err)
	}
	assert.Paths(t, got).
		HasCount(8).
		Excludes("s1c1").
		Excludes("s1" + dynamodel.SelfSortKey)
}
