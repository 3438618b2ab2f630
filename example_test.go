package dynamodel_test

import (
	"context"
	"fmt"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
	"github.com/MacHu-GWU/dynamodb-modeler-project/dynamock"
)

// Example_hierarchy builds a small directory tree and lists a directory.
func Example_hierarchy() {
	ctx := context.Background()
	store := dynamodel.NewStore(dynamock.NewServer(), dynamodel.NewTable("example-table"))
	tree := dynamodel.NewHierarchy(store)

	_ = tree.EnsureRoot(ctx)
	_ = tree.MakeDirectory(ctx, "documents", "/")
	_ = tree.MakeFile(ctx, "deck1.ppt", "/documents/")
	_ = tree.MakeFile(ctx, "deck2.ppt", "/documents/")
	_ = tree.MakeDirectory(ctx, "images", "/documents/")

	for path, err := range tree.ListChildren(ctx, "/documents/") {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(path)
	}
	// Output:
	// /documents/deck1.ppt
	// /documents/deck2.ppt
	// /documents/images/
}

// Example_relations enrolls students in courses and traverses the
// relationship from both ends.
func Example_relations() {
	ctx := context.Background()
	store := dynamodel.NewStore(dynamock.NewServer(), dynamodel.NewTable("example-table"))
	enrollments := dynamodel.NewRelations(store, dynamodel.TypeEnrollment)

	_, _ = enrollments.CreateEntity(ctx, dynamodel.TypeStudent, "alice", nil)
	_, _ = enrollments.CreateEntity(ctx, dynamodel.TypeStudent, "bob", nil)
	_, _ = enrollments.CreateEntity(ctx, dynamodel.TypeCourse, "algebra", map[string]string{"department": "math"})

	_, _ = enrollments.CreateEdge(ctx, "alice", "algebra", nil)
	_, _ = enrollments.CreateEdge(ctx, "bob", "algebra", nil)

	for course, err := range enrollments.RightsForLeft(ctx, "alice") {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println("alice takes", course)
	}
	for student, err := range enrollments.LeftsForRight(ctx, "algebra") {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(student, "takes algebra")
	}
	// Output:
	// alice takes algebra
	// alice takes algebra
	// bob takes algebra
}
