// Package dynamodel encodes relational structures (hierarchical trees and
// many-to-many adjacency lists) inside a single DynamoDB table, using
// composite keys and a secondary index instead of joins.
//
// Every row is a generic Entity with a two-part string key and a type
// discriminator:
//   - pk (partition key)
//   - sk (sort key)
//   - type: which logical entity the row represents
//   - attributes: free-form string attributes
//
// A "lookup-index" GSI keyed by sk makes every row addressable by its sort
// key, which is what turns edge rows into a traversable adjacency list.
//
// # Hierarchical paths
//
// Hierarchy stores a directory/file tree as flat key pairs: a node's pk is
// its parent's full path and its sk is its local segment, with directory
// segments ending in "/". Children of a directory therefore share its full
// path as their pk, so listing a directory is one range query:
//
//	| pk          | sk        | type      |
//	| =========== | ========= | ========= |
//	| /           | __root__  | ROOT      |
//	| /           | documents/| DIRECTORY |
//	| /documents/ | deck1.ppt | FILE      |
//	| /documents/ | images/   | DIRECTORY |
//
// SplitPath and JoinPath convert between absolute paths and key pairs. The
// root row is the single hand-picked exception: its sk is the reserved
// __root__ sentinel, never derivable by SplitPath.
//
// # Adjacency relationships
//
// Relations stores a many-to-many edge as one row keyed (leftID, rightID)
// with an edge discriminator, while each participating entity keeps an
// identity row under (id, SelfSortKey):
//
//	| pk | sk       | type       |
//	| == | ======== | ========== |
//	| s1 | --root-- | STUDENT    |
//	| c1 | --root-- | COURSE     |
//	| s1 | c1       | ENROLLMENT |
//
// Querying partition s1 lists the courses of a student; querying the lookup
// index for c1 lists the students of a course (eventually consistent).
//
// # Basic usage
//
//	table := dynamodel.NewTable("modeling-table")
//	store := dynamodel.NewStore(client, table)
//
//	fs := dynamodel.NewHierarchy(store)
//	_ = fs.EnsureRoot(ctx)
//	_ = fs.MakeDirectory(ctx, "documents", "/")
//	_ = fs.MakeFile(ctx, "deck1.ppt", "/documents/")
//
//	for path, err := range fs.ListChildren(ctx, "/documents/") {
//		...
//	}
//
// All query methods return lazy, restartable iterators; ranging over one
// re-issues the query. Conditional writes surface their outcome as sentinel
// error values (ErrAlreadyExists, ErrItemNotFound), never as exception-style
// control flow, and the idempotent cases are absorbed by the services.
package dynamodel
