package dynamodel

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Hierarchy implements the directory-tree core on top of the store. Every
// filesystem node is one row keyed by (parent path, local segment); directory
// segments keep a trailing separator, file segments do not. Because a
// directory's children all share its full path as their partition key, a
// single range query is equivalent to "list children".
//
// Nodes are created once and never transition back; deletion and subtree
// moves are unsupported.
type Hierarchy struct {
	store *Store
}

// NewHierarchy creates a Hierarchy backed by the provided store.
func NewHierarchy(store *Store) *Hierarchy {
	return &Hierarchy{store: store}
}

// EnsureRoot idempotently creates the root row (/, __root__). The row is a
// bookkeeping anchor; Exists treats the root as always present regardless.
func (h *Hierarchy) EnsureRoot(ctx context.Context) error {
	err := h.store.CreateIfAbsent(ctx, &Entity{
		PK:   RootPath,
		SK:   RootSegment,
		Type: TypeRoot,
	})
	if errors.Is(err, ErrAlreadyExists) {
		return nil
	}
	return err
}

// Exists reports whether a directory or file exists at path. The root path
// always reports true without a store call.
func (h *Hierarchy) Exists(ctx context.Context, path string) (bool, error) {
	if path == RootPath {
		return true, nil
	}
	parent, segment, err := SplitPath(path)
	if err != nil {
		return false, err
	}
	_, err = h.store.Get(ctx, parent, segment)
	if errors.Is(err, ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MakeDirectory creates a directory named name under parentDir. Creation is
// idempotent: repeating the call with identical arguments is a silent
// success. Returns ErrInvalidPath when name embeds the separator and
// ErrMissingParent when parentDir does not exist.
func (h *Hierarchy) MakeDirectory(ctx context.Context, name, parentDir string) error {
	return h.makeNode(ctx, name, parentDir, TypeDirectory)
}

// MakeFile creates a file named name under parentDir, with the same
// validation and idempotency rules as MakeDirectory.
func (h *Hierarchy) MakeFile(ctx context.Context, name, parentDir string) error {
	return h.makeNode(ctx, name, parentDir, TypeFile)
}

// makeNode validates the raw caller-supplied name before deriving the stored
// segment, so a name that smuggles in the separator can never produce a
// directory-shaped sort key. Only directories get the trailing marker.
func (h *Hierarchy) makeNode(ctx context.Context, name, parentDir string, typ EntityType) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	segment := name
	if typ == TypeDirectory {
		segment += PathSeparator
	}

	ok, err := h.Exists(ctx, parentDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingParent, parentDir)
	}

	err = h.store.CreateIfAbsent(ctx, &Entity{
		PK:   parentDir,
		SK:   segment,
		Type: typ,
	})
	if errors.Is(err, ErrAlreadyExists) {
		// Repeated creation of the same node is not an error.
		return nil
	}
	return err
}

// ListChildren returns the full paths of the direct children of dirPath,
// ordered lexicographically by segment. Directories and files interleave in
// that order; the root's sentinel row is never reported as a child.
func (h *Hierarchy) ListChildren(ctx context.Context, dirPath string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for entity, err := range h.store.QueryPartition(ctx, dirPath) {
			if err != nil {
				yield("", err)
				return
			}
			if entity.SK == RootSegment {
				continue
			}
			if !yield(JoinPath(entity.PK, entity.SK), nil) {
				return
			}
		}
	}
}

// DumpPaths returns the full path of every node in the tree, sorted. It
// walks the whole table and exists for diagnostics only.
func (h *Hierarchy) DumpPaths(ctx context.Context) ([]string, error) {
	var paths []string
	for entity, err := range h.store.ScanAll(ctx) {
		if err != nil {
			return nil, err
		}
		switch entity.Type {
		case TypeRoot, TypeDirectory, TypeFile:
			paths = append(paths, JoinPath(entity.PK, entity.SK))
		}
	}
	slices.Sort(paths)
	return paths, nil
}
