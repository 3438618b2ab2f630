package dynamodel

import (
	"fmt"
	"strings"
)

const (
	// PathSeparator separates path segments. It is the only reserved character;
	// local names must not contain it.
	PathSeparator = "/"

	// RootPath is the absolute path of the filesystem root.
	RootPath = "/"

	// RootSegment is the reserved sort key of the root node. The root has no
	// parent and no local name, so its row cannot be derived by SplitPath; it
	// is the single hand-picked exception in the key layout.
	RootSegment = "__root__"
)

// SplitPath decomposes an absolute path into the (parent, segment) pair used
// as the table's composite key. The parent is the containing directory path
// (always ending in the separator) and the segment is the local name, keeping
// its trailing separator when the path denotes a directory:
//
//	SplitPath("/")     -> ("", "__root__")
//	SplitPath("/a")    -> ("/", "a")
//	SplitPath("/a/")   -> ("/", "a/")
//	SplitPath("/a/b/") -> ("/a/", "b/")
//
// The root path has no parent; it returns the empty string and the reserved
// RootSegment sentinel.
func SplitPath(path string) (parent, segment string, err error) {
	if path == RootPath {
		return "", RootSegment, nil
	}
	if !strings.HasPrefix(path, PathSeparator) {
		return "", "", fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, path)
	}

	trimmed, isDir := strings.CutSuffix(path, PathSeparator)
	if trimmed == "" {
		// path was "//" or similar degenerate input
		return "", "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
	}

	i := strings.LastIndex(trimmed, PathSeparator)
	parent = trimmed[:i+1]
	segment = trimmed[i+1:]
	if segment == "" {
		return "", "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
	}
	if isDir {
		segment += PathSeparator
	}
	return parent, segment, nil
}

// JoinPath reconstructs the full path from a stored (parent, segment) pair.
// It is the inverse of SplitPath for all non-root pairs. If segment is the
// RootSegment sentinel the root path is returned regardless of parent; this
// collapse is intentionally lossy and such pairs exist only for the root row.
func JoinPath(parent, segment string) string {
	if segment == RootSegment {
		return RootPath
	}
	return parent + segment
}

// ValidateName reports whether name is usable as a local directory or file
// name. Names must be non-empty and must not embed path structure.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPath)
	}
	if strings.Contains(name, PathSeparator) {
		return fmt.Errorf("%w: name %q contains %q", ErrInvalidPath, name, PathSeparator)
	}
	return nil
}
