// Package assert provides fluent assertion utilities for testing dynamodel
// entities and path listings.
//
// # Usage
//
//	assert.Entities(t, got).
//		HasCount(3).
//		ContainsKey("/documents/", "deck1.ppt").
//		ContainsType(dynamodel.TypeFile)
//
//	assert.Paths(t, listing).
//		Contains("/documents/images/").
//		IsSorted()
package assert

import (
	"slices"
	"testing"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
)

// EntitiesAssertion provides fluent assertions for entity collections.
type EntitiesAssertion struct {
	t        *testing.T
	entities []dynamodel.Entity
}

// Entities creates a new EntitiesAssertion for the given entities.
func Entities(t *testing.T, entities []dynamodel.Entity) *EntitiesAssertion {
	t.Helper()
	return &EntitiesAssertion{t: t, entities: entities}
}

// HasCount asserts that the collection has the expected size.
func (a *EntitiesAssertion) HasCount(expected int) *EntitiesAssertion {
	a.t.Helper()
	if len(a.entities) != expected {
		a.t.Errorf("expected %d entities, got %d", expected, len(a.entities))
	}
	return a
}

// IsEmpty asserts that the collection is empty.
func (a *EntitiesAssertion) IsEmpty() *EntitiesAssertion {
	a.t.Helper()
	return a.HasCount(0)
}

// ContainsKey asserts that an entity with the exact key pair is present.
func (a *EntitiesAssertion) ContainsKey(pk, sk string) *EntitiesAssertion {
	a.t.Helper()
	for _, e := range a.entities {
		if e.PK == pk && e.SK == sk {
			return a
		}
	}
	a.t.Errorf("expected to find entity (%s, %s)", pk, sk)
	return a
}

// ContainsType asserts that at least one entity carries the discriminator.
func (a *EntitiesAssertion) ContainsType(typ dynamodel.EntityType) *EntitiesAssertion {
	a.t.Helper()
	for _, e := range a.entities {
		if e.Type == typ {
			return a
		}
	}
	a.t.Errorf("expected to find entity of type %s", typ)
	return a
}

// AllOfType asserts that every entity carries the discriminator.
func (a *EntitiesAssertion) AllOfType(typ dynamodel.EntityType) *EntitiesAssertion {
	a.t.Helper()
	for _, e := range a.entities {
		if e.Type != typ {
			a.t.Errorf("expected only %s entities, found %s at (%s, %s)", typ, e.Type, e.PK, e.SK)
		}
	}
	return a
}

// HasAttribute asserts that at least one entity has the attribute value.
func (a *EntitiesAssertion) HasAttribute(name, expected string) *EntitiesAssertion {
	a.t.Helper()
	for _, e := range a.entities {
		if e.Attribute(name) == expected {
			return a
		}
	}
	a.t.Errorf("expected to find attribute %s=%s", name, expected)
	return a
}

// PathsAssertion provides fluent assertions for path listings.
type PathsAssertion struct {
	t     *testing.T
	paths []string
}

// Paths creates a new PathsAssertion for the given paths.
func Paths(t *testing.T, paths []string) *PathsAssertion {
	t.Helper()
	return &PathsAssertion{t: t, paths: paths}
}

// HasCount asserts that the listing has the expected size.
func (a *PathsAssertion) HasCount(expected int) *PathsAssertion {
	a.t.Helper()
	if len(a.paths) != expected {
		a.t.Errorf("expected %d paths, got %v", expected, a.paths)
	}
	return a
}

// Contains asserts that the listing includes path.
func (a *PathsAssertion) Contains(path string) *PathsAssertion {
	a.t.Helper()
	if !slices.Contains(a.paths, path) {
		a.t.Errorf("expected %v to contain %q", a.paths, path)
	}
	return a
}

// Excludes asserts that the listing does not include path.
func (a *PathsAssertion) Excludes(path string) *PathsAssertion {
	a.t.Helper()
	if slices.Contains(a.paths, path) {
		a.t.Errorf("expected %v to exclude %q", a.paths, path)
	}
	return a
}

// IsSorted asserts that the listing is in ascending lexicographic order.
func (a *PathsAssertion) IsSorted() *PathsAssertion {
	a.t.Helper()
	if !slices.IsSorted(a.paths) {
		a.t.Errorf("expected %v to be sorted", a.paths)
	}
	return a
}

// Equals asserts that the listing matches expected exactly, in order.
func (a *PathsAssertion) Equals(expected ...string) *PathsAssertion {
	a.t.Helper()
	if !slices.Equal(a.paths, expected) {
		a.t.Errorf("expected %v, got %v", expected, a.paths)
	}
	return a
}
