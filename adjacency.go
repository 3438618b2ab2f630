package dynamodel

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// Relations implements the adjacency list pattern: a many-to-many
// relationship stored as edge rows addressable by either endpoint. An edge
// row is keyed (leftID, rightID) with the configured edge discriminator, so
// one partition query lists the rights of a left, while the lookup index,
// keyed by sort key, lists the lefts of a right.
//
// The two traversal directions are asymmetric in cost: RightsForLeft is a
// single range query against the primary key, while LeftsForRight depends on
// the secondary index, which converges with primary writes asynchronously.
type Relations struct {
	store    *Store
	edgeType EntityType
}

// NewRelations creates a Relations service that stores edges under the given
// discriminator, e.g. TypeEnrollment for student-course enrollments.
func NewRelations(store *Store, edgeType EntityType) *Relations {
	return &Relations{store: store, edgeType: edgeType}
}

// CreateEntity conditionally creates an identity row for an adjacency
// participant (a Student, Course, and so on) under (id, SelfSortKey).
// Returns (nil, nil) when an entity with that id already exists; entity
// registration is idempotent.
func (r *Relations) CreateEntity(ctx context.Context, typ EntityType, id string, attrs map[string]string) (*Entity, error) {
	entity := &Entity{
		PK:         id,
		SK:         SelfSortKey,
		Type:       typ,
		Attributes: attrs,
	}
	err := r.store.CreateIfAbsent(ctx, entity)
	if errors.Is(err, ErrAlreadyExists) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetEntity retrieves the identity row for id, or ErrItemNotFound.
func (r *Relations) GetEntity(ctx context.Context, id string) (*Entity, error) {
	return r.store.Get(ctx, id, SelfSortKey)
}

// UpdateEntityAttribute reassigns a single attribute on an existing identity
// row, such as moving a course to another department. The update requires
// prior existence and never creates the entity.
func (r *Relations) UpdateEntityAttribute(ctx context.Context, id, name, value string) error {
	return r.store.UpdateAttributeIfExists(ctx, id, SelfSortKey, name, value)
}

// ListEntities returns every identity row with the given discriminator. It
// rides on a full-table scan and is meant for diagnostics and small data
// sets, never for relationship queries.
func (r *Relations) ListEntities(ctx context.Context, typ EntityType) ([]Entity, error) {
	var entities []Entity
	for entity, err := range r.store.ScanAll(ctx) {
		if err != nil {
			return nil, err
		}
		if entity.Type == typ && entity.IsIdentity() {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

// CreateEdge records a relationship from leftID to rightID. Returns
// (nil, nil), not an error, when the edge already exists; edge creation is
// idempotent. Edges are created independently of the entities they connect.
func (r *Relations) CreateEdge(ctx context.Context, leftID, rightID string, attrs map[string]string) (*Entity, error) {
	if leftID == "" || rightID == "" {
		return nil, fmt.Errorf("dynamodel: edge endpoints must be non-empty")
	}
	edge := &Entity{
		PK:         leftID,
		SK:         rightID,
		Type:       r.edgeType,
		Attributes: attrs,
	}
	err := r.store.CreateIfAbsent(ctx, edge)
	if errors.Is(err, ErrAlreadyExists) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// DeleteEdge removes the relationship from leftID to rightID. Deleting an
// edge that does not exist is a no-op, not an error. No cascade: the
// endpoint entities are untouched.
func (r *Relations) DeleteEdge(ctx context.Context, leftID, rightID string) error {
	err := r.store.DeleteIfExists(ctx, leftID, rightID)
	if errors.Is(err, ErrItemNotFound) {
		return nil
	}
	return err
}

// RightsForLeft returns the ids on the right side of every edge whose left
// side is leftID, in sort-key order. A single partition range query.
func (r *Relations) RightsForLeft(ctx context.Context, leftID string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for entity, err := range r.store.QueryPartition(ctx, leftID) {
			if err != nil {
				yield("", err)
				return
			}
			if entity.Type != r.edgeType {
				continue
			}
			if !yield(entity.SK, nil) {
				return
			}
		}
	}
}

// LeftsForRight returns the ids on the left side of every edge whose right
// side is rightID, via the lookup index. Reads may lag primary writes by a
// bounded interval; callers must tolerate the propagation delay after
// CreateEdge or DeleteEdge.
func (r *Relations) LeftsForRight(ctx context.Context, rightID string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for entity, err := range r.store.QueryLookup(ctx, rightID) {
			if err != nil {
				yield("", err)
				return
			}
			if entity.Type != r.edgeType {
				continue
			}
			if !yield(entity.PK, nil) {
				return
			}
		}
	}
}
