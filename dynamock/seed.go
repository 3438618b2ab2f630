package dynamock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
)

// Seed writes the given entities through the store, ignoring none of the
// errors: seeding a fixture twice is a test bug, not an idempotent create.
func Seed(ctx context.Context, store *dynamodel.Store, entities ...dynamodel.Entity) error {
	for i := range entities {
		if err := store.CreateIfAbsent(ctx, &entities[i]); err != nil {
			return fmt.Errorf("failed to seed entity %s/%s: %w", entities[i].PK, entities[i].SK, err)
		}
	}
	return nil
}

// SeedJSON decodes a JSON array of entities from r and writes them through
// the store. The JSON shape mirrors the Entity struct:
//
//	[
//	  {"pk": "/", "sk": "documents/", "type": "DIRECTORY"},
//	  {"pk": "s1", "sk": "c1", "type": "ENROLLMENT", "attributes": {"term": "fall"}}
//	]
func SeedJSON(ctx context.Context, store *dynamodel.Store, r io.Reader) error {
	var rows []struct {
		PK         string            `json:"pk"`
		SK         string            `json:"sk"`
		Type       string            `json:"type"`
		Attributes map[string]string `json:"attributes"`
	}
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return fmt.Errorf("failed to decode seed data: %w", err)
	}

	entities := make([]dynamodel.Entity, len(rows))
	for i, row := range rows {
		entities[i] = dynamodel.Entity{
			PK:         row.PK,
			SK:         row.SK,
			Type:       dynamodel.EntityType(row.Type),
			Attributes: row.Attributes,
		}
	}
	return Seed(ctx, store, entities...)
}
