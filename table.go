package dynamodel

import "time"

// Table contains table configuration shared by the store and the services.
type Table struct {
	TableName       string        // Main table name
	LookupIndexName string        // GSI keyed by sort key, for reverse lookups
	CursorTTL       time.Duration // Lifetime of stored pagination cursors
}

// NewTable creates a new Table with default configuration.
func NewTable(tableName string) *Table {
	return &Table{
		TableName:       tableName,
		LookupIndexName: "lookup-index",
		CursorTTL:       24 * time.Hour,
	}
}
