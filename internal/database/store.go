// internal/database/store.go
package database

import (
    "context"
    "errors"
    "time"
)

// ErrLookupNotFound is returned when a lookup id is unknown.
var ErrLookupNotFound = errors.New("lookup not found")

// Store defines the interface for the lookup audit log
type Store interface {
    RecordLookup(ctx context.Context, lookup *Lookup) error
    GetLookup(ctx context.Context, id string) (*Lookup, error)
    GetLookups(ctx context.Context, filters LookupFilters) ([]Lookup, error)

    // Retention
    DeleteLookupsBefore(ctx context.Context, cutoff time.Time) (int, error)
    GetDatabaseStats(ctx context.Context) (*DatabaseStats, error)

    // Close the database connection
    Close() error
}
