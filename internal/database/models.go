// internal/database/models.go
package database

import (
    "time"
)

// Lookup is one resolution as seen by the HTTP layer. Only the outcome is
// kept; icons are never stored.
type Lookup struct {
    ID             string    `json:"id"`
    URL            string    `json:"url"`
    FinalURL       string    `json:"final_url,omitempty"`
    Outcome        string    `json:"outcome"`
    UpstreamStatus int       `json:"upstream_status,omitempty"`
    IconCount      int       `json:"icon_count"`
    Error          string    `json:"error,omitempty"`
    Duration       float64   `json:"duration_ms"`
    Source         string    `json:"source"`
    Timestamp      time.Time `json:"timestamp"`
}

type LookupFilters struct {
    Outcome string
    URL     string
    Since   *time.Time
    Limit   int
}

// DatabaseStats provides information about database size and health
type DatabaseStats struct {
    TotalLookups int            `json:"total_lookups"`
    ByOutcome    map[string]int `json:"by_outcome"`
    DatabaseSize int64          `json:"database_size_bytes"`
    OldestEntry  time.Time      `json:"oldest_entry"`
    NewestEntry  time.Time      `json:"newest_entry"`
}
