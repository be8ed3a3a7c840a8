// internal/metrics/prometheus.go
package metrics

import (
    "context"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "iconhunt/internal/database"
)

// Prometheus metrics
var (
    LookupDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "iconhunt_lookup_duration_seconds",
            Help:    "Time spent resolving favicons for a page",
            Buckets: prometheus.DefBuckets,
        },
        []string{"outcome"},
    )

    LookupTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "iconhunt_lookups_total",
            Help: "Total number of favicon lookups",
        },
        []string{"source", "outcome"},
    )

    IconsFound = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "iconhunt_icons_found",
            Help:    "Number of distinct icons found per successful lookup",
            Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
        },
    )

    DefaultIconProbes = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "iconhunt_default_icon_probes_total",
            Help: "Results of /favicon.ico probes (found, missing, error)",
        },
        []string{"result"},
    )

    TagsSkipped = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "iconhunt_tags_skipped_total",
            Help: "Matched icon tags that produced no candidate",
        },
        []string{"reason"},
    )

    StoredLookups = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "iconhunt_stored_lookups",
            Help: "Number of lookups held in the lookup log",
        },
    )

    DatabaseOperations = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "iconhunt_database_operations_total",
            Help: "Total database operations performed",
        },
        []string{"operation", "status"},
    )

    WebSocketConnections = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "iconhunt_websocket_connections_active",
            Help: "Number of active WebSocket connections",
        },
    )
)

// Collector records resolver and server events. It also satisfies
// favicon.Observer. The store may be nil when the lookup log is disabled.
type Collector struct {
    store database.Store
}

func NewCollector(store database.Store) *Collector {
    return &Collector{store: store}
}

func (c *Collector) RecordLookup(source, outcome string, icons int, duration time.Duration) {
    LookupDuration.WithLabelValues(outcome).Observe(duration.Seconds())
    LookupTotal.WithLabelValues(source, outcome).Inc()
    if outcome == "ok" {
        IconsFound.Observe(float64(icons))
    }
}

func (c *Collector) DefaultIconProbe(result string) {
    DefaultIconProbes.WithLabelValues(result).Inc()
}

func (c *Collector) TagSkipped(reason string) {
    TagsSkipped.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordDatabaseOperation(operation string, err error) {
    status := "success"
    if err != nil {
        status = "error"
    }
    DatabaseOperations.WithLabelValues(operation, status).Inc()
}

func (c *Collector) UpdateSystemMetrics(ctx context.Context) error {
    if c.store == nil {
        return nil
    }

    stats, err := c.store.GetDatabaseStats(ctx)
    c.RecordDatabaseOperation("stats", err)
    if err != nil {
        return err
    }

    StoredLookups.Set(float64(stats.TotalLookups))
    return nil
}

func (c *Collector) RecordWebSocketConnection(delta int) {
    WebSocketConnections.Add(float64(delta))
}
