// internal/web/purge_handlers.go
package web

import (
    "context"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/sirupsen/logrus"
)

// DELETE /api/lookups/purge?older_than=<duration>
func (s *Server) purgeLookups(c *gin.Context) {
    if !s.requireStore(c) {
        return
    }

    olderThan := s.config.Database.HistoryRetention
    if raw := c.Query("older_than"); raw != "" {
        d, err := time.ParseDuration(raw)
        if err != nil || d < 0 {
            c.JSON(http.StatusBadRequest, gin.H{"error": "older_than must be a non-negative duration like 24h"})
            return
        }
        olderThan = d
    }

    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    cutoff := time.Now().Add(-olderThan)
    deleted, err := s.store.DeleteLookupsBefore(ctx, cutoff)
    s.metrics.RecordDatabaseOperation("purge_lookups", err)
    if err != nil {
        logrus.WithError(err).Error("Failed to purge lookups")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purge lookups"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "message":   "Lookups purged successfully",
        "deleted":   deleted,
        "cutoff":    cutoff,
        "timestamp": time.Now(),
    })
}
