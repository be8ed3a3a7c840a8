// internal/web/handlers.go
package web

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/sirupsen/logrus"
    "iconhunt/internal/database"
    "iconhunt/internal/favicon"
)

// Lookup sources, used as metric labels and stored with each lookup.
const (
    sourceHTTP  = "http"
    sourceBatch = "batch"
)

type BatchRequest struct {
    URLs    []string `json:"urls" binding:"required,min=1"`
    Biggest *bool    `json:"biggest"`
}

// GET /?url=<target>&biggest=<bool>
func (s *Server) resolveFavicon(c *gin.Context) {
    target := c.Query("url")
    if target == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
        return
    }

    biggest, err := s.preferLargest(c.Query("biggest"))
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "biggest must be a boolean"})
        return
    }

    ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Server.RequestTimeout)
    defer cancel()

    start := time.Now()
    result, err := s.resolver.Resolve(ctx, target, favicon.FetchOptions{PreferLargestOnly: biggest})
    s.recordLookup(sourceHTTP, target, result, err, time.Since(start))

    if err != nil {
        status, body := errorResponse(err)
        c.JSON(status, body)
        return
    }

    c.JSON(http.StatusOK, result)
}

// POST /api/resolve
func (s *Server) resolveBatch(c *gin.Context) {
    var req BatchRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if len(req.URLs) > s.config.Resolver.MaxBatchSize {
        c.JSON(http.StatusBadRequest, gin.H{
            "error": "too many urls",
            "max":   s.config.Resolver.MaxBatchSize,
        })
        return
    }

    biggest := s.config.Resolver.PreferLargestDefault()
    if req.Biggest != nil {
        biggest = *req.Biggest
    }

    ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Server.RequestTimeout)
    defer cancel()

    items := s.resolver.ResolveAll(ctx, req.URLs, favicon.FetchOptions{PreferLargestOnly: biggest}, s.config.Resolver.BatchWorkers)
    for _, item := range items {
        s.recordLookup(sourceBatch, item.URL, item.Result, item.Err, item.Duration)
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  items,
        "count": len(items),
    })
}

// GET /api/lookups
func (s *Server) getLookups(c *gin.Context) {
    if !s.requireStore(c) {
        return
    }

    filters := database.LookupFilters{
        Outcome: c.Query("outcome"),
        URL:     c.Query("url"),
        Limit:   100,
    }

    if limitStr := c.Query("limit"); limitStr != "" {
        limit, err := strconv.Atoi(limitStr)
        if err != nil || limit < 1 {
            c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
            return
        }
        filters.Limit = limit
    }

    if sinceStr := c.Query("since"); sinceStr != "" {
        since, err := time.Parse(time.RFC3339, sinceStr)
        if err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
            return
        }
        filters.Since = &since
    }

    lookups, err := s.store.GetLookups(c.Request.Context(), filters)
    s.metrics.RecordDatabaseOperation("get_lookups", err)
    if err != nil {
        logrus.WithError(err).Error("Failed to get lookups")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get lookups"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  lookups,
        "count": len(lookups),
    })
}

// GET /api/lookups/:id
func (s *Server) getLookup(c *gin.Context) {
    if !s.requireStore(c) {
        return
    }

    lookup, err := s.store.GetLookup(c.Request.Context(), c.Param("id"))
    s.metrics.RecordDatabaseOperation("get_lookup", err)
    if err != nil {
        if errors.Is(err, database.ErrLookupNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "Lookup not found"})
            return
        }
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get lookup"})
        return
    }

    c.JSON(http.StatusOK, gin.H{"data": lookup})
}

func (s *Server) requireStore(c *gin.Context) bool {
    if s.store == nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lookup log is disabled"})
        return false
    }
    return true
}

func (s *Server) preferLargest(raw string) (bool, error) {
    if raw == "" {
        return s.config.Resolver.PreferLargestDefault(), nil
    }
    return strconv.ParseBool(raw)
}

// recordLookup feeds metrics, the lookup log and websocket listeners.
func (s *Server) recordLookup(source, target string, result *favicon.Result, err error, duration time.Duration) {
    outcome := favicon.Outcome(err)

    lookup := &database.Lookup{
        URL:       target,
        Outcome:   outcome,
        Duration:  float64(duration.Microseconds()) / 1000,
        Source:    source,
        Timestamp: time.Now(),
    }
    if result != nil {
        lookup.FinalURL = result.FinalURL
        lookup.IconCount = len(result.Icons)
    }
    if err != nil {
        lookup.Error = err.Error()
        var fetchErr *favicon.FetchError
        if errors.As(err, &fetchErr) {
            lookup.UpstreamStatus = fetchErr.StatusCode
        }
    }

    s.metrics.RecordLookup(source, outcome, lookup.IconCount, duration)

    fields := logrus.Fields{
        "url":      target,
        "outcome":  outcome,
        "icons":    lookup.IconCount,
        "duration": duration,
        "source":   source,
    }
    if err != nil {
        logrus.WithFields(fields).WithError(err).Warn("Favicon lookup failed")
    } else {
        logrus.WithFields(fields).Info("Favicon lookup completed")
    }

    if s.store != nil {
        // The request context may already be done; the log write must not be.
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()

        storeErr := s.store.RecordLookup(ctx, lookup)
        s.metrics.RecordDatabaseOperation("record_lookup", storeErr)
        if storeErr != nil {
            logrus.WithError(storeErr).Error("Failed to record lookup")
        }
    }

    s.hub.broadcast(WSMessage{Type: "lookup", Data: lookup})
}

// errorResponse maps resolver errors onto HTTP statuses.
func errorResponse(err error) (int, gin.H) {
    var fetchErr *favicon.FetchError

    switch {
    case errors.Is(err, favicon.ErrInvalidURL):
        return http.StatusBadRequest, gin.H{"error": err.Error()}
    case errors.As(err, &fetchErr):
        return http.StatusBadGateway, gin.H{"error": err.Error(), "status": fetchErr.StatusCode}
    default:
        return http.StatusInternalServerError, gin.H{"error": err.Error()}
    }
}
