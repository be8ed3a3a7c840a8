// internal/web/server.go
package web

import (
    "context"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/sirupsen/logrus"
    "iconhunt/internal/config"
    "iconhunt/internal/database"
    "iconhunt/internal/favicon"
    "iconhunt/internal/metrics"
)

// Resolver is the part of favicon.Resolver the HTTP layer needs.
type Resolver interface {
    Resolve(ctx context.Context, rawURL string, opts favicon.FetchOptions) (*favicon.Result, error)
    ResolveAll(ctx context.Context, urls []string, opts favicon.FetchOptions, workers int) []favicon.BatchItem
}

type Server struct {
    config   *config.Config
    resolver Resolver
    store    database.Store
    metrics  *metrics.Collector
    router   *gin.Engine
    hub      *wsHub
    server   *http.Server
}

// NewServer wires the routes. store may be nil, in which case the lookup
// log endpoints answer 503.
func NewServer(cfg *config.Config, resolver Resolver, store database.Store, metricsCollector *metrics.Collector) *Server {
    if cfg.Logging.Level != "debug" {
        gin.SetMode(gin.ReleaseMode)
    }

    router := gin.New()
    router.Use(gin.Logger())
    router.Use(gin.Recovery())
    router.Use(corsMiddleware())

    server := &Server{
        config:   cfg,
        resolver: resolver,
        store:    store,
        metrics:  metricsCollector,
        router:   router,
        hub:      newHub(metricsCollector),
    }

    server.setupRoutes()
    return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
    return s.router
}

func (s *Server) Start(ctx context.Context) error {
    s.server = &http.Server{
        Addr:         s.config.Server.Port,
        Handler:      s.router,
        ReadTimeout:  s.config.Server.ReadTimeout,
        WriteTimeout: s.config.Server.WriteTimeout,
    }

    logrus.WithField("port", s.config.Server.Port).Info("Starting web server")

    // Start metrics update routine
    go s.updateMetricsRoutine(ctx)

    go func() {
        if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            logrus.WithError(err).Fatal("Failed to start server")
        }
    }()

    return nil
}

func (s *Server) Stop(ctx context.Context) error {
    s.hub.closeAll()
    if s.server != nil {
        return s.server.Shutdown(ctx)
    }
    return nil
}

func (s *Server) setupRoutes() {
    // Favicon lookup, kept at the root for compatibility
    s.router.GET("/", s.resolveFavicon)

    s.router.GET("/favicon.ico", s.serveFavicon)
    s.router.GET("/favicon.svg", s.serveFavicon)

    api := s.router.Group("/api")
    {
        api.POST("/resolve", s.resolveBatch)

        api.GET("/lookups", s.getLookups)
        api.GET("/lookups/:id", s.getLookup)
        api.DELETE("/lookups/purge", s.purgeLookups)

        api.GET("/stats", s.getStats)
        api.GET("/health", s.healthCheck)
        api.GET("/build", s.getBuildInfo)
    }

    // WebSocket endpoint
    s.router.GET("/ws", s.handleWebSocket)

    // Prometheus metrics
    if s.config.Prometheus.Enabled {
        s.router.GET(s.config.Prometheus.MetricsPath, gin.WrapH(promhttp.Handler()))
    }
}

func (s *Server) healthCheck(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{
        "status":     "healthy",
        "timestamp":  time.Now(),
        "version":    Version,
        "lookup_log": s.store != nil,
        "ws_clients": s.hub.count(),
    })
}

func (s *Server) getStats(c *gin.Context) {
    if !s.requireStore(c) {
        return
    }

    stats, err := s.store.GetDatabaseStats(c.Request.Context())
    s.metrics.RecordDatabaseOperation("stats", err)
    if err != nil {
        logrus.WithError(err).Error("Failed to get database stats")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
        return
    }

    c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) updateMetricsRoutine(ctx context.Context) {
    ticker := time.NewTicker(30 * time.Second)
    defer ticker.Stop()

    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := s.metrics.UpdateSystemMetrics(ctx); err != nil {
                logrus.WithError(err).Error("Failed to update system metrics")
            }
        }
    }
}

func corsMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        c.Header("Access-Control-Allow-Origin", "*")
        c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
        c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

        if c.Request.Method == "OPTIONS" {
            c.AbortWithStatus(204)
            return
        }

        c.Next()
    }
}
