package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"
    "iconhunt/internal/config"
    "iconhunt/internal/database"
    "iconhunt/internal/favicon"
    "iconhunt/internal/metrics"
    "iconhunt/internal/web"
)

func main() {
    configFile := flag.String("config", "config.yaml", "Configuration file path")
    version := flag.Bool("version", false, "Show version information")
    flag.Parse()

    if *version {
        fmt.Printf("iconhunt %s\nBuild: %s (%s)\n", web.Version, web.GitCommit, web.BuildTime)
        os.Exit(0)
    }

    cfg, err := loadConfig(*configFile)
    if err != nil {
        logrus.Fatalf("Failed to load config: %v", err)
    }

    setupLogging(cfg.Logging)

    logrus.WithFields(logrus.Fields{
        "config_file": *configFile,
        "port":        cfg.Server.Port,
        "lookup_log":  cfg.Database.Enabled,
    }).Info("Starting iconhunt")

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // The lookup log is optional; a nil Store disables its endpoints.
    var store database.Store
    if cfg.Database.Enabled {
        bolt, err := database.NewBoltStore(cfg.Database.Path)
        if err != nil {
            logrus.Fatalf("Failed to initialize database: %v", err)
        }
        defer bolt.Close()

        go bolt.StartCleanup(ctx, cfg.Database.CleanupInterval, cfg.Database.HistoryRetention, func(deleted int) {
            metrics.DatabaseOperations.WithLabelValues("cleanup", "success").Inc()
        })
        store = bolt
    }

    metricsCollector := metrics.NewCollector(store)

    resolver := favicon.NewResolver(cfg.Resolver.Favicon(),
        favicon.WithLogger(logrus.StandardLogger()),
        favicon.WithObserver(metricsCollector),
    )

    webServer := web.NewServer(cfg, resolver, store, metricsCollector)
    if err := webServer.Start(ctx); err != nil {
        logrus.Fatalf("Failed to start web server: %v", err)
    }

    // Wait for shutdown signal
    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

    sig := <-sigChan
    logrus.WithField("signal", sig).Info("Received shutdown signal")

    cancel()

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer shutdownCancel()

    if err := webServer.Stop(shutdownCtx); err != nil {
        logrus.WithError(err).Error("Graceful shutdown failed")
    }
    logrus.Info("Shutdown complete")
}

// loadConfig falls back to built-in defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
    if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
        logrus.WithField("config_file", path).Warn("Config file not found, using defaults")
        return config.Default(), nil
    }
    return config.Load(path)
}

func setupLogging(cfg config.LoggingConfig) {
    level, err := logrus.ParseLevel(cfg.Level)
    if err != nil {
        level = logrus.InfoLevel
    }
    logrus.SetLevel(level)

    if cfg.Format == "json" {
        logrus.SetFormatter(&logrus.JSONFormatter{})
    } else {
        logrus.SetFormatter(&logrus.TextFormatter{
            FullTimestamp: true,
        })
    }
}
