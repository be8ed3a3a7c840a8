// internal/config/config.go
package config

import (
    "fmt"
    "net/http"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "gopkg.in/yaml.v3"
    "iconhunt/internal/favicon"
)

type Config struct {
    Server     ServerConfig     `yaml:"server"`
    Resolver   ResolverConfig   `yaml:"resolver"`
    Database   DatabaseConfig   `yaml:"database"`
    Prometheus PrometheusConfig `yaml:"prometheus"`
    Logging    LoggingConfig    `yaml:"logging"`
    Include    IncludeConfig    `yaml:"include"`
}

type IncludeConfig struct {
    Directory string `yaml:"directory"`
    Pattern   string `yaml:"pattern"`
    Enabled   bool   `yaml:"enabled"`
}

type ServerConfig struct {
    Port         string        `yaml:"port"`
    ReadTimeout  time.Duration `yaml:"read_timeout"`
    WriteTimeout time.Duration `yaml:"write_timeout"`
    // Lookups older than this are cancelled by the HTTP layer.
    RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ResolverConfig drives favicon discovery. Link rels and meta names default
// to the resolver's built-in lists when left empty; headers are layered over
// the default browser headers. Pointer flags stay nil until a file sets them
// so includes only override what they mention.
type ResolverConfig struct {
    Headers            map[string]string `yaml:"headers"`
    LinkRels           []string          `yaml:"link_rels"`
    MetaNames          []string          `yaml:"meta_names"`
    Timeout            time.Duration     `yaml:"timeout"`
    InsecureSkipVerify *bool             `yaml:"insecure_skip_verify"`
    MaxBodyBytes       int64             `yaml:"max_body_bytes"`
    SkipDefaultIcon    *bool             `yaml:"skip_default_icon"`
    PreferLargest      *bool             `yaml:"prefer_largest"`
    BatchWorkers       int               `yaml:"batch_workers"`
    MaxBatchSize       int               `yaml:"max_batch_size"`
}

type DatabaseConfig struct {
    Enabled          bool          `yaml:"enabled"`
    Type             string        `yaml:"type"`
    Path             string        `yaml:"path"`
    CleanupInterval  time.Duration `yaml:"cleanup_interval"`
    HistoryRetention time.Duration `yaml:"history_retention"`
}

type PrometheusConfig struct {
    Enabled     bool   `yaml:"enabled"`
    MetricsPath string `yaml:"metrics_path"`
}

type LoggingConfig struct {
    Level  string `yaml:"level"`
    Format string `yaml:"format"`
}

// PartialConfig represents a partial configuration that can be merged
type PartialConfig struct {
    Server     *ServerConfig     `yaml:"server,omitempty"`
    Resolver   *ResolverConfig   `yaml:"resolver,omitempty"`
    Database   *DatabaseConfig   `yaml:"database,omitempty"`
    Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`
    Logging    *LoggingConfig    `yaml:"logging,omitempty"`
}

// Favicon converts the YAML section into resolver settings.
func (r ResolverConfig) Favicon() favicon.Config {
    return favicon.Config{
        Headers:            r.Headers,
        LinkRels:           r.LinkRels,
        MetaNames:          r.MetaNames,
        Timeout:            r.Timeout,
        InsecureSkipVerify: isSet(r.InsecureSkipVerify),
        MaxBodyBytes:       r.MaxBodyBytes,
        SkipDefaultIcon:    isSet(r.SkipDefaultIcon),
    }
}

func isSet(b *bool) bool {
    return b != nil && *b
}

// PreferLargestDefault is the value used when a request does not say.
func (r ResolverConfig) PreferLargestDefault() bool {
    return r.PreferLargest == nil || *r.PreferLargest
}

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *Config {
    cfg := &Config{}
    setDefaults(cfg)
    return cfg
}

func Load(filename string) (*Config, error) {
    // Load the main config file
    config, err := loadConfigFile(filename)
    if err != nil {
        return nil, fmt.Errorf("failed to load main config file: %w", err)
    }

    // Process includes if enabled
    if config.Include.Enabled && config.Include.Directory != "" {
        if err := loadIncludes(config, filepath.Dir(filename)); err != nil {
            return nil, fmt.Errorf("failed to load includes: %w", err)
        }
    }

    setDefaults(config)

    if err := validate(config); err != nil {
        return nil, fmt.Errorf("invalid configuration: %w", err)
    }

    return config, nil
}

func loadConfigFile(filename string) (*Config, error) {
    data, err := os.ReadFile(filename)
    if err != nil {
        return nil, fmt.Errorf("failed to read config file: %w", err)
    }

    var config Config
    if err := yaml.Unmarshal(data, &config); err != nil {
        return nil, fmt.Errorf("failed to parse YAML: %w", err)
    }

    return &config, nil
}

func loadIncludes(config *Config, baseDir string) error {
    includeDir := config.Include.Directory

    // Make include directory relative to main config file if not absolute
    if !filepath.IsAbs(includeDir) {
        includeDir = filepath.Join(baseDir, includeDir)
    }

    if _, err := os.Stat(includeDir); os.IsNotExist(err) {
        return fmt.Errorf("include directory does not exist: %s", includeDir)
    }

    pattern := config.Include.Pattern
    if pattern == "" {
        pattern = "*.yaml"
    }

    matches, err := filepath.Glob(filepath.Join(includeDir, pattern))
    if err != nil {
        return fmt.Errorf("failed to glob include pattern: %w", err)
    }

    // Also check for .yml files if pattern is default
    if pattern == "*.yaml" {
        ymlMatches, err := filepath.Glob(filepath.Join(includeDir, "*.yml"))
        if err != nil {
            return fmt.Errorf("failed to glob .yml files: %w", err)
        }
        matches = append(matches, ymlMatches...)
    }

    // Sort files for consistent ordering
    sort.Slice(matches, func(i, j int) bool {
        return filepath.Base(matches[i]) < filepath.Base(matches[j])
    })

    for _, match := range matches {
        if err := loadAndMergeInclude(config, match); err != nil {
            return fmt.Errorf("failed to load include file %s: %w", match, err)
        }
    }

    return nil
}

func loadAndMergeInclude(config *Config, filename string) error {
    data, err := os.ReadFile(filename)
    if err != nil {
        return fmt.Errorf("failed to read include file: %w", err)
    }

    var partial PartialConfig
    if err := yaml.Unmarshal(data, &partial); err != nil {
        return fmt.Errorf("failed to parse include file YAML: %w", err)
    }

    mergePartialConfig(config, &partial)
    return nil
}

func mergePartialConfig(config *Config, partial *PartialConfig) {
    // Only override sections present in the partial config
    if partial.Server != nil {
        mergeServerConfig(&config.Server, partial.Server)
    }
    if partial.Resolver != nil {
        mergeResolverConfig(&config.Resolver, partial.Resolver)
    }
    if partial.Database != nil {
        mergeDatabaseConfig(&config.Database, partial.Database)
    }
    if partial.Prometheus != nil {
        mergePrometheusConfig(&config.Prometheus, partial.Prometheus)
    }
    if partial.Logging != nil {
        mergeLoggingConfig(&config.Logging, partial.Logging)
    }
}

func mergeServerConfig(main *ServerConfig, partial *ServerConfig) {
    if partial.Port != "" {
        main.Port = partial.Port
    }
    if partial.ReadTimeout != 0 {
        main.ReadTimeout = partial.ReadTimeout
    }
    if partial.WriteTimeout != 0 {
        main.WriteTimeout = partial.WriteTimeout
    }
    if partial.RequestTimeout != 0 {
        main.RequestTimeout = partial.RequestTimeout
    }
}

func mergeResolverConfig(main *ResolverConfig, partial *ResolverConfig) {
    // Headers merge key by key, lists replace
    if len(partial.Headers) > 0 {
        headers := make(map[string]string, len(main.Headers)+len(partial.Headers))
        for k, v := range main.Headers {
            headers[http.CanonicalHeaderKey(k)] = v
        }
        for k, v := range partial.Headers {
            headers[http.CanonicalHeaderKey(k)] = v
        }
        main.Headers = headers
    }
    if len(partial.LinkRels) > 0 {
        main.LinkRels = partial.LinkRels
    }
    if len(partial.MetaNames) > 0 {
        main.MetaNames = partial.MetaNames
    }
    if partial.Timeout != 0 {
        main.Timeout = partial.Timeout
    }
    if partial.MaxBodyBytes != 0 {
        main.MaxBodyBytes = partial.MaxBodyBytes
    }
    if partial.PreferLargest != nil {
        main.PreferLargest = partial.PreferLargest
    }
    if partial.BatchWorkers != 0 {
        main.BatchWorkers = partial.BatchWorkers
    }
    if partial.MaxBatchSize != 0 {
        main.MaxBatchSize = partial.MaxBatchSize
    }
    if partial.InsecureSkipVerify != nil {
        main.InsecureSkipVerify = partial.InsecureSkipVerify
    }
    if partial.SkipDefaultIcon != nil {
        main.SkipDefaultIcon = partial.SkipDefaultIcon
    }
}

func mergeDatabaseConfig(main *DatabaseConfig, partial *DatabaseConfig) {
    main.Enabled = partial.Enabled
    if partial.Type != "" {
        main.Type = partial.Type
    }
    if partial.Path != "" {
        main.Path = partial.Path
    }
    if partial.CleanupInterval != 0 {
        main.CleanupInterval = partial.CleanupInterval
    }
    if partial.HistoryRetention != 0 {
        main.HistoryRetention = partial.HistoryRetention
    }
}

func mergePrometheusConfig(main *PrometheusConfig, partial *PrometheusConfig) {
    main.Enabled = partial.Enabled
    if partial.MetricsPath != "" {
        main.MetricsPath = partial.MetricsPath
    }
}

func mergeLoggingConfig(main *LoggingConfig, partial *LoggingConfig) {
    if partial.Level != "" {
        main.Level = partial.Level
    }
    if partial.Format != "" {
        main.Format = partial.Format
    }
}

func setDefaults(cfg *Config) {
    // Server defaults
    if cfg.Server.Port == "" {
        cfg.Server.Port = ":5000"
    }
    if cfg.Server.ReadTimeout == 0 {
        cfg.Server.ReadTimeout = 15 * time.Second
    }
    if cfg.Server.WriteTimeout == 0 {
        cfg.Server.WriteTimeout = 2 * time.Minute
    }
    if cfg.Server.RequestTimeout == 0 {
        cfg.Server.RequestTimeout = 90 * time.Second
    }

    // Resolver defaults; configured headers override the defaults key by key
    headers := favicon.DefaultHeaders()
    for k, v := range cfg.Resolver.Headers {
        headers[http.CanonicalHeaderKey(k)] = v
    }
    cfg.Resolver.Headers = headers
    if len(cfg.Resolver.LinkRels) == 0 {
        cfg.Resolver.LinkRels = append([]string(nil), favicon.DefaultLinkRels...)
    }
    if len(cfg.Resolver.MetaNames) == 0 {
        cfg.Resolver.MetaNames = append([]string(nil), favicon.DefaultMetaNames...)
    }
    if cfg.Resolver.Timeout == 0 {
        cfg.Resolver.Timeout = favicon.DefaultTimeout
    }
    if cfg.Resolver.MaxBodyBytes == 0 {
        cfg.Resolver.MaxBodyBytes = favicon.DefaultMaxBodyBytes
    }
    if cfg.Resolver.PreferLargest == nil {
        preferLargest := true
        cfg.Resolver.PreferLargest = &preferLargest
    }
    if cfg.Resolver.BatchWorkers == 0 {
        cfg.Resolver.BatchWorkers = favicon.DefaultBatchWorkers
    }
    if cfg.Resolver.MaxBatchSize == 0 {
        cfg.Resolver.MaxBatchSize = 50
    }

    // Database defaults
    if cfg.Database.Type == "" {
        cfg.Database.Type = "boltdb"
    }
    if cfg.Database.Path == "" {
        cfg.Database.Path = "./data/iconhunt.db"
    }
    if cfg.Database.CleanupInterval == 0 {
        cfg.Database.CleanupInterval = time.Hour
    }
    if cfg.Database.HistoryRetention == 0 {
        cfg.Database.HistoryRetention = 7 * 24 * time.Hour
    }

    // Include defaults
    if cfg.Include.Pattern == "" {
        cfg.Include.Pattern = "*.yaml"
    }

    // Prometheus defaults
    if cfg.Prometheus.MetricsPath == "" {
        cfg.Prometheus.MetricsPath = "/metrics"
    }

    // Logging defaults
    if cfg.Logging.Level == "" {
        cfg.Logging.Level = "info"
    }
    if cfg.Logging.Format == "" {
        cfg.Logging.Format = "text"
    }
}

func validate(cfg *Config) error {
    if cfg.Server.Port == "" {
        return fmt.Errorf("server.port cannot be empty")
    }
    if cfg.Database.Type != "boltdb" {
        return fmt.Errorf("only boltdb is supported currently")
    }
    if cfg.Database.Enabled && cfg.Database.Path == "" {
        return fmt.Errorf("database.path is required when database.enabled is true")
    }
    if cfg.Database.HistoryRetention < 0 {
        return fmt.Errorf("database.history_retention cannot be negative")
    }

    if cfg.Resolver.Timeout < 0 {
        return fmt.Errorf("resolver.timeout cannot be negative")
    }
    if cfg.Resolver.MaxBodyBytes < 0 {
        return fmt.Errorf("resolver.max_body_bytes cannot be negative")
    }
    if cfg.Resolver.BatchWorkers < 1 {
        return fmt.Errorf("resolver.batch_workers must be at least 1")
    }
    if cfg.Resolver.MaxBatchSize < 1 {
        return fmt.Errorf("resolver.max_batch_size must be at least 1")
    }
    for _, rel := range cfg.Resolver.LinkRels {
        if strings.TrimSpace(rel) == "" {
            return fmt.Errorf("resolver.link_rels contains an empty value")
        }
    }
    for _, name := range cfg.Resolver.MetaNames {
        if strings.TrimSpace(name) == "" {
            return fmt.Errorf("resolver.meta_names contains an empty value")
        }
    }
    for key := range cfg.Resolver.Headers {
        if strings.TrimSpace(key) == "" || strings.ContainsAny(key, " :\r\n") {
            return fmt.Errorf("resolver.headers contains invalid header name %q", key)
        }
    }

    if !strings.HasPrefix(cfg.Prometheus.MetricsPath, "/") {
        return fmt.Errorf("prometheus.metrics_path must start with '/'")
    }

    switch cfg.Logging.Format {
    case "text", "json":
    default:
        return fmt.Errorf("logging.format must be 'text' or 'json'")
    }

    // Validate include configuration
    if cfg.Include.Enabled {
        if cfg.Include.Directory == "" {
            return fmt.Errorf("include.directory must be specified when include.enabled is true")
        }
        if !isValidGlobPattern(cfg.Include.Pattern) {
            return fmt.Errorf("include.pattern contains invalid glob pattern: %s", cfg.Include.Pattern)
        }
    }

    return nil
}

// isValidGlobPattern checks if a string is a valid glob pattern
func isValidGlobPattern(pattern string) bool {
    if strings.Contains(pattern, "/") || strings.Contains(pattern, "\\") {
        return false
    }
    _, err := filepath.Match(pattern, "test.yaml")
    return err == nil
}
