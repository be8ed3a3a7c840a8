// internal/favicon/config.go
package favicon

import (
    "net/http"
    "strings"
    "time"
)

const (
    DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
    DefaultTimeout      = 30 * time.Second
    DefaultMaxBodyBytes = 10 * 1024 * 1024
)

var (
    DefaultLinkRels = []string{
        "icon",
        "shortcut icon",
        "apple-touch-icon",
        "apple-touch-icon-precomposed",
    }

    DefaultMetaNames = []string{
        "msapplication-TileImage",
        "og:image",
    }
)

// DefaultHeaders returns the base request headers. Configured headers are
// applied on top of them.
func DefaultHeaders() map[string]string {
    return map[string]string{
        "User-Agent":      DefaultUserAgent,
        "Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
        "Accept-Language": "en-US,en;q=0.9",
    }
}

// Config is the immutable resolver configuration. The zero value is usable;
// empty fields fall back to the package defaults.
type Config struct {
    Headers            map[string]string
    LinkRels           []string
    MetaNames          []string
    Timeout            time.Duration
    InsecureSkipVerify bool
    MaxBodyBytes       int64
    SkipDefaultIcon    bool
}

// normalized returns a private copy with defaults applied and tag names
// lower-cased for matching.
func (c Config) normalized() Config {
    out := Config{
        Headers:            mergeHeaders(DefaultHeaders(), c.Headers),
        Timeout:            c.Timeout,
        InsecureSkipVerify: c.InsecureSkipVerify,
        MaxBodyBytes:       c.MaxBodyBytes,
        SkipDefaultIcon:    c.SkipDefaultIcon,
    }

    rels := c.LinkRels
    if len(rels) == 0 {
        rels = DefaultLinkRels
    }
    out.LinkRels = lowerAll(rels)

    names := c.MetaNames
    if len(names) == 0 {
        names = DefaultMetaNames
    }
    out.MetaNames = lowerAll(names)

    if out.Timeout <= 0 {
        out.Timeout = DefaultTimeout
    }
    if out.MaxBodyBytes <= 0 {
        out.MaxBodyBytes = DefaultMaxBodyBytes
    }

    return out
}

// mergeHeaders copies base and applies overrides on top. Keys are
// canonicalised so "user-agent" replaces "User-Agent".
func mergeHeaders(base, overrides map[string]string) map[string]string {
    out := make(map[string]string, len(base)+len(overrides))
    for k, v := range base {
        out[http.CanonicalHeaderKey(k)] = v
    }
    for k, v := range overrides {
        out[http.CanonicalHeaderKey(k)] = v
    }
    return out
}

func lowerAll(values []string) []string {
    out := make([]string, 0, len(values))
    for _, v := range values {
        v = strings.ToLower(strings.Join(strings.Fields(v), " "))
        if v != "" {
            out = append(out, v)
        }
    }
    return out
}

func contains(values []string, v string) bool {
    for _, candidate := range values {
        if candidate == v {
            return true
        }
    }
    return false
}
