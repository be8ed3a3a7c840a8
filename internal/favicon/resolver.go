// internal/favicon/resolver.go
package favicon

import (
    "context"
    "fmt"
    "net/http"
    "net/url"
    "path"
    "strings"

    "github.com/go-resty/resty/v2"
    "github.com/sirupsen/logrus"
)

// Observer receives per-resolution events. Implementations must be safe for
// concurrent use.
type Observer interface {
    DefaultIconProbe(result string)
    TagSkipped(reason string)
}

type nopObserver struct{}

func (nopObserver) DefaultIconProbe(string) {}
func (nopObserver) TagSkipped(string)       {}

// Probe results reported to the Observer.
const (
    ProbeFound   = "found"
    ProbeMissing = "missing"
    ProbeError   = "error"
)

// Resolver finds favicons for web pages. It holds only immutable
// configuration, so one Resolver serves any number of concurrent calls.
type Resolver struct {
    cfg      Config
    client   *resty.Client
    log      logrus.FieldLogger
    observer Observer
}

// Option customises a Resolver.
type Option func(*resolverOptions)

type resolverOptions struct {
    logger    logrus.FieldLogger
    observer  Observer
    transport http.RoundTripper
}

// WithLogger sets the logger used for debug and warning output.
func WithLogger(logger logrus.FieldLogger) Option {
    return func(o *resolverOptions) { o.logger = logger }
}

// WithObserver plugs in a metrics sink.
func WithObserver(observer Observer) Option {
    return func(o *resolverOptions) { o.observer = observer }
}

// WithTransport replaces the HTTP transport, mostly for tests.
func WithTransport(transport http.RoundTripper) Option {
    return func(o *resolverOptions) { o.transport = transport }
}

// NewResolver builds a resolver from cfg. Empty config fields take defaults.
func NewResolver(cfg Config, opts ...Option) *Resolver {
    o := resolverOptions{
        logger:   logrus.StandardLogger(),
        observer: nopObserver{},
    }
    for _, opt := range opts {
        opt(&o)
    }

    cfg = cfg.normalized()
    client := newClient(cfg, o.transport)
    client.SetLogger(o.logger)

    return &Resolver{
        cfg:      cfg,
        client:   client,
        log:      o.logger,
        observer: o.observer,
    }
}

// FetchOptions are per-call settings.
type FetchOptions struct {
    // PreferLargestOnly makes the result carry only the top ranked icon.
    PreferLargestOnly bool
    // Headers are merged over the configured request headers.
    Headers map[string]string
}

// ValidateURL checks that raw is absolute with a scheme and a host.
func ValidateURL(raw string) (*url.URL, error) {
    u, err := url.Parse(strings.TrimSpace(raw))
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
    }
    if u.Scheme == "" || u.Host == "" {
        return nil, fmt.Errorf("%w: %q needs a scheme and a host", ErrInvalidURL, raw)
    }
    return u, nil
}

// Resolve fetches rawURL, collects icon candidates and ranks them. The page
// fetch runs first so the default icon probe can target the host the page
// finally redirected to.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, opts FetchOptions) (*Result, error) {
    target, err := ValidateURL(rawURL)
    if err != nil {
        return nil, err
    }

    log := r.log.WithField("url", target.String())

    pg, err := r.fetchPage(ctx, target.String(), opts.Headers)
    if err != nil {
        return nil, err
    }
    if pg.FinalURL.String() != target.String() {
        log = log.WithField("final_url", pg.FinalURL.String())
    }

    icons := newIconSet()

    if !r.cfg.SkipDefaultIcon {
        icon, err := r.probeDefaultIcon(ctx, pg.FinalURL, opts.Headers)
        switch {
        case err != nil:
            log.WithError(err).Debug("Default icon probe failed")
            r.observer.DefaultIconProbe(ProbeError)
        case icon == nil:
            r.observer.DefaultIconProbe(ProbeMissing)
        default:
            r.observer.DefaultIconProbe(ProbeFound)
            icons.add(*icon)
        }
    }

    doc, err := parseDocument(pg.Body, pg.ContentType)
    if err != nil {
        log.WithError(err).Warn("Failed to parse page html")
    } else {
        for _, tag := range scanTags(doc, r.cfg) {
            icon, reason := iconFromTag(tag, pg.FinalURL)
            if reason != "" {
                r.observer.TagSkipped(reason)
                log.WithFields(logrus.Fields{
                    "kind":   tag.Kind,
                    "ref":    Reference(tag),
                    "reason": reason,
                }).Debug("Skipping icon tag")
                continue
            }
            icons.add(icon)
        }
    }

    result := &Result{
        Icons:             Rank(icons.items),
        PreferLargestOnly: opts.PreferLargestOnly,
        FinalURL:          pg.FinalURL.String(),
    }

    log.WithField("icons", icons.len()).Debug("Resolved favicons")
    return result, nil
}

// Reasons a tag contributes nothing.
const (
    SkipEmptyRef = "empty_ref"
    SkipDataURI  = "data_uri"
    SkipBadURL   = "bad_url"
    SkipBadSizes = "bad_sizes"
)

// iconFromTag turns a matched tag into an icon, or returns a skip reason.
func iconFromTag(tag Tag, pageURL *url.URL) (Icon, string) {
    ref := Reference(tag)
    if ref == "" {
        return Icon{}, SkipEmptyRef
    }
    if strings.HasPrefix(ref, "data:image/") {
        return Icon{}, SkipDataURI
    }

    resolved, err := ResolveReference(pageURL, ref)
    if err != nil {
        return Icon{}, SkipBadURL
    }

    width, height, err := Dimensions(tag)
    if err != nil {
        return Icon{}, SkipBadSizes
    }

    return Icon{
        URL:    resolved.String(),
        Width:  width,
        Height: height,
        Format: FormatOf(resolved),
    }, ""
}

// ResolveReference makes ref absolute against the page URL. References with
// a host are kept, inheriting the page scheme when they have none.
func ResolveReference(pageURL *url.URL, ref string) (*url.URL, error) {
    u, err := url.Parse(ref)
    if err != nil {
        return nil, err
    }

    if u.Host != "" {
        if u.Scheme == "" {
            u.Scheme = pageURL.Scheme
        }
        return u, nil
    }

    return pageURL.ResolveReference(u), nil
}

// FormatOf returns the lower-cased file extension of the URL path.
func FormatOf(u *url.URL) string {
    ext := path.Ext(u.Path)
    return strings.ToLower(strings.TrimPrefix(ext, "."))
}
