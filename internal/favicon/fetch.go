// internal/favicon/fetch.go
package favicon

import (
    "context"
    "crypto/tls"
    "fmt"
    "io"
    "net/http"
    "net/url"

    "github.com/go-resty/resty/v2"
)

const maxRedirects = 10

// page is the outcome of the primary fetch.
type page struct {
    FinalURL    *url.URL
    ContentType string
    Body        []byte
}

func newClient(cfg Config, transport http.RoundTripper) *resty.Client {
    client := resty.New().
        SetTimeout(cfg.Timeout).
        SetHeaders(cfg.Headers).
        SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))

    if transport != nil {
        client.SetTransport(transport)
    }
    if cfg.InsecureSkipVerify {
        client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in via config
    }

    return client
}

// fetchPage downloads target, following redirects. Transport failures become
// NetworkError and statuses outside 2xx/3xx become FetchError.
func (r *Resolver) fetchPage(ctx context.Context, target string, headers map[string]string) (*page, error) {
    resp, err := r.client.R().
        SetContext(ctx).
        SetHeaders(headers).
        SetDoNotParseResponse(true).
        Get(target)
    if err != nil {
        return nil, &NetworkError{URL: target, Err: err}
    }

    raw := resp.RawResponse
    defer raw.Body.Close()

    if raw.StatusCode < 200 || raw.StatusCode >= 400 {
        return nil, &FetchError{URL: target, StatusCode: raw.StatusCode}
    }

    body, err := io.ReadAll(io.LimitReader(raw.Body, r.cfg.MaxBodyBytes))
    if err != nil {
        return nil, &NetworkError{URL: target, Err: fmt.Errorf("failed to read body: %w", err)}
    }

    finalURL := raw.Request.URL
    if finalURL == nil {
        finalURL, _ = url.Parse(target)
    }

    return &page{
        FinalURL:    finalURL,
        ContentType: raw.Header.Get("Content-Type"),
        Body:        body,
    }, nil
}

// probeDefaultIcon issues HEAD scheme://host/favicon.ico. Any failure means
// there is no default icon; the caller never sees the error.
func (r *Resolver) probeDefaultIcon(ctx context.Context, pageURL *url.URL, headers map[string]string) (*Icon, error) {
    probe := url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host, Path: "/favicon.ico"}

    resp, err := r.client.R().
        SetContext(ctx).
        SetHeaders(headers).
        Head(probe.String())
    if err != nil {
        return nil, err
    }

    if resp.StatusCode() != http.StatusOK {
        return nil, nil
    }

    iconURL := probe.String()
    if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
        iconURL = raw.Request.URL.String()
    }

    return &Icon{URL: iconURL, Format: "ico"}, nil
}
