package favicon

import (
    "net/url"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <meta property="og:image" content="https://cdn.example.com/og-1200x630.png">
  <meta name="msapplication-TileImage" content="/mstile-144x144.png">
  <meta name="description" content="not an icon">
  <meta name="og:image" content="">
  <link rel="stylesheet" href="/site.css">
  <link rel="ICON" type="image/png" sizes="32x32" href="/favicon-32x32.png">
  <link rel="Shortcut  Icon" href="/favicon.ico">
  <link rel="apple-touch-icon" sizes="180x180" href="/apple-touch-icon.png">
  <link rel="apple-touch-icon-precomposed" href="">
  <link rel="mask-icon" href="/safari-pinned-tab.svg">
</head>
<body></body>
</html>`

func TestScanTags(t *testing.T) {
    doc, err := parseDocument([]byte(samplePage), "text/html; charset=utf-8")
    require.NoError(t, err)

    tags := scanTags(doc, Config{}.normalized())
    require.Len(t, tags, 5)

    refs := make([]string, 0, len(tags))
    for _, tag := range tags {
        refs = append(refs, Reference(tag))
    }

    assert.Equal(t, []string{
        "/favicon-32x32.png",
        "/favicon.ico",
        "/apple-touch-icon.png",
        "https://cdn.example.com/og-1200x630.png",
        "/mstile-144x144.png",
    }, refs)

    assert.Equal(t, KindLink, tags[0].Kind)
    assert.Equal(t, KindMeta, tags[3].Kind)
}

func TestScanTagsRelTokens(t *testing.T) {
    page := `<html><head>
  <link rel="alternate icon" href="/favicon-32x32.png">
  <link rel="icon shortcut" href="/b-16x16.png">
  <link rel="alternate stylesheet" href="/dark.css">
  <link rel="  " href="/nothing.png">
</head></html>`

    doc, err := parseDocument([]byte(page), "text/html")
    require.NoError(t, err)

    tags := scanTags(doc, Config{}.normalized())
    require.Len(t, tags, 2)
    assert.Equal(t, "/favicon-32x32.png", Reference(tags[0]))
    assert.Equal(t, "/b-16x16.png", Reference(tags[1]))
}

func TestRelMatches(t *testing.T) {
    wanted := Config{}.normalized().LinkRels

    tests := map[string]bool{
        "icon":                 true,
        "Shortcut\tIcon":       true,
        "alternate icon":       true,
        "icon shortcut":        true,
        "APPLE-TOUCH-ICON":     true,
        "shortcut":             false,
        "mask-icon":            false,
        "alternate stylesheet": false,
        "":                     false,
    }

    for rel, want := range tests {
        assert.Equal(t, want, relMatches(rel, wanted), rel)
    }
}

func TestScanTagsCustomNames(t *testing.T) {
    doc, err := parseDocument([]byte(samplePage), "")
    require.NoError(t, err)

    cfg := Config{LinkRels: []string{"mask-icon"}, MetaNames: []string{"OG:IMAGE"}}.normalized()
    tags := scanTags(doc, cfg)
    require.Len(t, tags, 2)
    assert.Equal(t, "/safari-pinned-tab.svg", Reference(tags[0]))
    assert.Equal(t, "https://cdn.example.com/og-1200x630.png", Reference(tags[1]))
}

func TestScanTagsLatin1(t *testing.T) {
    body := []byte("<html><head><title>caf\xe9</title><link rel=\"icon\" href=\"/caf\xe9.png\"></head></html>")

    doc, err := parseDocument(body, "text/html; charset=iso-8859-1")
    require.NoError(t, err)

    tags := scanTags(doc, Config{}.normalized())
    require.Len(t, tags, 1)
    assert.Equal(t, "/café.png", Reference(tags[0]))
}

func TestResolveReference(t *testing.T) {
    page, err := url.Parse("https://example.com/blog/post.html")
    require.NoError(t, err)

    tests := map[string]string{
        "//cdn.example.com/favicon.png": "https://cdn.example.com/favicon.png",
        "http://other.org/icon.png":     "http://other.org/icon.png",
        "/favicon.png":                  "https://example.com/favicon.png",
        "icon.png?v2":                   "https://example.com/blog/icon.png?v2",
        "../img/touch-icon.png":         "https://example.com/img/touch-icon.png",
    }

    for ref, want := range tests {
        got, err := ResolveReference(page, ref)
        require.NoError(t, err, ref)
        assert.Equal(t, want, got.String(), ref)
    }
}

func TestFormatOf(t *testing.T) {
    for raw, want := range map[string]string{
        "https://example.com/favicon.ICO":      "ico",
        "https://example.com/a.png?v=3":        "png",
        "https://example.com/icons/":           "",
        "https://example.com/apple-touch-icon": "",
    } {
        u, err := url.Parse(raw)
        require.NoError(t, err)
        assert.Equal(t, want, FormatOf(u), raw)
    }
}

func TestIconFromTagSkips(t *testing.T) {
    page, _ := url.Parse("https://example.com/")

    _, reason := iconFromTag(linkTag(map[string]string{"href": "data:image/png;base64,iVBORw0KGgo="}), page)
    assert.Equal(t, SkipDataURI, reason)

    _, reason = iconFromTag(linkTag(map[string]string{"href": "   "}), page)
    assert.Equal(t, SkipEmptyRef, reason)

    _, reason = iconFromTag(linkTag(map[string]string{"href": "/a.png", "sizes": "big"}), page)
    assert.Equal(t, SkipBadSizes, reason)

    _, reason = iconFromTag(linkTag(map[string]string{"href": "http://[::1"}), page)
    assert.Equal(t, SkipBadURL, reason)

    icon, reason := iconFromTag(linkTag(map[string]string{"href": " /a.png ", "sizes": "64x64"}), page)
    assert.Empty(t, reason)
    assert.Equal(t, Icon{URL: "https://example.com/a.png", Width: 64, Height: 64, Format: "png"}, icon)
}
