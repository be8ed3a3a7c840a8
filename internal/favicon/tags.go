// internal/favicon/tags.go
package favicon

import (
    "bytes"
    "fmt"
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html/charset"
)

// TagKind tells where a candidate came from.
type TagKind string

const (
    KindLink TagKind = "link"
    KindMeta TagKind = "meta"
)

// Attributed is anything that can answer attribute lookups.
type Attributed interface {
    Attr(name string) string
}

// Tag is a matched <link> or <meta> element reduced to its attributes.
type Tag struct {
    Kind  TagKind
    Attrs map[string]string
}

// Attr returns the attribute value, or "" when absent.
func (t Tag) Attr(name string) string {
    return t.Attrs[strings.ToLower(name)]
}

// Reference returns the href (links) or content (metas) value, trimmed.
func Reference(t Attributed) string {
    ref := t.Attr("href")
    if ref == "" {
        ref = t.Attr("content")
    }
    return strings.TrimSpace(ref)
}

// parseDocument decodes body using the declared content type (falling back
// to sniffing) and builds a queryable document.
func parseDocument(body []byte, contentType string) (*goquery.Document, error) {
    reader, err := charset.NewReader(bytes.NewReader(body), contentType)
    if err != nil {
        return goquery.NewDocumentFromReader(bytes.NewReader(body))
    }

    doc, err := goquery.NewDocumentFromReader(reader)
    if err != nil {
        return nil, fmt.Errorf("failed to parse html: %w", err)
    }
    return doc, nil
}

// scanTags collects icon-bearing link tags followed by meta tags, each group
// in document order.
func scanTags(doc *goquery.Document, cfg Config) []Tag {
    var tags []Tag

    doc.Find("link").Each(func(_ int, s *goquery.Selection) {
        tag := newTag(KindLink, s)
        if !relMatches(tag.Attr("rel"), cfg.LinkRels) {
            return
        }
        if strings.TrimSpace(tag.Attr("href")) == "" {
            return
        }
        tags = append(tags, tag)
    })

    doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
        tag := newTag(KindMeta, s)
        if strings.TrimSpace(tag.Attr("content")) == "" {
            return
        }
        metaType := tag.Attr("name")
        if metaType == "" {
            metaType = tag.Attr("property")
        }
        if !contains(cfg.MetaNames, strings.ToLower(strings.TrimSpace(metaType))) {
            return
        }
        tags = append(tags, tag)
    })

    return tags
}

// relMatches reports whether the rel token list names a wanted relation,
// either as a whole ("shortcut icon") or through any single token
// ("alternate icon").
func relMatches(rel string, wanted []string) bool {
    tokens := strings.Fields(strings.ToLower(rel))
    if len(tokens) == 0 {
        return false
    }
    if contains(wanted, strings.Join(tokens, " ")) {
        return true
    }
    for _, token := range tokens {
        if contains(wanted, token) {
            return true
        }
    }
    return false
}

func newTag(kind TagKind, s *goquery.Selection) Tag {
    tag := Tag{Kind: kind, Attrs: make(map[string]string)}
    for _, node := range s.Nodes {
        for _, attr := range node.Attr {
            key := strings.ToLower(attr.Key)
            if _, exists := tag.Attrs[key]; !exists {
                tag.Attrs[key] = attr.Val
            }
        }
    }
    return tag
}
