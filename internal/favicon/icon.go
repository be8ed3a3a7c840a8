// internal/favicon/icon.go
package favicon

import (
    "sort"
)

// Icon is a discovered favicon candidate. Values are comparable and two icons
// are the same candidate iff every field matches.
type Icon struct {
    URL    string `json:"url" yaml:"url"`
    Width  int    `json:"width" yaml:"width"`
    Height int    `json:"height" yaml:"height"`
    Format string `json:"format" yaml:"format"`
}

// Square reports whether width equals height. Unknown (0x0) counts as square.
func (i Icon) Square() bool {
    return i.Width == i.Height
}

// iconSet keeps unique icons in the order they were first seen.
type iconSet struct {
    seen  map[Icon]struct{}
    items []Icon
}

func newIconSet() *iconSet {
    return &iconSet{seen: make(map[Icon]struct{})}
}

func (s *iconSet) add(icon Icon) bool {
    if _, ok := s.seen[icon]; ok {
        return false
    }
    s.seen[icon] = struct{}{}
    s.items = append(s.items, icon)
    return true
}

func (s *iconSet) len() int {
    return len(s.items)
}

// Rank orders icons square first, then by width+height descending.
// Equal keys keep their input order.
func Rank(icons []Icon) []Icon {
    ranked := make([]Icon, len(icons))
    copy(ranked, icons)

    sort.SliceStable(ranked, func(a, b int) bool {
        ia, ib := ranked[a], ranked[b]
        if ia.Square() != ib.Square() {
            return ia.Square()
        }
        return ia.Width+ia.Height > ib.Width+ib.Height
    })

    return ranked
}
