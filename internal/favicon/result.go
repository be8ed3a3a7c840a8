// internal/favicon/result.go
package favicon

import (
    "bytes"
    "encoding/json"
    "strconv"
)

// Result is the ranked outcome of one resolution.
type Result struct {
    Icons             []Icon
    PreferLargestOnly bool
    FinalURL          string
}

// Best returns the top ranked icon.
func (r *Result) Best() (Icon, bool) {
    if r == nil || len(r.Icons) == 0 {
        return Icon{}, false
    }
    return r.Icons[0], true
}

// MarshalJSON renders the top icon as a flat object ({} when nothing was
// found) or, when every icon was asked for, {"favicons": {"0": ..., "1": ...}}
// with keys written in rank order.
func (r *Result) MarshalJSON() ([]byte, error) {
    if r.PreferLargestOnly {
        best, ok := r.Best()
        if !ok {
            return []byte("{}"), nil
        }
        return json.Marshal(best)
    }

    if len(r.Icons) == 0 {
        return []byte("{}"), nil
    }

    var buf bytes.Buffer
    buf.WriteString(`{"favicons":{`)
    for i, icon := range r.Icons {
        if i > 0 {
            buf.WriteByte(',')
        }
        buf.WriteString(strconv.Quote(strconv.Itoa(i)))
        buf.WriteByte(':')

        data, err := json.Marshal(icon)
        if err != nil {
            return nil, err
        }
        buf.Write(data)
    }
    buf.WriteString(`}}`)

    return buf.Bytes(), nil
}

// Ranked returns the icons keyed by rank, for encoders that cannot use
// MarshalJSON (YAML output of the command line client).
func (r *Result) Ranked() map[int]Icon {
    out := make(map[int]Icon, len(r.Icons))
    for i, icon := range r.Icons {
        out[i] = icon
    }
    return out
}
