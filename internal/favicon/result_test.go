package favicon

import (
    "encoding/json"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestResultJSONKeepsRankOrder(t *testing.T) {
    icons := make([]Icon, 12)
    for i := range icons {
        icons[i] = Icon{URL: "https://example.com/" + strings.Repeat("i", i+1) + ".png", Format: "png"}
    }

    data, err := json.Marshal(&Result{Icons: icons})
    require.NoError(t, err)

    s := string(data)
    assert.True(t, strings.HasPrefix(s, `{"favicons":{"0":{`))
    assert.Less(t, strings.Index(s, `"2":`), strings.Index(s, `"10":`))
    assert.True(t, json.Valid(data))
}

func TestResultJSONEmpty(t *testing.T) {
    for _, largest := range []bool{true, false} {
        data, err := json.Marshal(&Result{PreferLargestOnly: largest})
        require.NoError(t, err)
        assert.Equal(t, "{}", string(data))
    }
}

func TestResultRanked(t *testing.T) {
    r := &Result{Icons: []Icon{{URL: "a"}, {URL: "b"}}}
    assert.Equal(t, map[int]Icon{0: {URL: "a"}, 1: {URL: "b"}}, r.Ranked())

    var nilResult *Result
    _, ok := nilResult.Best()
    assert.False(t, ok)
}
