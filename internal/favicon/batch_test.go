package favicon

import (
    "context"
    "net/http"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestResolveAll(t *testing.T) {
    ok := site(t, `<link rel="icon" sizes="32x32" href="/i.png">`, http.StatusNotFound)

    urls := []string{ok.URL, "not a url", ok.URL + "/again"}
    items := quietResolver().ResolveAll(context.Background(), urls, FetchOptions{PreferLargestOnly: true}, 2)
    require.Len(t, items, 3)

    assert.Equal(t, OutcomeOK, items[0].Outcome)
    best, found := items[0].Result.Best()
    require.True(t, found)
    assert.Equal(t, ok.URL+"/i.png", best.URL)

    assert.Equal(t, OutcomeInvalidURL, items[1].Outcome)
    assert.Nil(t, items[1].Result)
    assert.NotEmpty(t, items[1].Error)

    assert.Equal(t, "not a url", items[1].URL)
    assert.Equal(t, OutcomeOK, items[2].Outcome)
}

func TestResolveAllEmpty(t *testing.T) {
    assert.Empty(t, quietResolver().ResolveAll(context.Background(), nil, FetchOptions{}, 0))
}
