package favicon

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestRankSquareFirst(t *testing.T) {
    wide := Icon{URL: "https://a/wide.png", Width: 64, Height: 32, Format: "png"}
    square := Icon{URL: "https://a/square.png", Width: 48, Height: 48, Format: "png"}

    ranked := Rank([]Icon{wide, square})
    assert.Equal(t, []Icon{square, wide}, ranked)
}

func TestRankBySize(t *testing.T) {
    small := Icon{URL: "https://a/16.png", Width: 16, Height: 16, Format: "png"}
    big := Icon{URL: "https://a/180.png", Width: 180, Height: 180, Format: "png"}
    ico := Icon{URL: "https://a/favicon.ico", Format: "ico"}

    ranked := Rank([]Icon{ico, small, big})
    assert.Equal(t, []Icon{big, small, ico}, ranked)
}

func TestRankUnknownSizeCountsAsSquare(t *testing.T) {
    ico := Icon{URL: "https://a/favicon.ico", Format: "ico"}
    wide := Icon{URL: "https://a/og.png", Width: 1200, Height: 630, Format: "png"}

    assert.Equal(t, []Icon{ico, wide}, Rank([]Icon{wide, ico}))
}

func TestRankStableTies(t *testing.T) {
    a := Icon{URL: "https://a/a.png", Width: 32, Height: 32, Format: "png"}
    b := Icon{URL: "https://a/b.png", Width: 32, Height: 32, Format: "png"}

    assert.Equal(t, []Icon{a, b}, Rank([]Icon{a, b}))
    assert.Equal(t, []Icon{b, a}, Rank([]Icon{b, a}))
}

func TestRankDoesNotMutateInput(t *testing.T) {
    in := []Icon{{URL: "x", Width: 1, Height: 2}, {URL: "y", Width: 3, Height: 3}}
    _ = Rank(in)
    assert.Equal(t, "x", in[0].URL)
}

func TestIconSetDeduplicates(t *testing.T) {
    set := newIconSet()
    icon := Icon{URL: "https://a/x.png", Width: 32, Height: 32, Format: "png"}

    assert.True(t, set.add(icon))
    assert.False(t, set.add(icon))
    assert.True(t, set.add(Icon{URL: "https://a/x.png", Width: 16, Height: 16, Format: "png"}))
    assert.Equal(t, 2, set.len())
}
