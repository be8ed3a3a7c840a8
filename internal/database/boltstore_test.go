package database

import (
    "context"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *BoltStore {
    t.Helper()
    store, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "lookups.db"))
    require.NoError(t, err)
    t.Cleanup(func() { store.Close() })
    return store
}

func TestRecordAndGetLookup(t *testing.T) {
    store := openStore(t)
    ctx := context.Background()

    lookup := &Lookup{URL: "https://example.com", Outcome: "ok", IconCount: 3}
    require.NoError(t, store.RecordLookup(ctx, lookup))
    require.NotEmpty(t, lookup.ID)
    require.False(t, lookup.Timestamp.IsZero())

    got, err := store.GetLookup(ctx, lookup.ID)
    require.NoError(t, err)
    assert.Equal(t, lookup.URL, got.URL)
    assert.Equal(t, 3, got.IconCount)

    _, err = store.GetLookup(ctx, "missing")
    assert.ErrorIs(t, err, ErrLookupNotFound)
}

func TestGetLookupsNewestFirstWithFilters(t *testing.T) {
    store := openStore(t)
    ctx := context.Background()
    base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

    for i, outcome := range []string{"ok", "fetch_error", "ok", "network_error", "ok"} {
        require.NoError(t, store.RecordLookup(ctx, &Lookup{
            URL:       "https://example.com",
            Outcome:   outcome,
            IconCount: i,
            Timestamp: base.Add(time.Duration(i) * time.Minute),
        }))
    }

    all, err := store.GetLookups(ctx, LookupFilters{})
    require.NoError(t, err)
    require.Len(t, all, 5)
    assert.Equal(t, 4, all[0].IconCount)
    assert.Equal(t, 0, all[4].IconCount)

    ok, err := store.GetLookups(ctx, LookupFilters{Outcome: "ok", Limit: 2})
    require.NoError(t, err)
    require.Len(t, ok, 2)
    assert.Equal(t, 4, ok[0].IconCount)
    assert.Equal(t, 2, ok[1].IconCount)

    since := base.Add(3 * time.Minute)
    recent, err := store.GetLookups(ctx, LookupFilters{Since: &since})
    require.NoError(t, err)
    assert.Len(t, recent, 2)
}

func TestDeleteLookupsBefore(t *testing.T) {
    store := openStore(t)
    ctx := context.Background()
    now := time.Now()

    old := &Lookup{URL: "https://old.example", Outcome: "ok", Timestamp: now.Add(-48 * time.Hour)}
    fresh := &Lookup{URL: "https://new.example", Outcome: "ok", Timestamp: now}
    require.NoError(t, store.RecordLookup(ctx, old))
    require.NoError(t, store.RecordLookup(ctx, fresh))

    deleted, err := store.DeleteLookupsBefore(ctx, now.Add(-24*time.Hour))
    require.NoError(t, err)
    assert.Equal(t, 1, deleted)

    _, err = store.GetLookup(ctx, old.ID)
    assert.ErrorIs(t, err, ErrLookupNotFound)
    _, err = store.GetLookup(ctx, fresh.ID)
    assert.NoError(t, err)
}

func TestGetDatabaseStats(t *testing.T) {
    store := openStore(t)
    ctx := context.Background()

    for _, outcome := range []string{"ok", "ok", "invalid_url"} {
        require.NoError(t, store.RecordLookup(ctx, &Lookup{URL: "u", Outcome: outcome}))
        time.Sleep(time.Millisecond)
    }

    stats, err := store.GetDatabaseStats(ctx)
    require.NoError(t, err)
    assert.Equal(t, 3, stats.TotalLookups)
    assert.Equal(t, map[string]int{"ok": 2, "invalid_url": 1}, stats.ByOutcome)
    assert.Positive(t, stats.DatabaseSize)
    assert.False(t, stats.NewestEntry.Before(stats.OldestEntry))
}

func TestStartCleanupStopsOnCancel(t *testing.T) {
    store := openStore(t)
    ctx, cancel := context.WithCancel(context.Background())

    require.NoError(t, store.RecordLookup(ctx, &Lookup{URL: "u", Outcome: "ok", Timestamp: time.Now().Add(-time.Hour)}))

    purged := make(chan int, 1)
    done := make(chan struct{})
    go func() {
        store.StartCleanup(ctx, 10*time.Millisecond, time.Minute, func(n int) {
            select {
            case purged <- n:
            default:
            }
        })
        close(done)
    }()

    select {
    case n := <-purged:
        assert.Equal(t, 1, n)
    case <-time.After(2 * time.Second):
        t.Fatal("cleanup never ran")
    }

    cancel()
    select {
    case <-done:
    case <-time.After(2 * time.Second):
        t.Fatal("cleanup did not stop")
    }
}
