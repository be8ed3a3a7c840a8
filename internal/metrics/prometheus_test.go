package metrics

import (
    "context"
    "errors"
    "path/filepath"
    "testing"
    "time"

    "github.com/prometheus/client_golang/prometheus/testutil"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "iconhunt/internal/database"
    "iconhunt/internal/favicon"
)

var _ favicon.Observer = (*Collector)(nil)

func TestRecordLookup(t *testing.T) {
    c := NewCollector(nil)
    before := testutil.ToFloat64(LookupTotal.WithLabelValues("http", "ok"))

    c.RecordLookup("http", "ok", 3, 120*time.Millisecond)

    assert.Equal(t, before+1, testutil.ToFloat64(LookupTotal.WithLabelValues("http", "ok")))
}

func TestObserverCounters(t *testing.T) {
    c := NewCollector(nil)
    probes := testutil.ToFloat64(DefaultIconProbes.WithLabelValues(favicon.ProbeFound))
    skipped := testutil.ToFloat64(TagsSkipped.WithLabelValues(favicon.SkipDataURI))

    c.DefaultIconProbe(favicon.ProbeFound)
    c.TagSkipped(favicon.SkipDataURI)

    assert.Equal(t, probes+1, testutil.ToFloat64(DefaultIconProbes.WithLabelValues(favicon.ProbeFound)))
    assert.Equal(t, skipped+1, testutil.ToFloat64(TagsSkipped.WithLabelValues(favicon.SkipDataURI)))
}

func TestRecordDatabaseOperation(t *testing.T) {
    c := NewCollector(nil)
    failures := testutil.ToFloat64(DatabaseOperations.WithLabelValues("record", "error"))

    c.RecordDatabaseOperation("record", errors.New("disk full"))

    assert.Equal(t, failures+1, testutil.ToFloat64(DatabaseOperations.WithLabelValues("record", "error")))
}

func TestUpdateSystemMetrics(t *testing.T) {
    store, err := database.NewBoltStore(filepath.Join(t.TempDir(), "m.db"))
    require.NoError(t, err)
    defer store.Close()

    ctx := context.Background()
    require.NoError(t, store.RecordLookup(ctx, &database.Lookup{URL: "u", Outcome: "ok"}))

    c := NewCollector(store)
    require.NoError(t, c.UpdateSystemMetrics(ctx))
    assert.Equal(t, float64(1), testutil.ToFloat64(StoredLookups))

    assert.NoError(t, NewCollector(nil).UpdateSystemMetrics(ctx))
}
