// internal/database/boltstore.go - BoltDB lookup log
package database

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"
    "go.etcd.io/bbolt"
)

var (
    LookupsBucket   = []byte("lookups")
    LookupIDsBucket = []byte("lookup_ids")
    MetaBucket      = []byte("meta")
)

type BoltStore struct {
    db   *bbolt.DB
    path string
}

func NewBoltStore(path string) (*BoltStore, error) {
    // Create directory if it doesn't exist
    if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
        return nil, fmt.Errorf("failed to create data directory: %w", err)
    }

    db, err := bbolt.Open(path, 0600, &bbolt.Options{
        Timeout: 1 * time.Second,
    })
    if err != nil {
        return nil, fmt.Errorf("failed to open BoltDB: %w", err)
    }

    store := &BoltStore{db: db, path: path}

    if err := store.initBuckets(); err != nil {
        db.Close()
        return nil, fmt.Errorf("failed to initialize buckets: %w", err)
    }

    return store, nil
}

func (s *BoltStore) initBuckets() error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        buckets := [][]byte{LookupsBucket, LookupIDsBucket, MetaBucket}
        for _, bucket := range buckets {
            if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
                return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
            }
        }
        return nil
    })
}

// lookupKey sorts chronologically so cursors walk the log in time order.
func lookupKey(l *Lookup) []byte {
    return []byte(fmt.Sprintf("%020d:%s", l.Timestamp.UnixNano(), l.ID))
}

func (s *BoltStore) RecordLookup(ctx context.Context, lookup *Lookup) error {
    if lookup.ID == "" {
        lookup.ID = uuid.New().String()
    }
    if lookup.Timestamp.IsZero() {
        lookup.Timestamp = time.Now()
    }

    data, err := json.Marshal(lookup)
    if err != nil {
        return fmt.Errorf("failed to marshal lookup: %w", err)
    }

    return s.db.Update(func(tx *bbolt.Tx) error {
        key := lookupKey(lookup)
        if err := tx.Bucket(LookupsBucket).Put(key, data); err != nil {
            return err
        }
        return tx.Bucket(LookupIDsBucket).Put([]byte(lookup.ID), key)
    })
}

func (s *BoltStore) GetLookup(ctx context.Context, id string) (*Lookup, error) {
    var lookup Lookup

    err := s.db.View(func(tx *bbolt.Tx) error {
        key := tx.Bucket(LookupIDsBucket).Get([]byte(id))
        if key == nil {
            return ErrLookupNotFound
        }
        v := tx.Bucket(LookupsBucket).Get(key)
        if v == nil {
            return ErrLookupNotFound
        }
        return json.Unmarshal(v, &lookup)
    })

    if err != nil {
        return nil, err
    }
    return &lookup, nil
}

// GetLookups returns matching lookups, newest first.
func (s *BoltStore) GetLookups(ctx context.Context, filters LookupFilters) ([]Lookup, error) {
    var lookups []Lookup

    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(LookupsBucket).Cursor()

        for k, v := c.Last(); k != nil; k, v = c.Prev() {
            var lookup Lookup
            if err := json.Unmarshal(v, &lookup); err != nil {
                return fmt.Errorf("failed to unmarshal lookup %s: %w", k, err)
            }

            if filters.Since != nil && lookup.Timestamp.Before(*filters.Since) {
                break
            }
            if filters.Outcome != "" && lookup.Outcome != filters.Outcome {
                continue
            }
            if filters.URL != "" && lookup.URL != filters.URL {
                continue
            }

            lookups = append(lookups, lookup)
            if filters.Limit > 0 && len(lookups) >= filters.Limit {
                break
            }
        }
        return nil
    })

    return lookups, err
}

// DeleteLookupsBefore drops every lookup recorded before cutoff.
func (s *BoltStore) DeleteLookupsBefore(ctx context.Context, cutoff time.Time) (int, error) {
    deletedCount := 0

    err := s.db.Update(func(tx *bbolt.Tx) error {
        lookups := tx.Bucket(LookupsBucket)
        ids := tx.Bucket(LookupIDsBucket)

        var keysToDelete [][]byte
        var idsToDelete [][]byte

        c := lookups.Cursor()
        for k, v := c.First(); k != nil; k, v = c.Next() {
            var lookup Lookup
            if err := json.Unmarshal(v, &lookup); err != nil {
                continue
            }
            if !lookup.Timestamp.Before(cutoff) {
                break
            }
            keysToDelete = append(keysToDelete, copyBytes(k))
            idsToDelete = append(idsToDelete, []byte(lookup.ID))
        }

        for i, key := range keysToDelete {
            if err := lookups.Delete(key); err != nil {
                logrus.WithError(err).Error("Failed to delete lookup entry")
                continue
            }
            if err := ids.Delete(idsToDelete[i]); err != nil {
                logrus.WithError(err).Error("Failed to delete lookup index entry")
            }
            deletedCount++
        }

        return nil
    })

    if err != nil {
        return 0, fmt.Errorf("failed to delete old lookups: %w", err)
    }

    logrus.WithFields(logrus.Fields{
        "deleted_count": deletedCount,
        "cutoff_time":   cutoff,
    }).Info("Deleted old lookup entries")

    return deletedCount, nil
}

func (s *BoltStore) GetDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
    stats := &DatabaseStats{ByOutcome: make(map[string]int)}

    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(LookupsBucket).Cursor()

        for k, v := c.First(); k != nil; k, v = c.Next() {
            var lookup Lookup
            if err := json.Unmarshal(v, &lookup); err != nil {
                continue
            }
            if stats.TotalLookups == 0 {
                stats.OldestEntry = lookup.Timestamp
            }
            stats.NewestEntry = lookup.Timestamp
            stats.TotalLookups++
            stats.ByOutcome[lookup.Outcome]++
        }
        return nil
    })

    if err != nil {
        return nil, fmt.Errorf("failed to get database stats: %w", err)
    }

    if fileInfo, err := os.Stat(s.path); err == nil {
        stats.DatabaseSize = fileInfo.Size()
    }

    return stats, nil
}

// StartCleanup purges lookups older than retention every interval until ctx
// is done.
func (s *BoltStore) StartCleanup(ctx context.Context, interval, retention time.Duration, onPurge func(int)) {
    if interval <= 0 || retention <= 0 {
        return
    }

    ticker := time.NewTicker(interval)
    defer ticker.Stop()

    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            deleted, err := s.DeleteLookupsBefore(ctx, time.Now().Add(-retention))
            if err != nil {
                logrus.WithError(err).Error("Lookup cleanup failed")
                continue
            }
            if onPurge != nil {
                onPurge(deleted)
            }
        }
    }
}

func (s *BoltStore) Close() error {
    return s.db.Close()
}

func copyBytes(b []byte) []byte {
    c := make([]byte, len(b))
    copy(c, b)
    return c
}
