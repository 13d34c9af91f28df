package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/xolak-dev/xolak-cli/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	historyBucket = "history"
	keyBytes      = 8
	lockTimeout   = time.Second
)

// boltStore implements a Store backed by BoltDB. The file is opened per
// operation and closed straight after, so concurrent CLI runs only contend
// for the few milliseconds a write takes. Keys are big-endian unix-nano
// timestamps so a cursor walks entries in ask order.
type boltStore struct {
	path            string
	lastCleanup     atomic.Int64 // zero: the first write of a process sweeps
	historyTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt prepares a BoltDB-backed Store at path. The database file itself
// is created by the first Record.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	return &boltStore{
		path:            path,
		historyTTL:      opts.HistoryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}, nil
}

// Close is a no-op: no handle is held between operations.
func (b *boltStore) Close() error { return nil }

// Record appends entry to the history. AskedAt defaults to now and the
// expiry is always derived from the store's TTL. Expired entries are swept
// in the same transaction once per cleanup interval.
func (b *boltStore) Record(entry domain.HistoryEntry) error {
	if b == nil {
		return nil
	}

	now := b.now()
	if entry.AskedAt.IsZero() {
		entry.AskedAt = now.UTC()
	}
	entry.ExpiresAt = entry.AskedAt.Add(b.historyTTL)

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	sweep := now.Sub(time.Unix(b.lastCleanup.Load(), 0)) >= b.cleanupInterval
	err = b.update(func(bucket *bolt.Bucket) error {
		key := encodeKey(entry.AskedAt)
		// Two entries within the same nanosecond: bump until free.
		for bucket.Get(key) != nil {
			key = encodeKey(decodeKey(key).Add(time.Nanosecond))
		}
		if err := bucket.Put(key, value); err != nil {
			return err
		}
		if sweep {
			return deleteExpired(bucket, now)
		}
		return nil
	})
	if err == nil && sweep {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// Recent returns up to limit unexpired entries, newest first. A limit <= 0
// returns everything. The database is opened read-only and a missing file
// means an empty history.
func (b *boltStore) Recent(limit int) ([]domain.HistoryEntry, error) {
	if b == nil {
		return nil, nil
	}

	now := b.now()
	var out []domain.HistoryEntry
	err := b.view(func(bucket *bolt.Bucket) error {
		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			entry, ok := decodeEntry(v)
			if !ok || !entry.ExpiresAt.After(now) {
				continue
			}
			out = append(out, entry)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (b *boltStore) update(fn func(*bolt.Bucket) error) error {
	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return fmt.Errorf("open bbolt db: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		if err != nil {
			return fmt.Errorf("init bucket: %w", err)
		}
		return fn(bucket)
	})
}

func (b *boltStore) view(fn func(*bolt.Bucket) error) error {
	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: lockTimeout, ReadOnly: true})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open bbolt db: %w", err)
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return nil
		}
		return fn(bucket)
	})
}

// deleteExpired removes entries past their expiry to avoid unbounded growth.
func deleteExpired(bucket *bolt.Bucket, now time.Time) error {
	var expired [][]byte
	cursor := bucket.Cursor()
	for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
		entry, ok := decodeEntry(v)
		if !ok || !entry.ExpiresAt.After(now) {
			expired = append(expired, append([]byte(nil), k...))
		}
	}
	for _, k := range expired {
		if err := bucket.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func encodeKey(t time.Time) []byte {
	buf := make([]byte, keyBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))
	return buf
}

func decodeKey(k []byte) time.Time {
	if len(k) != keyBytes {
		return time.Time{}
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(k)))
}

func decodeEntry(value []byte) (domain.HistoryEntry, bool) {
	var entry domain.HistoryEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return domain.HistoryEntry{}, false
	}
	if entry.ExpiresAt.IsZero() {
		return domain.HistoryEntry{}, false
	}
	return entry, true
}
