// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/lunchroulette/internal/logging"
)

// Key layout:
//
//	entry/<key>                          -> created nanos | expires nanos | value
//	exp/<8-byte big-endian nanos><key>   -> empty (expiry index)
//
// Big-endian timestamps keep the index sorted by expiry, so the sweep stops at
// the first index key that is not yet expired.
const (
	badgerEntryPrefix  = "entry/"
	badgerExpiryPrefix = "exp/"

	badgerHeaderSize = 16
	badgerSweepBatch = 500
	badgerPutRetries = 3
)

// BadgerStore is the default Store, backed by an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB at path. An empty path runs in memory.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(logging.NewPrintfLogger("cache.badger"))
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, storeErr(BackendBadger, "open", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already opened database. The store takes ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Name implements Store.
func (s *BadgerStore) Name() string { return BackendBadger }

func badgerEntryKey(key string) []byte {
	return append([]byte(badgerEntryPrefix), key...)
}

func badgerExpiryKey(expires time.Time, key string) []byte {
	buf := make([]byte, 0, len(badgerExpiryPrefix)+8+len(key))
	buf = append(buf, badgerExpiryPrefix...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(expires.UnixNano()))
	return append(buf, key...)
}

func encodeBadgerRow(row Row) []byte {
	buf := make([]byte, badgerHeaderSize, badgerHeaderSize+len(row.Value))
	binary.BigEndian.PutUint64(buf[0:8], uint64(row.CreatedAt.UnixNano()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(row.ExpiresAt.UnixNano()))
	return append(buf, row.Value...)
}

func decodeBadgerRow(key string, data []byte) (Row, error) {
	if len(data) < badgerHeaderSize {
		return Row{}, fmt.Errorf("corrupt entry %q: %d bytes", key, len(data))
	}
	value := make([]byte, len(data)-badgerHeaderSize)
	copy(value, data[badgerHeaderSize:])
	return Row{
		Key:       key,
		Value:     value,
		CreatedAt: time.Unix(0, int64(binary.BigEndian.Uint64(data[0:8]))),
		ExpiresAt: time.Unix(0, int64(binary.BigEndian.Uint64(data[8:16]))),
	}, nil
}

// Put implements Store. The previous expiry index key of the row is removed in the same transaction.
func (s *BadgerStore) Put(_ context.Context, row Row) error {
	var err error
	for attempt := 0; attempt < badgerPutRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			entryKey := badgerEntryKey(row.Key)

			item, getErr := txn.Get(entryKey)
			switch {
			case getErr == nil:
				old, valErr := item.ValueCopy(nil)
				if valErr != nil {
					return valErr
				}
				if prev, decErr := decodeBadgerRow(row.Key, old); decErr == nil {
					if delErr := txn.Delete(badgerExpiryKey(prev.ExpiresAt, row.Key)); delErr != nil {
						return delErr
					}
				}
			case !errors.Is(getErr, badger.ErrKeyNotFound):
				return getErr
			}

			if setErr := txn.Set(entryKey, encodeBadgerRow(row)); setErr != nil {
				return setErr
			}
			return txn.Set(badgerExpiryKey(row.ExpiresAt, row.Key), nil)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	return storeErr(BackendBadger, "put", err)
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) (Row, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerEntryKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, storeErr(BackendBadger, "get", err)
	}

	row, err := decodeBadgerRow(key, data)
	if err != nil {
		return Row{}, false, storeErr(BackendBadger, "get", err)
	}
	return row, true, nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, key string) (bool, error) {
	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		entryKey := badgerEntryKey(key)
		item, err := txn.Get(entryKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if row, decErr := decodeBadgerRow(key, data); decErr == nil {
			if err := txn.Delete(badgerExpiryKey(row.ExpiresAt, key)); err != nil {
				return err
			}
		}
		if err := txn.Delete(entryKey); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, storeErr(BackendBadger, "delete", err)
	}
	return deleted, nil
}

// DeleteExpired implements Store. Each batch of index keys is removed in its own transaction.
func (s *BadgerStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		removed, scanned, err := s.sweepBatch(now)
		total += removed
		if err != nil {
			return total, storeErr(BackendBadger, "delete expired", err)
		}
		if scanned < badgerSweepBatch {
			return total, nil
		}
	}
}

// sweepBatch removes up to badgerSweepBatch expired index keys and their entries.
// It returns the number of entries removed and index keys visited.
func (s *BadgerStore) sweepBatch(now time.Time) (removed, scanned int, err error) {
	cutoff := uint64(now.UnixNano())
	prefix := []byte(badgerExpiryPrefix)

	err = s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var indexKeys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(indexKeys) < badgerSweepBatch; it.Next() {
			k := it.Item().KeyCopy(nil)
			if len(k) < len(prefix)+8 {
				continue
			}
			if binary.BigEndian.Uint64(k[len(prefix):len(prefix)+8]) >= cutoff {
				break
			}
			indexKeys = append(indexKeys, k)
		}
		it.Close()
		scanned = len(indexKeys)

		for _, idx := range indexKeys {
			expiresNanos := binary.BigEndian.Uint64(idx[len(prefix) : len(prefix)+8])
			key := string(idx[len(prefix)+8:])

			if err := txn.Delete(idx); err != nil {
				return err
			}

			entryKey := badgerEntryKey(key)
			item, err := txn.Get(entryKey)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			// The entry may have been rewritten with a later expiry.
			if len(data) >= badgerHeaderSize && binary.BigEndian.Uint64(data[8:16]) != expiresNanos {
				continue
			}
			if err := txn.Delete(entryKey); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return removed, scanned, nil
}

// Clear implements Store.
func (s *BadgerStore) Clear(_ context.Context) (int, error) {
	count, err := s.countEntries()
	if err != nil {
		return 0, storeErr(BackendBadger, "clear", err)
	}
	if err := s.db.DropPrefix([]byte(badgerEntryPrefix), []byte(badgerExpiryPrefix)); err != nil {
		return 0, storeErr(BackendBadger, "clear", err)
	}
	return count, nil
}

func (s *BadgerStore) countEntries() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerEntryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Stats implements Store. SizeBytes is the on-disk LSM plus value log size.
func (s *BadgerStore) Stats(_ context.Context, now time.Time) (StoreStats, error) {
	var stats StoreStats
	nowNanos := uint64(now.UnixNano())

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerEntryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stats.Total++
			err := it.Item().Value(func(val []byte) error {
				if len(val) >= badgerHeaderSize && binary.BigEndian.Uint64(val[8:16]) > nowNanos {
					stats.Valid++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return StoreStats{}, storeErr(BackendBadger, "stats", err)
	}

	stats.Expired = stats.Total - stats.Valid
	lsm, vlog := s.db.Size()
	stats.SizeBytes = lsm + vlog
	return stats, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return storeErr(BackendBadger, "close", s.db.Close())
}

var _ Store = (*BadgerStore)(nil)

