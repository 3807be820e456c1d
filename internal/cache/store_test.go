// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var baseTime = time.Unix(1_760_000_000, 0)

type storeFactory func(t *testing.T) Store

func inProcessStores() map[string]storeFactory {
	return map[string]storeFactory{
		BackendMemory: func(t *testing.T) Store {
			return NewMemoryStore()
		},
		BackendBadger: func(t *testing.T) Store {
			t.Helper()
			s, err := OpenBadgerStore("")
			if err != nil {
				t.Fatalf("OpenBadgerStore() error = %v", err)
			}
			return s
		},
		BackendSQLite: func(t *testing.T) Store {
			t.Helper()
			s, err := OpenSQLiteStore(context.Background(), "")
			if err != nil {
				t.Fatalf("OpenSQLiteStore() error = %v", err)
			}
			return s
		},
		BackendDuckDB: func(t *testing.T) Store {
			t.Helper()
			s, err := OpenDuckDBStore(context.Background(), "")
			if err != nil {
				t.Fatalf("OpenDuckDBStore() error = %v", err)
			}
			return s
		},
	}
}

func row(key, value string, created time.Time, ttl time.Duration) Row {
	return Row{Key: key, Value: []byte(value), CreatedAt: created, ExpiresAt: created.Add(ttl)}
}

func TestStores(t *testing.T) {
	t.Parallel()

	for name, open := range inProcessStores() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			runStoreSuite(t, open)
		})
	}
}

// runStoreSuite exercises the Store contract. Each subtest gets a fresh store.
func runStoreSuite(t *testing.T, open storeFactory) {
	t.Helper()
	ctx := context.Background()

	fresh := func(t *testing.T) Store {
		t.Helper()
		s := open(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("PutGet", func(t *testing.T) {
		s := fresh(t)
		want := row("location_abc", `{"city":"Tokyo"}`, baseTime, time.Minute)
		if err := s.Put(ctx, want); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		got, ok, err := s.Get(ctx, want.Key)
		if err != nil || !ok {
			t.Fatalf("Get() = _, %v, %v; want found", ok, err)
		}
		if string(got.Value) != string(want.Value) {
			t.Errorf("Value = %s, want %s", got.Value, want.Value)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) || !got.ExpiresAt.Equal(want.ExpiresAt) {
			t.Errorf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.ExpiresAt, want.CreatedAt, want.ExpiresAt)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := fresh(t)
		if _, ok, err := s.Get(ctx, "nope"); ok || err != nil {
			t.Errorf("Get(missing) = _, %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("OverwriteReplaces", func(t *testing.T) {
		s := fresh(t)
		if err := s.Put(ctx, row("k", `1`, baseTime, time.Second)); err != nil {
			t.Fatal(err)
		}
		later := baseTime.Add(10 * time.Second)
		if err := s.Put(ctx, row("k", `2`, later, time.Hour)); err != nil {
			t.Fatal(err)
		}

		got, ok, err := s.Get(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("Get() = _, %v, %v", ok, err)
		}
		if string(got.Value) != "2" || !got.ExpiresAt.Equal(later.Add(time.Hour)) {
			t.Errorf("got %s expiring %v, want 2 expiring %v", got.Value, got.ExpiresAt, later.Add(time.Hour))
		}

		stats, err := s.Stats(ctx, later)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Total != 1 {
			t.Errorf("Total = %d after overwrite, want 1", stats.Total)
		}

		// The old expiry must not take the rewritten row down.
		if n, err := s.DeleteExpired(ctx, baseTime.Add(time.Minute)); err != nil || n != 0 {
			t.Errorf("DeleteExpired() = %d, %v; want 0, nil", n, err)
		}
		if _, ok, _ := s.Get(ctx, "k"); !ok {
			t.Error("rewritten row removed by sweep")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := fresh(t)
		if err := s.Put(ctx, row("k", `"v"`, baseTime, time.Minute)); err != nil {
			t.Fatal(err)
		}
		if ok, err := s.Delete(ctx, "k"); !ok || err != nil {
			t.Errorf("Delete() = %v, %v; want true, nil", ok, err)
		}
		if ok, err := s.Delete(ctx, "k"); ok || err != nil {
			t.Errorf("second Delete() = %v, %v; want false, nil", ok, err)
		}
		if _, ok, _ := s.Get(ctx, "k"); ok {
			t.Error("row still present after Delete")
		}
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		s := fresh(t)
		for i := 0; i < 5; i++ {
			if err := s.Put(ctx, row(fmt.Sprintf("old%d", i), `1`, baseTime, time.Minute)); err != nil {
				t.Fatal(err)
			}
		}
		for i := 0; i < 3; i++ {
			if err := s.Put(ctx, row(fmt.Sprintf("new%d", i), `1`, baseTime, time.Hour)); err != nil {
				t.Fatal(err)
			}
		}

		n, err := s.DeleteExpired(ctx, baseTime.Add(10*time.Minute))
		if err != nil {
			t.Fatalf("DeleteExpired() error = %v", err)
		}
		if n != 5 {
			t.Errorf("DeleteExpired() = %d, want 5", n)
		}
		if _, ok, _ := s.Get(ctx, "old0"); ok {
			t.Error("expired row survived sweep")
		}
		if _, ok, _ := s.Get(ctx, "new0"); !ok {
			t.Error("valid row removed by sweep")
		}
		if n, _ := s.DeleteExpired(ctx, baseTime.Add(10*time.Minute)); n != 0 {
			t.Errorf("second DeleteExpired() = %d, want 0", n)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		s := fresh(t)
		_ = s.Put(ctx, row("a", `"aaaa"`, baseTime, time.Minute))
		_ = s.Put(ctx, row("b", `"bb"`, baseTime, time.Hour))
		_ = s.Put(ctx, row("c", `"c"`, baseTime, time.Hour))

		stats, err := s.Stats(ctx, baseTime.Add(30*time.Minute))
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Total != 3 || stats.Valid != 2 || stats.Expired != 1 {
			t.Errorf("Stats() = %+v, want total 3 valid 2 expired 1", stats)
		}
		if stats.SizeBytes < 0 {
			t.Errorf("SizeBytes = %d, want >= 0", stats.SizeBytes)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		s := fresh(t)
		for i := 0; i < 4; i++ {
			_ = s.Put(ctx, row(fmt.Sprintf("k%d", i), `1`, baseTime, time.Minute))
		}
		n, err := s.Clear(ctx)
		if err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if n != 4 {
			t.Errorf("Clear() = %d, want 4", n)
		}
		stats, _ := s.Stats(ctx, baseTime)
		if stats.Total != 0 {
			t.Errorf("Total after Clear = %d, want 0", stats.Total)
		}
	})

	t.Run("ConcurrentPut", func(t *testing.T) {
		s := fresh(t)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					key := fmt.Sprintf("worker%d", id)
					if err := s.Put(ctx, row(key, fmt.Sprintf("%d", j), baseTime, time.Minute)); err != nil {
						t.Errorf("Put() error = %v", err)
						return
					}
					_, _, _ = s.Get(ctx, key)
				}
			}(i)
		}
		wg.Wait()

		stats, err := s.Stats(ctx, baseTime)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Total != 8 {
			t.Errorf("Total = %d after concurrent overwrites, want 8", stats.Total)
		}
	})
}

func TestMemoryStore_SizeBytes(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_ = s.Put(context.Background(), row("a", "12345", baseTime, time.Minute))
	_ = s.Put(context.Background(), row("b", "123", baseTime, time.Minute))

	stats, _ := s.Stats(context.Background(), baseTime)
	if stats.SizeBytes != 8 {
		t.Errorf("SizeBytes = %d, want 8", stats.SizeBytes)
	}
}

func TestMemoryStore_CopiesValue(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	value := []byte("abc")
	_ = s.Put(context.Background(), Row{Key: "k", Value: value, ExpiresAt: baseTime})
	value[0] = 'z'

	got, _, _ := s.Get(context.Background(), "k")
	if string(got.Value) != "abc" {
		t.Errorf("stored value mutated through caller slice: %s", got.Value)
	}
}

func TestBadgerStore_Sweep_ManyBatches(t *testing.T) {
	t.Parallel()

	s, err := OpenBadgerStore("")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	const n = badgerSweepBatch*2 + 17
	for i := 0; i < n; i++ {
		if err := s.Put(ctx, row(fmt.Sprintf("k%04d", i), `1`, baseTime, time.Second)); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.DeleteExpired(ctx, baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if removed != n {
		t.Errorf("DeleteExpired() = %d, want %d", removed, n)
	}
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "lunch_cache")
	ctx := context.Background()

	s, err := OpenStore(ctx, StoreConfig{Backend: BackendBadger, Path: dir})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := s.Put(ctx, row("k", `"v"`, baseTime, time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenStore(ctx, StoreConfig{Backend: BackendBadger, Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, ok, err := s.Get(ctx, "k"); !ok || err != nil {
		t.Errorf("Get() after reopen = %v, %v", ok, err)
	}
}

func TestSQLiteStore_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "lunch_cache.db")
	ctx := context.Background()

	s, err := OpenStore(ctx, StoreConfig{Backend: "SQLite", Path: path})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer s.Close()

	if s.Name() != BackendSQLite {
		t.Errorf("Name() = %q, want sqlite", s.Name())
	}
	if err := s.Put(ctx, row("k", `"v"`, baseTime, time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Error("row not found")
	}
}

func TestOpenStore_Backends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s, err := OpenStore(ctx, StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("OpenStore(memory) error = %v", err)
	}
	if s.Name() != BackendMemory {
		t.Errorf("Name() = %q", s.Name())
	}

	_, err = OpenStore(ctx, StoreConfig{Backend: "cassandra"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("OpenStore(cassandra) error = %v, want ErrUnknownBackend", err)
	}
}

func TestStoreError_MatchesErrCache(t *testing.T) {
	t.Parallel()

	inner := errors.New("disk full")
	err := fmt.Errorf("write: %w", storeErr(BackendSQLite, "put", inner))

	if !errors.Is(err, ErrCache) {
		t.Error("StoreError should match ErrCache")
	}
	if !errors.Is(err, inner) {
		t.Error("StoreError should unwrap to the backend error")
	}
	var se *StoreError
	if !errors.As(err, &se) || se.Op != "put" || se.Backend != BackendSQLite {
		t.Errorf("errors.As() = %+v", se)
	}
	if storeErr(BackendSQLite, "put", nil) != nil {
		t.Error("storeErr(nil) should be nil")
	}
}
