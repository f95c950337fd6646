package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrVersionConflict = errors.New("version conflict")
)

// maxUpdateAttempts bounds how often Update re-runs a read-modify-write that
// lost a version race against another writer of the same backend.
const maxUpdateAttempts = 5

// Entry is a stored value and the version it was written at. Versions start
// at 1 and grow by one on every successful Put.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// KV is a versioned key-value backend.
type KV interface {
	// Get returns ErrKeyNotFound when key has never been written.
	Get(ctx context.Context, key string) (*Entry, error)
	// Put writes value only if the stored version equals expectedVersion
	// (0 meaning the key must not exist yet) and returns the new version.
	// A mismatch yields ErrVersionConflict.
	Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error)
}

// Records serializes read-modify-write cycles per key on top of a KV. Writers
// in this process take a per-key mutex; writers in other processes sharing
// the backend are detected through version conflicts and retried.
type Records struct {
	kv KV

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRecords(kv KV) *Records {
	return &Records{kv: kv, locks: make(map[string]*sync.Mutex)}
}

func (r *Records) lock(key string) func() {
	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Read returns the current value of key, or ok=false if it was never written.
func (r *Records) Read(ctx context.Context, key string) (value []byte, ok bool, err error) {
	entry, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// Update passes the current value of key (nil if absent) to fn and stores
// what fn returns. If fn returns a nil slice nothing is written. fn may run
// more than once when a concurrent writer wins a race, so it must derive its
// result only from its argument.
func (r *Records) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	unlock := r.lock(key)
	defer unlock()

	for attempt := 1; ; attempt++ {
		var (
			current []byte
			version int64
		)
		entry, err := r.kv.Get(ctx, key)
		switch {
		case errors.Is(err, ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("failed to read %s: %w", key, err)
		default:
			current, version = entry.Value, entry.Version
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		_, err = r.kv.Put(ctx, key, next, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= maxUpdateAttempts {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}
}
