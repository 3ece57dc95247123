package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultFilePath is the cache file used when none is configured.
const DefaultFilePath = "storage/cache/cache.json"

type fileEntry struct {
	Value      json.RawMessage `json:"value"`
	Expiration *int64          `json:"expiration"` // unix milliseconds, null = never
}

// File is a cache persisted as a single JSON document on disk.
//
// Every operation reads the document, applies the change and writes it back
// atomically (temp file + rename). It suits development and single-process
// deployments; concurrent writers in different processes may lose updates.
type File[V any] struct {
	path      string
	marshaler Marshaler[V]
	now       func() time.Time
	mu        sync.Mutex
}

// NewFile creates a file-backed cache at path.
// The parent directory is created on first write.
// If m is nil, JSON serialization is used.
func NewFile[V any](path string, m Marshaler[V]) *File[V] {
	if path == "" {
		path = DefaultFilePath
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &File[V]{path: path, marshaler: m, now: time.Now}
}

// Get retrieves a value by key.
// Expired entries are removed from the file and reported as ErrNotFound.
func (f *File[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return zero, err
	}

	e, ok := entries[key]
	if !ok {
		return zero, ErrNotFound
	}
	if f.isExpired(e) {
		delete(entries, key)
		if err := f.save(entries); err != nil {
			return zero, err
		}
		return zero, ErrNotFound
	}

	return f.marshaler.Unmarshal(e.Value)
}

// Set stores a value until expiresAt. A zero expiresAt never expires.
func (f *File[V]) Set(ctx context.Context, key string, value V, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := f.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	e := fileEntry{Value: data}
	if !expiresAt.IsZero() {
		ms := expiresAt.UnixMilli()
		e.Expiration = &ms
	}
	entries[key] = e

	return f.save(entries)
}

// Delete removes a key from the cache.
func (f *File[V]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)

	return f.save(entries)
}

// Has checks whether a key exists and has not expired.
func (f *File[V]) Has(ctx context.Context, key string) (bool, error) {
	if _, err := f.Get(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear removes all entries from the cache.
func (f *File[V]) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.save(map[string]fileEntry{})
}

// Close is a no-op; the file is not held open between operations.
func (f *File[V]) Close() error {
	return nil
}

func (f *File[V]) isExpired(e fileEntry) bool {
	if e.Expiration == nil {
		return false
	}
	return expired(time.UnixMilli(*e.Expiration), f.now())
}

// load reads the cache document. A missing file is an empty cache.
// Caller must hold the mutex.
func (f *File[V]) load() (map[string]fileEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]fileEntry{}, nil
		}
		return nil, errors.Join(ErrStorage, err)
	}

	entries := map[string]fileEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	return entries, nil
}

// save writes the cache document atomically.
// Caller must hold the mutex.
func (f *File[V]) save(entries map[string]fileEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Join(ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Join(ErrStorage, err)
	}

	return nil
}

var _ Cache[any] = (*File[any])(nil)
