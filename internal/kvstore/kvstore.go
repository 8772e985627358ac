// Package kvstore is the durable key-value layer behind every persisted
// snapshot. Values are opaque byte blobs; LoadJSON and SaveJSON add the
// typed view used by the rest of the application.
package kvstore

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/bytedance/sonic"
)

// Fixed storage keys.
const (
	KeyEntries  = "timesheet.entries"
	KeyCustomer = "timesheet.customers"
	KeyCounters = "timesheet.report-counters"
)

// ErrWrite marks a failed write. The caller's in-memory state is still valid
// but will not survive a reload.
var ErrWrite = errors.New("storage write failed")

// Store is a byte-oriented key-value store.
type Store interface {
	// Get returns the raw value under key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores value under key. Failures wrap ErrWrite.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// Batcher is implemented by stores that can write several keys atomically.
type Batcher interface {
	SetMany(values map[string][]byte) error
}

// IsWriteError reports whether err is a non-fatal storage write notice.
func IsWriteError(err error) bool {
	return errors.Is(err, ErrWrite)
}

// LoadJSON decodes the value under key into v. Missing keys, read failures
// and malformed payloads all report false and leave v untouched, so callers
// can always fall back to an empty value.
func LoadJSON(s Store, key string, v any, l *slog.Logger) bool {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	data, ok, err := s.Get(key)
	if err != nil {
		l.Warn("storage read failed, starting empty", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		l.Warn("cannot decode snapshot into non-pointer", slog.String("key", key))
		return false
	}
	// Decode into a scratch value so a partial decode never leaks into v.
	tmp := reflect.New(rv.Type().Elem())
	if err := sonic.Unmarshal(data, tmp.Interface()); err != nil {
		l.Warn("discarding malformed snapshot", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	rv.Elem().Set(tmp.Elem())
	return true
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(s Store, key string, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrWrite, key, err)
	}
	return s.Set(key, data)
}

// Open returns the backend named by backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFile(dir), nil
	case "sqlite":
		return NewSQLite(dir)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Copy transfers keys from src to dst. Absent keys are skipped. When dst is a
// Batcher all keys land in a single write.
func Copy(dst, src Store, keys ...string) (int, error) {
	values := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, ok, err := src.Get(k)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", k, err)
		}
		if ok {
			values[k] = v
		}
	}
	if b, ok := dst.(Batcher); ok {
		if err := b.SetMany(values); err != nil {
			return 0, err
		}
		return len(values), nil
	}
	n := 0
	for k, v := range values {
		if err := dst.Set(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
