// Package kv provides the key-value store behind the task journal. Keys are
// hierarchical paths (e.g. ["task", "video", "106916112212032"]) encoded
// with a separator byte (default ':').
//
// Memory is the default store for one-shot runs; Badger persists the
// journal across process restarts.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path represented as a slice of string segments.
//
// Segments must not contain the configured separator character.
type Key []string

// String returns the key joined with ':', for display only.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   Key
	Value []byte
}

// UpdateFunc computes a new value from the current one. found is false if
// the key does not exist. Returning an error aborts the update and leaves
// the stored value unchanged.
type UpdateFunc func(old []byte, found bool) ([]byte, error)

// Store is the interface for a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Update atomically replaces the value of key with fn's result.
	Update(ctx context.Context, key Key, fn UpdateFunc) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given prefix,
	// in lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}

// DefaultSeparator is the default separator byte used to encode key segments.
const DefaultSeparator byte = ':'

// Options configures store behavior.
type Options struct {
	// Separator joins key segments in storage. Default is ':' if zero.
	Separator byte
}

func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

func (o *Options) encode(k Key) []byte {
	return []byte(strings.Join(k, string(o.sep())))
}

// prefix returns the encoded scan prefix for k. A trailing separator keeps
// "a:b" from matching "a:bc"; the empty key scans everything.
func (o *Options) prefix(k Key) []byte {
	if len(k) == 0 {
		return nil
	}
	return append(o.encode(k), o.sep())
}

func (o *Options) decode(b []byte) Key {
	return Key(strings.Split(string(b), string(o.sep())))
}
