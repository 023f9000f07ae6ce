// Package storage provides the typed key-value contract the poll domain
// runs on, with a PostgreSQL implementation and an in-memory one for tests.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ListSeparator joins appended items within a single stored value.
const ListSeparator = "\n"

// ErrNotNumeric reports an Increment against a stored value that does not
// parse as an integer. It marks data corruption and is fatal to the event
// being processed, not to the process.
var ErrNotNumeric = errors.New("storage: stored value is not numeric")

// KV stores string values under (table, key). Tables are logical namespaces,
// not relations; an absent record reads as the empty string.
type KV interface {
	// Get returns the stored value, or "" when the record is absent.
	Get(ctx context.Context, table, key string) (string, error)
	// Set overwrites the value idempotently, creating the record if needed.
	Set(ctx context.Context, table, key, value string) error
	// Increment parses the stored value as an integer (absent reads as 0),
	// writes back n+1, and returns it. The read-modify-write pair is not
	// atomic; callers own one key at a time.
	Increment(ctx context.Context, table, key string) (int64, error)
	// Append adds one item to the stored sequence, creating a singleton on
	// first call. Duplicates are not rejected; consumers tolerate them.
	Append(ctx context.Context, table, key, item string) error
	// ScanTable returns every record of a table keyed by record key.
	ScanTable(ctx context.Context, table string) (map[string]string, error)
}

// SplitList splits an appended sequence back into its items. An empty value
// yields no items.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ListSeparator)
}
