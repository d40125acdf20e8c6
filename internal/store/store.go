// Package store holds the append-only event store behind the aggregation
// service. Two implementations: an in-process memory store (the common case)
// and a Redis-backed store for deployments that externalize the event log.
package store

import (
	"context"
	"errors"

	"github.com/upliftapps/pulse/internal/schema"
)

// ErrQueryTimeout is returned by externalized stores when a read exceeds the
// configured deadline. Callers treat it like an empty result for display but
// log it as an operational failure.
var ErrQueryTimeout = errors.New("query timeout")

// Store is an append-only ordered event log. Append is O(1) amortized and
// must not block on concurrent reads; Snapshot returns a consistent read-only
// copy that never observes a partially appended event.
type Store interface {
	Append(ctx context.Context, e schema.Event) error
	Snapshot(ctx context.Context) ([]schema.Event, error)
	Len(ctx context.Context) (int, error)
}
