// Package storage is the local store of the portal: the bounded transaction
// history and the time-boxed supplier cache, kept on a durable key/value
// substrate.
//
// Storage problems never surface as errors. Every operation reports a Status
// next to its result and logs a diagnostic, so callers can tell "nothing
// stored" from "stored but unreadable" without having to handle failures.
package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Keys of the persisted values.
const (
	KeyHistory            = "puntored_transaction_history"
	KeySuppliers          = "puntored_suppliers_cache"
	KeySuppliersTimestamp = "puntored_suppliers_cache_timestamp"
)

const (
	DefaultHistoryLimit = 100
	DefaultSupplierTTL  = 24 * time.Hour
)

// KV is the substrate the store persists to. A missing key reports ok=false
// with a nil error.
type KV interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Status describes how a storage operation went.
type Status int

const (
	StatusOK Status = iota
	// StatusMiss means nothing was stored.
	StatusMiss
	// StatusExpired means a cached value was too old and has been removed.
	StatusExpired
	// StatusCorrupt means a stored value could not be decoded.
	StatusCorrupt
	// StatusUnavailable means the substrate failed.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMiss:
		return "miss"
	case StatusExpired:
		return "expired"
	case StatusCorrupt:
		return "corrupt"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Store is the local store. It is safe for concurrent use to the extent the
// KV is; writes are last-write-wins.
type Store struct {
	kv           KV
	now          func() time.Time
	log          zerolog.Logger
	historyLimit int
	supplierTTL  time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithHistoryLimit caps the number of history entries kept (>= 1).
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithSupplierTTL sets how long a supplier list stays fresh (> 0).
func WithSupplierTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.supplierTTL = d
		}
	}
}

// New returns a Store over kv.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:           kv,
		now:          time.Now,
		log:          log.Logger,
		historyLimit: DefaultHistoryLimit,
		supplierTTL:  DefaultSupplierTTL,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With().Str("component", "storage").Logger()
	return s
}
