package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/tbourn/go-topup-portal/internal/domain"
)

// Suppliers returns the cached supplier list while it is fresh. The list and
// its timestamp are a pair: if either is missing or unreadable the cache is
// treated as absent, and a cache older than the TTL is removed on read.
func (s *Store) Suppliers(ctx context.Context) ([]domain.Supplier, Status) {
	rawList, okList, err := s.kv.GetItem(ctx, KeySuppliers)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read supplier cache")
		return nil, StatusUnavailable
	}
	rawTS, okTS, err := s.kv.GetItem(ctx, KeySuppliersTimestamp)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read supplier cache timestamp")
		return nil, StatusUnavailable
	}
	if !okList || !okTS {
		return nil, StatusMiss
	}

	ms, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		s.log.Warn().Err(err).Msg("unreadable supplier cache timestamp, dropping cache")
		s.ClearSuppliers(ctx)
		return nil, StatusCorrupt
	}
	cachedAt := time.UnixMilli(ms)
	if s.now().Sub(cachedAt) > s.supplierTTL {
		s.log.Debug().Time("cached_at", cachedAt).Msg("supplier cache expired")
		s.ClearSuppliers(ctx)
		return nil, StatusExpired
	}

	var list []domain.Supplier
	if err := json.Unmarshal([]byte(rawList), &list); err != nil {
		s.log.Error().Err(err).Msg("failed to parse supplier cache")
		return nil, StatusCorrupt
	}
	return list, StatusOK
}

// SetSuppliers caches list with the current time, replacing any prior cache.
// The timestamp is written last so a half-written pair reads as absent.
func (s *Store) SetSuppliers(ctx context.Context, list []domain.Supplier) Status {
	if list == nil {
		list = []domain.Supplier{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode supplier cache")
		return StatusUnavailable
	}
	if err := s.kv.RemoveItem(ctx, KeySuppliersTimestamp); err != nil {
		s.log.Error().Err(err).Msg("failed to reset supplier cache timestamp")
		return StatusUnavailable
	}
	if err := s.kv.SetItem(ctx, KeySuppliers, string(b)); err != nil {
		s.log.Error().Err(err).Msg("failed to save supplier cache")
		return StatusUnavailable
	}
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.kv.SetItem(ctx, KeySuppliersTimestamp, ts); err != nil {
		s.log.Error().Err(err).Msg("failed to save supplier cache timestamp")
		return StatusUnavailable
	}
	return StatusOK
}

// ClearSuppliers removes both halves of the supplier cache.
func (s *Store) ClearSuppliers(ctx context.Context) Status {
	st := StatusOK
	for _, k := range []string{KeySuppliersTimestamp, KeySuppliers} {
		if err := s.kv.RemoveItem(ctx, k); err != nil {
			s.log.Error().Err(err).Str("key", k).Msg("failed to clear supplier cache")
			st = StatusUnavailable
		}
	}
	return st
}
