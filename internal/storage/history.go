package storage

import (
	"context"
	"encoding/json"

	"github.com/tbourn/go-topup-portal/internal/domain"
)

// History returns the persisted entries, newest first. The slice is never
// nil.
func (s *Store) History(ctx context.Context) ([]domain.HistoryEntry, Status) {
	raw, ok, err := s.kv.GetItem(ctx, KeyHistory)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read transaction history")
		return []domain.HistoryEntry{}, StatusUnavailable
	}
	if !ok {
		return []domain.HistoryEntry{}, StatusMiss
	}
	var entries []domain.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Error().Err(err).Msg("failed to parse transaction history")
		return []domain.HistoryEntry{}, StatusCorrupt
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, StatusOK
}

// AddTransaction prepends entry, keeps the newest HistoryLimit entries and
// persists the result. The returned slice always contains entry, even when
// persisting failed; in that case the status is StatusUnavailable and the entry
// will not survive a restart.
func (s *Store) AddTransaction(ctx context.Context, entry domain.HistoryEntry) ([]domain.HistoryEntry, Status) {
	current, _ := s.History(ctx)

	next := make([]domain.HistoryEntry, 0, len(current)+1)
	next = append(next, entry)
	next = append(next, current...)
	if len(next) > s.historyLimit {
		next = next[:s.historyLimit]
	}

	b, err := json.Marshal(next)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode transaction history")
		return next, StatusUnavailable
	}
	if err := s.kv.SetItem(ctx, KeyHistory, string(b)); err != nil {
		s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to save transaction")
		return next, StatusUnavailable
	}
	return next, StatusOK
}

// ClearHistory removes the persisted history.
func (s *Store) ClearHistory(ctx context.Context) Status {
	if err := s.kv.RemoveItem(ctx, KeyHistory); err != nil {
		s.log.Error().Err(err).Msg("failed to clear transaction history")
		return StatusUnavailable
	}
	return StatusOK
}

// Transaction looks up a history entry by id.
func (s *Store) Transaction(ctx context.Context, id string) (domain.HistoryEntry, bool) {
	entries, _ := s.History(ctx)
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.HistoryEntry{}, false
}
