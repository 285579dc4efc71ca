package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/repo"
)

// memKV is an in-memory KV with switchable failures.
type memKV struct {
	mu       sync.Mutex
	data     map[string]string
	failGet  bool
	failSet  bool
	failDel  bool
	setCalls int
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

var errBoom = errors.New("boom")

func (m *memKV) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", false, errBoom
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.failSet {
		return errBoom
	}
	m.data[key] = value
	return nil
}

func (m *memKV) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel {
		return errBoom
	}
	delete(m.data, key)
	return nil
}

func (m *memKV) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func quiet() Option { return WithLogger(zerolog.Nop()) }

func entry(i int) domain.HistoryEntry {
	return domain.HistoryEntry{ID: fmt.Sprintf("t%03d", i), Amount: int64(1000 + i), Status: domain.TicketSuccess}
}

func TestHistory_EmptyWhenAbsent(t *testing.T) {
	s := New(newMemKV(), quiet())
	got, st := s.History(context.Background())
	if got == nil || len(got) != 0 || st != StatusMiss {
		t.Fatalf("History = %v, %v; want empty, miss", got, st)
	}
}

func TestHistory_CorruptIsSwallowed(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyHistory] = "{not json"
	s := New(kv, quiet())

	got, st := s.History(context.Background())
	if len(got) != 0 || st != StatusCorrupt {
		t.Fatalf("History = %v, %v; want empty, corrupt", got, st)
	}
}

func TestHistory_SubstrateFailureIsSwallowed(t *testing.T) {
	kv := newMemKV()
	kv.failGet = true
	got, st := New(kv, quiet()).History(context.Background())
	if len(got) != 0 || st != StatusUnavailable {
		t.Fatalf("History = %v, %v; want empty, unavailable", got, st)
	}
}

func TestAddTransaction_CapsAtLimitNewestFirst(t *testing.T) {
	s := New(newMemKV(), quiet())
	ctx := context.Background()

	for i := 1; i <= 101; i++ {
		if _, st := s.AddTransaction(ctx, entry(i)); st != StatusOK {
			t.Fatalf("AddTransaction(%d) status %v", i, st)
		}
	}
	got, st := s.History(ctx)
	if st != StatusOK {
		t.Fatalf("History status %v", st)
	}
	if len(got) != DefaultHistoryLimit {
		t.Fatalf("len(history) = %d, want %d", len(got), DefaultHistoryLimit)
	}
	// Reverse insertion order: 101, 100, ..., 2. Entry 1 was evicted.
	for i, e := range got {
		if want := entry(101 - i).ID; e.ID != want {
			t.Fatalf("history[%d] = %s, want %s", i, e.ID, want)
		}
	}
}

func TestAddTransaction_EvictsByInsertionOrderNotDate(t *testing.T) {
	s := New(newMemKV(), quiet(), WithHistoryLimit(2))
	ctx := context.Background()

	// The oldest insertion carries the newest date; it is still evicted first.
	s.AddTransaction(ctx, domain.HistoryEntry{ID: "a", Date: "2030-01-01T00:00:00Z"})
	s.AddTransaction(ctx, domain.HistoryEntry{ID: "b", Date: "2020-01-01T00:00:00Z"})
	s.AddTransaction(ctx, domain.HistoryEntry{ID: "c", Date: "2021-01-01T00:00:00Z"})

	got, _ := s.History(ctx)
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("history = %+v", got)
	}
}

func TestAddTransaction_PersistFailureKeepsInMemoryEntry(t *testing.T) {
	kv := newMemKV()
	kv.failSet = true
	s := New(kv, quiet())

	got, st := s.AddTransaction(context.Background(), entry(7))
	if st != StatusUnavailable {
		t.Fatalf("status = %v, want unavailable", st)
	}
	if len(got) != 1 || got[0].ID != entry(7).ID {
		t.Fatalf("in-memory history = %+v", got)
	}
	if kv.has(KeyHistory) {
		t.Fatalf("nothing should have been persisted")
	}
}

func TestAddTransaction_OverCorruptHistoryStartsFresh(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyHistory] = "garbage"
	s := New(kv, quiet())

	got, st := s.AddTransaction(context.Background(), entry(1))
	if st != StatusOK || len(got) != 1 {
		t.Fatalf("AddTransaction = %+v, %v", got, st)
	}
}

func TestClearHistory_RemovesKey(t *testing.T) {
	kv := newMemKV()
	s := New(kv, quiet())
	ctx := context.Background()
	s.AddTransaction(ctx, entry(1))

	if st := s.ClearHistory(ctx); st != StatusOK {
		t.Fatalf("ClearHistory status %v", st)
	}
	if kv.has(KeyHistory) {
		t.Fatalf("history key should be removed")
	}

	kv.failDel = true
	if st := s.ClearHistory(ctx); st != StatusUnavailable {
		t.Fatalf("ClearHistory on failing KV = %v", st)
	}
}

func TestTransaction_LookupByID(t *testing.T) {
	s := New(newMemKV(), quiet())
	ctx := context.Background()
	s.AddTransaction(ctx, entry(1))
	s.AddTransaction(ctx, entry(2))

	if e, ok := s.Transaction(ctx, entry(1).ID); !ok || e.Amount != entry(1).Amount {
		t.Fatalf("Transaction found=%v entry=%+v", ok, e)
	}
	if _, ok := s.Transaction(ctx, "missing"); ok {
		t.Fatalf("expected missing entry")
	}
}

func TestSuppliers_FreshThenExpired(t *testing.T) {
	kv := newMemKV()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := New(kv, quiet(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	list := []domain.Supplier{{ID: "CLARO", Name: "Claro", ProductCode: "CLARO"}}
	if st := s.SetSuppliers(ctx, list); st != StatusOK {
		t.Fatalf("SetSuppliers status %v", st)
	}

	got, st := s.Suppliers(ctx)
	if st != StatusOK || len(got) != 1 || got[0].ProductCode != "CLARO" {
		t.Fatalf("Suppliers = %+v, %v", got, st)
	}

	// Exactly at the TTL boundary the cache is still fresh.
	now = now.Add(DefaultSupplierTTL)
	if _, st := s.Suppliers(ctx); st != StatusOK {
		t.Fatalf("at TTL boundary status = %v, want ok", st)
	}

	now = now.Add(time.Millisecond)
	got, st = s.Suppliers(ctx)
	if got != nil || st != StatusExpired {
		t.Fatalf("expired Suppliers = %+v, %v", got, st)
	}
	if kv.has(KeySuppliers) || kv.has(KeySuppliersTimestamp) {
		t.Fatalf("expired cache should be cleared")
	}
	if _, st := s.Suppliers(ctx); st != StatusMiss {
		t.Fatalf("after expiry status = %v, want miss", st)
	}
}

func TestSuppliers_HalfPairIsAbsent(t *testing.T) {
	kv := newMemKV()
	kv.data[KeySuppliers] = `[{"id":"x"}]`
	s := New(kv, quiet())
	if got, st := s.Suppliers(context.Background()); got != nil || st != StatusMiss {
		t.Fatalf("Suppliers = %+v, %v; want absent", got, st)
	}
}

func TestSuppliers_CorruptTimestampDropsCache(t *testing.T) {
	kv := newMemKV()
	kv.data[KeySuppliers] = `[]`
	kv.data[KeySuppliersTimestamp] = "yesterday"
	s := New(kv, quiet())

	if _, st := s.Suppliers(context.Background()); st != StatusCorrupt {
		t.Fatalf("status = %v, want corrupt", st)
	}
	if kv.has(KeySuppliers) {
		t.Fatalf("corrupt cache should be removed")
	}
}

func TestSetSuppliers_FailedListWriteLeavesNoPair(t *testing.T) {
	kv := newMemKV()
	s := New(kv, quiet())
	ctx := context.Background()
	s.SetSuppliers(ctx, []domain.Supplier{{ID: "old"}})

	kv.failSet = true
	if st := s.SetSuppliers(ctx, []domain.Supplier{{ID: "new"}}); st != StatusUnavailable {
		t.Fatalf("status = %v", st)
	}
	kv.failSet = false
	if _, st := s.Suppliers(ctx); st != StatusMiss {
		t.Fatalf("after failed overwrite status = %v, want miss", st)
	}
}

func TestSuppliers_OverSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:storage_sqlite?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	s := New(repo.NewLocalStorage(db), quiet())
	ctx := context.Background()

	s.SetSuppliers(ctx, []domain.Supplier{{ID: "TIGO", Name: "Tigo", ProductCode: "TIGO"}})
	got, st := s.Suppliers(ctx)
	if st != StatusOK || len(got) != 1 || got[0].Name != "Tigo" {
		t.Fatalf("Suppliers = %+v, %v", got, st)
	}

	s.AddTransaction(ctx, entry(1))
	if h, st := s.History(ctx); st != StatusOK || len(h) != 1 {
		t.Fatalf("History = %+v, %v", h, st)
	}
}

func TestStatus_String(t *testing.T) {
	for st, want := range map[Status]string{
		StatusOK: "ok", StatusMiss: "miss", StatusExpired: "expired",
		StatusCorrupt: "corrupt", StatusUnavailable: "unavailable", Status(99): "unknown",
	} {
		if st.String() != want {
			t.Fatalf("%d.String() = %q, want %q", st, st.String(), want)
		}
	}
}
