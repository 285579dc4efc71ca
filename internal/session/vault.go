// Package session keeps the operator's authentication state. The Vault owns
// the persisted record, which the gateway reads to authorize requests and
// clears when the backend revokes it. The Store runs the login lifecycle on
// top of it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/events"
	"github.com/tbourn/go-topup-portal/internal/storage"
)

// Key is the storage key of the persisted session.
const Key = "auth-storage"

const recordVersion = 0

// ErrIncomplete is returned when saving a session that has a token but no
// credential type.
var ErrIncomplete = errors.New("session: token and type must be set together")

type record struct {
	State   domain.Session `json:"state"`
	Version int            `json:"version"`
}

// Vault persists the session on a key/value substrate. Reads go to the
// substrate every time so a restart rehydrates the last saved state.
type Vault struct {
	mu  sync.Mutex
	kv  storage.KV
	bus *events.Bus
	log zerolog.Logger
}

// NewVault returns a Vault over kv. bus may be nil when no one listens for
// logouts.
func NewVault(kv storage.KV, bus *events.Bus) *Vault {
	return &Vault{
		kv:  kv,
		bus: bus,
		log: log.Logger.With().Str("component", "session").Logger(),
	}
}

// SetLogger replaces the vault logger.
func (v *Vault) SetLogger(l zerolog.Logger) { v.log = l }

// Load returns the persisted session. A missing record is the zero Session;
// an unreadable one is the zero Session plus an error.
func (v *Vault) Load(ctx context.Context) (domain.Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.load(ctx)
}

func (v *Vault) load(ctx context.Context) (domain.Session, error) {
	raw, ok, err := v.kv.GetItem(ctx, Key)
	if err != nil {
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}
	if !ok || raw == "" {
		return domain.Session{}, nil
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.Session{}, fmt.Errorf("parse session: %w", err)
	}
	return rec.State, nil
}

// Save persists s. A session without a token is stored as the zero value;
// one with a token must carry its type and is marked authenticated.
func (v *Vault) Save(ctx context.Context, s domain.Session) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.save(ctx, s)
}

func (v *Vault) save(ctx context.Context, s domain.Session) error {
	if s.Empty() {
		s = domain.Session{}
	} else {
		if strings.TrimSpace(s.Type) == "" {
			return ErrIncomplete
		}
		s.IsAuthenticated = true
	}
	b, err := json.Marshal(record{State: s, Version: recordVersion})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := v.kv.SetItem(ctx, Key, string(b)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Reset clears the session and, when reason is not empty, publishes a
// logout event carrying it. The event is published even if the write fails.
func (v *Vault) Reset(ctx context.Context, reason string) error {
	v.mu.Lock()
	err := v.save(ctx, domain.Session{})
	v.mu.Unlock()
	v.announce(reason)
	return err
}

// resetIf clears the session only while cond holds for the current record,
// so a check never wipes a session saved after it started.
func (v *Vault) resetIf(ctx context.Context, cond func(domain.Session) bool) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	cur, err := v.load(ctx)
	if err != nil || !cond(cur) {
		return false, err
	}
	return true, v.save(ctx, domain.Session{})
}

func (v *Vault) announce(reason string) {
	if reason == "" || v.bus == nil {
		return
	}
	v.bus.Publish(reason)
}

// Credential returns the authorization scheme and token of the persisted
// session.
func (v *Vault) Credential(ctx context.Context) (string, string, error) {
	s, err := v.Load(ctx)
	if err != nil {
		return "", "", err
	}
	return s.Type, s.Token, nil
}

// Invalidate clears the session because the backend rejected it.
func (v *Vault) Invalidate(ctx context.Context, reason string) {
	if err := v.Reset(ctx, reason); err != nil {
		v.log.Error().Err(err).Msg("failed to clear revoked session")
		return
	}
	v.log.Warn().Msg("session revoked by backend")
}
