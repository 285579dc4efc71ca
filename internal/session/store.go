package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/services"
)

// ErrLoginFailed is wrapped by every *LoginError.
var ErrLoginFailed = errors.New("login failed")

// DefaultLoginMessage is used when the backend declines without a message.
const DefaultLoginMessage = "Login failed"

// LoginError is a login the backend answered but declined.
type LoginError struct {
	Message string
	Code    string
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return ErrLoginFailed }

// Authenticator is the auth backend the Store depends on.
type Authenticator interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (*services.AuthResponse, error)
	ValidateToken(token string) bool
	IsTokenExpired(expiration string) bool
}

// Store is the session state machine: Unauthenticated until a login
// succeeds, Authenticated until logout or expiry.
type Store struct {
	vault *Vault
	auth  Authenticator
	log   zerolog.Logger
}

// NewStore returns a Store over v.
func NewStore(v *Vault, auth Authenticator) *Store {
	return &Store{
		vault: v,
		auth:  auth,
		log:   log.Logger.With().Str("component", "session").Logger(),
	}
}

// SetLogger replaces the store logger.
func (s *Store) SetLogger(l zerolog.Logger) { s.log = l }

// Vault returns the underlying vault.
func (s *Store) Vault() *Vault { return s.vault }

// Login authenticates creds and persists the issued credential. Any failure
// resets the session and is returned to the caller: a declined login as
// *LoginError, a transport failure as *gateway.APIError.
func (s *Store) Login(ctx context.Context, creds domain.LoginCredentials) (domain.Session, error) {
	resp, err := s.auth.Login(ctx, creds)
	if err == nil && (!resp.Success || resp.Data.Token == "") {
		msg := resp.Message
		if msg == "" {
			msg = DefaultLoginMessage
		}
		err = &LoginError{Message: msg, Code: resp.Code}
	}

	var sess domain.Session
	if err == nil {
		sess = domain.Session{
			Token:           resp.Data.Token,
			Type:            resp.Data.Type,
			Expiration:      resp.Data.Expiration,
			IsAuthenticated: true,
		}
		err = s.vault.Save(ctx, sess)
	}

	if err != nil {
		if rerr := s.vault.Reset(ctx, ""); rerr != nil {
			s.log.Error().Err(rerr).Msg("failed to reset session after login failure")
		}
		s.log.Info().Err(err).Str("username", creds.Username).Msg("login failed")
		return domain.Session{}, err
	}
	s.log.Info().Str("username", creds.Username).Str("expiration", sess.Expiration).Msg("logged in")
	return sess, nil
}

// Logout clears the session. A non-empty reason is published to logout
// subscribers.
func (s *Store) Logout(ctx context.Context, reason string) error {
	err := s.vault.Reset(ctx, reason)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to clear session")
	}
	return err
}

// State returns the current session. An unreadable record reads as logged
// out.
func (s *Store) State(ctx context.Context) domain.Session {
	sess, err := s.vault.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load session")
		return domain.Session{}
	}
	return sess
}

// CheckExpiration reports whether the session has an expiry that has not
// passed. No expiry reads as false; a passed expiry also logs out.
func (s *Store) CheckExpiration(ctx context.Context) bool {
	sess := s.State(ctx)
	if sess.Expiration == "" {
		return false
	}
	if s.auth.IsTokenExpired(sess.Expiration) {
		s.expire(ctx, sess)
		return false
	}
	return true
}

// IsTokenValid reports whether the session holds a usable token. A passed
// expiry logs out.
func (s *Store) IsTokenValid(ctx context.Context) bool {
	sess := s.State(ctx)
	if sess.Token == "" || !s.auth.ValidateToken(sess.Token) {
		return false
	}
	if sess.Expiration != "" && s.auth.IsTokenExpired(sess.Expiration) {
		s.expire(ctx, sess)
		return false
	}
	return true
}

func (s *Store) expire(ctx context.Context, seen domain.Session) {
	cleared, err := s.vault.resetIf(ctx, func(cur domain.Session) bool {
		return cur.Token == seen.Token && cur.Expiration == seen.Expiration
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to clear expired session")
		return
	}
	if cleared {
		s.log.Info().Str("expiration", seen.Expiration).Msg("session expired")
	}
}
