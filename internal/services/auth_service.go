package services

import (
	"context"
	"strings"
	"time"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/gateway"
)

// AuthTokenData is the credential issued by the auth endpoint.
type AuthTokenData struct {
	Token      string `json:"token"`
	Type       string `json:"type"`
	Expiration string `json:"expiration"`
}

// AuthResponse is the login outcome in domain terms.
type AuthResponse struct {
	Success bool
	Data    AuthTokenData
	Message string
	Code    string
}

type rawAuthResponse struct {
	State   bool          `json:"state"`
	Message string        `json:"message"`
	Code    looseString   `json:"code"`
	Data    AuthTokenData `json:"data"`
}

// AuthService exchanges credentials for a token.
type AuthService struct {
	Client   *gateway.Client
	Endpoint string
	// Now is the clock used for expiry checks.
	Now func() time.Time
}

// NewAuthService constructs an AuthService posting to endpoint.
func NewAuthService(c *gateway.Client, endpoint string) *AuthService {
	return &AuthService{Client: c, Endpoint: endpoint, Now: time.Now}
}

// Login posts creds to the auth endpoint. A declined login is a normal
// return with Success=false; transport and HTTP failures are *gateway.APIError.
func (s *AuthService) Login(ctx context.Context, creds domain.LoginCredentials) (*AuthResponse, error) {
	raw, err := gateway.Post[rawAuthResponse](ctx, s.Client, s.Endpoint, creds)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Success: raw.State,
		Data:    raw.Data,
		Message: raw.Message,
		Code:    string(raw.Code),
	}, nil
}

// ValidateToken only checks that a token is present.
func (s *AuthService) ValidateToken(token string) bool {
	return strings.TrimSpace(token) != ""
}

// IsTokenExpired reports whether expiration lies in the past. A value that
// cannot be parsed is not considered expired.
func (s *AuthService) IsTokenExpired(expiration string) bool {
	t, ok := domain.ParseTimestamp(expiration)
	if !ok {
		return false
	}
	return t.Before(s.now())
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
