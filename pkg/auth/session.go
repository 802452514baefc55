package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any session token that fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims binds a bearer token to one registration session and its requester
type SessionClaims struct {
	SessionID string `json:"sid"`
	Requester string `json:"addr"`
	jwt.RegisteredClaims
}

// Session returns the typed session id and requester
func (c *SessionClaims) Session() (uuid.UUID, common.Address, error) {
	id, err := uuid.Parse(c.SessionID)
	if err != nil {
		return uuid.Nil, common.Address{}, fmt.Errorf("%w: bad sid", ErrInvalidToken)
	}
	if !common.IsHexAddress(c.Requester) {
		return uuid.Nil, common.Address{}, fmt.Errorf("%w: bad addr", ErrInvalidToken)
	}
	return id, common.HexToAddress(c.Requester), nil
}

// SessionTokens issues and verifies HS256 session tokens
type SessionTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokens creates a token issuer. secret must be at least 32 bytes.
func NewSessionTokens(secret []byte, issuer string, ttl time.Duration) (*SessionTokens, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionTokens{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for sessionID owned by requester
func (s *SessionTokens) Issue(sessionID uuid.UUID, requester common.Address) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := SessionClaims{
		SessionID: sessionID.String(),
		Requester: requester.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   requester.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses tokenString and returns its claims
func (s *SessionTokens) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, _, err := claims.Session(); err != nil {
		return nil, err
	}
	return claims, nil
}
