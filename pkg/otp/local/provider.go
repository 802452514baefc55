// Package local is a self-hosted email OTP provider: codes are generated here, stored
// hashed in redis (or memory) and delivered by a Mailer.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/otp"
)

const (
	defaultCodeLength = 6
	defaultCodeTTL    = 10 * time.Minute
)

// Provider implements otp.Provider
type Provider struct {
	store      Store
	mailer     Mailer
	clock      clock.Clock
	codeTTL    time.Duration
	codeLength int
}

// Option configures a Provider
type Option func(*Provider)

// WithClock overrides the clock used for expiry
func WithClock(c clock.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithCodeTTL sets how long an issued code stays valid
func WithCodeTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.codeTTL = ttl
		}
	}
}

// WithCodeLength sets the number of digits per code
func WithCodeLength(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.codeLength = n
		}
	}
}

// NewProvider creates a Provider
func NewProvider(store Store, mailer Mailer, opts ...Option) *Provider {
	p := &Provider{
		store:      store,
		mailer:     mailer,
		clock:      clock.Real(),
		codeTTL:    defaultCodeTTL,
		codeLength: defaultCodeLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SendCode implements otp.Provider
func (p *Provider) SendCode(ctx context.Context, email string) (string, error) {
	code, err := GenerateCode(p.codeLength)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	token := uuid.NewString()
	rec := Record{
		Email:     normalizeEmail(email),
		CodeHash:  HashCode(code),
		ExpiresAt: p.clock.Now().Add(p.codeTTL),
	}
	if err := p.store.Save(ctx, token, rec); err != nil {
		return "", fmt.Errorf("%w: %w", otp.ErrProviderUnavailable, err)
	}

	if err := p.mailer.SendCode(ctx, email, code, p.codeTTL); err != nil {
		_ = p.store.Delete(ctx, token)
		return "", fmt.Errorf("%w: deliver code: %w", otp.ErrProviderUnavailable, err)
	}

	return token, nil
}

// VerifyCode implements otp.Provider. A matching code consumes the token.
func (p *Provider) VerifyCode(ctx context.Context, email, code, token string) (bool, error) {
	rec, err := p.store.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return false, otp.ErrExpiredToken
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", otp.ErrProviderUnavailable, err)
	}

	if !rec.ExpiresAt.After(p.clock.Now()) {
		_ = p.store.Delete(ctx, token)
		return false, otp.ErrExpiredToken
	}
	if rec.Email != normalizeEmail(email) {
		return false, otp.ErrExpiredToken
	}
	if !CodeMatches(strings.TrimSpace(code), rec.CodeHash) {
		return false, otp.ErrInvalidCode
	}

	if err := p.store.Delete(ctx, token); err != nil {
		return false, fmt.Errorf("%w: %w", otp.ErrProviderUnavailable, err)
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
