// Package otp implements the identity verification manager: email one-time codes
// obtained from a Provider, with a per-session failure counter and lockout.
package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/company"
)

var (
	// ErrInvalidEmail is returned for a malformed address. The provider is not contacted.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidCode is returned when the provider rejects the code.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrExpiredToken is returned when the verification token is no longer accepted.
	ErrExpiredToken = errors.New("verification token expired")
	// ErrProviderUnavailable is returned when the provider cannot be reached.
	ErrProviderUnavailable = errors.New("verification provider unavailable")
	// ErrLockedOut is returned while the session cools down after too many failures.
	ErrLockedOut = errors.New("too many failed verification attempts")
	// ErrNoToken is returned by VerifyCode before any code has been sent.
	ErrNoToken = errors.New("no verification code has been sent")
)

// Provider is the external email-OTP service.
type Provider interface {
	// SendCode emails a code to email and returns the token that later verification must quote.
	SendCode(ctx context.Context, email string) (token string, err error)
	// VerifyCode reports whether code is the one sent for token.
	VerifyCode(ctx context.Context, email, code, token string) (bool, error)
}

// Policy bounds failed attempts.
type Policy struct {
	MaxAttempts int
	Lockout     time.Duration
}

// DefaultPolicy allows three failures followed by a 60 second lockout.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Lockout: 60 * time.Second}
}

// Session is the verification state owned by one registration session.
type Session struct {
	Email             string
	VerificationToken string
	AttemptCount      int
	LockoutUntil      time.Time
}

// Status is a point-in-time view of a Session for presentation.
type Status struct {
	AttemptCount int
	MaxAttempts  int
	Locked       bool
	LockedUntil  time.Time
	CodeSent     bool
}

// Manager runs sendCode/verifyCode for a single session. It is safe for concurrent use.
type Manager struct {
	provider Provider
	policy   Policy
	clock    clock.Clock

	mu      sync.Mutex
	session Session
}

// NewManager creates a Manager with an empty session
func NewManager(provider Provider, policy Policy, clk clock.Clock) *Manager {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if policy.Lockout <= 0 {
		policy.Lockout = DefaultPolicy().Lockout
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Manager{provider: provider, policy: policy, clock: clk}
}

// SendCode asks the provider to email a code and records the returned token.
// A resend keeps the failure counter.
func (m *Manager) SendCode(ctx context.Context, email string) (string, error) {
	m.mu.Lock()
	now := m.clock.Now()
	m.expireLockout(now)
	if m.lockedAt(now) {
		m.mu.Unlock()
		return "", ErrLockedOut
	}
	m.mu.Unlock()

	if !company.IsValidEmail(email) {
		return "", ErrInvalidEmail
	}

	token, err := m.provider.SendCode(ctx, email)
	if err != nil {
		return "", classify(err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: empty verification token", ErrProviderUnavailable)
	}

	m.mu.Lock()
	m.session.Email = email
	m.session.VerificationToken = token
	m.mu.Unlock()

	return token, nil
}

// VerifyCode checks code against token for email.
//
// Every failure counts towards the policy; reaching MaxAttempts locks the session for
// Policy.Lockout measured from that failure. A success clears the counter and consumes
// the token.
func (m *Manager) VerifyCode(ctx context.Context, email, code, token string) (bool, error) {
	m.mu.Lock()
	now := m.clock.Now()
	m.expireLockout(now)
	if m.lockedAt(now) {
		m.mu.Unlock()
		return false, ErrLockedOut
	}
	if m.session.VerificationToken == "" || token == "" {
		m.mu.Unlock()
		return false, ErrNoToken
	}
	if token != m.session.VerificationToken || email != m.session.Email {
		m.recordFailure(now)
		m.mu.Unlock()
		return false, ErrExpiredToken
	}
	m.mu.Unlock()

	ok, err := m.provider.VerifyCode(ctx, email, code, token)
	if err == nil && !ok {
		err = ErrInvalidCode
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.recordFailure(m.clock.Now())
		return false, classify(err)
	}

	m.session.AttemptCount = 0
	m.session.LockoutUntil = time.Time{}
	m.session.VerificationToken = ""
	return true, nil
}

// Status returns the presentation view of the session.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	m.expireLockout(now)
	return Status{
		AttemptCount: m.session.AttemptCount,
		MaxAttempts:  m.policy.MaxAttempts,
		Locked:       m.lockedAt(now),
		LockedUntil:  m.session.LockoutUntil,
		CodeSent:     m.session.VerificationToken != "",
	}
}

// Locked reports whether the session is cooling down.
func (m *Manager) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	m.expireLockout(now)
	return m.lockedAt(now)
}

func (m *Manager) recordFailure(now time.Time) {
	m.session.AttemptCount++
	if m.session.AttemptCount >= m.policy.MaxAttempts {
		m.session.LockoutUntil = now.Add(m.policy.Lockout)
	}
}

func (m *Manager) lockedAt(now time.Time) bool {
	return !m.session.LockoutUntil.IsZero() && now.Before(m.session.LockoutUntil)
}

// expireLockout resets the counter once the cooldown deadline has passed.
func (m *Manager) expireLockout(now time.Time) {
	if !m.session.LockoutUntil.IsZero() && !now.Before(m.session.LockoutUntil) {
		m.session.AttemptCount = 0
		m.session.LockoutUntil = time.Time{}
	}
}

// classify maps provider errors onto the package sentinels, defaulting to ErrProviderUnavailable.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrProviderUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
}
