package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/peyroll/registrar/pkg/app/errors"
	"github.com/peyroll/registrar/pkg/auth"
	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/otp"
	"github.com/peyroll/registrar/pkg/registration"
)

type fakeProvider struct {
	mu   sync.Mutex
	code string
}

func (p *fakeProvider) SendCode(_ context.Context, _ string) (string, error) {
	return "token", nil
}

func (p *fakeProvider) VerifyCode(_ context.Context, _, code, _ string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return code == p.code, nil
}

type fakeTokens struct {
	issued map[uuid.UUID]common.Address
}

func (f *fakeTokens) Issue(sessionID uuid.UUID, requester common.Address) (string, time.Time, error) {
	if f.issued == nil {
		f.issued = make(map[uuid.UUID]common.Address)
	}
	f.issued[sessionID] = requester
	return "tok-" + sessionID.String(), time.Unix(1_700_000_000, 0), nil
}

type companyReaderFunc func(context.Context, common.Address) (*company.Info, error)

func (f companyReaderFunc) CompanyInfo(ctx context.Context, owner common.Address) (*company.Info, error) {
	return f(ctx, owner)
}

func newTestService(t *testing.T, companies CompanyReader) (Service, *Sessions, *fakeTokens) {
	t.Helper()
	sessions := NewSessions(time.Hour, clock.NewFake(time.Unix(1_700_000_000, 0)), zap.NewNop())
	t.Cleanup(sessions.Close)
	tokens := &fakeTokens{}
	deps := registration.Deps{Provider: &fakeProvider{code: "123456"}}
	svc := NewService(sessions, deps, registration.Config{Policy: otp.DefaultPolicy()}, tokens, companies, zap.NewNop())
	return svc, sessions, tokens
}

func signedStart(t *testing.T, key *ecdsa.PrivateKey) *registration.StartRequest {
	t.Helper()
	msg := "register Acme"
	sig, err := auth.SignEIP191(key, msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return &registration.StartRequest{
		Form: company.Form{
			CompanyName: "Acme",
			Email:       "a@b.com",
			ESOPSupply:  "1000",
			TokenName:   "Acme",
			TokenSymbol: "ACM",
		},
		Signature: sig,
		Message:   msg,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var svcErr *apperrors.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	return svcErr.StatusCode()
}

func TestStart_CreatesSessionAwaitingOtp(t *testing.T) {
	svc, sessions, tokens := newTestService(t, nil)
	key, _ := crypto.GenerateKey()

	resp, err := svc.Start(context.Background(), signedStart(t, key))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if resp.Status.State != registration.StateAwaitingOtp {
		t.Fatalf("expected %s, got %s", registration.StateAwaitingOtp, resp.Status.State)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", sessions.Len())
	}
	id := uuid.MustParse(resp.SessionID)
	if tokens.issued[id] != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatalf("token issued for wrong requester")
	}
	if !strings.HasPrefix(resp.Token, "tok-") {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestStart_BadSignature_Unauthorized(t *testing.T) {
	svc, sessions, _ := newTestService(t, nil)
	key, _ := crypto.GenerateKey()
	req := signedStart(t, key)
	req.Signature = "0x1234"

	_, err := svc.Start(context.Background(), req)
	if got := statusOf(t, err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
	if sessions.Len() != 0 {
		t.Fatalf("no session expected")
	}
}

func TestStart_ClaimedAddress(t *testing.T) {
	key, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()

	tests := []struct {
		name    string
		address string
		status  int
	}{
		{"matches signer", crypto.PubkeyToAddress(key.PublicKey).Hex(), 0},
		{"different signer", crypto.PubkeyToAddress(other.PublicKey).Hex(), http.StatusUnauthorized},
		{"malformed", "0x1234", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sessions, _ := newTestService(t, nil)
			req := signedStart(t, key)
			req.Address = tt.address

			_, err := svc.Start(context.Background(), req)
			if tt.status == 0 {
				if err != nil {
					t.Fatalf("Start: %v", err)
				}
				return
			}
			if got := statusOf(t, err); got != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, got)
			}
			if sessions.Len() != 0 {
				t.Fatalf("no session expected")
			}
		})
	}
}

func TestStart_InvalidForm_BadRequestNoSession(t *testing.T) {
	svc, sessions, _ := newTestService(t, nil)
	key, _ := crypto.GenerateKey()
	req := signedStart(t, key)
	req.ESOPSupply = "-5"

	_, err := svc.Start(context.Background(), req)
	if got := statusOf(t, err); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
	if sessions.Len() != 0 {
		t.Fatalf("no session expected")
	}
}

func TestEnterCode_WrongCodeThenLocked(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	key, _ := crypto.GenerateKey()
	resp, err := svc.Start(context.Background(), signedStart(t, key))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := uuid.MustParse(resp.SessionID)
	ctx := auth.WithRequester(context.Background(), crypto.PubkeyToAddress(key.PublicKey))

	for i := 1; i <= 2; i++ {
		_, err := svc.EnterCode(ctx, id, "000000")
		if got := statusOf(t, err); got != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected 400, got %d", i, got)
		}
	}
	_, err = svc.EnterCode(ctx, id, "000000")
	if got := statusOf(t, err); got != http.StatusBadRequest && got != http.StatusLocked {
		t.Fatalf("third attempt: unexpected status %d", got)
	}
	_, err = svc.EnterCode(ctx, id, "123456")
	if got := statusOf(t, err); got != http.StatusLocked {
		t.Fatalf("expected 423 while locked, got %d", got)
	}

	st, err := svc.Status(ctx, id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Locked || st.LockedUntil == nil {
		t.Fatalf("expected locked status, got %+v", st)
	}
}

func TestSession_OwnershipAndLookup(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	key, _ := crypto.GenerateKey()
	resp, err := svc.Start(context.Background(), signedStart(t, key))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := uuid.MustParse(resp.SessionID)

	other := auth.WithRequester(context.Background(), common.HexToAddress("0x2222222222222222222222222222222222222222"))
	if _, err := svc.Status(other, id); statusOf(t, err) != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign requester")
	}
	if _, err := svc.Status(context.Background(), uuid.New()); statusOf(t, err) != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session")
	}
}

func TestCancel_ReturnsIdle(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	key, _ := crypto.GenerateKey()
	resp, err := svc.Start(context.Background(), signedStart(t, key))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	st, err := svc.Cancel(context.Background(), uuid.MustParse(resp.SessionID))
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if st.State != registration.StateIdle {
		t.Fatalf("expected Idle, got %s", st.State)
	}
}

func TestCompany(t *testing.T) {
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	t.Run("registered", func(t *testing.T) {
		svc, _, _ := newTestService(t, companyReaderFunc(func(context.Context, common.Address) (*company.Info, error) {
			return &company.Info{Owner: owner, CompanyName: "Acme"}, nil
		}))
		info, err := svc.Company(context.Background(), owner)
		if err != nil {
			t.Fatalf("Company: %v", err)
		}
		if info.CompanyName != "Acme" {
			t.Fatalf("unexpected company %+v", info)
		}
	})
	t.Run("not registered", func(t *testing.T) {
		svc, _, _ := newTestService(t, companyReaderFunc(func(context.Context, common.Address) (*company.Info, error) {
			return nil, nil
		}))
		_, err := svc.Company(context.Background(), owner)
		if got := statusOf(t, err); got != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", got)
		}
	})
	t.Run("rpc failure", func(t *testing.T) {
		svc, _, _ := newTestService(t, companyReaderFunc(func(context.Context, common.Address) (*company.Info, error) {
			return nil, errors.New("dial tcp: refused")
		}))
		_, err := svc.Company(context.Background(), owner)
		if got := statusOf(t, err); got != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", got)
		}
	})
}

func TestToServiceError_UsesUserMessage(t *testing.T) {
	err := toServiceError(otp.ErrLockedOut)
	var svcErr *apperrors.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError")
	}
	if svcErr.StatusCode() != http.StatusLocked {
		t.Fatalf("expected 423, got %d", svcErr.StatusCode())
	}
	if svcErr.Message != registration.UserMessage(otp.ErrLockedOut) {
		t.Fatalf("unexpected message %q", svcErr.Message)
	}
}
