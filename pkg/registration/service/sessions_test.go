package service

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/registration"
)

func TestSessions_SweepRemovesIdleSessions(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	sessions := NewSessions(10*time.Minute, clk, zap.NewNop())
	defer sessions.Close()

	old := uuid.New()
	sessions.add(old, common.Address{1}, registration.New(registration.Deps{Clock: clk}, registration.Config{}))
	clk.Advance(6 * time.Minute)
	fresh := uuid.New()
	sessions.add(fresh, common.Address{2}, registration.New(registration.Deps{Clock: clk}, registration.Config{}))

	clk.Advance(5 * time.Minute)
	if n := sessions.Sweep(); n != 1 {
		t.Fatalf("expected 1 session swept, got %d", n)
	}
	if _, ok := sessions.get(old); ok {
		t.Fatalf("old session should be removed")
	}
	if _, ok := sessions.get(fresh); !ok {
		t.Fatalf("fresh session should remain")
	}
}

func TestSessions_ZeroTTLKeepsEverything(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	sessions := NewSessions(0, clk, zap.NewNop())
	defer sessions.Close()

	sessions.add(uuid.New(), common.Address{1}, registration.New(registration.Deps{Clock: clk}, registration.Config{}))
	clk.Advance(24 * time.Hour)
	if n := sessions.Sweep(); n != 0 {
		t.Fatalf("expected nothing swept, got %d", n)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", sessions.Len())
	}
}

type gatedProvider struct {
	entered chan struct{}
	release chan struct{}
}

func (p *gatedProvider) SendCode(context.Context, string) (string, error) {
	return "tok", nil
}

func (p *gatedProvider) VerifyCode(context.Context, string, string, string) (bool, error) {
	p.entered <- struct{}{}
	<-p.release
	return false, nil
}

func TestSessions_SweepKeepsBusySessions(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	sessions := NewSessions(10*time.Minute, clk, zap.NewNop())
	defer sessions.Close()

	provider := &gatedProvider{entered: make(chan struct{}, 1), release: make(chan struct{})}
	orch := registration.New(registration.Deps{Provider: provider, Clock: clk}, registration.Config{})
	ctx := context.Background()
	owner := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	err := orch.Start(ctx, company.Form{
		CompanyName: "Acme",
		Email:       "a@b.com",
		ESOPSupply:  "1000",
		TokenName:   "Acme",
		TokenSymbol: "ACM",
	}, owner)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := uuid.New()
	sessions.add(id, owner, orch)

	done := make(chan error, 1)
	go func() { done <- orch.EnterCode(ctx, "123456") }()
	select {
	case <-provider.entered:
	case <-time.After(time.Second):
		t.Fatal("verification did not start")
	}

	clk.Advance(time.Hour)
	if n := sessions.Sweep(); n != 0 {
		t.Fatalf("expected busy session to be kept, swept %d", n)
	}
	if _, ok := sessions.get(id); !ok {
		t.Fatal("busy session should remain")
	}

	close(provider.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("EnterCode did not return")
	}
}
