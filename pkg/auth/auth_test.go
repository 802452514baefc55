package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

func TestEIP191RoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	sig, err := SignEIP191(key, "register company")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, err := VerifyEIP191Signature("register company", sig)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != want {
		t.Fatalf("recovered %s, want %s", got.Hex(), want.Hex())
	}

	if _, err := VerifyRequester("register company", sig, want); err != nil {
		t.Fatalf("VerifyRequester: %v", err)
	}
	other := common.HexToAddress("0x0000000000000000000000000000000000000001")
	if _, err := VerifyRequester("register company", sig, other); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestVerifyEIP191Signature_Invalid(t *testing.T) {
	if _, err := VerifyEIP191Signature("msg", "0xzz"); err == nil {
		t.Fatal("expected hex error")
	}
	if _, err := VerifyEIP191Signature("msg", "0x"+strings.Repeat("ab", 10)); err == nil {
		t.Fatal("expected length error")
	}
}

func TestValidateEVMAddress(t *testing.T) {
	if !ValidateEVMAddress("0x1111111111111111111111111111111111111111") {
		t.Fatal("expected valid address")
	}
	for _, s := range []string{"", "1111111111111111111111111111111111111111", "0x1234", "0xzz11111111111111111111111111111111111111"} {
		if ValidateEVMAddress(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestSessionTokens(t *testing.T) {
	secret := []byte(strings.Repeat("s", 32))
	tokens, err := NewSessionTokens(secret, "registrar-test", time.Minute)
	if err != nil {
		t.Fatalf("NewSessionTokens: %v", err)
	}
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	sid := uuid.New()
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	signed, expires, err := tokens.Issue(sid, addr)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expires.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected expiry %s", expires)
	}

	claims, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	gotID, gotAddr, err := claims.Session()
	if err != nil || gotID != sid || gotAddr != addr {
		t.Fatalf("unexpected claims %v %s %v", gotID, gotAddr.Hex(), err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := tokens.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}

	other, _ := NewSessionTokens([]byte(strings.Repeat("x", 32)), "registrar-test", time.Minute)
	other.now = func() time.Time { return now.Add(-2 * time.Minute) }
	if _, err := other.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign secret to fail, got %v", err)
	}

	if _, err := NewSessionTokens([]byte("short"), "x", time.Minute); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := RequesterFromContext(ctx); ok {
		t.Fatal("empty context must not carry a requester")
	}
	addr := common.HexToAddress("0x03")
	id := uuid.New()
	ctx = WithSessionID(WithRequester(ctx, addr), id)

	if got, ok := RequesterFromContext(ctx); !ok || got != addr {
		t.Fatalf("requester = %s, %v", got.Hex(), ok)
	}
	if got, ok := SessionIDFromContext(ctx); !ok || got != id {
		t.Fatalf("session id = %s, %v", got, ok)
	}
}
