package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

type fakeBackend struct {
	nonce     uint64
	gasPrice  *big.Int
	estimate  uint64
	estimateE error
	sendErr   error
	sent      []*types.Transaction
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.estimate, f.estimateE
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"metamask denial", errors.New("User denied transaction signature"), ErrUserRejected},
		{"clef denial", errors.New("Request denied"), ErrUserRejected},
		{"funds", errors.New("insufficient funds for gas * price + value"), ErrInsufficientFunds},
		{"other", errors.New("connection refused"), ErrProviderError},
		{"already classified", ErrInsufficientFunds, ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
	if Classify(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestParseMaxGasPrice(t *testing.T) {
	if v, err := ParseMaxGasPrice(""); err != nil || v != nil {
		t.Fatalf("expected no cap, got %v %v", v, err)
	}
	v, err := ParseMaxGasPrice("50000000000")
	if err != nil || v.String() != "50000000000" {
		t.Fatalf("unexpected %v %v", v, err)
	}
	if _, err := ParseMaxGasPrice("-1"); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestKeyedAgent_SignAndBroadcast(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	to := common.HexToAddress("0x00000000000000000000000000000000000000fa")
	chainID := big.NewInt(11155111)

	backend := &fakeBackend{nonce: 7, gasPrice: big.NewInt(100), estimate: 21000}
	agent := NewKeyedAgent(backend, chainID, map[common.Address]*ecdsa.PrivateKey{from: key},
		GasOptions{MaxGasPrice: big.NewInt(60)}, zap.NewNop())

	handle, err := agent.SignAndBroadcast(context.Background(), Intent{From: from, To: to, Data: []byte{0x01}})
	if err != nil {
		t.Fatalf("SignAndBroadcast: %v", err)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(backend.sent))
	}
	tx := backend.sent[0]
	if handle.TxHash != tx.Hash() || handle.Nonce != 7 || handle.From != from {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if tx.GasPrice().Int64() != 60 {
		t.Fatalf("expected capped gas price 60, got %s", tx.GasPrice())
	}
	if tx.Gas() != 21000 {
		t.Fatalf("expected estimated gas, got %d", tx.Gas())
	}
	sender, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	if err != nil || sender != from {
		t.Fatalf("sender = %s, %v; want %s", sender.Hex(), err, from.Hex())
	}
}

func TestKeyedAgent_UnknownAccount(t *testing.T) {
	agent := NewKeyedAgent(&fakeBackend{gasPrice: big.NewInt(1)}, big.NewInt(1), nil, GasOptions{}, zap.NewNop())
	_, err := agent.SignAndBroadcast(context.Background(), Intent{From: common.HexToAddress("0x01")})
	if !errors.Is(err, ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestKeyedAgent_InsufficientFunds(t *testing.T) {
	key, _ := crypto.GenerateKey()
	from := crypto.PubkeyToAddress(key.PublicKey)
	backend := &fakeBackend{
		gasPrice: big.NewInt(1),
		sendErr:  errors.New("insufficient funds for gas * price + value"),
	}
	agent := NewKeyedAgent(backend, big.NewInt(1), map[common.Address]*ecdsa.PrivateKey{from: key},
		GasOptions{GasLimit: 500000}, zap.NewNop())

	_, err := agent.SignAndBroadcast(context.Background(), Intent{From: from, To: common.HexToAddress("0x02")})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

type fakeSigner struct {
	key *ecdsa.PrivateKey
	err error
}

func (f *fakeSigner) SignTx(_ accounts.Account, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), f.key)
}

func TestExternalAgent(t *testing.T) {
	key, _ := crypto.GenerateKey()
	from := crypto.PubkeyToAddress(key.PublicKey)
	intent := Intent{From: from, To: common.HexToAddress("0x03")}

	t.Run("approved", func(t *testing.T) {
		backend := &fakeBackend{gasPrice: big.NewInt(1), estimate: 30000}
		agent := NewExternalAgent(&fakeSigner{key: key}, backend, big.NewInt(5), GasOptions{}, zap.NewNop())
		handle, err := agent.SignAndBroadcast(context.Background(), intent)
		if err != nil {
			t.Fatalf("SignAndBroadcast: %v", err)
		}
		if len(backend.sent) != 1 || handle.TxHash != backend.sent[0].Hash() {
			t.Fatalf("broadcast not recorded: %+v", handle)
		}
	})

	t.Run("denied", func(t *testing.T) {
		backend := &fakeBackend{gasPrice: big.NewInt(1), estimate: 30000}
		agent := NewExternalAgent(&fakeSigner{err: errors.New("Request denied")}, backend, big.NewInt(5), GasOptions{}, zap.NewNop())
		_, err := agent.SignAndBroadcast(context.Background(), intent)
		if !errors.Is(err, ErrUserRejected) {
			t.Fatalf("expected ErrUserRejected, got %v", err)
		}
		if len(backend.sent) != 0 {
			t.Fatal("denied transaction must not be broadcast")
		}
	})
}
