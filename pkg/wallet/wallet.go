// Package wallet is the Wallet Signing Agent boundary. An Agent turns a transaction
// Intent into a broadcast transaction, or declines with a classified error.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUserRejected is returned when the signer declines to sign.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrInsufficientFunds is returned when the sender cannot pay for value and gas.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrProviderError covers every other failure before broadcast.
	ErrProviderError = errors.New("wallet provider error")
)

// Intent is a structured, unsigned transaction request.
type Intent struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Handle identifies a broadcast transaction.
type Handle struct {
	TxHash common.Hash
	From   common.Address
	Nonce  uint64
}

// Agent signs and broadcasts intents on behalf of a requester.
type Agent interface {
	SignAndBroadcast(ctx context.Context, intent Intent) (Handle, error)
}

var rejectionMarkers = []string{"user denied", "user rejected", "request denied", "rejected by user"}

// Classify wraps err with ErrUserRejected, ErrInsufficientFunds or ErrProviderError.
// Errors already carrying one of them are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUserRejected) || errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrProviderError) {
		return err
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rejectionMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrUserRejected, err)
		}
	}
	if strings.Contains(msg, "insufficient funds") {
		return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderError, err)
}

// ParseMaxGasPrice parses a decimal wei amount. An empty string means no cap.
func ParseMaxGasPrice(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("invalid max gas price %q", s)
	}
	return v, nil
}
