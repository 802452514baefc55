package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// KeyedAgent signs with custodial keys held in memory, one per requester address.
type KeyedAgent struct {
	txBuilder
	signer  types.Signer
	signers map[common.Address]*ecdsa.PrivateKey
}

// NewKeyedAgent creates an agent over the given signing keys
func NewKeyedAgent(
	backend Backend,
	chainID *big.Int,
	signers map[common.Address]*ecdsa.PrivateKey,
	gas GasOptions,
	logger *zap.Logger,
) *KeyedAgent {
	return &KeyedAgent{
		txBuilder: txBuilder{backend: backend, gas: gas, logger: logger},
		signer:    types.LatestSignerForChainID(chainID),
		signers:   signers,
	}
}

// Accounts lists the addresses this agent can sign for
func (a *KeyedAgent) Accounts() []common.Address {
	out := make([]common.Address, 0, len(a.signers))
	for addr := range a.signers {
		out = append(out, addr)
	}
	return out
}

// SignAndBroadcast implements Agent
func (a *KeyedAgent) SignAndBroadcast(ctx context.Context, intent Intent) (Handle, error) {
	key, ok := a.signers[intent.From]
	if !ok {
		return Handle{}, fmt.Errorf("%w: no signing key for %s", ErrProviderError, intent.From.Hex())
	}

	tx, err := a.build(ctx, intent)
	if err != nil {
		return Handle{}, Classify(err)
	}

	signed, err := types.SignTx(tx, a.signer, key)
	if err != nil {
		return Handle{}, Classify(fmt.Errorf("failed to sign transaction: %w", err))
	}
	return a.broadcast(ctx, intent.From, signed)
}
