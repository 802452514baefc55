package wallet

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Backend is the subset of ethclient.Client the agents need.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// GasOptions bounds the gas the agents will pay.
type GasOptions struct {
	// GasLimit is used as-is when non-zero; otherwise the limit is estimated.
	GasLimit uint64
	// MaxGasPrice caps the suggested gas price. Nil means uncapped.
	MaxGasPrice *big.Int
}

type txBuilder struct {
	backend Backend
	gas     GasOptions
	logger  *zap.Logger
}

func (b *txBuilder) build(ctx context.Context, intent Intent) (*types.Transaction, error) {
	nonce, err := b.backend.PendingNonceAt(ctx, intent.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := b.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	if b.gas.MaxGasPrice != nil && gasPrice.Cmp(b.gas.MaxGasPrice) > 0 {
		b.logger.Warn("Suggested gas price exceeds maximum",
			zap.String("suggested", gasPrice.String()),
			zap.String("max", b.gas.MaxGasPrice.String()))
		gasPrice = new(big.Int).Set(b.gas.MaxGasPrice)
	}

	value := intent.Value
	if value == nil {
		value = new(big.Int)
	}

	gasLimit := b.gas.GasLimit
	if gasLimit == 0 {
		to := intent.To
		gasLimit, err = b.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:     intent.From,
			To:       &to,
			GasPrice: gasPrice,
			Value:    value,
			Data:     intent.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &intent.To,
		Value:    value,
		Data:     intent.Data,
	}), nil
}

func (b *txBuilder) broadcast(ctx context.Context, from common.Address, signed *types.Transaction) (Handle, error) {
	if err := b.backend.SendTransaction(ctx, signed); err != nil {
		return Handle{}, Classify(fmt.Errorf("failed to send transaction: %w", err))
	}

	b.logger.Info("Transaction broadcast",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("from", from.Hex()),
		zap.Uint64("nonce", signed.Nonce()))

	return Handle{TxHash: signed.Hash(), From: from, Nonce: signed.Nonce()}, nil
}
