package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/external"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// TxSigner is implemented by external.ExternalSigner.
type TxSigner interface {
	SignTx(account accounts.Account, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// ExternalAgent delegates signing to a Clef-compatible signer whose operator approves
// or denies each request.
type ExternalAgent struct {
	txBuilder
	chainID *big.Int
	signer  TxSigner
}

// DialExternalAgent connects to the external signer at endpoint
func DialExternalAgent(endpoint string, backend Backend, chainID *big.Int, gas GasOptions, logger *zap.Logger) (*ExternalAgent, error) {
	signer, err := external.NewExternalSigner(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to external signer: %w", err)
	}
	logger.Info("Connected to external signer",
		zap.String("endpoint", endpoint),
		zap.Int("accounts", len(signer.Accounts())))
	return NewExternalAgent(signer, backend, chainID, gas, logger), nil
}

// NewExternalAgent creates an agent over an already connected signer
func NewExternalAgent(signer TxSigner, backend Backend, chainID *big.Int, gas GasOptions, logger *zap.Logger) *ExternalAgent {
	return &ExternalAgent{
		txBuilder: txBuilder{backend: backend, gas: gas, logger: logger},
		chainID:   chainID,
		signer:    signer,
	}
}

// SignAndBroadcast implements Agent. The call blocks while the signer's operator decides.
func (a *ExternalAgent) SignAndBroadcast(ctx context.Context, intent Intent) (Handle, error) {
	tx, err := a.build(ctx, intent)
	if err != nil {
		return Handle{}, Classify(err)
	}

	signed, err := a.signer.SignTx(accounts.Account{Address: intent.From}, tx, a.chainID)
	if err != nil {
		return Handle{}, Classify(fmt.Errorf("external signer: %w", err))
	}
	return a.broadcast(ctx, intent.From, signed)
}
