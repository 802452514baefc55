// Package submission hands registration intents to the Wallet Signing Agent and tracks
// the resulting PendingTransaction to a terminal status.
package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/internal/metrics"
	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/ethereum/contracts"
	"github.com/peyroll/registrar/pkg/wallet"
)

var (
	// ErrSubmissionInFlight is returned when the requester already has a Pending transaction.
	ErrSubmissionInFlight = errors.New("a registration transaction is already pending for this requester")
	// ErrTransactionReverted is returned when the transaction was mined with a failed status.
	ErrTransactionReverted = errors.New("registration transaction reverted")
)

// Reasons recorded on terminal statuses
const (
	ReasonUserRejected       = "UserRejected"
	ReasonInsufficientFunds  = "InsufficientFunds"
	ReasonProviderError      = "ProviderError"
	ReasonReverted           = "Reverted"
	ReasonCorrelationTimeout = "CorrelationTimeout"
	ReasonCancelled          = "Cancelled"
)

// Store persists transaction records.
type Store interface {
	CreateTransaction(ctx context.Context, rec Record) error
	// UpdateTransaction must refuse to change a record that is no longer pending.
	UpdateTransaction(ctx context.Context, rec Record) error
}

// ReceiptWaiter blocks until a transaction is mined.
type ReceiptWaiter interface {
	WaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Controller is the Transaction Submission Controller. It never retries on its own.
type Controller struct {
	agent    wallet.Agent
	factory  common.Address
	abi      *abi.ABI
	receipts ReceiptWaiter
	store    Store
	clock    clock.Clock
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[common.Address]uuid.UUID
}

// NewController creates a controller sending registerCompany calls to factory.
// receipts and store may be nil.
func NewController(
	agent wallet.Agent,
	factory common.Address,
	receipts ReceiptWaiter,
	store Store,
	clk clock.Clock,
	logger *zap.Logger,
) (*Controller, error) {
	parsed, err := contracts.PayrollFactoryMetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory abi: %w", err)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Controller{
		agent:    agent,
		factory:  factory,
		abi:      parsed,
		receipts: receipts,
		store:    store,
		clock:    clk,
		logger:   logger,
		inflight: make(map[common.Address]uuid.UUID),
	}, nil
}

// Submit builds the registerCompany intent and hands it to the signing agent.
//
// A synchronous decline returns the PendingTransaction in its terminal Rejected or Failed
// status together with the classified wallet error. Otherwise the transaction is Pending
// and the requester's single-flight slot stays held until MarkConfirmed, MarkFailed or Discard.
func (c *Controller) Submit(ctx context.Context, req company.RegistrationRequest) (*PendingTransaction, error) {
	// abi.Pack wraps uint256 values silently.
	supply := req.ESOPSupplyBaseUnits()
	if supply.Sign() < 0 || supply.BitLen() > 256 {
		return nil, fmt.Errorf("esop supply %s does not fit uint256", req.ESOPSupply)
	}
	data, err := c.abi.Pack("registerCompany",
		req.CompanyName, req.Email, supply, req.TokenName, req.TokenSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to pack registerCompany: %w", err)
	}

	tx := &PendingTransaction{
		RequestID:   uuid.New(),
		Request:     req,
		SubmittedAt: c.clock.Now(),
		status:      StatusPending,
	}
	tx.updatedAt = tx.SubmittedAt

	if err := c.acquire(req.Requester, tx.RequestID); err != nil {
		return nil, err
	}

	handle, err := c.agent.SignAndBroadcast(ctx, wallet.Intent{
		From: req.Requester,
		To:   c.factory,
		Data: data,
	})
	if err != nil {
		err = wallet.Classify(err)
		to, reason := declineStatus(err)
		_ = tx.transition(to, reason, common.Address{}, c.clock.Now())
		c.release(req.Requester, tx.RequestID)
		metrics.SubmissionsTotal.WithLabelValues(reason).Inc()
		c.logger.Warn("Registration transaction declined",
			zap.String("request_id", tx.RequestID.String()),
			zap.String("requester", req.Requester.Hex()),
			zap.String("reason", reason),
			zap.Error(err))
		c.persistCreate(ctx, tx)
		return tx, err
	}

	tx.Handle = handle
	metrics.SubmissionsTotal.WithLabelValues("broadcast").Inc()
	c.logger.Info("Registration transaction submitted",
		zap.String("request_id", tx.RequestID.String()),
		zap.String("requester", req.Requester.Hex()),
		zap.String("tx_hash", handle.TxHash.Hex()))
	c.persistCreate(ctx, tx)
	return tx, nil
}

// AwaitReceipt blocks until tx is mined. A reverted receipt marks tx Failed and returns
// ErrTransactionReverted. A successful receipt leaves tx Pending until its ledger event.
func (c *Controller) AwaitReceipt(ctx context.Context, tx *PendingTransaction) (*types.Receipt, error) {
	if c.receipts == nil {
		return nil, errors.New("receipt tracking is not configured")
	}
	receipt, err := c.receipts.WaitReceipt(ctx, tx.Handle.TxHash)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		if markErr := c.MarkFailed(ctx, tx, ReasonReverted); markErr != nil && !errors.Is(markErr, ErrInvalidTransition) {
			return receipt, markErr
		}
		return receipt, ErrTransactionReverted
	}
	return receipt, nil
}

// MarkConfirmed moves tx to Confirmed with the resulting contract address
func (c *Controller) MarkConfirmed(ctx context.Context, tx *PendingTransaction, contract common.Address) error {
	return c.finish(ctx, tx, StatusConfirmed, "", contract)
}

// MarkFailed moves tx to Failed with reason
func (c *Controller) MarkFailed(ctx context.Context, tx *PendingTransaction, reason string) error {
	return c.finish(ctx, tx, StatusFailed, reason, common.Address{})
}

// Discard abandons a Pending tx on session cancellation and frees the requester's slot.
// The broadcast transaction itself cannot be recalled.
func (c *Controller) Discard(ctx context.Context, tx *PendingTransaction) error {
	err := c.finish(ctx, tx, StatusFailed, ReasonCancelled, common.Address{})
	if errors.Is(err, ErrInvalidTransition) {
		return nil
	}
	return err
}

// InFlight reports whether requester currently holds the single-flight slot
func (c *Controller) InFlight(requester common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[requester]
	return ok
}

func (c *Controller) finish(ctx context.Context, tx *PendingTransaction, to Status, reason string, contract common.Address) error {
	if err := tx.transition(to, reason, contract, c.clock.Now()); err != nil {
		return err
	}
	c.release(tx.Request.Requester, tx.RequestID)

	c.logger.Info("Registration transaction finished",
		zap.String("request_id", tx.RequestID.String()),
		zap.String("status", string(to)),
		zap.String("reason", reason))

	if c.store != nil {
		if err := c.store.UpdateTransaction(ctx, tx.Record()); err != nil {
			c.logger.Error("Failed to persist transaction status",
				zap.String("request_id", tx.RequestID.String()),
				zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("submission", "store").Inc()
		}
	}
	return nil
}

func (c *Controller) acquire(requester common.Address, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[requester]; ok {
		return ErrSubmissionInFlight
	}
	c.inflight[requester] = id
	return nil
}

func (c *Controller) release(requester common.Address, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[requester] == id {
		delete(c.inflight, requester)
	}
}

func (c *Controller) persistCreate(ctx context.Context, tx *PendingTransaction) {
	if c.store == nil {
		return
	}
	if err := c.store.CreateTransaction(ctx, tx.Record()); err != nil {
		c.logger.Error("Failed to persist transaction",
			zap.String("request_id", tx.RequestID.String()),
			zap.Error(err))
		metrics.ErrorsTotal.WithLabelValues("submission", "store").Inc()
	}
}

func declineStatus(err error) (Status, string) {
	switch {
	case errors.Is(err, wallet.ErrUserRejected):
		return StatusRejected, ReasonUserRejected
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return StatusFailed, ReasonInsufficientFunds
	default:
		return StatusFailed, ReasonProviderError
	}
}
