package submission

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/wallet"
)

// Status is the lifecycle state of a PendingTransaction
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// ErrInvalidTransition is returned when a status change would move backwards.
var ErrInvalidTransition = errors.New("invalid transaction status transition")

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusRejected || s == StatusFailed
}

// CanTransition reports whether from -> to is allowed. Only Pending moves, and only forward.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to.IsTerminal()
}

// Record is the persisted form of a PendingTransaction.
type Record struct {
	RequestID       uuid.UUID
	Request         company.RegistrationRequest
	TxHash          common.Hash
	Status          Status
	FailureReason   string
	ContractAddress common.Address
	SubmittedAt     time.Time
	UpdatedAt       time.Time
}

// PendingTransaction tracks one registration submission.
// RequestID, Request, SubmittedAt and Handle never change after Submit returns.
type PendingTransaction struct {
	RequestID   uuid.UUID
	Request     company.RegistrationRequest
	SubmittedAt time.Time
	Handle      wallet.Handle

	mu              sync.Mutex
	status          Status
	failureReason   string
	contractAddress common.Address
	updatedAt       time.Time
}

// Status returns the current status
func (p *PendingTransaction) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// FailureReason returns the reason recorded with a Rejected or Failed status
func (p *PendingTransaction) FailureReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failureReason
}

// ContractAddress returns the payroll contract once Confirmed
func (p *PendingTransaction) ContractAddress() common.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contractAddress
}

// Record returns a copy suitable for persistence
func (p *PendingTransaction) Record() Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Record{
		RequestID:       p.RequestID,
		Request:         p.Request,
		TxHash:          p.Handle.TxHash,
		Status:          p.status,
		FailureReason:   p.failureReason,
		ContractAddress: p.contractAddress,
		SubmittedAt:     p.SubmittedAt,
		UpdatedAt:       p.updatedAt,
	}
}

func (p *PendingTransaction) transition(to Status, reason string, contract common.Address, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !CanTransition(p.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.status, to)
	}
	p.status = to
	p.failureReason = reason
	p.contractAddress = contract
	p.updatedAt = at
	return nil
}
