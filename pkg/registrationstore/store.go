package registrationstore

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/submission"
)

var (
	// ErrTransactionNotFound is returned when no record exists for a request id.
	ErrTransactionNotFound = errors.New("registration transaction not found")
	// ErrCompanyNotFound is returned when no confirmed registration exists for an owner.
	ErrCompanyNotFound = errors.New("company not found")
)

// TransactionStore persists registration transactions. Updates only move a
// pending record to a terminal status; anything else is submission.ErrInvalidTransition.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, rec submission.Record) error
	UpdateTransaction(ctx context.Context, rec submission.Record) error
	GetTransaction(ctx context.Context, requestID uuid.UUID) (*submission.Record, error)
	ListPending(ctx context.Context, requester *common.Address) ([]submission.Record, error)
}

// CompanyStore persists confirmed registrations
type CompanyStore interface {
	SaveCompany(ctx context.Context, reg company.Registration) error
	GetCompany(ctx context.Context, owner common.Address) (*company.Registration, error)
}

// Store defines the registrar's persistence
type Store interface {
	TransactionStore
	CompanyStore
}
