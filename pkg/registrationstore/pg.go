package registrationstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/submission"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a postgres implementation of Store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateTransaction(ctx context.Context, rec submission.Record) error {
	_, err := s.db.NewInsert().
		Model(toTransactionDao(rec)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create registration transaction: %w", err)
	}
	return nil
}

// UpdateTransaction writes the terminal outcome of a pending record.
func (s *pgStore) UpdateTransaction(ctx context.Context, rec submission.Record) error {
	if !submission.CanTransition(submission.StatusPending, rec.Status) {
		return fmt.Errorf("%w: pending -> %s", submission.ErrInvalidTransition, rec.Status)
	}
	dao := toTransactionDao(rec)

	res, err := s.db.NewUpdate().
		Model(dao).
		Column("status", "tx_hash", "failure_reason", "contract_address", "updated_at").
		WherePK().
		Where("status = ?", string(submission.StatusPending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update registration transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	exists, err := s.db.NewSelect().
		Model((*TransactionDao)(nil)).
		Where("request_id = ?", rec.RequestID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check registration transaction: %w", err)
	}
	if !exists {
		return ErrTransactionNotFound
	}
	return fmt.Errorf("%w: record %s is already terminal", submission.ErrInvalidTransition, rec.RequestID)
}

func (s *pgStore) GetTransaction(ctx context.Context, requestID uuid.UUID) (*submission.Record, error) {
	dao := new(TransactionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("request_id = ?", requestID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get registration transaction: %w", err)
	}
	rec := toRecord(dao)
	return &rec, nil
}

// ListPending returns pending records, oldest first, optionally for one requester
func (s *pgStore) ListPending(ctx context.Context, requester *common.Address) ([]submission.Record, error) {
	var daos []TransactionDao
	q := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(submission.StatusPending)).
		Order("submitted_at ASC")
	if requester != nil {
		q = q.Where("requester = ?", requester.Hex())
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list pending registration transactions: %w", err)
	}
	recs := make([]submission.Record, len(daos))
	for i := range daos {
		recs[i] = toRecord(&daos[i])
	}
	return recs, nil
}

// SaveCompany records a confirmed registration. Saving the same owner again is a no-op.
func (s *pgStore) SaveCompany(ctx context.Context, reg company.Registration) error {
	_, err := s.db.NewInsert().
		Model(toCompanyDao(reg)).
		On("CONFLICT (owner) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

func (s *pgStore) GetCompany(ctx context.Context, owner common.Address) (*company.Registration, error) {
	dao := new(CompanyDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("owner = ?", owner.Hex()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return toRegistration(dao), nil
}
