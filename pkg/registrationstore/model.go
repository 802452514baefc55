package registrationstore

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/submission"
)

// TransactionDao maps to the 'registration_transactions' table.
type TransactionDao struct {
	bun.BaseModel   `bun:"table:registration_transactions,alias:rt"`
	RequestID       uuid.UUID       `bun:"request_id,pk,type:uuid"`
	Requester       string          `bun:"requester,notnull,type:varchar(42)"`
	TxHash          *string         `bun:"tx_hash,type:varchar(66)"`
	Status          string          `bun:"status,notnull,type:varchar(16)"`
	CompanyName     string          `bun:"company_name,notnull,type:varchar(255)"`
	Email           string          `bun:"email,notnull,type:varchar(320)"`
	ESOPSupply      decimal.Decimal `bun:"esop_supply,notnull,type:numeric(78,18)"`
	TokenName       string          `bun:"token_name,notnull,type:varchar(255)"`
	TokenSymbol     string          `bun:"token_symbol,notnull,type:varchar(32)"`
	FailureReason   *string         `bun:"failure_reason,type:varchar(64)"`
	ContractAddress *string         `bun:"contract_address,type:varchar(42)"`
	SubmittedAt     time.Time       `bun:"submitted_at,notnull"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull"`
}

// CompanyDao maps to the 'companies' table.
type CompanyDao struct {
	bun.BaseModel   `bun:"table:companies,alias:c"`
	Owner           string    `bun:"owner,pk,type:varchar(42)"`
	PayrollContract string    `bun:"payroll_contract,notnull,type:varchar(42)"`
	CompanyName     string    `bun:"company_name,notnull,type:varchar(255)"`
	TxHash          string    `bun:"tx_hash,notnull,type:varchar(66)"`
	BlockNumber     int64     `bun:"block_number,notnull"`
	RegisteredAt    time.Time `bun:"registered_at,notnull"`
}

func toTransactionDao(rec submission.Record) *TransactionDao {
	dao := &TransactionDao{
		RequestID:   rec.RequestID,
		Requester:   rec.Request.Requester.Hex(),
		Status:      string(rec.Status),
		CompanyName: rec.Request.CompanyName,
		Email:       rec.Request.Email,
		ESOPSupply:  rec.Request.ESOPSupply,
		TokenName:   rec.Request.TokenName,
		TokenSymbol: rec.Request.TokenSymbol,
		SubmittedAt: rec.SubmittedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.TxHash != (common.Hash{}) {
		h := rec.TxHash.Hex()
		dao.TxHash = &h
	}
	if rec.FailureReason != "" {
		dao.FailureReason = &rec.FailureReason
	}
	if rec.ContractAddress != (common.Address{}) {
		a := rec.ContractAddress.Hex()
		dao.ContractAddress = &a
	}
	return dao
}

func toRecord(dao *TransactionDao) submission.Record {
	rec := submission.Record{
		RequestID: dao.RequestID,
		Request: company.RegistrationRequest{
			CompanyName: dao.CompanyName,
			Email:       dao.Email,
			ESOPSupply:  dao.ESOPSupply,
			TokenName:   dao.TokenName,
			TokenSymbol: dao.TokenSymbol,
			Requester:   common.HexToAddress(dao.Requester),
		},
		Status:      submission.Status(dao.Status),
		SubmittedAt: dao.SubmittedAt,
		UpdatedAt:   dao.UpdatedAt,
	}
	if dao.TxHash != nil {
		rec.TxHash = common.HexToHash(*dao.TxHash)
	}
	if dao.FailureReason != nil {
		rec.FailureReason = *dao.FailureReason
	}
	if dao.ContractAddress != nil {
		rec.ContractAddress = common.HexToAddress(*dao.ContractAddress)
	}
	return rec
}

func toCompanyDao(reg company.Registration) *CompanyDao {
	return &CompanyDao{
		Owner:           reg.Owner.Hex(),
		PayrollContract: reg.PayrollContract.Hex(),
		CompanyName:     reg.CompanyName,
		TxHash:          reg.TxHash.Hex(),
		BlockNumber:     int64(reg.BlockNumber),
		RegisteredAt:    reg.RegisteredAt,
	}
}

func toRegistration(dao *CompanyDao) *company.Registration {
	return &company.Registration{
		Owner:           common.HexToAddress(dao.Owner),
		PayrollContract: common.HexToAddress(dao.PayrollContract),
		CompanyName:     dao.CompanyName,
		TxHash:          common.HexToHash(dao.TxHash),
		BlockNumber:     uint64(dao.BlockNumber),
		RegisteredAt:    dao.RegisteredAt,
	}
}
