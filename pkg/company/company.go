// Package company holds the registration input, its validated request form and
// the on-chain company view returned by the factory.
package company

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TokenDecimals is the precision of the ESOP token minted by the factory.
const TokenDecimals = 18

// Form is the raw registration input as submitted by the dashboard.
type Form struct {
	CompanyName string `json:"company_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	ESOPSupply  string `json:"esop_supply" validate:"required"`
	TokenName   string `json:"token_name" validate:"required"`
	TokenSymbol string `json:"token_symbol" validate:"required"`
}

// RegistrationRequest is a validated Form bound to the identity that will own the company.
// It is immutable once built by Validate.
type RegistrationRequest struct {
	CompanyName string
	Email       string
	ESOPSupply  decimal.Decimal
	TokenName   string
	TokenSymbol string
	Requester   common.Address
}

// ESOPSupplyBaseUnits returns the supply scaled to TokenDecimals, as the factory expects.
func (r RegistrationRequest) ESOPSupplyBaseUnits() *big.Int {
	return r.ESOPSupply.Shift(TokenDecimals).BigInt()
}

// Info is the factory's view of a registered company.
type Info struct {
	Owner           common.Address  `json:"owner"`
	CompanyName     string          `json:"company_name"`
	Email           string          `json:"email"`
	IsVerified      bool            `json:"is_verified"`
	ESOPTokens      decimal.Decimal `json:"esop_tokens"`
	ESOPTokenName   string          `json:"esop_token_name"`
	ESOPTokenSymbol string          `json:"esop_token_symbol"`
	PayrollContract common.Address  `json:"payroll_contract"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Registration records a confirmed company registration.
type Registration struct {
	Owner           common.Address
	PayrollContract common.Address
	CompanyName     string
	TxHash          common.Hash
	BlockNumber     uint64
	RegisteredAt    time.Time
}
