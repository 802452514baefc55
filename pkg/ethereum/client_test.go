package ethereum

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/peyroll/registrar/pkg/ethereum/contracts"
)

func TestToCompanyInfo(t *testing.T) {
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	payroll := common.HexToAddress("0x2222222222222222222222222222222222222222")
	supply, _ := new(big.Int).SetString("1500000000000000000000", 10)

	info := toCompanyInfo(owner, contracts.PayrollFactoryCompanyInfo{
		CompanyName:     "Acme",
		Email:           "ops@acme.io",
		IsVerified:      true,
		EsopTokens:      supply,
		EsopTokenName:   "Acme ESOP",
		EsopTokenSymbol: "AESOP",
		PayrollContract: payroll,
		CreatedAt:       big.NewInt(1700000000),
	})

	if info.Owner != owner || info.PayrollContract != payroll {
		t.Fatalf("unexpected addresses: %+v", info)
	}
	if info.ESOPTokens.String() != "1500" {
		t.Fatalf("expected 1500 tokens, got %s", info.ESOPTokens)
	}
	if !info.CreatedAt.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("unexpected created_at %s", info.CreatedAt)
	}
}

func TestToCompanyInfo_NilAmounts(t *testing.T) {
	info := toCompanyInfo(common.Address{}, contracts.PayrollFactoryCompanyInfo{})
	if !info.ESOPTokens.IsZero() {
		t.Fatalf("expected zero supply, got %s", info.ESOPTokens)
	}
	if !info.CreatedAt.IsZero() {
		t.Fatalf("expected zero created_at, got %s", info.CreatedAt)
	}
}

func TestToCompanyRegisteredEvent(t *testing.T) {
	ev := toCompanyRegisteredEvent(&contracts.PayrollFactoryCompanyRegistered{
		Owner:           common.HexToAddress("0x01"),
		PayrollContract: common.HexToAddress("0x02"),
		CompanyName:     "Acme",
		Raw: types.Log{
			BlockNumber: 42,
			TxHash:      common.HexToHash("0xabc"),
			Index:       3,
		},
	})

	if ev.BlockNumber != 42 || ev.LogIndex != 3 || ev.TxHash != common.HexToHash("0xabc") {
		t.Fatalf("raw log fields not copied: %+v", ev)
	}
	if ev.PayrollContract != common.HexToAddress("0x02") {
		t.Fatalf("unexpected payroll contract %s", ev.PayrollContract.Hex())
	}
}

func TestPayrollFactoryABI(t *testing.T) {
	parsed, err := contracts.PayrollFactoryMetaData.GetAbi()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	for _, m := range []string{"registerCompany", "getCompanyInfo", "isCompany", "getAllCompanies"} {
		if _, ok := parsed.Methods[m]; !ok {
			t.Fatalf("missing method %s", m)
		}
	}
	if _, ok := parsed.Events["CompanyRegistered"]; !ok {
		t.Fatal("missing CompanyRegistered event")
	}
}
