package ethereum

import (
	"github.com/ethereum/go-ethereum/common"
)

// CompanyRegisteredEvent is a CompanyRegistered log emitted by the PayrollFactory.
type CompanyRegisteredEvent struct {
	Owner           common.Address
	PayrollContract common.Address
	CompanyName     string
	BlockNumber     uint64
	TxHash          common.Hash
	LogIndex        uint
	Removed         bool
}
