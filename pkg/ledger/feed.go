// Package ledger correlates CompanyRegistered ledger events with pending registrations.
package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/pkg/ethereum"
)

// Event is a decoded registration confirmation
type Event struct {
	Initiator       common.Address
	ContractAddress common.Address
	CompanyName     string
	BlockNumber     uint64
	TxHash          common.Hash
	LogIndex        uint
}

// Feed streams ledger events from fromBlock onward. initiators optionally narrows the
// stream server-side. The error channel yields at most one error, after which the event
// channel is closed.
type Feed interface {
	StreamEvents(ctx context.Context, fromBlock uint64, initiators []common.Address) (<-chan *Event, <-chan error)
}

// EventWatcher is implemented by ethereum.Client
type EventWatcher interface {
	WatchCompanyRegistered(ctx context.Context, fromBlock uint64, owners []common.Address, handler func(*ethereum.CompanyRegisteredEvent) error) error
}

// EthereumFeed implements Feed over the PayrollFactory's CompanyRegistered event
type EthereumFeed struct {
	client EventWatcher
	logger *zap.Logger
}

// NewEthereumFeed creates a feed backed by client
func NewEthereumFeed(client EventWatcher, logger *zap.Logger) *EthereumFeed {
	return &EthereumFeed{client: client, logger: logger}
}

// StreamEvents implements Feed
func (f *EthereumFeed) StreamEvents(ctx context.Context, fromBlock uint64, initiators []common.Address) (<-chan *Event, <-chan error) {
	outCh := make(chan *Event)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)

		err := f.client.WatchCompanyRegistered(ctx, fromBlock, initiators, func(ev *ethereum.CompanyRegisteredEvent) error {
			if ev.Removed {
				f.logger.Debug("Skipping removed CompanyRegistered log",
					zap.String("tx_hash", ev.TxHash.Hex()))
				return nil
			}
			select {
			case outCh <- &Event{
				Initiator:       ev.Owner,
				ContractAddress: ev.PayrollContract,
				CompanyName:     ev.CompanyName,
				BlockNumber:     ev.BlockNumber,
				TxHash:          ev.TxHash,
				LogIndex:        ev.LogIndex,
			}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			errCh <- err
		}
	}()

	return outCh, errCh
}
