package ethereum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"github.com/peyroll/registrar/pkg/ethereum/contracts"
)

// companyRegisteredLogs is the chain access used by the CompanyRegistered watchers.
type companyRegisteredLogs interface {
	latestBlock(ctx context.Context) (uint64, error)
	filter(ctx context.Context, from, to uint64, owners []common.Address, handler func(*CompanyRegisteredEvent) error) error
	subscribe(ctx context.Context, owners []common.Address, sink chan<- *contracts.PayrollFactoryCompanyRegistered) (event.Subscription, error)
}

type factoryLogs struct {
	c *Client
}

func (l factoryLogs) latestBlock(ctx context.Context) (uint64, error) {
	return l.c.GetLatestBlockNumber(ctx)
}

func (l factoryLogs) filter(
	ctx context.Context,
	from, to uint64,
	owners []common.Address,
	handler func(*CompanyRegisteredEvent) error,
) error {
	iter, err := l.c.factory.FilterCompanyRegistered(&bind.FilterOpts{Start: from, End: &to, Context: ctx}, owners, nil)
	if err != nil {
		return fmt.Errorf("failed to filter CompanyRegistered events: %w", err)
	}
	defer iter.Close()

	for iter.Next() {
		if err := handler(toCompanyRegisteredEvent(iter.Event)); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}
	return nil
}

// subscribe only ever delivers logs mined after the subscription is made, whatever
// WatchOpts.Start says, so callers backfill history with filter.
func (l factoryLogs) subscribe(
	ctx context.Context,
	owners []common.Address,
	sink chan<- *contracts.PayrollFactoryCompanyRegistered,
) (event.Subscription, error) {
	return l.c.wsFactory.WatchCompanyRegistered(&bind.WatchOpts{Context: ctx}, sink, owners, nil)
}

// WatchCompanyRegistered delivers CompanyRegistered events from fromBlock onward to handler.
// owners narrows the indexed owner topic; empty means every owner. It uses the WebSocket
// subscription when one is connected and ticker polling otherwise. It returns when ctx
// ends, when the subscription fails, or when handler returns an error.
func (c *Client) WatchCompanyRegistered(
	ctx context.Context,
	fromBlock uint64,
	owners []common.Address,
	handler func(*CompanyRegisteredEvent) error,
) error {
	logs := factoryLogs{c: c}
	if c.wsFactory != nil {
		return c.subscribeCompanyRegistered(ctx, logs, fromBlock, owners, handler)
	}
	return c.pollCompanyRegistered(ctx, logs, fromBlock, owners, handler)
}

func (c *Client) pollCompanyRegistered(
	ctx context.Context,
	logs companyRegisteredLogs,
	fromBlock uint64,
	owners []common.Address,
	handler func(*CompanyRegisteredEvent) error,
) error {
	c.logger.Info("Starting CompanyRegistered poller", zap.Uint64("from_block", fromBlock))

	next := fromBlock
	ticker := time.NewTicker(c.config.PollingInterval)
	defer ticker.Stop()

	for {
		latestBlock, err := logs.latestBlock(ctx)
		if err != nil {
			c.logger.Warn("Failed to get latest block", zap.Error(err))
		} else if latestBlock >= next {
			if err := logs.filter(ctx, next, latestBlock, owners, handler); err != nil {
				return err
			}
			next = latestBlock + 1
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type logKey struct {
	block uint64
	index uint
}

// subscribeCompanyRegistered subscribes first and then backfills [fromBlock, head] over RPC.
// Logs mined between the two calls arrive on both paths and are delivered once.
func (c *Client) subscribeCompanyRegistered(
	ctx context.Context,
	logs companyRegisteredLogs,
	fromBlock uint64,
	owners []common.Address,
	handler func(*CompanyRegisteredEvent) error,
) error {
	c.logger.Info("Subscribing to CompanyRegistered events", zap.Uint64("from_block", fromBlock))

	sink := make(chan *contracts.PayrollFactoryCompanyRegistered, 16)
	sub, err := logs.subscribe(ctx, owners, sink)
	if err != nil {
		return fmt.Errorf("failed to subscribe to CompanyRegistered events: %w", err)
	}
	defer sub.Unsubscribe()

	head, err := logs.latestBlock(ctx)
	if err != nil {
		return err
	}

	backfilled := make(map[logKey]struct{})
	if head >= fromBlock {
		err := logs.filter(ctx, fromBlock, head, owners, func(ev *CompanyRegisteredEvent) error {
			backfilled[logKey{ev.BlockNumber, ev.LogIndex}] = struct{}{}
			return handler(ev)
		})
		if err != nil {
			return err
		}
		c.logger.Debug("Backfilled CompanyRegistered events",
			zap.Uint64("from_block", fromBlock),
			zap.Uint64("to_block", head),
			zap.Int("events", len(backfilled)))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				return errors.New("CompanyRegistered subscription closed")
			}
			return fmt.Errorf("CompanyRegistered subscription failed: %w", err)
		case raw := <-sink:
			ev := toCompanyRegisteredEvent(raw)
			if ev.BlockNumber < fromBlock {
				continue
			}
			key := logKey{ev.BlockNumber, ev.LogIndex}
			if _, ok := backfilled[key]; ok && !ev.Removed {
				delete(backfilled, key)
				continue
			}
			if err := handler(ev); err != nil {
				return err
			}
		}
	}
}
