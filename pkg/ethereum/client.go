package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/peyroll/registrar/pkg/company"
	"github.com/peyroll/registrar/pkg/config"
	"github.com/peyroll/registrar/pkg/ethereum/contracts"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client wraps the RPC connection and the PayrollFactory binding
type Client struct {
	config   *config.EthereumConfig
	client   *ethclient.Client
	wsClient *ethclient.Client
	logger   *zap.Logger

	factoryAddress common.Address
	factory        *contracts.PayrollFactory
	wsFactory      *contracts.PayrollFactoryFilterer
}

// NewClient creates a new Ethereum client
func NewClient(cfg *config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	factoryAddress := common.HexToAddress(cfg.FactoryContract)
	factory, err := contracts.NewPayrollFactory(factoryAddress, client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to load factory contract: %w", err)
	}

	c := &Client{
		config:         cfg,
		client:         client,
		factoryAddress: factoryAddress,
		factory:        factory,
		logger:         logger,
	}

	// WebSocket is optional; event streaming falls back to polling without it
	if cfg.WSUrl != "" {
		wsClient, err := ethclient.Dial(cfg.WSUrl)
		if err != nil {
			logger.Warn("Failed to connect to Ethereum WebSocket, falling back to polling",
				zap.Error(err))
		} else {
			wsFactory, err := contracts.NewPayrollFactoryFilterer(factoryAddress, wsClient)
			if err != nil {
				wsClient.Close()
				return nil, fmt.Errorf("failed to bind factory over websocket: %w", err)
			}
			c.wsClient = wsClient
			c.wsFactory = wsFactory
		}
	}

	logger.Info("Connected to Ethereum",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("factory_contract", factoryAddress.Hex()),
		zap.Bool("websocket", c.wsClient != nil))

	return c, nil
}

// Close closes the Ethereum clients
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
	if c.wsClient != nil {
		c.wsClient.Close()
	}
}

// Backend exposes the RPC client used for signing and broadcasting
func (c *Client) Backend() *ethclient.Client {
	return c.client
}

// ChainID returns the configured chain id
func (c *Client) ChainID() *big.Int {
	return big.NewInt(c.config.ChainID)
}

// FactoryAddress returns the PayrollFactory address registrations are sent to
func (c *Client) FactoryAddress() common.Address {
	return c.factoryAddress
}

// GetLatestBlockNumber gets the latest block number
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// WaitReceipt polls for the receipt of txHash until it is mined or ctx ends
func (c *Client) WaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.config.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Debug("Receipt lookup failed, retrying",
				zap.String("tx_hash", txHash.Hex()),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// IsCompany reports whether owner has a registered company on the factory
func (c *Client) IsCompany(ctx context.Context, owner common.Address) (bool, error) {
	ok, err := c.factory.IsCompany(&bind.CallOpts{Context: ctx}, owner)
	if err != nil {
		return false, fmt.Errorf("failed to call isCompany: %w", err)
	}
	return ok, nil
}

// CompanyInfo reads the factory's record for owner. It returns (nil, nil) when none exists.
func (c *Client) CompanyInfo(ctx context.Context, owner common.Address) (*company.Info, error) {
	ok, err := c.IsCompany(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	info, err := c.factory.GetCompanyInfo(&bind.CallOpts{Context: ctx}, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to call getCompanyInfo: %w", err)
	}
	return toCompanyInfo(owner, info), nil
}

func toCompanyInfo(owner common.Address, info contracts.PayrollFactoryCompanyInfo) *company.Info {
	out := &company.Info{
		Owner:           owner,
		CompanyName:     info.CompanyName,
		Email:           info.Email,
		IsVerified:      info.IsVerified,
		ESOPTokenName:   info.EsopTokenName,
		ESOPTokenSymbol: info.EsopTokenSymbol,
		PayrollContract: info.PayrollContract,
	}
	if info.EsopTokens != nil {
		out.ESOPTokens = decimal.NewFromBigInt(info.EsopTokens, -company.TokenDecimals)
	}
	if info.CreatedAt != nil {
		out.CreatedAt = time.Unix(info.CreatedAt.Int64(), 0).UTC()
	}
	return out
}

func toCompanyRegisteredEvent(ev *contracts.PayrollFactoryCompanyRegistered) *CompanyRegisteredEvent {
	return &CompanyRegisteredEvent{
		Owner:           ev.Owner,
		PayrollContract: ev.PayrollContract,
		CompanyName:     ev.CompanyName,
		BlockNumber:     ev.Raw.BlockNumber,
		TxHash:          ev.Raw.TxHash,
		LogIndex:        ev.Raw.Index,
		Removed:         ev.Raw.Removed,
	}
}
