package chainmanager

import (
	"context"
	"math/big"
	"sync"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/shopspring/decimal"
)

// Client implements types.Client with thread-safe access to its component
// implementations. Each component is protected by a read-write mutex so the
// underlying implementation can be swapped during reconnects without racing
// in-flight calls.
type Client struct {
	config    *types.ChainConfig    // Chain configuration.
	submitter types.ChainClient     // Transaction submission and receipt polling.
	pricer    types.GasPricer       // Gas pricer implementation.
	estimator types.GasEstimator    // Gas estimator implementation.
	allowance types.AllowanceReader // Allowance reader implementation.
	balance   types.BalanceReader   // Balance reader implementation.
	contract  types.ContractReader  // Read-only contract caller.

	// Mutexes for thread-safe access to components.
	submitterMutex sync.RWMutex
	pricerMutex    sync.RWMutex
	estimatorMutex sync.RWMutex
	allowanceMutex sync.RWMutex
	balanceMutex   sync.RWMutex
	contractMutex  sync.RWMutex
}

// NewClient creates a new Client instance from its components.
//
// Parameters:
// - config: the chain configuration.
// - submitter: the transaction submission implementation.
// - pricer: the gas pricer implementation.
// - estimator: the gas estimator implementation.
// - allowance: the allowance reader implementation.
// - balance: the balance reader implementation.
// - contract: the read-only contract caller.
//
// Returns:
// - *Client: a new Client instance.
func NewClient(
	config *types.ChainConfig,
	submitter types.ChainClient,
	pricer types.GasPricer,
	estimator types.GasEstimator,
	allowance types.AllowanceReader,
	balance types.BalanceReader,
	contract types.ContractReader,
) *Client {
	return &Client{
		config:    config,
		submitter: submitter,
		pricer:    pricer,
		estimator: estimator,
		allowance: allowance,
		balance:   balance,
		contract:  contract,
	}
}

// Submit signs and submits a contract call with thread-safe access.
func (c *Client) Submit(ctx context.Context, call *types.CallData) (*types.SubmittedTx, error) {
	c.submitterMutex.RLock()
	submitter := c.submitter
	c.submitterMutex.RUnlock()

	if submitter == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return submitter.Submit(ctx, call)
}

// WaitForReceipt polls for a mined receipt with thread-safe access.
func (c *Client) WaitForReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	c.submitterMutex.RLock()
	submitter := c.submitter
	c.submitterMutex.RUnlock()

	if submitter == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return submitter.WaitForReceipt(ctx, txHash)
}

// GetGasPrice returns the chain's gas price with thread-safe access.
func (c *Client) GetGasPrice(ctx context.Context) (*types.GasPrice, error) {
	c.pricerMutex.RLock()
	pricer := c.pricer
	c.pricerMutex.RUnlock()

	if pricer == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return pricer.GetGasPrice(ctx)
}

// EstimateGas estimates transaction gas with thread-safe access.
func (c *Client) EstimateGas(ctx context.Context, to string, value *big.Int, data []byte) (uint64, error) {
	c.estimatorMutex.RLock()
	estimator := c.estimator
	c.estimatorMutex.RUnlock()

	if estimator == nil {
		return 0, commonerrors.ErrNotImplemented
	}
	return estimator.EstimateGas(ctx, to, value, data)
}

// Allowance reads an ERC20 allowance with thread-safe access.
func (c *Client) Allowance(ctx context.Context, token types.Token, owner, spender string) (decimal.Decimal, error) {
	c.allowanceMutex.RLock()
	allowance := c.allowance
	c.allowanceMutex.RUnlock()

	if allowance == nil {
		return decimal.Zero, commonerrors.ErrNotImplemented
	}
	return allowance.Allowance(ctx, token, owner, spender)
}

// TokenBalance reads a native or token balance with thread-safe access.
func (c *Client) TokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error) {
	c.balanceMutex.RLock()
	balance := c.balance
	c.balanceMutex.RUnlock()

	if balance == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return balance.TokenBalance(ctx, address, tokenAddress)
}

// CallContract performs a read-only contract call with thread-safe access.
func (c *Client) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	c.contractMutex.RLock()
	contract := c.contract
	c.contractMutex.RUnlock()

	if contract == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return contract.CallContract(ctx, to, data)
}

// GetConfig returns the chain configuration.
func (c *Client) GetConfig() *types.ChainConfig {
	return c.config
}
