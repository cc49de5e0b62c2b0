package types

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
)

// ChainConfig holds the configuration for a chain-facing client.
//
// Fields:
// - Name: the name of the chain.
// - ChainID: the unique identifier for the chain.
// - RpcUrl: the URL for the chain's RPC endpoint.
// - GasModel: the fee model the chain is priced under.
// - MinGasPriceMethod: the RPC method used by GasModelMinimum chains.
// - WaitNBlocks: the number of blocks to wait for transaction confirmation.
type ChainConfig struct {
	Name              string
	ChainID           uint64
	RpcUrl            string
	GasModel          GasModel
	MinGasPriceMethod string
	WaitNBlocks       uint64
}

// Vault is an addressbook entry for one deposit target.
//
// Fields:
// - ID: the vault identifier.
// - ChainID: the chain the vault is deployed on.
// - ContractAddress: the vault contract address.
// - StrategyAddress: the active strategy contract address, if any.
// - DepositToken: the token the vault accepts.
type Vault struct {
	ID              string
	ChainID         uint64
	ContractAddress string
	StrategyAddress string
	DepositToken    Token
}

// WalletConnector provides access to the user's connected wallet.
type WalletConnector interface {
	// ConnectedAddress returns the connected account address.
	//
	// Returns:
	// - string: the connected account address.
	// - error: NoWalletConnectedError when no wallet is connected.
	ConnectedAddress() (string, error)
}

// ChainClient provides transaction submission and confirmation polling.
type ChainClient interface {
	// Submit signs and submits a contract call.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - call: the contract call to submit.
	//
	// Returns:
	// - *SubmittedTx: the submitted transaction details.
	// - error: an error if signing or submission fails.
	Submit(ctx context.Context, call *CallData) (*SubmittedTx, error)

	// WaitForReceipt polls the chain until the transaction is mined and the
	// configured number of confirmation blocks has passed.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - txHash: the hash of the transaction to wait for.
	//
	// Returns:
	// - *Receipt: the mined receipt.
	// - error: an error if polling fails or the context is cancelled.
	WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error)
}

// GasPricer provides the gas price for a chain under its configured fee model.
type GasPricer interface {
	// GetGasPrice returns the current gas price for the chain.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	//
	// Returns:
	// - *GasPrice: the gas price tagged with the chain's fee model.
	// - error: an error if the gas price retrieval fails.
	GetGasPrice(ctx context.Context) (*GasPrice, error)
}

// QuoteProvider re-fetches quotes for previously selected options.
type QuoteProvider interface {
	// FetchQuote issues a fresh quote for the given option with the given
	// inputs, without re-running route selection.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - option: the previously selected route option.
	// - inputs: the input amounts to quote for.
	//
	// Returns:
	// - *Quote: the fresh quote.
	// - error: an error if the quote fetch fails or the option is gone.
	FetchQuote(ctx context.Context, option *QuoteOption, inputs []TokenAmount) (*Quote, error)
}

// AllowanceReader reads ERC20 allowances.
type AllowanceReader interface {
	// Allowance returns the current allowance of spender over owner's tokens,
	// denominated in the token's human units.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - token: the token to read the allowance of.
	// - owner: the token owner address.
	// - spender: the spender address.
	//
	// Returns:
	// - decimal.Decimal: the current allowance.
	// - error: an error if the allowance read fails.
	Allowance(ctx context.Context, token Token, owner, spender string) (decimal.Decimal, error)
}

// BalanceReader reads native and token balances.
type BalanceReader interface {
	// TokenBalance returns the balance of address in the given token, in the
	// token's smallest unit. Use NativeAddress for the native asset.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the address to check the balance for.
	// - tokenAddress: the token contract address.
	//
	// Returns:
	// - *big.Int: the balance in the token's smallest unit.
	// - error: an error if the balance check fails.
	TokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error)
}

// ContractReader performs read-only contract calls. Migrators use it to
// resolve staking contracts and read staked balances without depending on a
// concrete RPC client.
type ContractReader interface {
	// CallContract executes a read-only call against the given contract.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - to: the contract address to call.
	// - data: the ABI-encoded input data.
	//
	// Returns:
	// - []byte: the raw return data.
	// - error: an error if the call fails.
	CallContract(ctx context.Context, to string, data []byte) ([]byte, error)
}

// GasEstimator estimates the gas required for a call.
type GasEstimator interface {
	// EstimateGas estimates the gas required for a transaction.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - to: the recipient address of the transaction.
	// - value: the native amount to send with the transaction.
	// - data: the input data for the transaction.
	//
	// Returns:
	// - uint64: the estimated gas amount.
	// - error: an error if the gas estimation fails.
	EstimateGas(ctx context.Context, to string, value *big.Int, data []byte) (uint64, error)
}

// Client combines the chain-facing functionality the orchestrator consumes.
type Client interface {
	ChainClient
	GasPricer
	GasEstimator
	AllowanceReader
	BalanceReader
	ContractReader
}

// ClientRegistry manages clients for multiple chains.
type ClientRegistry interface {
	// Add creates and registers a client for the given chain configuration.
	//
	// Parameters:
	// - ctx: the context for managing client creation.
	// - config: the configuration for the chain to add.
	//
	// Returns:
	// - error: an error if creating the client fails.
	Add(ctx context.Context, config *ChainConfig) error

	// Get retrieves a client from the registry by its chain ID.
	//
	// Parameters:
	// - chainID: the unique identifier for the chain to retrieve.
	//
	// Returns:
	// - Client: the retrieved client, or nil if not registered.
	Get(chainID uint64) Client

	// Remove removes a client from the registry by its chain ID.
	//
	// Parameters:
	// - chainID: the unique identifier for the chain to remove.
	Remove(chainID uint64)
}
