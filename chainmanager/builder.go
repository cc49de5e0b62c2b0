package chainmanager

import (
	"github.com/ClipFinance/orchestrator-lib/common/types"
)

// ClientBuilder is a builder pattern implementation for client assembly. It
// allows setting the various chain-facing components of a client: the
// transaction submitter, gas pricer, gas estimator, and readers.
type ClientBuilder struct {
	config    *types.ChainConfig    // Chain configuration.
	submitter types.ChainClient     // Transaction submission implementation.
	pricer    types.GasPricer       // Gas pricer implementation.
	estimator types.GasEstimator    // Gas estimator implementation.
	allowance types.AllowanceReader // Allowance reader implementation.
	balance   types.BalanceReader   // Balance reader implementation.
	contract  types.ContractReader  // Read-only contract caller.
}

// NewClientBuilder creates a new client builder instance.
//
// Parameters:
// - config: the chain configuration.
//
// Returns:
// - *ClientBuilder: a new ClientBuilder instance.
func NewClientBuilder(config *types.ChainConfig) *ClientBuilder {
	return &ClientBuilder{
		config: config,
	}
}

// WithSubmitter sets the transaction submission implementation.
func (b *ClientBuilder) WithSubmitter(submitter types.ChainClient) *ClientBuilder {
	b.submitter = submitter
	return b
}

// WithGasPricer sets the gas pricer implementation.
func (b *ClientBuilder) WithGasPricer(pricer types.GasPricer) *ClientBuilder {
	b.pricer = pricer
	return b
}

// WithGasEstimator sets the gas estimator implementation.
func (b *ClientBuilder) WithGasEstimator(estimator types.GasEstimator) *ClientBuilder {
	b.estimator = estimator
	return b
}

// WithAllowanceReader sets the allowance reader implementation.
func (b *ClientBuilder) WithAllowanceReader(allowance types.AllowanceReader) *ClientBuilder {
	b.allowance = allowance
	return b
}

// WithBalanceReader sets the balance reader implementation.
func (b *ClientBuilder) WithBalanceReader(balance types.BalanceReader) *ClientBuilder {
	b.balance = balance
	return b
}

// WithContractReader sets the read-only contract caller.
func (b *ClientBuilder) WithContractReader(contract types.ContractReader) *ClientBuilder {
	b.contract = contract
	return b
}

// Build creates a new client instance with the configured implementations.
//
// Returns:
// - types.Client: a new Client instance.
func (b *ClientBuilder) Build() types.Client {
	return NewClient(b.config, b.submitter, b.pricer, b.estimator, b.allowance, b.balance, b.contract)
}
