package evm

import (
	"context"
	"sync"
	"time"

	"github.com/ClipFinance/orchestrator-lib/chainmanager"
	"github.com/ClipFinance/orchestrator-lib/chains/evm/signer"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/connectionmonitor"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// receiptPollInterval is the interval between receipt polls.
	receiptPollInterval = time.Second
	// gasLimitHeadroom is the multiplier applied over estimated gas.
	gasLimitHeadroom = 1.1
)

// evm is the go-ethereum backed client implementation. Submission is only
// wired when a wallet signer is attached; read paths work without one.
type evm struct {
	config *types.ChainConfig // Chain configuration.
	logger *logrus.Logger     // Logger for logging events.

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex      // Mutex for client.
	client      *ethclient.Client // Ethereum client.

	signerMutex sync.RWMutex  // Mutex for signer.
	signer      signer.Signer // Signer for signing transactions.

	monitorMutex sync.RWMutex                        // Mutex for connection monitor.
	monitor      connectionmonitor.ConnectionMonitor // Connection monitor.
}

// NewEvmClient creates a new EVM client.
//
// Parameters:
// - ctx: the context for managing the request.
// - config: the chain configuration.
// - walletSigner: the connected wallet's signer, or nil for a read-only client.
// - logger: the logger for logging events.
//
// Returns:
// - types.Client: a new EVM client instance.
// - error: an error if any issue occurs during creation.
func NewEvmClient(ctx context.Context, config *types.ChainConfig, walletSigner signer.Signer, logger *logrus.Logger) (types.Client, error) {
	client, err := ethclient.Dial(config.RpcUrl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}

	chain := &evm{
		config: config,
		logger: logger,
		client: client,
		signer: walletSigner,
	}

	if err := chain.initMonitor(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	builder := chainmanager.NewClientBuilder(config)
	builder.WithGasPricer(chain)
	builder.WithGasEstimator(chain)
	builder.WithAllowanceReader(chain)
	builder.WithBalanceReader(chain)
	builder.WithContractReader(chain)

	if walletSigner != nil {
		builder.WithSubmitter(chain)
	}

	return builder.Build(), nil
}

// Close should be called when the client is no longer needed. It stops the
// connection monitor and closes the underlying RPC client.
func (e *evm) Close() {
	e.monitorMutex.Lock()
	if e.monitor != nil {
		e.monitor.Stop()
	}
	e.monitorMutex.Unlock()

	e.clientMutex.Lock()
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	e.clientMutex.Unlock()
}

// GetClient returns the Ethereum client.
//
// Returns:
// - *ethclient.Client: the Ethereum client.
func (e *evm) GetClient() *ethclient.Client {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return e.client
}
