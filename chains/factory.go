package chains

import (
	"context"

	"github.com/ClipFinance/orchestrator-lib/chains/evm"
	"github.com/ClipFinance/orchestrator-lib/chains/evm/signer"
	commontypes "github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/sirupsen/logrus"
)

// ClientFactory creates chain clients for the client registry, attaching the
// connected wallet's signer to every client it builds.
type ClientFactory struct {
	connector *signer.Connector
}

// NewClientFactory creates a client factory bound to the wallet connector.
//
// Parameters:
// - connector: the wallet connector providing the active signer.
//
// Returns:
// - *ClientFactory: the new client factory instance.
func NewClientFactory(connector *signer.Connector) *ClientFactory {
	return &ClientFactory{
		connector: connector,
	}
}

// CreateClient creates a new client instance based on the configuration.
// When no wallet is connected the client is read-only; submission paths
// are wired in once a signer is attached and the chain is re-added.
//
// Parameters:
// - ctx: the context for managing client creation.
// - config: the configuration for the chain.
// - logger: the logger for logging purposes.
//
// Returns:
// - commontypes.Client: the created client instance.
// - error: an error if the client creation fails.
func (f *ClientFactory) CreateClient(ctx context.Context, config *commontypes.ChainConfig, logger *logrus.Logger) (commontypes.Client, error) {
	return evm.NewEvmClient(ctx, config, f.connector.ConnectedSigner(), logger)
}
