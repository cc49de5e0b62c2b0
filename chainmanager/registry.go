package chainmanager

import (
	"context"
	"sync"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/sirupsen/logrus"
)

type clientRegistry struct {
	logger       *logrus.Logger
	clients      map[uint64]types.Client
	clientsMutex sync.RWMutex
	factory      interface {
		CreateClient(context.Context, *types.ChainConfig, *logrus.Logger) (types.Client, error)
	}
	factoryMutex sync.RWMutex
}

// NewClientRegistry creates a registry of per-chain clients built by the
// given factory.
func NewClientRegistry(factory interface {
	CreateClient(context.Context, *types.ChainConfig, *logrus.Logger) (types.Client, error)
}, logger *logrus.Logger) types.ClientRegistry {
	return &clientRegistry{
		clients: make(map[uint64]types.Client),
		factory: factory,
		logger:  logger,
	}
}

func (r *clientRegistry) Add(ctx context.Context, config *types.ChainConfig) error {
	r.clientsMutex.RLock()
	_, exists := r.clients[config.ChainID]
	r.clientsMutex.RUnlock()
	if exists {
		return commonerrors.ErrChainExists
	}

	// Lock factory for reading to prevent changes during client creation.
	r.factoryMutex.RLock()
	client, err := r.factory.CreateClient(ctx, config, r.logger)
	r.factoryMutex.RUnlock()

	if err != nil {
		return err
	}

	// Lock clients map for writing
	r.clientsMutex.Lock()
	r.clients[config.ChainID] = client
	r.clientsMutex.Unlock()

	return nil
}

func (r *clientRegistry) Get(chainID uint64) types.Client {
	r.clientsMutex.RLock()
	client := r.clients[chainID]
	r.clientsMutex.RUnlock()
	return client
}

func (r *clientRegistry) Remove(chainID uint64) {
	r.clientsMutex.Lock()
	delete(r.clients, chainID)
	r.clientsMutex.Unlock()
}
