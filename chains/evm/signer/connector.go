package signer

import (
	"sync"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
)

// Connector adapts a Signer to the wallet connector interface the
// orchestrator consumes. The attached signer can be swapped as the user
// connects and disconnects wallets.
type Connector struct {
	signerMutex sync.RWMutex
	signer      Signer
}

// NewConnector creates a wallet connector over an optional initial signer.
func NewConnector(s Signer) *Connector {
	return &Connector{signer: s}
}

// Connect attaches the signer of a freshly connected wallet.
func (c *Connector) Connect(s Signer) {
	c.signerMutex.Lock()
	c.signer = s
	c.signerMutex.Unlock()
}

// Disconnect detaches the current signer.
func (c *Connector) Disconnect() {
	c.signerMutex.Lock()
	c.signer = nil
	c.signerMutex.Unlock()
}

// ConnectedAddress returns the connected account address.
//
// Returns:
// - string: the connected account address.
// - error: ErrNoWalletConnected when no wallet is connected.
func (c *Connector) ConnectedAddress() (string, error) {
	c.signerMutex.RLock()
	defer c.signerMutex.RUnlock()

	if c.signer == nil {
		return "", commonerrors.ErrNoWalletConnected
	}
	return c.signer.Address().Hex(), nil
}

// ConnectedSigner returns the current signer, or nil when disconnected.
func (c *Connector) ConnectedSigner() Signer {
	c.signerMutex.RLock()
	defer c.signerMutex.RUnlock()
	return c.signer
}
