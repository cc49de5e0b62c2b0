package types

// CrossChainStatus is the local status of a long-running operation whose
// completion is observed on a different chain than the one the source
// transaction was submitted to.
type CrossChainStatus string

const (
	// CrossChainPending indicates the bridge has not yet attempted delivery.
	CrossChainPending CrossChainStatus = "PENDING"
	// CrossChainConfirming indicates a destination-chain relay attempt has
	// been observed but not yet finalized.
	CrossChainConfirming CrossChainStatus = "CONFIRMING"
	// CrossChainConfirmed indicates the destination transaction is final.
	CrossChainConfirmed CrossChainStatus = "CONFIRMED"
	// CrossChainCancelled indicates the bridge cancelled the operation.
	CrossChainCancelled CrossChainStatus = "CANCELLED"
	// CrossChainAbandoned indicates the bridge abandoned the operation.
	CrossChainAbandoned CrossChainStatus = "ABANDONED"
	// CrossChainUnknown indicates polling was capped before a terminal state
	// was observed; the operation is terminal locally but unresolved remotely.
	CrossChainUnknown CrossChainStatus = "UNKNOWN"
)

// Terminal reports whether the status stops polling.
func (s CrossChainStatus) Terminal() bool {
	switch s {
	case CrossChainConfirmed, CrossChainCancelled, CrossChainAbandoned, CrossChainUnknown:
		return true
	default:
		return false
	}
}

// RemotePhase is the lifecycle phase reported by an external bridge status
// service for one cross-chain operation.
type RemotePhase string

const (
	PhaseDiscovered          RemotePhase = "discovered"
	PhaseAwaitingAttestation RemotePhase = "awaiting_attestation"
	PhaseAttestationReceived RemotePhase = "attestation_received"
	PhaseReadyToRelay        RemotePhase = "ready_to_relay"
	PhasePendingTx           RemotePhase = "pending_tx"
	PhaseRelaying            RemotePhase = "relaying"
	PhaseConfirmed           RemotePhase = "confirmed"
	PhaseCancelled           RemotePhase = "cancelled"
	PhaseAbandoned           RemotePhase = "abandoned"
)

// RemoteStatus is one observation returned by a bridge status service.
type RemoteStatus struct {
	Phase      RemotePhase
	DestTxHash string
}

// PendingCrossChainOp tracks one bridge operation from source-chain mining to
// destination-chain confirmation.
//
// Fields:
// - ID: the operation identifier.
// - SourceChainID: the chain the source transaction was submitted to.
// - DestChainID: the chain the operation completes on.
// - SourceTxHash: the mined source transaction hash.
// - Status: the current local status.
// - DestTxHash: the destination transaction hash, once observed.
type PendingCrossChainOp struct {
	ID            string
	SourceChainID uint64
	DestChainID   uint64
	SourceTxHash  string
	Status        CrossChainStatus
	DestTxHash    string
}
