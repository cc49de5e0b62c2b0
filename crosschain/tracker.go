package crosschain

import (
	"context"
	"sync"
	"time"

	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/sequencer"
	"github.com/ClipFinance/orchestrator-lib/txtracker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultPollInterval defines the interval between bridge status polls.
	defaultPollInterval = 5 * time.Second
	// defaultMaxPolls caps consecutive polls without a terminal state; once
	// hit, the operation is marked unknown locally and polling stops.
	defaultMaxPolls = 720
)

// StatusProvider is the external bridge status service, keyed by source
// chain and source transaction hash.
type StatusProvider interface {
	// OpStatus returns the bridge's view of one cross-chain operation.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - sourceChainID: the chain the source transaction was submitted to.
	// - sourceTxHash: the mined source transaction hash.
	//
	// Returns:
	// - *types.RemoteStatus: the current remote lifecycle phase.
	// - error: an error if the status service is unreachable.
	OpStatus(ctx context.Context, sourceChainID uint64, sourceTxHash string) (*types.RemoteStatus, error)
}

// Tracker tracks long-running operations whose completion is observed on a
// different chain than the one the transaction was submitted to. One polling
// goroutine runs per registered operation; terminal states always stop it,
// and a poll cap bounds pathological bridge failures.
type Tracker struct {
	logger   *logrus.Logger
	provider StatusProvider
	seq      *sequencer.Sequencer
	effects  *txtracker.EffectRunner
	interval time.Duration
	maxPolls int

	opsMutex sync.RWMutex
	ops      map[string]*types.PendingCrossChainOp
	stops    map[string]chan struct{}
}

// NewTracker creates a cross-chain operation tracker.
//
// Parameters:
// - logger: the logger for logging events.
// - provider: the external bridge status service.
// - seq: the sequencer driving the plan the bridge step belongs to.
// - effects: the runner for post-confirmation refresh effects.
//
// Returns:
// - *Tracker: the new tracker.
func NewTracker(
	logger *logrus.Logger,
	provider StatusProvider,
	seq *sequencer.Sequencer,
	effects *txtracker.EffectRunner,
) *Tracker {
	return &Tracker{
		logger:   logger,
		provider: provider,
		seq:      seq,
		effects:  effects,
		interval: defaultPollInterval,
		maxPolls: defaultMaxPolls,
		ops:      make(map[string]*types.PendingCrossChainOp),
		stops:    make(map[string]chan struct{}),
	}
}

// SetPolling overrides the poll interval and cap.
func (t *Tracker) SetPolling(interval time.Duration, maxPolls int) {
	t.interval = interval
	t.maxPolls = maxPolls
}

// Register starts tracking one bridge operation whose source transaction has
// just been mined. The active step's content moves to the bridging detour,
// and onConfirmed effects run when the destination transaction is final.
//
// Parameters:
// - ctx: the context bounding the polling goroutine.
// - op: the pending operation to track.
// - onConfirmed: refresh effects to run on confirmation, in addition to
//   clearing any pending-input state the caller attached.
//
// Returns:
// - error: an error if an operation with the same id is already tracked.
func (t *Tracker) Register(ctx context.Context, op *types.PendingCrossChainOp, onConfirmed []txtracker.Effect) error {
	t.opsMutex.Lock()
	if _, exists := t.ops[op.ID]; exists {
		t.opsMutex.Unlock()
		return errors.Errorf("cross-chain operation %s already tracked", op.ID)
	}

	tracked := *op
	tracked.Status = types.CrossChainPending
	stop := make(chan struct{})
	t.ops[op.ID] = &tracked
	t.stops[op.ID] = stop
	t.opsMutex.Unlock()

	epoch := t.seq.Epoch()
	t.seq.SetContent(epoch, types.ContentBridgingTx)

	t.logger.WithFields(logrus.Fields{
		"opId":         op.ID,
		"sourceChain":  op.SourceChainID,
		"destChain":    op.DestChainID,
		"sourceTxHash": op.SourceTxHash,
	}).Info("Tracking cross-chain operation")

	go t.poll(ctx, op.ID, epoch, stop, onConfirmed)
	return nil
}

// Op returns a snapshot of one tracked operation.
func (t *Tracker) Op(id string) (types.PendingCrossChainOp, bool) {
	t.opsMutex.RLock()
	defer t.opsMutex.RUnlock()

	op, ok := t.ops[id]
	if !ok {
		return types.PendingCrossChainOp{}, false
	}
	return *op, true
}

// StopOp cancels polling for one operation without changing its status.
func (t *Tracker) StopOp(id string) {
	t.opsMutex.Lock()
	defer t.opsMutex.Unlock()

	if stop, ok := t.stops[id]; ok {
		close(stop)
		delete(t.stops, id)
	}
}

// Stop cancels polling for every tracked operation.
func (t *Tracker) Stop() {
	t.opsMutex.Lock()
	defer t.opsMutex.Unlock()

	for id, stop := range t.stops {
		close(stop)
		delete(t.stops, id)
	}
}

// poll drives one operation's status until a terminal state or the poll cap.
func (t *Tracker) poll(ctx context.Context, opID string, epoch uint64, stop chan struct{}, onConfirmed []txtracker.Effect) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	polls := 0
	for {
		select {
		case <-ctx.Done():
			t.logger.WithField("opId", opID).Info("Cross-chain polling stopped due to context cancellation")
			return

		case <-stop:
			return

		case <-ticker.C:
			polls++
			if t.observe(ctx, opID, epoch, onConfirmed) {
				t.StopOp(opID)
				return
			}

			if polls >= t.maxPolls {
				t.setStatus(opID, types.CrossChainUnknown, "")
				t.logger.WithFields(logrus.Fields{
					"opId":  opID,
					"polls": polls,
				}).Warn("Cross-chain polling capped without terminal state")
				t.StopOp(opID)
				return
			}
		}
	}
}

// observe performs one status poll and applies the resulting transition.
// It returns true when the operation reached a terminal state.
func (t *Tracker) observe(ctx context.Context, opID string, epoch uint64, onConfirmed []txtracker.Effect) bool {
	t.opsMutex.RLock()
	op, ok := t.ops[opID]
	t.opsMutex.RUnlock()
	if !ok {
		return true
	}

	remote, err := t.provider.OpStatus(ctx, op.SourceChainID, op.SourceTxHash)
	if err != nil {
		// A transient status service failure is a non-terminal observation.
		t.logger.WithFields(logrus.Fields{
			"opId":  opID,
			"error": err,
		}).Warn("Cross-chain status poll failed")
		return false
	}

	status := mapPhase(remote.Phase)
	t.setStatus(opID, status, remote.DestTxHash)

	if status == types.CrossChainConfirmed {
		t.logger.WithFields(logrus.Fields{
			"opId":       opID,
			"destTxHash": remote.DestTxHash,
		}).Info("Cross-chain operation confirmed")
		t.effects.RunAll(ctx, epoch, onConfirmed)
	}

	return status.Terminal()
}

// setStatus updates one operation's local status and destination hash.
func (t *Tracker) setStatus(opID string, status types.CrossChainStatus, destTxHash string) {
	t.opsMutex.Lock()
	defer t.opsMutex.Unlock()

	op, ok := t.ops[opID]
	if !ok {
		return
	}
	op.Status = status
	if destTxHash != "" {
		op.DestTxHash = destTxHash
	}
}

// mapPhase maps a remote bridge lifecycle phase to the local status.
func mapPhase(phase types.RemotePhase) types.CrossChainStatus {
	switch phase {
	case types.PhaseDiscovered,
		types.PhaseAwaitingAttestation,
		types.PhaseAttestationReceived,
		types.PhaseReadyToRelay,
		types.PhasePendingTx:
		return types.CrossChainPending
	case types.PhaseRelaying:
		return types.CrossChainConfirming
	case types.PhaseConfirmed:
		return types.CrossChainConfirmed
	case types.PhaseCancelled:
		return types.CrossChainCancelled
	case types.PhaseAbandoned:
		return types.CrossChainAbandoned
	default:
		return types.CrossChainPending
	}
}
