package crosschain

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/sequencer"
	"github.com/ClipFinance/orchestrator-lib/txtracker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// scriptedProvider replays a fixed sequence of observations, repeating the
// last one once exhausted.
type scriptedProvider struct {
	mu     sync.Mutex
	script []observation
	polls  int
}

type observation struct {
	status *types.RemoteStatus
	err    error
}

func (p *scriptedProvider) OpStatus(ctx context.Context, sourceChainID uint64, sourceTxHash string) (*types.RemoteStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.polls
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	p.polls++

	obs := p.script[idx]
	return obs.status, obs.err
}

func (p *scriptedProvider) pollCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func newTracker(t *testing.T, provider StatusProvider) (*Tracker, *sequencer.Sequencer) {
	t.Helper()
	logger := testLogger()
	seq := sequencer.New(logger)
	tracker := NewTracker(logger, provider, seq, txtracker.NewEffectRunner(logger, seq))
	tracker.SetPolling(5*time.Millisecond, 100)
	return tracker, seq
}

func pendingOp() *types.PendingCrossChainOp {
	return &types.PendingCrossChainOp{
		ID:            "op-1",
		SourceChainID: 1,
		DestChainID:   8453,
		SourceTxHash:  "0xsource",
	}
}

func waitForStatus(t *testing.T, tracker *Tracker, opID string, want types.CrossChainStatus) types.PendingCrossChainOp {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		op, ok := tracker.Op(opID)
		if ok && op.Status == want {
			return op
		}
		time.Sleep(5 * time.Millisecond)
	}
	op, _ := tracker.Op(opID)
	t.Fatalf("operation %s never reached %s, last status %s", opID, want, op.Status)
	return types.PendingCrossChainOp{}
}

func TestMapPhase(t *testing.T) {
	assert.Equal(t, types.CrossChainPending, mapPhase(types.PhaseDiscovered))
	assert.Equal(t, types.CrossChainPending, mapPhase(types.PhaseAwaitingAttestation))
	assert.Equal(t, types.CrossChainPending, mapPhase(types.PhaseAttestationReceived))
	assert.Equal(t, types.CrossChainPending, mapPhase(types.PhaseReadyToRelay))
	assert.Equal(t, types.CrossChainPending, mapPhase(types.PhasePendingTx))
	assert.Equal(t, types.CrossChainConfirming, mapPhase(types.PhaseRelaying))
	assert.Equal(t, types.CrossChainConfirmed, mapPhase(types.PhaseConfirmed))
	assert.Equal(t, types.CrossChainCancelled, mapPhase(types.PhaseCancelled))
	assert.Equal(t, types.CrossChainAbandoned, mapPhase(types.PhaseAbandoned))
	assert.Equal(t, types.CrossChainPending, mapPhase(types.RemotePhase("something_new")))
}

func TestConfirmedStopsPollingAndRunsEffects(t *testing.T) {
	provider := &scriptedProvider{script: []observation{
		{status: &types.RemoteStatus{Phase: types.PhaseDiscovered}},
		{status: &types.RemoteStatus{Phase: types.PhaseRelaying}},
		{status: &types.RemoteStatus{Phase: types.PhaseConfirmed, DestTxHash: "0xdest"}},
	}}

	tracker, seq := newTracker(t, provider)
	epoch := seq.Start(types.NewPlan(1, []types.Step{{Kind: types.StepBridge}}))
	seq.SetContent(epoch, types.ContentWalletTx)
	seq.SetContent(epoch, types.ContentWaitingTx)
	seq.SetContent(epoch, types.ContentSuccessTx)

	confirmed := make(chan struct{})
	err := tracker.Register(context.Background(), pendingOp(), []txtracker.Effect{{
		Name: "dest-balance-refresh",
		Run: func(ctx context.Context) error {
			close(confirmed)
			return nil
		},
	}})
	require.NoError(t, err)

	assert.Equal(t, types.ContentBridgingTx, seq.State().Content)

	op := waitForStatus(t, tracker, "op-1", types.CrossChainConfirmed)
	assert.Equal(t, "0xdest", op.DestTxHash)

	select {
	case <-confirmed:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation effect did not run")
	}

	// Polling stops after the terminal observation.
	settled := provider.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, provider.pollCount())
}

func TestCancelledIsTerminal(t *testing.T) {
	provider := &scriptedProvider{script: []observation{
		{status: &types.RemoteStatus{Phase: types.PhaseCancelled}},
	}}

	tracker, _ := newTracker(t, provider)
	require.NoError(t, tracker.Register(context.Background(), pendingOp(), nil))

	waitForStatus(t, tracker, "op-1", types.CrossChainCancelled)

	settled := provider.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, provider.pollCount())
}

func TestPollCapMarksUnknown(t *testing.T) {
	provider := &scriptedProvider{script: []observation{
		{status: &types.RemoteStatus{Phase: types.PhaseAwaitingAttestation}},
	}}

	tracker, _ := newTracker(t, provider)
	tracker.SetPolling(time.Millisecond, 5)
	require.NoError(t, tracker.Register(context.Background(), pendingOp(), nil))

	waitForStatus(t, tracker, "op-1", types.CrossChainUnknown)

	settled := provider.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, provider.pollCount())
}

func TestTransientPollErrorKeepsPolling(t *testing.T) {
	provider := &scriptedProvider{script: []observation{
		{err: errors.New("status service unavailable")},
		{err: errors.New("status service unavailable")},
		{status: &types.RemoteStatus{Phase: types.PhaseConfirmed, DestTxHash: "0xdest"}},
	}}

	tracker, _ := newTracker(t, provider)
	require.NoError(t, tracker.Register(context.Background(), pendingOp(), nil))

	waitForStatus(t, tracker, "op-1", types.CrossChainConfirmed)
	assert.GreaterOrEqual(t, provider.pollCount(), 3)
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	provider := &scriptedProvider{script: []observation{
		{status: &types.RemoteStatus{Phase: types.PhaseDiscovered}},
	}}

	tracker, _ := newTracker(t, provider)
	defer tracker.Stop()

	require.NoError(t, tracker.Register(context.Background(), pendingOp(), nil))
	assert.Error(t, tracker.Register(context.Background(), pendingOp(), nil))
}

func TestStopOpCancelsPolling(t *testing.T) {
	provider := &scriptedProvider{script: []observation{
		{status: &types.RemoteStatus{Phase: types.PhaseDiscovered}},
	}}

	tracker, _ := newTracker(t, provider)
	require.NoError(t, tracker.Register(context.Background(), pendingOp(), nil))

	waitForStatus(t, tracker, "op-1", types.CrossChainPending)
	tracker.StopOp("op-1")

	time.Sleep(20 * time.Millisecond)
	settled := provider.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, provider.pollCount())
}
