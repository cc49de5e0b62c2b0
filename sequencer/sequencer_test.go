package sequencer

import (
	"io"
	"testing"

	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func twoStepPlan() *types.Plan {
	return types.NewPlan(1, []types.Step{
		{Kind: types.StepApprove, HumanMessage: "Approve USDC spending"},
		{Kind: types.StepDeposit, HumanMessage: "Deposit USDC into the vault"},
	})
}

func TestStartOpensAtFirstStep(t *testing.T) {
	seq := New(testLogger())

	epoch := seq.Start(twoStepPlan())

	state := seq.State()
	assert.True(t, state.Open)
	assert.Equal(t, 0, state.CurrentStep)
	assert.Equal(t, types.ContentStartTx, state.Content)
	assert.Equal(t, uint64(1), epoch)
	assert.Equal(t, types.ResultIdle, seq.Outcome().Result)
}

func TestAdvanceRequiresSuccess(t *testing.T) {
	seq := New(testLogger())
	seq.Start(twoStepPlan())

	// No outcome recorded yet, the pointer must not move.
	seq.Advance()
	assert.Equal(t, 0, seq.State().CurrentStep)

	epoch := seq.Epoch()
	seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultError})
	seq.Advance()
	assert.Equal(t, 0, seq.State().CurrentStep)

	seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultSuccess})
	seq.Advance()
	assert.Equal(t, 1, seq.State().CurrentStep)
	assert.Equal(t, types.ContentStartTx, seq.State().Content)
	assert.Equal(t, types.ResultIdle, seq.Outcome().Result)
}

func TestAdvancePastLastStepFinishes(t *testing.T) {
	seq := New(testLogger())
	seq.Start(twoStepPlan())
	epoch := seq.Epoch()

	seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultSuccess})
	seq.Advance()
	seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultSuccess})
	seq.Advance()

	assert.True(t, seq.Finished())
	assert.Equal(t, types.ContentSuccessTx, seq.State().Content)

	// Advancing a finished plan is a no-op.
	seq.Advance()
	assert.True(t, seq.Finished())
	assert.Equal(t, 1, seq.State().CurrentStep)

	_, ok := seq.CurrentStep()
	assert.False(t, ok)
}

func TestSuccessPendingAdvances(t *testing.T) {
	seq := New(testLogger())
	seq.Start(types.NewPlan(1, []types.Step{
		{Kind: types.StepBridge, HumanMessage: "Bridge USDC", Extra: &types.StepExtra{CrossChain: true}},
		{Kind: types.StepDeposit, HumanMessage: "Deposit USDC into the vault"},
	}))
	epoch := seq.Epoch()

	seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultSuccessPending})
	seq.Advance()
	assert.Equal(t, 1, seq.State().CurrentStep)
}

func TestSetContentEnforcesForwardOrder(t *testing.T) {
	seq := New(testLogger())
	seq.Start(twoStepPlan())
	epoch := seq.Epoch()

	require.True(t, seq.SetContent(epoch, types.ContentWalletTx))
	require.True(t, seq.SetContent(epoch, types.ContentWaitingTx))

	// Backward move is rejected and leaves the content untouched.
	assert.False(t, seq.SetContent(epoch, types.ContentWalletTx))
	assert.Equal(t, types.ContentWaitingTx, seq.State().Content)

	require.True(t, seq.SetContent(epoch, types.ContentErrorTx))
	assert.Equal(t, types.ContentErrorTx, seq.State().Content)
}

func TestSetContentBridgingRequiresBridgeStep(t *testing.T) {
	seq := New(testLogger())
	seq.Start(twoStepPlan())
	epoch := seq.Epoch()

	require.True(t, seq.SetContent(epoch, types.ContentWalletTx))
	require.True(t, seq.SetContent(epoch, types.ContentWaitingTx))
	require.True(t, seq.SetContent(epoch, types.ContentSuccessTx))

	// The active step is an approve, not a bridge.
	assert.False(t, seq.SetContent(epoch, types.ContentBridgingTx))

	seq.Start(types.NewPlan(1, []types.Step{
		{Kind: types.StepBridge, HumanMessage: "Bridge USDC"},
	}))
	epoch = seq.Epoch()

	require.True(t, seq.SetContent(epoch, types.ContentWalletTx))
	require.True(t, seq.SetContent(epoch, types.ContentWaitingTx))
	require.True(t, seq.SetContent(epoch, types.ContentSuccessTx))
	assert.True(t, seq.SetContent(epoch, types.ContentBridgingTx))
}

func TestStartEmptyPlanStaysClosed(t *testing.T) {
	seq := New(testLogger())

	epoch := seq.Start(types.NewPlan(1, nil))

	state := seq.State()
	assert.False(t, state.Open)
	assert.Equal(t, types.ContentStartTx, state.Content)

	// Content transitions against the stepless plan are rejected rather
	// than panicking on the empty step list.
	assert.False(t, seq.SetContent(epoch, types.ContentSuccessTx))
	assert.False(t, seq.SetContent(epoch, types.ContentBridgingTx))

	_, ok := seq.CurrentStep()
	assert.False(t, ok)

	// The epoch still advanced, so callbacks from an earlier plan stay stale.
	assert.Equal(t, epoch, seq.Epoch())
}

func TestStaleEpochCallbacksAreDiscarded(t *testing.T) {
	seq := New(testLogger())
	seq.Start(twoStepPlan())
	staleEpoch := seq.Epoch()

	// A new plan replaces the old one mid-flight.
	seq.Start(twoStepPlan())

	assert.False(t, seq.SetContent(staleEpoch, types.ContentWalletTx))
	assert.False(t, seq.SetOutcome(staleEpoch, types.TxOutcome{Result: types.ResultSuccess}))

	assert.Equal(t, types.ContentStartTx, seq.State().Content)
	assert.Equal(t, types.ResultIdle, seq.Outcome().Result)
}

func TestResetClosesAndInvalidatesEpoch(t *testing.T) {
	seq := New(testLogger())
	seq.Start(twoStepPlan())
	epoch := seq.Epoch()
	require.True(t, seq.SetContent(epoch, types.ContentWalletTx))

	seq.Reset()

	assert.False(t, seq.State().Open)
	assert.Equal(t, types.ContentStartTx, seq.State().Content)
	assert.False(t, seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultError}))
	assert.NotEqual(t, epoch, seq.Epoch())
}

func TestOutcomeOverwritesPreviousAttempt(t *testing.T) {
	seq := New(testLogger())
	seq.Start(twoStepPlan())
	epoch := seq.Epoch()

	seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultError})
	seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultPending, Data: &types.SubmittedTx{Hash: "0xabc"}})

	outcome := seq.Outcome()
	assert.Equal(t, types.ResultPending, outcome.Result)
	require.NotNil(t, outcome.Data)
	assert.Equal(t, "0xabc", outcome.Data.Hash)
}
