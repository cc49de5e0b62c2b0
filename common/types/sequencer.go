package types

// StepContent is the per-step UI state driven by the sequencer and the
// transaction lifecycle. Transitions only move forward along
// StartTx -> WalletTx -> WaitingTx -> {SuccessTx | ErrorTx}, with BridgingTx
// as an optional detour after SuccessTx for bridge-kind steps awaiting
// destination-chain confirmation.
type StepContent string

const (
	// ContentStartTx indicates the step is ready to be fired.
	ContentStartTx StepContent = "START_TX"
	// ContentWalletTx indicates the wallet prompt is open, waiting on a human.
	ContentWalletTx StepContent = "WALLET_TX"
	// ContentWaitingTx indicates the transaction is submitted, waiting on the chain.
	ContentWaitingTx StepContent = "WAITING_TX"
	// ContentErrorTx indicates the step failed; the pointer does not advance.
	ContentErrorTx StepContent = "ERROR_TX"
	// ContentSuccessTx indicates the step, or the whole plan, completed.
	ContentSuccessTx StepContent = "SUCCESS_TX"
	// ContentBridgingTx indicates a bridge step is mined on the source chain
	// and awaiting destination-chain confirmation.
	ContentBridgingTx StepContent = "BRIDGING_TX"
)

// rank orders the per-step contents so transitions can be checked as
// forward-only. Terminal contents share the highest non-bridging rank.
func (c StepContent) rank() int {
	switch c {
	case ContentStartTx:
		return 0
	case ContentWalletTx:
		return 1
	case ContentWaitingTx:
		return 2
	case ContentErrorTx, ContentSuccessTx:
		return 3
	case ContentBridgingTx:
		return 4
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from c to next respects the
// forward-only step content ordering.
func (c StepContent) CanTransitionTo(next StepContent) bool {
	if next == ContentBridgingTx {
		return c == ContentSuccessTx
	}
	return next.rank() > c.rank()
}

// TxResult is the summary result of the latest transaction attempt.
type TxResult string

const (
	ResultIdle    TxResult = "idle"
	ResultPending TxResult = "pending"
	ResultSuccess TxResult = "success"
	// ResultSuccessPending marks transactions mined on the source chain whose
	// final effect is still pending elsewhere (bridging).
	ResultSuccessPending TxResult = "success_pending"
	ResultError          TxResult = "error"
)

// TxOutcome is the latest attempt's outcome for the active step. It is
// overwritten on every attempt, never appended.
type TxOutcome struct {
	Result TxResult
	Data   *SubmittedTx
	Err    error
}

// SequencerState is the externally visible state of a step sequencer.
//
// Fields:
// - Open: whether the sequencing surface is open.
// - CurrentStep: index of the active step; 0 <= CurrentStep < len(Items)
//   while the plan is not finished.
// - Content: the active step's content state.
// - Items: the plan's steps.
// - ChainID: the chain the plan executes on.
type SequencerState struct {
	Open        bool
	CurrentStep int
	Content     StepContent
	Items       []Step
	ChainID     uint64
}
