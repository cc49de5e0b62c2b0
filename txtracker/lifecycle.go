package txtracker

import (
	"context"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/sequencer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Lifecycle tracks a single submitted transaction from build through signed,
// submitted, and mined or reverted, converting low-level client results into
// step content transitions and triggering post-success refresh effects.
type Lifecycle struct {
	logger  *logrus.Logger
	seq     *sequencer.Sequencer
	effects *EffectRunner
}

// NewLifecycle creates a lifecycle tracker bound to a sequencer.
func NewLifecycle(logger *logrus.Logger, seq *sequencer.Sequencer, effects *EffectRunner) *Lifecycle {
	return &Lifecycle{
		logger:  logger,
		seq:     seq,
		effects: effects,
	}
}

// TrackOptions tunes tracking for one transaction.
//
// Fields:
// - CrossChain: true for bridge-kind steps whose final effect is observed on
//   another chain; the outcome is recorded as success_pending and the caller
//   registers the operation with the cross-chain tracker.
// - Refresh: the post-success effects attached to the step.
type TrackOptions struct {
	CrossChain bool
	Refresh    []Effect
}

// Track drives one transaction through its lifecycle. The wallet prompt
// state is entered at the moment submit is called, distinguishing "waiting
// on human" from "waiting on chain". The plan epoch is captured on entry and
// every later mutation is guarded by it: when the plan has been replaced
// mid-flight, late results are discarded without touching the new plan.
//
// Parameters:
// - ctx: the context for managing the request.
// - client: the chain client used to submit and poll.
// - submit: the wallet-interactive submission call.
// - opts: tracking options for the step.
//
// Returns:
// - *types.Receipt: the mined receipt on success.
// - error: the classified error when submission or mining fails.
func (l *Lifecycle) Track(
	ctx context.Context,
	client types.ChainClient,
	submit func(ctx context.Context) (*types.SubmittedTx, error),
	opts TrackOptions,
) (*types.Receipt, error) {
	epoch := l.seq.Epoch()

	l.seq.SetContent(epoch, types.ContentWalletTx)

	tx, err := submit(ctx)
	if err != nil {
		walletErr := commonerrors.Classify(err)
		l.recordFailure(epoch, walletErr, "")
		return nil, walletErr
	}

	l.seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultPending, Data: tx})
	l.seq.SetContent(epoch, types.ContentWaitingTx)

	l.logger.WithFields(logrus.Fields{
		"txHash":  tx.Hash,
		"chainId": tx.ChainID,
	}).Info("Transaction submitted, waiting for receipt")

	// The transaction is already in the mempool here; a failed wait is a
	// confirmation failure, not a submission one.
	receipt, err := client.WaitForReceipt(ctx, tx.Hash)
	if err != nil {
		walletErr := commonerrors.NewWalletError(commonerrors.KindConfirmation, errors.Wrap(err, "failed to wait for receipt"))
		l.recordFailure(epoch, walletErr, tx.Hash)
		return nil, walletErr
	}

	if receipt.Status != types.ReceiptSuccessful {
		revertErr := commonerrors.RevertError(tx.Hash)
		l.recordFailure(epoch, revertErr, tx.Hash)
		return nil, revertErr
	}

	result := types.ResultSuccess
	if opts.CrossChain {
		result = types.ResultSuccessPending
	}

	l.seq.SetOutcome(epoch, types.TxOutcome{Result: result, Data: tx})
	l.seq.SetContent(epoch, types.ContentSuccessTx)

	if len(opts.Refresh) > 0 {
		l.effects.RunAll(ctx, epoch, opts.Refresh)
	}

	return receipt, nil
}

// recordFailure records a classified failure against the active step. The
// error kind keeps wallet rejections, submission failures, and reverts
// distinguishable in logs even though all three render as the same error
// state.
func (l *Lifecycle) recordFailure(epoch uint64, walletErr *commonerrors.WalletError, txHash string) {
	entry := l.logger.WithFields(logrus.Fields{
		"kind":   walletErr.Kind,
		"txHash": txHash,
		"error":  walletErr.Error(),
	})
	if walletErr.Kind == commonerrors.KindWalletRejection {
		entry.Info("Transaction declined in wallet")
	} else {
		entry.Error("Transaction failed")
	}

	l.seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultError, Err: walletErr})
	l.seq.SetContent(epoch, types.ContentErrorTx)
}

// CaptureWalletErrors wraps a step action so that every failure is caught at
// the action boundary and converted into a recorded outcome instead of
// propagating as an unhandled error. Quote staleness is the one exception:
// it routes to the needs-confirmation state, never to the error state, so it
// passes through untouched.
func CaptureWalletErrors(logger *logrus.Logger, seq *sequencer.Sequencer, action types.StepAction) types.StepAction {
	return func(ctx context.Context) error {
		epoch := seq.Epoch()
		err := action(ctx)
		if err == nil {
			return nil
		}

		if commonerrors.IsQuoteStale(err) {
			return err
		}

		var walletErr *commonerrors.WalletError
		if !errors.As(err, &walletErr) {
			walletErr = commonerrors.Classify(err)
			seq.SetOutcome(epoch, types.TxOutcome{Result: types.ResultError, Err: walletErr})
			seq.SetContent(epoch, types.ContentErrorTx)
		}

		logger.WithFields(logrus.Fields{
			"kind":     walletErr.Kind,
			"friendly": walletErr.FriendlyMessage(),
			"error":    walletErr.Error(),
		}).Debug("Step action failed")

		return walletErr
	}
}
