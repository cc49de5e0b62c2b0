package quoteguard

import (
	"context"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/sequencer"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// driftDivisor narrows the user's slippage tolerance for the silent-continue
// check. Only one tenth of the configured tolerance counts as negligible
// drift before the flow pauses for explicit reconfirmation; the check gates
// a silent continue against an interruptive prompt, not the transaction's
// own min-output guard.
var driftDivisor = decimal.NewFromInt(10)

// SignificantChange describes one output whose re-fetched amount fell below
// the negligible-drift threshold.
//
// Fields:
// - Token: the output token.
// - NewAmount: the re-fetched output amount.
// - Difference: how much the output shrank against the original quote.
type SignificantChange struct {
	Token      types.Token
	NewAmount  decimal.Decimal
	Difference decimal.Decimal
}

// ConfirmationRequest is handed to the application when a re-fetched quote
// drifted beyond tolerance, or when re-fetching failed outright. The flow is
// paused until the user explicitly accepts the new quote (re-entering
// execution with it) or rejects it (discarding the plan). There is no
// timeout and no default: absence of a decision leaves the plan abandoned.
//
// Fields:
// - NewQuote: the fresh quote, when one was obtained.
// - Changes: the outputs that drifted beyond tolerance.
// - Err: the re-fetch failure, when the quote could not be re-obtained.
type ConfirmationRequest struct {
	NewQuote *types.Quote
	Changes  []SignificantChange
	Err      error
}

// ConfirmationHandler surfaces a paused flow to the user out-of-band.
type ConfirmationHandler func(req *ConfirmationRequest)

// Guard wraps the economically-final step of a plan so that, immediately
// before execution, the original quote is re-fetched and compared. On
// negligible drift the underlying action runs unmodified; on significant
// drift the mechanical flow is aborted and the user is asked explicitly.
// Allowance steps are quote-independent and must never be wrapped.
type Guard struct {
	logger      *logrus.Logger
	provider    types.QuoteProvider
	seq         *sequencer.Sequencer
	maxSlippage decimal.Decimal
	onConfirm   ConfirmationHandler
}

// New creates a quote guard.
//
// Parameters:
// - logger: the logger for logging events.
// - provider: the quote provider used for re-fetches.
// - seq: the sequencer driving the plan.
// - maxSlippage: the user's configured slippage tolerance, e.g. 0.01 for 1%.
// - onConfirm: the handler surfacing paused flows to the user.
func New(
	logger *logrus.Logger,
	provider types.QuoteProvider,
	seq *sequencer.Sequencer,
	maxSlippage decimal.Decimal,
	onConfirm ConfirmationHandler,
) *Guard {
	return &Guard{
		logger:      logger,
		provider:    provider,
		seq:         seq,
		maxSlippage: maxSlippage,
		onConfirm:   onConfirm,
	}
}

// MinAllowedRatio returns 1 - maxSlippage/10: the fraction of the original
// output below which a re-fetched output requires reconfirmation.
func (g *Guard) MinAllowedRatio() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(g.maxSlippage.Div(driftDivisor))
}

// Wrap decorates the final monetary step of a plan with the re-confirmation
// check. The returned step is identical except for its action.
//
// Parameters:
// - step: the economically-final step of the plan.
// - original: the quote the plan was built against.
//
// Returns:
// - types.Step: the wrapped step.
func (g *Guard) Wrap(step types.Step, original *types.Quote) types.Step {
	wrapped := step
	inner := step.Action
	wrapped.Action = func(ctx context.Context) error {
		return g.checkAndRun(ctx, original, inner)
	}
	return wrapped
}

// checkAndRun re-fetches the quote for the same option, compares outputs,
// and either runs the inner action transparently or aborts into the
// confirmation flow. Staleness is never executed on by default: a failed
// re-fetch aborts exactly like detected drift.
func (g *Guard) checkAndRun(ctx context.Context, original *types.Quote, inner types.StepAction) error {
	fresh, err := g.provider.FetchQuote(ctx, &original.Option, original.Inputs)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"optionId": original.Option.ID,
			"error":    err,
		}).Warn("Quote re-fetch failed, pausing for confirmation")

		g.abort(&ConfirmationRequest{Err: err})
		return commonerrors.NewQuoteStaleError(original.Option.ID, err)
	}

	changes := g.significantChanges(original, fresh)
	if len(changes) == 0 {
		g.logger.WithField("optionId", original.Option.ID).Debug("Quote re-check passed, no confirmation needed")
		return inner(ctx)
	}

	g.logger.WithFields(logrus.Fields{
		"optionId": original.Option.ID,
		"changes":  len(changes),
	}).Info("Quote drifted beyond tolerance, pausing for confirmation")

	g.abort(&ConfirmationRequest{NewQuote: fresh, Changes: changes})
	return commonerrors.NewQuoteStaleError(original.Option.ID, nil)
}

// significantChanges compares every original output against the re-fetched
// quote. An output token absent from the fresh quote counts as zero.
func (g *Guard) significantChanges(original, fresh *types.Quote) []SignificantChange {
	ratio := g.MinAllowedRatio()

	var changes []SignificantChange
	for _, out := range original.Outputs {
		newAmount := decimal.Zero
		if match, ok := fresh.FindOutput(out.Token); ok {
			newAmount = match.Amount
		}

		if newAmount.Cmp(out.Amount.Mul(ratio)) < 0 {
			changes = append(changes, SignificantChange{
				Token:      out.Token,
				NewAmount:  newAmount,
				Difference: out.Amount.Sub(newAmount),
			})
		}
	}
	return changes
}

// abort tears down the mechanical flow and hands the decision to the user.
func (g *Guard) abort(req *ConfirmationRequest) {
	g.seq.Reset()
	if g.onConfirm != nil {
		g.onConfirm(req)
	}
}
