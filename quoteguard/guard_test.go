package quoteguard

import (
	"context"
	"io"
	"testing"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/sequencer"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var usdc = types.Token{
	ChainID:  1,
	Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	Decimals: 6,
	Symbol:   "USDC",
}

// stubProvider returns a canned quote or error for every re-fetch.
type stubProvider struct {
	quote *types.Quote
	err   error
	calls int
}

func (p *stubProvider) FetchQuote(ctx context.Context, option *types.QuoteOption, inputs []types.TokenAmount) (*types.Quote, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.quote, nil
}

func quoteWithOutput(amount decimal.Decimal) *types.Quote {
	return &types.Quote{
		Option:  types.QuoteOption{ID: "option-1", Provider: "router"},
		Outputs: []types.TokenAmount{{Token: usdc, Amount: amount}},
	}
}

func newGuard(t *testing.T, provider types.QuoteProvider, onConfirm ConfirmationHandler) (*Guard, *sequencer.Sequencer) {
	t.Helper()
	seq := sequencer.New(testLogger())
	guard := New(testLogger(), provider, seq, decimal.NewFromFloat(0.01), onConfirm)
	return guard, seq
}

func TestMinAllowedRatio(t *testing.T) {
	guard, _ := newGuard(t, &stubProvider{}, nil)

	// 1% slippage tolerance narrows to a 0.1% negligible-drift band.
	assert.True(t, guard.MinAllowedRatio().Equal(decimal.NewFromFloat(0.999)))
}

func TestNegligibleDriftRunsSilently(t *testing.T) {
	original := quoteWithOutput(decimal.NewFromInt(100))
	provider := &stubProvider{quote: quoteWithOutput(decimal.NewFromFloat(99.95))}

	prompted := false
	guard, seq := newGuard(t, provider, func(req *ConfirmationRequest) {
		prompted = true
	})
	seq.Start(types.NewPlan(1, []types.Step{{Kind: types.StepZapIn}}))

	ran := false
	step := guard.Wrap(types.Step{
		Kind: types.StepZapIn,
		Action: func(ctx context.Context) error {
			ran = true
			return nil
		},
	}, original)

	err := step.Action(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, prompted)
	assert.Equal(t, 1, provider.calls)
}

func TestSignificantDriftAborts(t *testing.T) {
	original := quoteWithOutput(decimal.NewFromInt(100))
	provider := &stubProvider{quote: quoteWithOutput(decimal.NewFromFloat(99.8))}

	var captured *ConfirmationRequest
	guard, seq := newGuard(t, provider, func(req *ConfirmationRequest) {
		captured = req
	})
	seq.Start(types.NewPlan(1, []types.Step{{Kind: types.StepZapIn}}))

	ran := false
	step := guard.Wrap(types.Step{
		Kind: types.StepZapIn,
		Action: func(ctx context.Context) error {
			ran = true
			return nil
		},
	}, original)

	err := step.Action(context.Background())
	assert.True(t, commonerrors.IsQuoteStale(err))
	assert.False(t, ran)

	require.NotNil(t, captured)
	require.NotNil(t, captured.NewQuote)
	require.Len(t, captured.Changes, 1)
	assert.True(t, captured.Changes[0].NewAmount.Equal(decimal.NewFromFloat(99.8)))
	assert.True(t, captured.Changes[0].Difference.Equal(decimal.NewFromFloat(0.2)))

	// The mechanical flow is torn down awaiting the user's decision.
	assert.False(t, seq.State().Open)
}

func TestRefetchFailureAbortsLikeDrift(t *testing.T) {
	original := quoteWithOutput(decimal.NewFromInt(100))
	provider := &stubProvider{err: errors.New("quote service unavailable")}

	var captured *ConfirmationRequest
	guard, seq := newGuard(t, provider, func(req *ConfirmationRequest) {
		captured = req
	})
	seq.Start(types.NewPlan(1, []types.Step{{Kind: types.StepZapIn}}))

	ran := false
	step := guard.Wrap(types.Step{
		Kind: types.StepZapIn,
		Action: func(ctx context.Context) error {
			ran = true
			return nil
		},
	}, original)

	err := step.Action(context.Background())
	assert.True(t, commonerrors.IsQuoteStale(err))
	assert.False(t, ran)

	require.NotNil(t, captured)
	assert.Nil(t, captured.NewQuote)
	assert.Error(t, captured.Err)
	assert.False(t, seq.State().Open)
}

func TestMissingOutputTokenCountsAsZero(t *testing.T) {
	original := quoteWithOutput(decimal.NewFromInt(100))
	fresh := &types.Quote{
		Option:  original.Option,
		Outputs: nil,
	}
	provider := &stubProvider{quote: fresh}

	var captured *ConfirmationRequest
	guard, seq := newGuard(t, provider, func(req *ConfirmationRequest) {
		captured = req
	})
	seq.Start(types.NewPlan(1, []types.Step{{Kind: types.StepZapIn}}))

	step := guard.Wrap(types.Step{
		Kind:   types.StepZapIn,
		Action: func(ctx context.Context) error { return nil },
	}, original)

	err := step.Action(context.Background())
	assert.True(t, commonerrors.IsQuoteStale(err))

	require.NotNil(t, captured)
	require.Len(t, captured.Changes, 1)
	assert.True(t, captured.Changes[0].NewAmount.IsZero())
	assert.True(t, captured.Changes[0].Difference.Equal(decimal.NewFromInt(100)))
}

func TestExactBoundaryDoesNotPrompt(t *testing.T) {
	original := quoteWithOutput(decimal.NewFromInt(100))
	// Exactly at the 0.999 threshold: not strictly below, so no prompt.
	provider := &stubProvider{quote: quoteWithOutput(decimal.NewFromFloat(99.9))}

	prompted := false
	guard, seq := newGuard(t, provider, func(req *ConfirmationRequest) {
		prompted = true
	})
	seq.Start(types.NewPlan(1, []types.Step{{Kind: types.StepZapIn}}))

	step := guard.Wrap(types.Step{
		Kind:   types.StepZapIn,
		Action: func(ctx context.Context) error { return nil },
	}, original)

	require.NoError(t, step.Action(context.Background()))
	assert.False(t, prompted)
}
