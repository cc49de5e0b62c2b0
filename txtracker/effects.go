package txtracker

import (
	"context"
	"time"

	"github.com/ClipFinance/orchestrator-lib/sequencer"
	"github.com/sirupsen/logrus"
)

// rewardIndexerDelay is how long reward indexer re-queries are deferred after
// a successful transaction, allowing off-chain indexers to catch up.
const rewardIndexerDelay = 60 * time.Second

// Effect is one post-success refresh side effect attached to a step: a
// balance or allowance re-read, a reserve level re-query, a downstream
// migrator re-query, the clearing of input fields, or a delayed reward
// indexer re-query. Effects are fire-and-forget; an effect failure never
// fails the step that triggered it.
//
// Fields:
// - Name: the effect name used in logs.
// - Delay: how long to wait before running the effect.
// - Run: the effect body.
type Effect struct {
	Name  string
	Delay time.Duration
	Run   func(ctx context.Context) error
}

// DelayedRewardRefresh wraps a reward indexer re-query with the standard
// indexer catch-up delay.
func DelayedRewardRefresh(name string, run func(ctx context.Context) error) Effect {
	return Effect{Name: name, Delay: rewardIndexerDelay, Run: run}
}

// EffectRunner executes post-success effects. Each effect runs on its own
// goroutine, checks plan liveness before acting, and has its failure logged
// and swallowed.
type EffectRunner struct {
	logger *logrus.Logger
	seq    *sequencer.Sequencer
}

// NewEffectRunner creates an effect runner bound to a sequencer for epoch
// liveness checks.
func NewEffectRunner(logger *logrus.Logger, seq *sequencer.Sequencer) *EffectRunner {
	return &EffectRunner{
		logger: logger,
		seq:    seq,
	}
}

// RunAll fires every effect and returns immediately. Effects whose delay
// elapses after the plan has been replaced are discarded; the epoch captured
// at submission time is compared against the sequencer's current epoch right
// before each effect body runs.
//
// Parameters:
// - ctx: the context bounding all effect executions.
// - epoch: the plan epoch the effects were issued under.
// - effects: the effects to run.
func (r *EffectRunner) RunAll(ctx context.Context, epoch uint64, effects []Effect) {
	for _, effect := range effects {
		go r.runOne(ctx, epoch, effect)
	}
}

func (r *EffectRunner) runOne(ctx context.Context, epoch uint64, effect Effect) {
	if effect.Delay > 0 {
		timer := time.NewTimer(effect.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	if r.seq.Epoch() != epoch {
		r.logger.WithFields(logrus.Fields{
			"effect": effect.Name,
			"epoch":  epoch,
		}).Debug("Skipping refresh effect for abandoned plan")
		return
	}

	if err := effect.Run(ctx); err != nil {
		r.logger.WithFields(logrus.Fields{
			"effect": effect.Name,
			"error":  err,
		}).Warn("Refresh effect failed")
	}
}
