package sequencer

import (
	"sync"

	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/sirupsen/logrus"
)

// Sequencer owns the ordered list of steps of the active plan, drives the
// current step pointer, and reports overall completion. It never invokes
// step actions itself: the caller driving the plan fires them once the
// pointer lands on a step, so wallet-prompt states can be rendered before a
// transaction subsystem is touched.
//
// Every Start bumps an epoch. Async callbacks issued while driving a plan
// capture the epoch they were issued under and are discarded when a newer
// plan has taken over; an abandoned plan's late success or failure must not
// mutate the current plan's state.
type Sequencer struct {
	logger *logrus.Logger

	mu       sync.Mutex
	epoch    uint64
	state    types.SequencerState
	outcome  types.TxOutcome
	finished bool
}

// New creates an empty, closed sequencer.
func New(logger *logrus.Logger) *Sequencer {
	return &Sequencer{
		logger: logger,
		state:  types.SequencerState{Content: types.ContentStartTx},
		outcome: types.TxOutcome{
			Result: types.ResultIdle,
		},
	}
}

// Start resets any prior state, loads the plan, points at step 0, and opens
// the sequencing surface. Starting a new plan while a previous one is
// mid-flight abandons the old plan: its epoch is invalidated and any of its
// late callbacks become no-ops. A plan with no steps cannot hold a valid
// step pointer, so it leaves the sequencer closed.
//
// Parameters:
// - plan: the plan to execute.
//
// Returns:
// - uint64: the epoch the new plan runs under.
func (s *Sequencer) Start(plan *types.Plan) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.finished = false

	if len(plan.Steps) == 0 {
		s.logger.WithFields(logrus.Fields{
			"planId":  plan.ID,
			"chainId": plan.ChainID,
		}).Warn("Refusing to start plan with no steps")

		s.state = types.SequencerState{Content: types.ContentStartTx}
		s.outcome = types.TxOutcome{Result: types.ResultIdle}
		return s.epoch
	}

	s.state = types.SequencerState{
		Open:        true,
		CurrentStep: 0,
		Content:     types.ContentStartTx,
		Items:       plan.Steps,
		ChainID:     plan.ChainID,
	}
	s.outcome = types.TxOutcome{Result: types.ResultIdle}

	s.logger.WithFields(logrus.Fields{
		"planId":  plan.ID,
		"chainId": plan.ChainID,
		"steps":   len(plan.Steps),
		"epoch":   s.epoch,
	}).Info("Sequencer started new plan")

	return s.epoch
}

// Advance moves the pointer to the next step after the active step
// succeeded, or marks the plan complete when no next step exists. Calling
// Advance after completion is a no-op.
func (s *Sequencer) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Open || s.finished {
		return
	}

	if s.outcome.Result != types.ResultSuccess && s.outcome.Result != types.ResultSuccessPending {
		s.logger.WithFields(logrus.Fields{
			"step":   s.state.CurrentStep,
			"result": s.outcome.Result,
		}).Warn("Advance called before step success, ignoring")
		return
	}

	if s.state.CurrentStep+1 < len(s.state.Items) {
		s.state.CurrentStep++
		s.state.Content = types.ContentStartTx
		s.outcome = types.TxOutcome{Result: types.ResultIdle}
		return
	}

	s.state.Content = types.ContentSuccessTx
	s.finished = true
}

// Reset clears all state back to an empty, closed sequence and invalidates
// the current epoch. Used on user dismiss and when a quote re-check aborts
// the mechanical flow in favor of an explicit confirmation prompt.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.finished = false
	s.state = types.SequencerState{Content: types.ContentStartTx}
	s.outcome = types.TxOutcome{Result: types.ResultIdle}
}

// Epoch returns the current plan epoch.
func (s *Sequencer) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// State returns a snapshot of the sequencer state.
func (s *Sequencer) State() types.SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	state.Items = append([]types.Step(nil), s.state.Items...)
	return state
}

// Outcome returns the latest attempt's outcome for the active step.
func (s *Sequencer) Outcome() types.TxOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// CurrentStep returns the active step, or false when the sequencer is closed
// or the plan is finished.
func (s *Sequencer) CurrentStep() (types.Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Open || s.finished || s.state.CurrentStep >= len(s.state.Items) {
		return types.Step{}, false
	}
	return s.state.Items[s.state.CurrentStep], true
}

// SetContent transitions the active step's content state. The transition is
// applied only when the epoch is current and the move respects the
// forward-only ordering.
//
// Parameters:
// - epoch: the epoch the caller captured at submission time.
// - content: the content state to transition to.
//
// Returns:
// - bool: true if the transition was applied.
func (s *Sequencer) SetContent(epoch uint64, content types.StepContent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || !s.state.Open {
		return false
	}

	if !s.state.Content.CanTransitionTo(content) {
		s.logger.WithFields(logrus.Fields{
			"from": s.state.Content,
			"to":   content,
			"step": s.state.CurrentStep,
		}).Warn("Rejected backward step content transition")
		return false
	}

	if content == types.ContentBridgingTx {
		if s.state.CurrentStep >= len(s.state.Items) {
			return false
		}
		if s.state.Items[s.state.CurrentStep].Kind != types.StepBridge {
			return false
		}
	}

	s.state.Content = content
	return true
}

// SetOutcome records the latest attempt's outcome for the active step,
// overwriting any previous attempt. Stale-epoch outcomes are discarded.
//
// Parameters:
// - epoch: the epoch the caller captured at submission time.
// - outcome: the outcome to record.
//
// Returns:
// - bool: true if the outcome was recorded.
func (s *Sequencer) SetOutcome(epoch uint64, outcome types.TxOutcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || !s.state.Open {
		return false
	}

	s.outcome = outcome
	return true
}

// Finished reports whether the plan ran to completion.
func (s *Sequencer) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}
