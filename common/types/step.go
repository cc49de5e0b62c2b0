package types

import (
	"context"

	"github.com/google/uuid"
)

// StepKind enumerates every planned operation the orchestrator knows how to
// sequence. The set is closed: planners must not invent kinds at runtime.
type StepKind string

const (
	StepApprove                StepKind = "approve"
	StepDeposit                StepKind = "deposit"
	StepDepositGov             StepKind = "deposit-gov"
	StepWithdraw               StepKind = "withdraw"
	StepRequestWithdraw        StepKind = "request-withdraw"
	StepFulfillRequestWithdraw StepKind = "fulfill-request-withdraw"
	StepClaimRewards           StepKind = "claim-rewards"
	StepClaimGov               StepKind = "claim-gov"
	StepMint                   StepKind = "mint"
	StepBurn                   StepKind = "burn"
	StepBridge                 StepKind = "bridge"
	StepZapIn                  StepKind = "zap-in"
	StepZapOut                 StepKind = "zap-out"
	StepMigration              StepKind = "migration"
	StepBoostStake             StepKind = "boost-stake"
	StepBoostUnstake           StepKind = "boost-unstake"
	StepRedeem                 StepKind = "redeem"
)

// StepAction is the opaque async operation attached to a step. The sequencer
// never invokes actions itself; the caller driving the plan does, once the
// step pointer lands on the step.
type StepAction func(ctx context.Context) error

// StepExtra carries the step metadata consumed by UI surfaces.
//
// Fields:
// - VaultID: the vault the step operates on, if any.
// - CrossChain: true when the step's completion is observed on another chain.
type StepExtra struct {
	VaultID    string
	CrossChain bool
}

// Step is one planned on-chain or off-chain action within a multi-step user
// flow. Steps are immutable once planned, except for the Pending flag.
type Step struct {
	Kind         StepKind
	HumanMessage string
	Action       StepAction
	Pending      bool
	Extra        *StepExtra
}

// Plan is an ordered list of steps targeting one chain. A plan is created by
// a planner at user-initiated action time and replaced wholesale when the
// user resets, closes, or starts a new flow.
type Plan struct {
	ID      uuid.UUID
	ChainID uint64
	Steps   []Step
}

// NewPlan creates a plan with a fresh identity token.
//
// Parameters:
// - chainID: the chain the plan executes on.
// - steps: the ordered steps of the plan.
//
// Returns:
// - *Plan: the new plan.
func NewPlan(chainID uint64, steps []Step) *Plan {
	return &Plan{
		ID:      uuid.New(),
		ChainID: chainID,
		Steps:   steps,
	}
}
