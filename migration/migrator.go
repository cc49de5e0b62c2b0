package migration

import (
	"context"

	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/shopspring/decimal"
)

// ID identifies one supported external staking protocol. The set is closed;
// unknown ids are rejected at the registry boundary.
type ID string

const (
	// IDGaugeStaking covers protocols that stake LP tokens in per-asset gauge
	// contracts resolved through a factory.
	IDGaugeStaking ID = "gauge-staking"
	// IDChefStaking covers protocols that stake LP tokens in numbered pools
	// of a single chef contract.
	IDChefStaking ID = "chef-staking"
)

// Registration describes one supported external protocol for display
// purposes. Registrations are static: loaded once at startup, never mutated.
type Registration struct {
	ID          ID
	DisplayName string
	Icon        string
}

// Update is the result of one read-only staked balance query.
//
// Fields:
// - Balance: the user's staked balance in human units of the deposit token.
// - Data: protocol-specific context the migrator needs again at execute time
//   (resolved gauge address, selected pool id).
type Update struct {
	Balance decimal.Decimal
	Data    interface{}
}

// UserRecord caches the latest successful update for one
// (wallet, vault, migration) key. Records are created lazily on first
// successful update and overwritten on every subsequent one; they are never
// independently deleted.
type UserRecord struct {
	WalletAddress string
	VaultID       string
	MigrationID   ID
	Balance       decimal.Decimal
	Initialized   bool
	Data          interface{}
}

// Migrator is a pluggable adapter that knows how to read a user's stake in
// one specific external protocol and unwind it into this vault.
type Migrator interface {
	// Update queries the user's staked balance in the external protocol. It
	// must tolerate the staking contract not existing for the vault (zero
	// balance, not an error) and must be idempotent with no side effects.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - vault: the vault the migration targets.
	// - walletAddress: the user's wallet address.
	//
	// Returns:
	// - *Update: the staked balance plus protocol-specific context.
	// - error: an error if the query itself fails.
	Update(ctx context.Context, vault *types.Vault, walletAddress string) (*Update, error)

	// Execute builds the ordered steps unwinding the user's external stake:
	// an unstake step, an approve step when the vault's current allowance is
	// insufficient for the balance, and a deposit step into the vault. The
	// returned steps are handed to the step sequencer as a single plan.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - vault: the vault the migration targets.
	// - walletAddress: the user's wallet address.
	// - update: the latest update for this user and vault.
	//
	// Returns:
	// - []types.Step: the ordered migration steps.
	// - error: an error if the steps cannot be built.
	Execute(ctx context.Context, vault *types.Vault, walletAddress string, update *Update) ([]types.Step, error)
}
