package migration

import (
	"context"
	"sync"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/sirupsen/logrus"
)

// recordKey keys cached user records.
type recordKey struct {
	wallet      string
	vaultID     string
	migrationID ID
}

// Registry is the catalog of supported external protocol migrators plus the
// per-user balance records their updates produce. The migrator table is
// fixed at construction; resolving an unknown id is a hard error, never a
// silent no-op.
type Registry struct {
	logger    *logrus.Logger
	migrators map[ID]Migrator

	recordsMutex sync.RWMutex
	records      map[recordKey]*UserRecord
}

// NewRegistry creates a registry over a fixed migrator table.
//
// Parameters:
// - logger: the logger for logging events.
// - migrators: the compile-time table of supported migrators.
//
// Returns:
// - *Registry: the new registry.
func NewRegistry(logger *logrus.Logger, migrators map[ID]Migrator) *Registry {
	table := make(map[ID]Migrator, len(migrators))
	for id, m := range migrators {
		table[id] = m
	}

	return &Registry{
		logger:    logger,
		migrators: table,
		records:   make(map[recordKey]*UserRecord),
	}
}

// Get resolves a migrator by id.
//
// Parameters:
// - id: the migration id to resolve.
//
// Returns:
// - Migrator: the resolved migrator.
// - error: MigratorNotFoundError when the id is unknown.
func (r *Registry) Get(id ID) (Migrator, error) {
	migrator, ok := r.migrators[id]
	if !ok {
		return nil, &commonerrors.MigratorNotFoundError{ID: string(id)}
	}
	return migrator, nil
}

// UpdateUser runs the migrator's update for one (wallet, vault) pair and
// stores the result, overwriting any previous record for the same key.
//
// Parameters:
// - ctx: the context for managing the request.
// - id: the migration id to update.
// - vault: the vault the migration targets.
// - walletAddress: the user's wallet address.
//
// Returns:
// - *UserRecord: the stored record.
// - error: an error if the id is unknown or the update fails.
func (r *Registry) UpdateUser(ctx context.Context, id ID, vault *types.Vault, walletAddress string) (*UserRecord, error) {
	migrator, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	update, err := migrator.Update(ctx, vault, walletAddress)
	if err != nil {
		return nil, err
	}

	record := &UserRecord{
		WalletAddress: walletAddress,
		VaultID:       vault.ID,
		MigrationID:   id,
		Balance:       update.Balance,
		Initialized:   true,
		Data:          update.Data,
	}

	key := recordKey{wallet: walletAddress, vaultID: vault.ID, migrationID: id}

	r.recordsMutex.Lock()
	r.records[key] = record
	r.recordsMutex.Unlock()

	r.logger.WithFields(logrus.Fields{
		"migrationId": id,
		"vaultId":     vault.ID,
		"wallet":      walletAddress,
		"balance":     update.Balance,
	}).Debug("Migration balance updated")

	return record, nil
}

// UserRecordFor returns the cached record for one key, if any update has
// succeeded for it yet.
func (r *Registry) UserRecordFor(walletAddress, vaultID string, id ID) (*UserRecord, bool) {
	r.recordsMutex.RLock()
	record, ok := r.records[recordKey{wallet: walletAddress, vaultID: vaultID, migrationID: id}]
	r.recordsMutex.RUnlock()
	return record, ok
}

// BuildPlan resolves the migrator, builds its unwind steps from the latest
// update, and packages them as a plan for the step sequencer. Migration is a
// specialization of step planning, not a separate execution path.
//
// Parameters:
// - ctx: the context for managing the request.
// - id: the migration id to execute.
// - vault: the vault the migration targets.
// - walletAddress: the user's wallet address.
//
// Returns:
// - *types.Plan: the migration plan.
// - error: an error if the id is unknown, no update exists, or step building fails.
func (r *Registry) BuildPlan(ctx context.Context, id ID, vault *types.Vault, walletAddress string) (*types.Plan, error) {
	migrator, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	record, ok := r.UserRecordFor(walletAddress, vault.ID, id)
	if !ok {
		updated, err := r.UpdateUser(ctx, id, vault, walletAddress)
		if err != nil {
			return nil, err
		}
		record = updated
	}

	steps, err := migrator.Execute(ctx, vault, walletAddress, &Update{Balance: record.Balance, Data: record.Data})
	if err != nil {
		return nil, err
	}

	return types.NewPlan(vault.ChainID, steps), nil
}
