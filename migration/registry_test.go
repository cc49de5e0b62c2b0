package migration

import (
	"context"
	"io"
	"testing"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
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

// stubMigrator returns canned updates and steps.
type stubMigrator struct {
	update      *Update
	updateErr   error
	steps       []types.Step
	updateCalls int
}

func (m *stubMigrator) Update(ctx context.Context, vault *types.Vault, walletAddress string) (*Update, error) {
	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.update, nil
}

func (m *stubMigrator) Execute(ctx context.Context, vault *types.Vault, walletAddress string, update *Update) ([]types.Step, error) {
	return m.steps, nil
}

func testVault() *types.Vault {
	return &types.Vault{
		ID:              "usdc-vault",
		ChainID:         1,
		ContractAddress: "0x1111111111111111111111111111111111111111",
		DepositToken: types.Token{
			ChainID:  1,
			Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			Decimals: 6,
			Symbol:   "USDC",
		},
	}
}

const testWallet = "0x2222222222222222222222222222222222222222"

func TestGetUnknownMigratorFails(t *testing.T) {
	registry := NewRegistry(testLogger(), map[ID]Migrator{})

	_, err := registry.Get(ID("unsupported-protocol"))
	require.Error(t, err)
	assert.True(t, commonerrors.IsMigratorNotFound(err))
}

func TestUpdateUserStoresRecord(t *testing.T) {
	migrator := &stubMigrator{update: &Update{Balance: decimal.NewFromFloat(12.5)}}
	registry := NewRegistry(testLogger(), map[ID]Migrator{IDGaugeStaking: migrator})

	record, err := registry.UpdateUser(context.Background(), IDGaugeStaking, testVault(), testWallet)
	require.NoError(t, err)
	assert.True(t, record.Balance.Equal(decimal.NewFromFloat(12.5)))
	assert.True(t, record.Initialized)

	cached, ok := registry.UserRecordFor(testWallet, "usdc-vault", IDGaugeStaking)
	require.True(t, ok)
	assert.True(t, cached.Balance.Equal(decimal.NewFromFloat(12.5)))
}

func TestUpdateUserOverwritesRecord(t *testing.T) {
	migrator := &stubMigrator{update: &Update{Balance: decimal.NewFromInt(100)}}
	registry := NewRegistry(testLogger(), map[ID]Migrator{IDGaugeStaking: migrator})

	_, err := registry.UpdateUser(context.Background(), IDGaugeStaking, testVault(), testWallet)
	require.NoError(t, err)

	migrator.update = &Update{Balance: decimal.Zero}
	_, err = registry.UpdateUser(context.Background(), IDGaugeStaking, testVault(), testWallet)
	require.NoError(t, err)

	cached, ok := registry.UserRecordFor(testWallet, "usdc-vault", IDGaugeStaking)
	require.True(t, ok)
	assert.True(t, cached.Balance.IsZero())
	assert.True(t, cached.Initialized)
}

func TestUpdateUserFailureLeavesNoRecord(t *testing.T) {
	migrator := &stubMigrator{updateErr: errors.New("rpc unavailable")}
	registry := NewRegistry(testLogger(), map[ID]Migrator{IDGaugeStaking: migrator})

	_, err := registry.UpdateUser(context.Background(), IDGaugeStaking, testVault(), testWallet)
	require.Error(t, err)

	_, ok := registry.UserRecordFor(testWallet, "usdc-vault", IDGaugeStaking)
	assert.False(t, ok)
}

func TestBuildPlanUnknownID(t *testing.T) {
	registry := NewRegistry(testLogger(), map[ID]Migrator{})

	_, err := registry.BuildPlan(context.Background(), ID("unsupported-protocol"), testVault(), testWallet)
	assert.True(t, commonerrors.IsMigratorNotFound(err))
}

func TestBuildPlanUpdatesWhenNoRecord(t *testing.T) {
	migrator := &stubMigrator{
		update: &Update{Balance: decimal.NewFromInt(50)},
		steps: []types.Step{
			{Kind: types.StepMigration, HumanMessage: "Unstake USDC from the gauge"},
			{Kind: types.StepDeposit, HumanMessage: "Deposit USDC into the vault"},
		},
	}
	registry := NewRegistry(testLogger(), map[ID]Migrator{IDGaugeStaking: migrator})

	plan, err := registry.BuildPlan(context.Background(), IDGaugeStaking, testVault(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, 1, migrator.updateCalls)
	assert.Equal(t, uint64(1), plan.ChainID)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, types.StepMigration, plan.Steps[0].Kind)
	assert.Equal(t, types.StepDeposit, plan.Steps[1].Kind)
}

func TestBuildPlanReusesCachedRecord(t *testing.T) {
	migrator := &stubMigrator{
		update: &Update{Balance: decimal.NewFromInt(50)},
		steps:  []types.Step{{Kind: types.StepMigration}},
	}
	registry := NewRegistry(testLogger(), map[ID]Migrator{IDGaugeStaking: migrator})

	_, err := registry.UpdateUser(context.Background(), IDGaugeStaking, testVault(), testWallet)
	require.NoError(t, err)

	_, err = registry.BuildPlan(context.Background(), IDGaugeStaking, testVault(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, 1, migrator.updateCalls)
}
