package migration

import (
	"context"
	"math/big"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/txtracker"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// chefData is the protocol-specific context a chef update carries into
// execute: the pool the balance was found in.
type chefData struct {
	PoolID uint64
}

// ChefMigrator unwinds stakes from protocols that keep all stakes in
// numbered pools of a single chef contract. Some assets are listed under
// more than one pool id; candidate pools are probed in their configured
// order and the first pool holding a non-zero user balance wins.
type ChefMigrator struct {
	logger    *logrus.Logger
	clients   types.ClientRegistry
	lifecycle *txtracker.Lifecycle

	// chefs maps chain id to the chef contract address on that chain.
	chefs map[uint64]string
	// pools maps vault id to candidate pool ids. Ordering is significant.
	pools map[string][]uint64

	chefAbi  abi.ABI
	vaultAbi abi.ABI
	erc20Abi abi.ABI
}

// NewChefMigrator creates a chef-style migrator.
//
// Parameters:
// - logger: the logger for logging events.
// - clients: the registry of chain clients.
// - lifecycle: the transaction lifecycle driving unwind steps.
// - chefs: chef contract addresses keyed by chain id.
// - pools: candidate pool ids keyed by vault id.
//
// Returns:
// - *ChefMigrator: the new migrator.
// - error: an error if an ABI fragment fails to parse.
func NewChefMigrator(
	logger *logrus.Logger,
	clients types.ClientRegistry,
	lifecycle *txtracker.Lifecycle,
	chefs map[uint64]string,
	pools map[string][]uint64,
) (*ChefMigrator, error) {
	chefAbi, err := parseABI(chefABI)
	if err != nil {
		return nil, err
	}
	vaultAbi, err := parseABI(vaultABI)
	if err != nil {
		return nil, err
	}
	erc20Abi, err := erc20ABIFragment()
	if err != nil {
		return nil, err
	}

	return &ChefMigrator{
		logger:    logger,
		clients:   clients,
		lifecycle: lifecycle,
		chefs:     chefs,
		pools:     pools,
		chefAbi:   chefAbi,
		vaultAbi:  vaultAbi,
		erc20Abi:  erc20Abi,
	}, nil
}

// Update probes the vault's candidate pools for the user's staked balance.
// A vault with no chef deployed or no pools configured yields a zero
// balance, never an error.
func (m *ChefMigrator) Update(ctx context.Context, vault *types.Vault, walletAddress string) (*Update, error) {
	client := m.clients.Get(vault.ChainID)
	if client == nil {
		return nil, commonerrors.ErrChainNotFound
	}

	chef, ok := m.chefs[vault.ChainID]
	candidates := m.pools[vault.ID]
	if !ok || chef == "" || len(candidates) == 0 {
		return &Update{Balance: decimal.Zero}, nil
	}

	selected := uint64(0)
	selectedBalance := decimal.Zero
	nonZero := 0

	for _, pid := range candidates {
		balance, err := m.poolBalance(ctx, client, chef, pid, walletAddress, vault.DepositToken.Decimals)
		if err != nil {
			return nil, err
		}
		if balance.IsZero() {
			continue
		}

		nonZero++
		if nonZero == 1 {
			selected = pid
			selectedBalance = balance
		}
	}

	if nonZero > 1 {
		m.logger.WithFields(logrus.Fields{
			"vaultId": vault.ID,
			"wallet":  walletAddress,
			"pools":   nonZero,
		}).Warn("Multiple candidate pools report non-zero balance")
	}

	if nonZero == 0 {
		return &Update{Balance: decimal.Zero}, nil
	}

	return &Update{
		Balance: selectedBalance,
		Data:    chefData{PoolID: selected},
	}, nil
}

// Execute builds the unstake, optional approve, and deposit steps for the
// user's staked balance.
func (m *ChefMigrator) Execute(ctx context.Context, vault *types.Vault, walletAddress string, update *Update) ([]types.Step, error) {
	if update == nil || update.Balance.IsZero() {
		return nil, errors.New("no staked balance to migrate")
	}

	data, ok := update.Data.(chefData)
	if !ok {
		return nil, errors.New("pool id missing from migration update")
	}

	client := m.clients.Get(vault.ChainID)
	if client == nil {
		return nil, commonerrors.ErrChainNotFound
	}

	chef := m.chefs[vault.ChainID]
	if chef == "" {
		return nil, errors.New("chef contract not configured for chain")
	}

	amountWei := types.ToWei(update.Balance, vault.DepositToken.Decimals)
	unstakeData, err := m.chefAbi.Pack("withdraw", new(big.Int).SetUint64(data.PoolID), amountWei)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack chef withdraw data")
	}

	steps := []types.Step{{
		Kind:         types.StepMigration,
		HumanMessage: "Unstake " + vault.DepositToken.Symbol + " from the chef pool",
		Action: submitStepAction(m.lifecycle, client, &types.CallData{
			ChainID: vault.ChainID,
			To:      chef,
			Value:   big.NewInt(0),
			Data:    unstakeData,
		}, nil),
		Extra: &types.StepExtra{VaultID: vault.ID},
	}}

	approveStep, needed, err := buildApproveStep(ctx, m.lifecycle, client, m.erc20Abi, vault, walletAddress, update.Balance)
	if err != nil {
		return nil, err
	}
	if needed {
		steps = append(steps, approveStep)
	}

	depositStep, err := buildDepositStep(m.lifecycle, client, m.vaultAbi, vault, update.Balance, []txtracker.Effect{{
		Name: "chef-migration-requery",
		Run: func(ctx context.Context) error {
			_, err := m.Update(ctx, vault, walletAddress)
			return err
		},
	}})
	if err != nil {
		return nil, err
	}

	return append(steps, depositStep), nil
}

// poolBalance reads the user's staked amount in one chef pool. An empty call
// result means the chef does not recognize the pool, which reads as zero.
func (m *ChefMigrator) poolBalance(ctx context.Context, client types.Client, chef string, pid uint64, walletAddress string, decimals int32) (decimal.Decimal, error) {
	data, err := m.chefAbi.Pack("userInfo", new(big.Int).SetUint64(pid), common.HexToAddress(walletAddress))
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to pack userInfo data")
	}

	result, err := client.CallContract(ctx, chef, data)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to read pool balance")
	}
	if len(result) == 0 {
		return decimal.Zero, nil
	}

	values, err := m.chefAbi.Unpack("userInfo", result)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to unpack userInfo result")
	}
	if len(values) == 0 {
		return decimal.Zero, nil
	}

	amount, ok := values[0].(*big.Int)
	if !ok {
		return decimal.Zero, errors.New("unexpected userInfo amount type")
	}

	return types.FromWei(amount, decimals), nil
}
