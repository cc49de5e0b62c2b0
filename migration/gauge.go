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

// gaugeData is the protocol-specific context a gauge update carries into
// execute: the gauge the balance was found in.
type gaugeData struct {
	GaugeAddress string
}

// GaugeMigrator unwinds stakes from protocols that keep one gauge contract
// per LP token, resolved through a per-chain gauge factory. Some
// integrations deploy more than one candidate gauge per asset; candidates
// are probed in a fixed order and the first one holding a non-zero user
// balance wins.
type GaugeMigrator struct {
	logger    *logrus.Logger
	clients   types.ClientRegistry
	lifecycle *txtracker.Lifecycle

	// factories maps chain id to the gauge factory address on that chain.
	factories map[uint64]string
	// extraGauges maps vault id to candidate gauges that are not registered
	// in the factory. Ordering is significant.
	extraGauges map[string][]string

	factoryAbi abi.ABI
	gaugeAbi   abi.ABI
	vaultAbi   abi.ABI
	erc20Abi   abi.ABI
}

// NewGaugeMigrator creates a gauge-style migrator.
//
// Parameters:
// - logger: the logger for logging events.
// - clients: the registry of chain clients.
// - lifecycle: the transaction lifecycle driving unwind steps.
// - factories: gauge factory addresses keyed by chain id.
// - extraGauges: extra candidate gauges keyed by vault id.
//
// Returns:
// - *GaugeMigrator: the new migrator.
// - error: an error if an ABI fragment fails to parse.
func NewGaugeMigrator(
	logger *logrus.Logger,
	clients types.ClientRegistry,
	lifecycle *txtracker.Lifecycle,
	factories map[uint64]string,
	extraGauges map[string][]string,
) (*GaugeMigrator, error) {
	factoryAbi, err := parseABI(gaugeFactoryABI)
	if err != nil {
		return nil, err
	}
	gaugeAbi, err := parseABI(gaugeABI)
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

	return &GaugeMigrator{
		logger:      logger,
		clients:     clients,
		lifecycle:   lifecycle,
		factories:   factories,
		extraGauges: extraGauges,
		factoryAbi:  factoryAbi,
		gaugeAbi:    gaugeAbi,
		vaultAbi:    vaultAbi,
		erc20Abi:    erc20Abi,
	}, nil
}

// Update resolves the candidate gauges for the vault's deposit token and
// probes them for the user's staked balance. A vault with no gauge deployed
// yields a zero balance, never an error.
func (m *GaugeMigrator) Update(ctx context.Context, vault *types.Vault, walletAddress string) (*Update, error) {
	client := m.clients.Get(vault.ChainID)
	if client == nil {
		return nil, commonerrors.ErrChainNotFound
	}

	candidates, err := m.candidateGauges(ctx, client, vault)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Update{Balance: decimal.Zero}, nil
	}

	selected := ""
	selectedBalance := decimal.Zero
	nonZero := 0

	for _, gauge := range candidates {
		balance, err := m.stakedBalance(ctx, client, gauge, walletAddress, vault.DepositToken.Decimals)
		if err != nil {
			return nil, err
		}
		if balance.IsZero() {
			continue
		}

		nonZero++
		if selected == "" {
			selected = gauge
			selectedBalance = balance
		}
	}

	// More than one candidate holding a balance indicates inconsistent
	// external state; the unstake still acts on the first match so the flow
	// stays deterministic.
	if nonZero > 1 {
		m.logger.WithFields(logrus.Fields{
			"vaultId":    vault.ID,
			"wallet":     walletAddress,
			"candidates": nonZero,
		}).Warn("Multiple candidate gauges report non-zero balance")
	}

	if selected == "" {
		return &Update{Balance: decimal.Zero}, nil
	}

	return &Update{
		Balance: selectedBalance,
		Data:    gaugeData{GaugeAddress: selected},
	}, nil
}

// Execute builds the unstake, optional approve, and deposit steps for the
// user's staked balance.
func (m *GaugeMigrator) Execute(ctx context.Context, vault *types.Vault, walletAddress string, update *Update) ([]types.Step, error) {
	if update == nil || update.Balance.IsZero() {
		return nil, errors.New("no staked balance to migrate")
	}

	data, ok := update.Data.(gaugeData)
	if !ok || data.GaugeAddress == "" {
		return nil, errors.New("gauge address missing from migration update")
	}

	client := m.clients.Get(vault.ChainID)
	if client == nil {
		return nil, commonerrors.ErrChainNotFound
	}

	amountWei := types.ToWei(update.Balance, vault.DepositToken.Decimals)
	unstakeData, err := m.gaugeAbi.Pack("withdraw", amountWei)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack gauge withdraw data")
	}

	steps := []types.Step{{
		Kind:         types.StepMigration,
		HumanMessage: "Unstake " + vault.DepositToken.Symbol + " from the gauge",
		Action: submitStepAction(m.lifecycle, client, &types.CallData{
			ChainID: vault.ChainID,
			To:      data.GaugeAddress,
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
		Name: "gauge-migration-requery",
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

// candidateGauges resolves the fixed-order candidate list: the
// factory-registered gauge first, then any configured extras.
func (m *GaugeMigrator) candidateGauges(ctx context.Context, client types.Client, vault *types.Vault) ([]string, error) {
	var candidates []string

	factory, ok := m.factories[vault.ChainID]
	if ok && factory != "" {
		data, err := m.factoryAbi.Pack("getGauge", common.HexToAddress(vault.DepositToken.Address))
		if err != nil {
			return nil, errors.Wrap(err, "failed to pack getGauge data")
		}

		result, err := client.CallContract(ctx, factory, data)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve gauge from factory")
		}

		// An empty result means no factory is deployed at the address on
		// this chain; the vault simply has no factory gauge.
		if len(result) > 0 {
			gauge := common.BytesToAddress(result)
			if gauge != (common.Address{}) {
				candidates = append(candidates, gauge.Hex())
			}
		}
	}

	candidates = append(candidates, m.extraGauges[vault.ID]...)
	return candidates, nil
}

// stakedBalance reads the user's balance in one gauge. An empty call result
// means the gauge contract does not exist, which reads as zero.
func (m *GaugeMigrator) stakedBalance(ctx context.Context, client types.Client, gauge, walletAddress string, decimals int32) (decimal.Decimal, error) {
	data, err := m.gaugeAbi.Pack("balanceOf", common.HexToAddress(walletAddress))
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to pack balanceOf data")
	}

	result, err := client.CallContract(ctx, gauge, data)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to read gauge balance")
	}
	if len(result) == 0 {
		return decimal.Zero, nil
	}

	return types.FromWei(new(big.Int).SetBytes(result), decimals), nil
}
