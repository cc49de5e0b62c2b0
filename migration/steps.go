package migration

import (
	"context"
	"math/big"
	"strings"

	"github.com/ClipFinance/orchestrator-lib/chains/evm/generated"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/txtracker"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// parseABI parses an inline ABI fragment.
func parseABI(raw string) (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return abi.ABI{}, errors.Wrap(err, "failed to parse ABI")
	}
	return parsed, nil
}

// submitStepAction builds a step action that submits one contract call
// through the transaction lifecycle.
func submitStepAction(lifecycle *txtracker.Lifecycle, client types.Client, call *types.CallData, refresh []txtracker.Effect) types.StepAction {
	return func(ctx context.Context) error {
		_, err := lifecycle.Track(ctx, client, func(ctx context.Context) (*types.SubmittedTx, error) {
			return client.Submit(ctx, call)
		}, txtracker.TrackOptions{Refresh: refresh})
		return err
	}
}

// buildApproveStep builds an "approve" step for the vault's deposit token
// when the vault's current allowance is insufficient for amount. It returns
// false when the existing allowance already covers the redeposit.
func buildApproveStep(
	ctx context.Context,
	lifecycle *txtracker.Lifecycle,
	client types.Client,
	erc20Abi abi.ABI,
	vault *types.Vault,
	walletAddress string,
	amount decimal.Decimal,
) (types.Step, bool, error) {
	allowance, err := client.Allowance(ctx, vault.DepositToken, walletAddress, vault.ContractAddress)
	if err != nil {
		return types.Step{}, false, errors.Wrap(err, "failed to read vault allowance")
	}

	if allowance.Cmp(amount) >= 0 {
		return types.Step{}, false, nil
	}

	amountWei := types.ToWei(amount, vault.DepositToken.Decimals)
	data, err := erc20Abi.Pack("approve", common.HexToAddress(vault.ContractAddress), amountWei)
	if err != nil {
		return types.Step{}, false, errors.Wrap(err, "failed to pack approve data")
	}

	call := &types.CallData{
		ChainID: vault.ChainID,
		To:      vault.DepositToken.Address,
		Value:   big.NewInt(0),
		Data:    data,
	}

	return types.Step{
		Kind:         types.StepApprove,
		HumanMessage: "Approve " + vault.DepositToken.Symbol + " spending",
		Action:       submitStepAction(lifecycle, client, call, nil),
		Extra:        &types.StepExtra{VaultID: vault.ID},
	}, true, nil
}

// buildDepositStep builds the final "deposit into this vault" step for the
// unstaked balance.
func buildDepositStep(
	lifecycle *txtracker.Lifecycle,
	client types.Client,
	vaultAbi abi.ABI,
	vault *types.Vault,
	amount decimal.Decimal,
	refresh []txtracker.Effect,
) (types.Step, error) {
	amountWei := types.ToWei(amount, vault.DepositToken.Decimals)
	data, err := vaultAbi.Pack("deposit", amountWei)
	if err != nil {
		return types.Step{}, errors.Wrap(err, "failed to pack deposit data")
	}

	call := &types.CallData{
		ChainID: vault.ChainID,
		To:      vault.ContractAddress,
		Value:   big.NewInt(0),
		Data:    data,
	}

	return types.Step{
		Kind:         types.StepDeposit,
		HumanMessage: "Deposit " + vault.DepositToken.Symbol + " into the vault",
		Action:       submitStepAction(lifecycle, client, call, refresh),
		Extra:        &types.StepExtra{VaultID: vault.ID},
	}, nil
}

// erc20ABIFragment exposes the shared ERC20 fragment to migrator
// constructors.
func erc20ABIFragment() (abi.ABI, error) {
	return parseABI(generated.ERC20ABI)
}
