package evm

import (
	"context"
	"math/big"
	"strings"

	"github.com/ClipFinance/orchestrator-lib/chains/evm/generated"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TokenBalance gets the balance of address in the given token, in the
// token's smallest unit. For native balances, use tokenAddress as the empty
// string.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the address to check balance for.
// - tokenAddress: the token contract address.
//
// Returns:
// - *big.Int: the token balance.
// - error: an error if the balance check fails.
func (e *evm) TokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	// Check if requesting native token balance
	if tokenAddress == types.NativeAddress {
		balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get native token balance")
		}
		return balance, nil
	}

	tokenAbi, err := abi.JSON(strings.NewReader(generated.ERC20ABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token ABI")
	}

	data, err := tokenAbi.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack balanceOf data")
	}

	result, err := e.CallContract(ctx, tokenAddress, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call balanceOf")
	}

	if len(result) == 0 {
		return nil, errors.New("empty result from balanceOf call")
	}

	balance := new(big.Int)
	balance.SetBytes(result)

	return balance, nil
}

// Allowance reads the current allowance of spender over owner's tokens,
// denominated in the token's human units.
//
// Parameters:
// - ctx: the context for managing the request.
// - token: the token to read the allowance of.
// - owner: the token owner address.
// - spender: the spender address.
//
// Returns:
// - decimal.Decimal: the current allowance.
// - error: an error if the allowance read fails.
func (e *evm) Allowance(ctx context.Context, token types.Token, owner, spender string) (decimal.Decimal, error) {
	if token.IsNative() {
		return decimal.Zero, errors.New("native asset has no allowance")
	}

	tokenAbi, err := abi.JSON(strings.NewReader(generated.ERC20ABI))
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to parse token ABI")
	}

	data, err := tokenAbi.Pack("allowance", common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to pack allowance data")
	}

	result, err := e.CallContract(ctx, token.Address, data)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to call allowance")
	}

	if len(result) == 0 {
		return decimal.Zero, errors.New("empty result from allowance call")
	}

	return types.FromWei(new(big.Int).SetBytes(result), token.Decimals), nil
}

// CallContract executes a read-only call against the given contract.
//
// Parameters:
// - ctx: the context for managing the request.
// - to: the contract address to call.
// - data: the ABI-encoded input data.
//
// Returns:
// - []byte: the raw return data.
// - error: an error if the call fails.
func (e *evm) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	contractAddr := common.HexToAddress(to)
	return client.CallContract(ctx, ethereum.CallMsg{
		To:   &contractAddr,
		Data: data,
	}, nil)
}
