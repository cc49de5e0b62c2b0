package evm

import (
	"context"
	"math/big"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const (
	// legacyGasPriceBump is the percentage applied over the suggested legacy
	// gas price.
	legacyGasPriceBump = 150
	// baseFeeBump is the percentage applied over the current base fee when
	// computing the EIP-1559 fee cap.
	baseFeeBump = 130
)

// EstimateGas estimates the gas required for a transaction.
//
// Parameters:
// - ctx: the context for managing the request.
// - toAddress: the recipient address of the transaction.
// - value: the native amount to send with the transaction.
// - data: the input data for the transaction.
//
// Returns:
// - uint64: the estimated gas required for the transaction.
// - error: an error if the client is not initialized or estimation fails.
func (e *evm) EstimateGas(ctx context.Context, toAddress string, value *big.Int, data []byte) (uint64, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	e.signerMutex.RLock()
	walletSigner := e.signer
	e.signerMutex.RUnlock()

	if client == nil {
		return 0, errors.New("client not initialized")
	}

	to := common.HexToAddress(toAddress)
	msg := ethereum.CallMsg{
		To:    &to,
		Value: value,
		Data:  data,
	}
	if walletSigner != nil {
		msg.From = walletSigner.Address()
	}

	return client.EstimateGas(ctx, msg)
}

// GetGasPrice returns the current gas price for the chain under its
// configured fee model.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - *types.GasPrice: the gas price tagged with the chain's fee model.
// - error: an error if the gas price retrieval fails.
func (e *evm) GetGasPrice(ctx context.Context) (*types.GasPrice, error) {
	switch e.config.GasModel {
	case types.GasModelStandard:
		return e.getStandardGasPrice(ctx)
	case types.GasModelEIP1559:
		return e.getEIP1559GasPrice(ctx)
	case types.GasModelMinimum:
		return e.getMinimumGasPrice(ctx)
	default:
		return nil, commonerrors.ErrInvalidGasModel
	}
}

// getStandardGasPrice retrieves the legacy suggested gas price with a bump.
func (e *evm) getStandardGasPrice(ctx context.Context) (*types.GasPrice, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}

	gasPrice = new(big.Int).Mul(gasPrice, big.NewInt(legacyGasPriceBump))
	gasPrice = new(big.Int).Div(gasPrice, big.NewInt(100))

	return &types.GasPrice{
		Model: types.GasModelStandard,
		Price: gasPrice,
	}, nil
}

// getEIP1559GasPrice retrieves the gas price data for EIP-1559 chains.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - *types.GasPrice: the fee cap and priority tip.
// - error: an error if the client is not initialized or retrieval fails.
func (e *evm) getEIP1559GasPrice(ctx context.Context) (*types.GasPrice, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	suggestedTip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Failed to get suggested gas tip")
		suggestedTip = big.NewInt(1)
	}

	if suggestedTip.Cmp(big.NewInt(0)) == 0 {
		suggestedTip = big.NewInt(1)
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		e.logger.WithField("chain", e.config.Name).WithError(err).Warn("Failed to get header by number")
		return nil, errors.Wrap(err, "failed to get header by number")
	}

	baseFee := header.BaseFee
	if baseFee == nil {
		e.logger.WithField("chain", e.config.Name).Warn("Base fee is nil")
		return nil, errors.New("base fee is nil")
	}

	baseFeeBuf := new(big.Int).Mul(baseFee, big.NewInt(baseFeeBump))
	baseFeeBuf = baseFeeBuf.Div(baseFeeBuf, big.NewInt(100))
	maxFeePerGas := new(big.Int).Add(baseFeeBuf, suggestedTip)

	if maxFeePerGas.Cmp(suggestedTip) <= 0 {
		maxFeePerGas = new(big.Int).Add(suggestedTip, baseFee)
	}

	return &types.GasPrice{
		Model:                types.GasModelEIP1559,
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: suggestedTip,
	}, nil
}

// getMinimumGasPrice retrieves the gas price for chains that lack standard
// fee-history RPCs and instead expose a chain-specific minimum price method.
func (e *evm) getMinimumGasPrice(ctx context.Context) (*types.GasPrice, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	if e.config.MinGasPriceMethod == "" {
		return nil, commonerrors.ErrInvalidConfig
	}

	var result string
	if err := client.Client().CallContext(ctx, &result, e.config.MinGasPriceMethod); err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", e.config.MinGasPriceMethod)
	}

	minPrice, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode minimum gas price")
	}

	return &types.GasPrice{
		Model: types.GasModelMinimum,
		Price: minPrice,
	}, nil
}
