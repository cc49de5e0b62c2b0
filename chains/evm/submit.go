package evm

import (
	"context"
	"math/big"

	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Submit signs and submits a contract call through the connected wallet's
// signer.
//
// Parameters:
// - ctx: the context for managing the request.
// - call: the contract call to submit.
//
// Returns:
// - *types.SubmittedTx: the submitted transaction details.
// - error: an error if the client or signer is not initialized or if the
//   preparation, signing, or sending fails.
func (e *evm) Submit(ctx context.Context, call *types.CallData) (*types.SubmittedTx, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	e.signerMutex.RLock()
	walletSigner := e.signer
	e.signerMutex.RUnlock()

	if client == nil || walletSigner == nil {
		return nil, errors.New("client or signer not initialized")
	}

	nonce, err := client.PendingNonceAt(ctx, walletSigner.Address())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get nonce")
	}

	tx, err := e.prepareTransaction(ctx, nonce, call)
	if err != nil {
		return nil, err
	}

	signedTx, err := e.signAndSendTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &types.SubmittedTx{
		Hash:    signedTx.Hash().Hex(),
		From:    walletSigner.Address().Hex(),
		Nonce:   nonce,
		ChainID: e.config.ChainID,
	}, nil
}

// prepareTransaction builds an unsigned transaction for the call under the
// chain's configured gas model.
//
// Parameters:
// - ctx: the context for managing the request.
// - nonce: the nonce for the transaction.
// - call: the contract call to prepare.
//
// Returns:
// - *ethtypes.Transaction: the prepared transaction.
// - error: an error if the gas estimation or gas price retrieval fails.
func (e *evm) prepareTransaction(ctx context.Context, nonce uint64, call *types.CallData) (*ethtypes.Transaction, error) {
	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit := call.GasLimit
	if gasLimit == 0 {
		estimatedGas, err := e.EstimateGas(ctx, call.To, value, call.Data)
		if err != nil {
			e.logger.WithField("chain", e.config.Name).WithError(err).Warn("Failed to estimate gas")
			return nil, errors.Wrap(err, "failed to estimate gas")
		}
		gasLimit = uint64(float64(estimatedGas) * gasLimitHeadroom)
	}

	gasPrice, err := e.GetGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}

	to := common.HexToAddress(call.To)

	if gasPrice.Model == types.GasModelEIP1559 {
		return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:   big.NewInt(0).SetUint64(e.config.ChainID),
			Nonce:     nonce,
			GasFeeCap: gasPrice.MaxFeePerGas,
			GasTipCap: gasPrice.MaxPriorityFeePerGas,
			Gas:       gasLimit,
			To:        &to,
			Value:     value,
			Data:      call.Data,
		}), nil
	}

	return ethtypes.NewTransaction(
		nonce,
		to,
		value,
		gasLimit,
		gasPrice.Price,
		call.Data,
	), nil
}

// signAndSendTransaction signs and sends the prepared transaction.
//
// Parameters:
// - ctx: the context for managing the request.
// - tx: the prepared transaction to be signed and sent.
//
// Returns:
// - *ethtypes.Transaction: the signed and sent transaction.
// - error: an error if the client or signer is not initialized, or if the
//   signing or sending fails.
func (e *evm) signAndSendTransaction(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	e.signerMutex.RLock()
	walletSigner := e.signer
	e.signerMutex.RUnlock()

	if client == nil || walletSigner == nil {
		return nil, errors.New("client or signer not initialized")
	}

	chainID := big.NewInt(0).SetUint64(e.config.ChainID)

	signedTx, err := walletSigner.SignTx(tx, chainID)
	if err != nil {
		e.logger.WithError(err).Error("Failed to sign transaction")
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err = client.SendTransaction(ctx, signedTx); err != nil {
		e.logger.WithError(err).Error("Failed to send transaction")
		return nil, errors.Wrap(err, "failed to send transaction")
	}

	return signedTx, nil
}
