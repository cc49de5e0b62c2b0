package evm

import (
	"context"
	"time"

	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// WaitForReceipt polls the chain until the transaction is mined and the
// configured number of confirmation blocks has passed. The transaction was
// signed by the user's wallet, so a stuck transaction cannot be replaced
// here; polling continues until the context is cancelled.
//
// Parameters:
// - ctx: the context for managing the request.
// - txHash: the hash of the transaction to wait for.
//
// Returns:
// - *types.Receipt: the mined receipt, successful or reverted.
// - error: an error if the client is not initialized, polling fails, or the
//   context is cancelled.
func (e *evm) WaitForReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	hash := common.HexToHash(txHash)

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.WithField("txHash", txHash).Error("WaitForReceipt: context done")
			return nil, ctx.Err()

		case <-ticker.C:
			receipt, err := client.TransactionReceipt(ctx, hash)
			if err != nil {
				if errors.Is(err, ethereum.NotFound) {
					continue
				}
				return nil, errors.Wrap(err, "failed to get transaction receipt")
			}

			currentBlock, err := client.BlockNumber(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get current block number")
			}

			// Wait for required block confirmations
			if currentBlock < receipt.BlockNumber.Uint64()+e.config.WaitNBlocks {
				continue
			}

			status := types.ReceiptReverted
			if receipt.Status == ethtypes.ReceiptStatusSuccessful {
				status = types.ReceiptSuccessful
			}

			return &types.Receipt{
				TxHash:      txHash,
				Status:      status,
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
			}, nil
		}
	}
}
