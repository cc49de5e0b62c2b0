package models

import (
	"time"

	"github.com/ClipFinance/orchestrator-lib/common/types"
)

// Chain is one addressbook row describing a supported chain.
type Chain struct {
	ID                int64
	ChainID           uint64
	Name              string
	RpcUrl            string
	GasModel          types.GasModel
	MinGasPriceMethod string
	WaitNBlocks       uint64
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ToChainConfig converts the row to the runtime chain configuration.
func (c *Chain) ToChainConfig() *types.ChainConfig {
	return &types.ChainConfig{
		Name:              c.Name,
		ChainID:           c.ChainID,
		RpcUrl:            c.RpcUrl,
		GasModel:          c.GasModel,
		MinGasPriceMethod: c.MinGasPriceMethod,
		WaitNBlocks:       c.WaitNBlocks,
	}
}
