package models

import (
	"time"

	"github.com/ClipFinance/orchestrator-lib/common/types"
)

// Vault is one addressbook row describing a deposit target.
type Vault struct {
	ID              int64
	VaultID         string
	ChainID         uint64
	ContractAddress string
	StrategyAddress string
	TokenAddress    string
	TokenDecimals   int32
	TokenSymbol     string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ToVault converts the row to the runtime vault description.
func (v *Vault) ToVault() *types.Vault {
	return &types.Vault{
		ID:              v.VaultID,
		ChainID:         v.ChainID,
		ContractAddress: v.ContractAddress,
		StrategyAddress: v.StrategyAddress,
		DepositToken: types.Token{
			ChainID:  v.ChainID,
			Address:  v.TokenAddress,
			Decimals: v.TokenDecimals,
			Symbol:   v.TokenSymbol,
		},
	}
}
