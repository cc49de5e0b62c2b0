package dbconfig

import (
	"context"
	"database/sql"

	"github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/dbconfig/models"
)

// GetVaults returns all vaults from the database, optionally filtering by
// active status.
func (r *DBConfig) GetVaults(ctx context.Context, activeOnly bool) ([]models.Vault, error) {
	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer db.Close()

	query := `
      SELECT
          id,
          vault_id,
          chain_id,
          contract_address,
          strategy_address,
          token_address,
          token_decimals,
          token_symbol,
          active,
          created_at,
          updated_at
      FROM vaults
  `

	var args []interface{}
	if activeOnly {
		query += " WHERE active = $1"
		args = append(args, true)
	}

	query += " ORDER BY vault_id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer rows.Close()

	var vaults []models.Vault
	for rows.Next() {
		var vault models.Vault
		var strategyAddress sql.NullString

		err := rows.Scan(
			&vault.ID,
			&vault.VaultID,
			&vault.ChainID,
			&vault.ContractAddress,
			&strategyAddress,
			&vault.TokenAddress,
			&vault.TokenDecimals,
			&vault.TokenSymbol,
			&vault.Active,
			&vault.CreatedAt,
			&vault.UpdatedAt,
		)
		if err != nil {
			return nil, errors.ErrDatabaseConnect
		}

		if strategyAddress.Valid {
			vault.StrategyAddress = strategyAddress.String
		}

		vaults = append(vaults, vault)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.ErrDatabaseConnect
	}

	return vaults, nil
}

// GetVaultByID returns one vault row by its vault id.
func (r *DBConfig) GetVaultByID(ctx context.Context, vaultID string) (*models.Vault, error) {
	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer db.Close()

	var vault models.Vault
	var strategyAddress sql.NullString

	err = db.QueryRowContext(ctx, `
       SELECT
           id,
           vault_id,
           chain_id,
           contract_address,
           strategy_address,
           token_address,
           token_decimals,
           token_symbol,
           active,
           created_at,
           updated_at
       FROM vaults
       WHERE vault_id = $1
    `, vaultID).Scan(
		&vault.ID,
		&vault.VaultID,
		&vault.ChainID,
		&vault.ContractAddress,
		&strategyAddress,
		&vault.TokenAddress,
		&vault.TokenDecimals,
		&vault.TokenSymbol,
		&vault.Active,
		&vault.CreatedAt,
		&vault.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.ErrVaultNotFound
	}

	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}

	if strategyAddress.Valid {
		vault.StrategyAddress = strategyAddress.String
	}

	return &vault, nil
}
