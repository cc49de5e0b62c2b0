package dbconfig

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/ClipFinance/orchestrator-lib/dbconfig/models"
)

// GetChains returns all chains from the database, optionally filtering by
// active status.
func (r *DBConfig) GetChains(ctx context.Context, activeOnly bool) ([]models.Chain, error) {
	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer db.Close()

	query := `
      SELECT
          id,
          chain_id,
          name,
          rpc_url,
          gas_model,
          min_gas_price_method,
          wait_n_blocks,
          active,
          created_at,
          updated_at
      FROM chains
  `

	var args []interface{}
	if activeOnly {
		query += " WHERE active = $1"
		args = append(args, true)
	}

	query += " ORDER BY chain_id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer rows.Close()

	var chains []models.Chain
	for rows.Next() {
		var chain models.Chain
		var gasModel sql.NullString
		var minGasPriceMethod sql.NullString

		err := rows.Scan(
			&chain.ID,
			&chain.ChainID,
			&chain.Name,
			&chain.RpcUrl,
			&gasModel,
			&minGasPriceMethod,
			&chain.WaitNBlocks,
			&chain.Active,
			&chain.CreatedAt,
			&chain.UpdatedAt,
		)
		if err != nil {
			return nil, errors.ErrDatabaseConnect
		}

		if gasModel.Valid {
			chain.GasModel = types.ParseGasModel(strings.ToUpper(gasModel.String))
		}
		if minGasPriceMethod.Valid {
			chain.MinGasPriceMethod = minGasPriceMethod.String
		}

		chains = append(chains, chain)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.ErrDatabaseConnect
	}

	return chains, nil
}

// GetChainByID returns one chain row by its chain id.
func (r *DBConfig) GetChainByID(ctx context.Context, chainID uint64) (*models.Chain, error) {
	if chainID == 0 {
		return nil, errors.ErrInvalidChainID
	}

	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer db.Close()

	var chain models.Chain
	var gasModel sql.NullString
	var minGasPriceMethod sql.NullString

	err = db.QueryRowContext(ctx, `
       SELECT
           id,
           chain_id,
           name,
           rpc_url,
           gas_model,
           min_gas_price_method,
           wait_n_blocks,
           active,
           created_at,
           updated_at
       FROM chains
       WHERE chain_id = $1
    `, chainID).Scan(
		&chain.ID,
		&chain.ChainID,
		&chain.Name,
		&chain.RpcUrl,
		&gasModel,
		&minGasPriceMethod,
		&chain.WaitNBlocks,
		&chain.Active,
		&chain.CreatedAt,
		&chain.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.ErrChainNotFound
	}

	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}

	if gasModel.Valid {
		chain.GasModel = types.ParseGasModel(strings.ToUpper(gasModel.String))
	}
	if minGasPriceMethod.Valid {
		chain.MinGasPriceMethod = minGasPriceMethod.String
	}

	return &chain, nil
}
