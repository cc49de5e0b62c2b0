package dbconfig

import (
	"context"
	"database/sql"

	"github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/dbconfig/models"
)

// GetMigrationRegistrations returns the static display data for all
// supported external protocol migrations.
func (r *DBConfig) GetMigrationRegistrations(ctx context.Context) ([]models.MigrationRegistration, error) {
	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
      SELECT
          id,
          migration_id,
          display_name,
          icon,
          created_at,
          updated_at
      FROM migration_registrations
      ORDER BY migration_id ASC
  `)
	if err != nil {
		return nil, errors.ErrDatabaseConnect
	}
	defer rows.Close()

	var registrations []models.MigrationRegistration
	for rows.Next() {
		var reg models.MigrationRegistration
		var icon sql.NullString

		err := rows.Scan(
			&reg.ID,
			&reg.MigrationID,
			&reg.DisplayName,
			&icon,
			&reg.CreatedAt,
			&reg.UpdatedAt,
		)
		if err != nil {
			return nil, errors.ErrDatabaseConnect
		}

		if icon.Valid {
			reg.Icon = icon.String
		}

		registrations = append(registrations, reg)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.ErrDatabaseConnect
	}

	return registrations, nil
}
