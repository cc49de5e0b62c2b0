package models

import "time"

// MigrationRegistration is one addressbook row describing a supported
// external protocol migration. Registrations are static display data loaded
// once at startup.
type MigrationRegistration struct {
	ID          int64
	MigrationID string
	DisplayName string
	Icon        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
