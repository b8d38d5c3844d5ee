package testdata

import (
	"database/sql"

	mssql "github.com/microsoft/go-mssqldb"
)

// Labels is a named type the generator cannot map; it falls back to text.
type Labels []string

type Device struct {
	ID       mssql.UniqueIdentifier `db:"id,primaryKey"`
	Serial   string                 `db:"serial,size:32,notNull"`
	Labels   Labels                 `db:"labels"`
	Firmware sql.NullString         `db:"firmware"`
	Uptime   sql.NullInt64          `db:"uptime_seconds"`
}

// Sensor has no db tags: every exported field becomes a snake_case column.
type Sensor struct {
	ID       int
	DeviceID mssql.UniqueIdentifier
	Labels   Labels
	Enabled  *bool
	Device   *Device `rel:"belongs_to,foreign_key:device_id"`
	internal string
}
