package testdata

import "time"

type Inferred struct {
	ID        int       `db:",primaryKey"`
	Name      string    // column "name"
	CreatedAt time.Time // column "created_at"
	Secret    string    `db:"-"`
	internal  string
}
