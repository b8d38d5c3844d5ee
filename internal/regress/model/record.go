package model

import "time"

type BigIntRecord struct {
	ID         int       `db:"id,primaryKey,autoIncrement"`
	BusinessID int64     `db:"business_id,notNull"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (BigIntRecord) TableName() string { return "BigIntTable" }

type BooleanRecord struct {
	ID     int  `db:"id,primaryKey,autoIncrement"`
	Status bool `db:"status,notNull"`
}

func (BooleanRecord) TableName() string { return "BooleanTable" }
