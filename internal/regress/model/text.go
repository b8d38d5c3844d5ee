package model

// WideText stores its name in an unbounded string column.
type WideText struct {
	ID       int    `db:"id,primaryKey,autoIncrement"`
	UserName string `db:"username,size:max"`
}

func (WideText) TableName() string { return "_Users" }

// FixedText stores its name in a fixed-length CHAR(10) column.
type FixedText struct {
	ID       int    `db:"id,primaryKey,autoIncrement"`
	UserName string `db:"username,type:char,size:10"`
}

func (FixedText) TableName() string { return "_Users" }
