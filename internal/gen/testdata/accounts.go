package testdata

import mssql "github.com/microsoft/go-mssqldb"

type Account struct {
	AccountID mssql.UniqueIdentifier `db:"account_id,primaryKey,default:uuid"`
	Handle    string                 `db:"handle,size:50,notNull"`
	Bio       string                 `db:"bio,size:max"`
	Code      string                 `db:"code,type:char,size:10"`
	Sessions  []Session              `rel:"has_many,foreign_key:account_id"`
}

type Session struct {
	ID        int                    `db:"id,primaryKey,autoIncrement"`
	AccountID mssql.UniqueIdentifier `db:"account_id,notNull"`
	Hits      int64                  `db:"hits,notNull"`
	Active    bool                   `db:"active"`
	Account   *Account               `rel:"belongs_to,foreign_key:account_id"`
}
