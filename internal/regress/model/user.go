package model

import mssql "github.com/microsoft/go-mssqldb"

type User struct {
	UserID    mssql.UniqueIdentifier `db:"userid,primaryKey,default:uuid"`
	UserName  string                 `db:"username,size:50,notNull"`
	LoginLogs []LoginLog             `rel:"has_many,foreign_key:userid"`
}

func (User) TableName() string { return "Users" }

type LoginLog struct {
	ID     int                    `db:"id,primaryKey,autoIncrement"`
	UserID mssql.UniqueIdentifier `db:"userid,notNull"`
	User   *User                  `rel:"belongs_to,foreign_key:userid"`
}

func (LoginLog) TableName() string { return "LoginLogs" }
