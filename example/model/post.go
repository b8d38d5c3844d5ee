package model

//go:generate go tool ormgen gen --source=$GOFILE --destination=../query

type Post struct {
	ID     int    `db:"id,primaryKey"`
	UserID int    `db:"user_id,notNull"`
	Title  string `db:"title,size:200,notNull"`
	Body   string `db:"body"`
	User   *User  `rel:"belongs_to,foreign_key:user_id"`
}
