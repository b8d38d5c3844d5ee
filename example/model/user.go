package model

import "time"

//go:generate go tool ormgen gen --source=$GOFILE --destination=../query

type User struct {
	ID        int       `db:"id,primaryKey"`
	Name      string    `db:"name,size:255,notNull"`
	Email     string    `db:"email,size:255,notNull"`
	CreatedAt time.Time `db:"created_at"`
	Posts     []Post    `rel:"has_many,foreign_key:user_id"`
}
