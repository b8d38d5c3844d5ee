package testdata

import "time"

type User struct {
	ID        int       `db:"id,primaryKey"`
	Name      string    `db:"name,size:50,notNull"`
	Email     string    `db:"email,size:320,notNull"`
	Role      string    `db:"role,type:char,size:8"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Posts     []Post    `db:"-" rel:"has_many,foreign_key:user_id"`
	internal  string    // unexported, skipped
}

type Post struct {
	ID     int    `db:"id,primaryKey"`
	UserID int    `db:"user_id,notNull"`
	Title  string `db:"title,size:max"`
}
