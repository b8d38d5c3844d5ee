package testdata

type NoPK struct {
	Name  string `db:"name"`
	Email string `db:"email"`
}
