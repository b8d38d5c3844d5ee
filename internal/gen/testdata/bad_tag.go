package testdata

type BadTag struct {
	ID   int    `db:"id,primaryKey"`
	Name string `db:"name,sise:10"`
}
