package testdata

type Author struct {
	ID       int
	Name     string
	Articles []Article `rel:"has_many,foreign_key:author_id"`
}

type Article struct {
	ID       int
	AuthorID int
	Title    string
	Author   *Author `rel:"belongs_to,foreign_key:author_id"`
}
