package repo

import (
	"context"

	"github.com/ormkit/ormgen/example/model"
	"github.com/ormkit/ormgen/example/query"
	"github.com/ormkit/ormgen/orm"
	"github.com/ormkit/ormgen/scope"
)

const pageSize = 20

// UserRepository hides the generated queries behind domain methods.
type UserRepository struct {
	db *orm.DB
}

func NewUserRepository(db *orm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return query.Users(r.db).Create(ctx, u)
}

// CreateAll inserts users in as few statements as the dialect allows.
func (r *UserRepository) CreateAll(ctx context.Context, users []*model.User) error {
	return query.Users(r.db).CreateAll(ctx, users)
}

// AddPost creates a post owned by u.
func (r *UserRepository) AddPost(ctx context.Context, u *model.User, p *model.Post) error {
	return query.CreateUserPost(ctx, r.db, u, p)
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (model.User, error) {
	return query.Users(r.db).Where("id = ?", id).Preload("Posts").First(ctx)
}

// Search returns one page of users whose name contains name, newest first.
func (r *UserRepository) Search(ctx context.Context, name string, page int) ([]model.User, error) {
	scopes := scope.Paginate(page, pageSize)
	if name != "" {
		scopes = scopes.Append(scope.Contains("name", name))
	}
	return query.Users(r.db).Scopes(scopes...).OrderBy("created_at DESC").OrderBy("id").All(ctx)
}

func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	return query.Users(r.db).Update(ctx, u)
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	return r.db.Transaction(ctx, func(tx *orm.Tx) error {
		if err := query.Posts(tx).Where("user_id = ?", id).Delete(ctx); err != nil {
			return err
		}
		return query.Users(tx).Where("id = ?", id).Delete(ctx)
	})
}
