package blog

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the account repository
type Users interface {
	UserStore

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*User, error)
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the Users repository on top of bun.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.getWhere(ctx, "id", id)
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.getWhere(ctx, "username", NormalizeUsername(username))
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.getWhere(ctx, "email", NormalizeEmail(email))
}

// GetByIdentifier resolves a login identifier: username first, then email.
func (a *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	user, err := a.GetByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return a.GetByEmail(ctx, identifier)
}

func (a *users) getWhere(ctx context.Context, column string, value any) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) List(ctx context.Context, offset, limit int) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Search matches against username, full name, and email.
func (a *users) Search(ctx context.Context, query string, offset, limit int) ([]*User, error) {
	var records []*User

	pattern := "%" + query + "%"
	q := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.username LIKE ? OR ?TableAlias.full_name LIKE ? OR ?TableAlias.email LIKE ?",
			pattern, pattern, pattern).
		Order("created_at ASC").
		Offset(offset)

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) Update(ctx context.Context, user *User) (*User, error) {
	user.Normalize()
	return a.Repository.UpdateTx(ctx, a.db, user, repository.UpdateByID(user.ID.String()))
}

func (a *users) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (a *users) Count(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*User)(nil)).Count(ctx)
}

func prepareUserDefaults(user *User) {
	if user == nil {
		return
	}

	user.Normalize()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
}
