package blog

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// UserStore is the read side of the users repository the provider needs
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider resolves login identifiers against the user store
type UserProvider struct {
	store  UserStore
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user by username, falling back to email, and
// compare the password against the stored hash. A missing user and a failed
// comparison both yield ErrMismatchedHashAndPassword; the caller learns only
// that the pair did not match. The active flag is deliberately not checked
// here, that gate belongs to the route layer and the middleware guard.
func (u UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.lookup(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByUsername resolves a token subject back to an identity. Token
// subjects are usernames only; there is no email fallback on this path.
func (u UserProvider) FindIdentityByUsername(ctx context.Context, username string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve token subject")
	}

	return NewIdentityFromUser(user), nil
}

func (u UserProvider) lookup(ctx context.Context, identifier string) (*User, error) {
	user, err := u.store.GetByUsername(ctx, NormalizeUsername(identifier))
	if err == nil {
		return user, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	// Single fallback: the identifier may be an email address.
	return u.store.GetByEmail(ctx, identifier)
}

var _ IdentityProvider = (*UserProvider)(nil)

type authIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return authIdentity{user: user}
}

func (a authIdentity) ID() string {
	return a.user.ID.String()
}

func (a authIdentity) UUID() uuid.UUID {
	return a.user.ID
}

func (a authIdentity) Username() string {
	return a.user.Username
}

func (a authIdentity) Email() string {
	return a.user.Email
}

func (a authIdentity) FullName() string {
	return a.user.FullName
}

func (a authIdentity) IsActive() bool {
	return a.user.IsActive
}

func (a authIdentity) IsSuperuser() bool {
	return a.user.IsSuperuser
}

var _ Identity = authIdentity{}
