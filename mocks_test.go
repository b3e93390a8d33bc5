package blog_test

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/goliatone/go-blog"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockIdentity implements blog.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) UUID() uuid.UUID {
	args := m.Called()
	return args.Get(0).(uuid.UUID)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) FullName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) IsActive() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockIdentity) IsSuperuser() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockLogger implements blog.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// testConfig implements blog.Config with fixed values
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 30,
		issuer:          "blog-test",
	}
}

func (c *testConfig) GetSigningKey() string    { return c.signingKey }
func (c *testConfig) GetSigningMethod() string { return "HS256" }
func (c *testConfig) GetContextKey() string    { return "user" }
func (c *testConfig) GetTokenExpiration() int  { return c.tokenExpiration }
func (c *testConfig) GetAuthScheme() string    { return "Bearer" }
func (c *testConfig) GetIssuer() string        { return c.issuer }

// memUserStore is an in-memory blog.UserStore
type memUserStore struct {
	users map[string]*blog.User
}

func newMemUserStore(users ...*blog.User) *memUserStore {
	s := &memUserStore{users: map[string]*blog.User{}}
	for _, u := range users {
		s.users[u.Username] = u
	}
	return s
}

func (s *memUserStore) GetByUsername(ctx context.Context, username string) (*blog.User, error) {
	if user, ok := s.users[username]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"username": username})
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*blog.User, error) {
	for _, user := range s.users {
		if user.Email == blog.NormalizeEmail(email) {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"email": email})
}

// ==================== in-memory repository manager ====================

type fakeRepo struct {
	users      *fakeUsers
	posts      *fakePosts
	categories *fakeCategories
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      &fakeUsers{records: map[uuid.UUID]*blog.User{}},
		posts:      &fakePosts{records: map[uuid.UUID]*blog.Post{}},
		categories: &fakeCategories{records: map[uuid.UUID]*blog.Category{}},
	}
}

func (r *fakeRepo) Users() blog.Users           { return r.users }
func (r *fakeRepo) Posts() blog.Posts           { return r.posts }
func (r *fakeRepo) Categories() blog.Categories { return r.categories }
func (r *fakeRepo) Validate() error             { return nil }
func (r *fakeRepo) MustValidate()               {}

func (r *fakeRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func notFound(key, value string) error {
	return repository.NewRecordNotFound().
		WithMetadata(map[string]any{key: value})
}

type fakeUsers struct {
	records map[uuid.UUID]*blog.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*blog.User, error) {
	if user, ok := f.records[id]; ok {
		return user, nil
	}
	return nil, notFound("id", id.String())
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*blog.User, error) {
	username = blog.NormalizeUsername(username)
	for _, user := range f.records {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, notFound("username", username)
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*blog.User, error) {
	for _, user := range f.records {
		if user.Email == blog.NormalizeEmail(email) {
			return user, nil
		}
	}
	return nil, notFound("email", email)
}

func (f *fakeUsers) GetByIdentifier(ctx context.Context, identifier string) (*blog.User, error) {
	if user, err := f.GetByUsername(ctx, identifier); err == nil {
		return user, nil
	}
	return f.GetByEmail(ctx, identifier)
}

func (f *fakeUsers) List(ctx context.Context, offset, limit int) ([]*blog.User, error) {
	out := make([]*blog.User, 0, len(f.records))
	for _, user := range f.records {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return window(out, offset, limit), nil
}

func (f *fakeUsers) Search(ctx context.Context, query string, offset, limit int) ([]*blog.User, error) {
	var out []*blog.User
	for _, user := range f.records {
		if strings.Contains(user.Username, query) ||
			strings.Contains(user.FullName, query) ||
			strings.Contains(user.Email, query) {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return window(out, offset, limit), nil
}

func (f *fakeUsers) Register(ctx context.Context, user *blog.User) (*blog.User, error) {
	return f.RegisterTx(ctx, nil, user)
}

func (f *fakeUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *blog.User) (*blog.User, error) {
	user.Normalize()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.records[user.ID] = user
	return user, nil
}

func (f *fakeUsers) Update(ctx context.Context, user *blog.User) (*blog.User, error) {
	if _, ok := f.records[user.ID]; !ok {
		return nil, notFound("id", user.ID.String())
	}
	user.Normalize()
	f.records[user.ID] = user
	return user, nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.records, id)
	return nil
}

func (f *fakeUsers) Count(ctx context.Context) (int, error) {
	return len(f.records), nil
}

type fakePosts struct {
	records map[uuid.UUID]*blog.Post
}

func (f *fakePosts) GetByID(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	if post, ok := f.records[id]; ok {
		return post, nil
	}
	return nil, notFound("id", id.String())
}

func (f *fakePosts) List(ctx context.Context, filter blog.PostFilter) ([]*blog.Post, error) {
	var out []*blog.Post
	for _, post := range f.records {
		if filter.PublishedOnly && !post.IsPublished {
			continue
		}
		if filter.AuthorID != nil && post.AuthorID != *filter.AuthorID {
			continue
		}
		out = append(out, post)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return window(out, filter.Offset, filter.Limit), nil
}

func (f *fakePosts) Search(ctx context.Context, query string, offset, limit int) ([]*blog.Post, error) {
	var out []*blog.Post
	for _, post := range f.records {
		if strings.Contains(post.Title, query) ||
			strings.Contains(post.Content, query) ||
			strings.Contains(post.Summary, query) {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return window(out, offset, limit), nil
}

func (f *fakePosts) Create(ctx context.Context, post *blog.Post) (*blog.Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	f.records[post.ID] = post
	return post, nil
}

func (f *fakePosts) Update(ctx context.Context, post *blog.Post) (*blog.Post, error) {
	if _, ok := f.records[post.ID]; !ok {
		return nil, notFound("id", post.ID.String())
	}
	f.records[post.ID] = post
	return post, nil
}

func (f *fakePosts) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.records, id)
	return nil
}

func (f *fakePosts) Count(ctx context.Context) (int, error) {
	return len(f.records), nil
}

func (f *fakePosts) CountPublished(ctx context.Context) (int, error) {
	count := 0
	for _, post := range f.records {
		if post.IsPublished {
			count++
		}
	}
	return count, nil
}

type fakeCategories struct {
	records map[uuid.UUID]*blog.Category
}

func (f *fakeCategories) GetByID(ctx context.Context, id uuid.UUID) (*blog.Category, error) {
	if category, ok := f.records[id]; ok {
		return category, nil
	}
	return nil, notFound("id", id.String())
}

func (f *fakeCategories) GetByName(ctx context.Context, name string) (*blog.Category, error) {
	for _, category := range f.records {
		if category.Name == name {
			return category, nil
		}
	}
	return nil, notFound("name", name)
}

func (f *fakeCategories) List(ctx context.Context, offset, limit int) ([]*blog.Category, error) {
	out := make([]*blog.Category, 0, len(f.records))
	for _, category := range f.records {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return window(out, offset, limit), nil
}

func (f *fakeCategories) ListActive(ctx context.Context) ([]*blog.Category, error) {
	var out []*blog.Category
	for _, category := range f.records {
		if category.IsActive {
			out = append(out, category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategories) Create(ctx context.Context, category *blog.Category) (*blog.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Color == "" {
		category.Color = blog.DefaultCategoryColor
	}
	f.records[category.ID] = category
	return category, nil
}

func (f *fakeCategories) Update(ctx context.Context, category *blog.Category) (*blog.Category, error) {
	if _, ok := f.records[category.ID]; !ok {
		return nil, notFound("id", category.ID.String())
	}
	f.records[category.ID] = category
	return category, nil
}

func (f *fakeCategories) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.records, id)
	return nil
}

func window[T any](in []T, offset, limit int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

var (
	_ blog.RepositoryManager = (*fakeRepo)(nil)
	_ blog.UserStore         = (*memUserStore)(nil)
)
