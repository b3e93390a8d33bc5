package blog

import (
	"context"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// APIController serves the JSON API. Guard stages run before the handlers
// that need them; the controller itself only deals with payloads, lookups,
// and the ownership check on mutations.
type APIController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       Authenticator
	ErrorHandler func(c *fiber.Ctx, err error) error

	cfg      Config
	register *RegisterUserHandler
}

type APIControllerOption func(*APIController) *APIController

func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger:       defLogger{},
		ErrorHandler: RenderError,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in api controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in api controller...")
	}

	if c.cfg == nil {
		panic("Missing Config in api controller...")
	}

	c.register = NewRegisterUserHandler(c.Repo)

	return c
}

func WithControllerRepo(repo RepositoryManager) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuthenticator(auther Authenticator) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Auther = auther
		return c
	}
}

func WithControllerConfig(cfg Config) APIControllerOption {
	return func(c *APIController) *APIController {
		c.cfg = cfg
		return c
	}
}

func WithControllerLogger(logger Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Debug = debug
		return c
	}
}

// RegisterAPIRoutes mounts every route, composing the Guard stages each one
// needs. Reads are public, writes gate on an active identity, administrative
// writes additionally gate on the superuser flag.
func RegisterAPIRoutes(app *fiber.App, c *APIController, guard *Guard) {
	app.Get("/", c.Root)
	app.Get("/health", c.Health)
	app.Get("/stats/", guard.Protected(), guard.RequireActive(), guard.RequireSuperuser(), c.Stats)

	app.Post("/auth/login", c.LoginPost)
	app.Post("/auth/register", c.RegisterPost)
	app.Get("/auth/me", guard.Protected(), guard.RequireActive(), c.Me)
	app.Post("/auth/refresh", guard.Protected(), guard.RequireActive(), c.RefreshPost)

	app.Get("/users/", c.UsersList)
	app.Get("/users/search/", c.UsersSearch)
	app.Get("/users/:id", c.UserShow)
	app.Post("/users/", guard.Protected(), guard.RequireActive(), guard.RequireSuperuser(), c.UserCreate)
	app.Put("/users/:id", guard.Protected(), guard.RequireActive(), c.UserUpdate)
	app.Delete("/users/:id", guard.Protected(), guard.RequireActive(), guard.RequireSuperuser(), c.UserDelete)

	app.Get("/posts/", c.PostsList)
	app.Get("/posts/published/", c.PostsPublished)
	app.Get("/posts/search/", c.PostsSearch)
	app.Get("/posts/:id", c.PostShow)
	app.Post("/posts/", guard.Protected(), guard.RequireActive(), c.PostCreate)
	app.Put("/posts/:id", guard.Protected(), guard.RequireActive(), c.PostUpdate)
	app.Delete("/posts/:id", guard.Protected(), guard.RequireActive(), c.PostDelete)

	app.Get("/categories/", c.CategoriesList)
	app.Get("/categories/active/", c.CategoriesActive)
	app.Get("/categories/:id", c.CategoryShow)
	app.Post("/categories/", guard.Protected(), guard.RequireActive(), guard.RequireSuperuser(), c.CategoryCreate)
	app.Put("/categories/:id", guard.Protected(), guard.RequireActive(), guard.RequireSuperuser(), c.CategoryUpdate)
	app.Delete("/categories/:id", guard.Protected(), guard.RequireActive(), guard.RequireSuperuser(), c.CategoryDelete)
}

// ==================== meta ====================

func (a *APIController) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "blog API",
		"health":  "/health",
	})
}

func (a *APIController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}

func (a *APIController) Stats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	totalUsers, err := a.Repo.Users().Count(ctx)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	totalPosts, err := a.Repo.Posts().Count(ctx)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	publishedPosts, err := a.Repo.Posts().CountPublished(ctx)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{
		"total_users":     totalUsers,
		"total_posts":     totalPosts,
		"published_posts": publishedPosts,
	})
}

// ==================== auth ====================

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the login identifier, a username or an email.
func (r LoginRequest) GetIdentifier() string {
	return r.Username
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 100),
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *APIController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload: ", "error", err)
		return a.ErrorHandler(c, invalidPayload(err))
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	identity, err := a.Auther.Verify(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	if !identity.IsActive() {
		return a.ErrorHandler(c, ErrAccountDisabled)
	}

	session, err := a.Auther.CreateSession(identity)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(session)
}

func (a *APIController) Me(c *fiber.Ctx) error {
	identity, err := a.currentIdentity(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(NewUserSummary(identity))
}

func (a *APIController) RefreshPost(c *fiber.Ctx) error {
	identity, err := a.currentIdentity(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	session, err := a.Auther.CreateSession(identity)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(session)
}

// usernamePattern matches the stored canonical form: lowercase happens on
// normalization, underscores are allowed.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// RegisterRequest payload
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	FullName string `form:"full_name" json:"full_name"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.FullName, validation.Length(0, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *APIController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return a.ErrorHandler(c, invalidPayload(err))
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	ctx := c.UserContext()

	if err := a.ensureUsernameFree(ctx, payload.Username, uuid.Nil); err != nil {
		return a.ErrorHandler(c, err)
	}

	if err := a.ensureEmailFree(ctx, payload.Email, uuid.Nil); err != nil {
		return a.ErrorHandler(c, err)
	}

	var created *User
	req := RegisterUserMessage{
		Username:  payload.Username,
		Email:     payload.Email,
		FullName:  payload.FullName,
		Password:  payload.Password,
		UseHashid: true,
		OnResponse: func(user *User) {
			created = user
		},
	}

	if err := a.register.Execute(ctx, req); err != nil {
		a.Logger.Error("register user execute: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewUserSummary(NewIdentityFromUser(created)))
}

// ==================== users ====================

func (a *APIController) UsersList(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	users, err := a.Repo.Users().List(c.UserContext(), skip, limit)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(userSummaries(users))
}

func (a *APIController) UsersSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return a.ErrorHandler(c, invalidPayload(fmt.Errorf("q: cannot be blank")))
	}

	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	users, err := a.Repo.Users().Search(c.UserContext(), query, skip, limit)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(userSummaries(users))
}

func (a *APIController) UserShow(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	user, err := a.Repo.Users().GetByID(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("user"))
		}
		return a.ErrorHandler(c, err)
	}

	return c.JSON(NewUserSummary(NewIdentityFromUser(user)))
}

// UserCreateRequest payload
type UserCreateRequest struct {
	Username    string `form:"username" json:"username"`
	Email       string `form:"email" json:"email"`
	FullName    string `form:"full_name" json:"full_name"`
	Password    string `form:"password" json:"password"`
	IsActive    *bool  `form:"is_active" json:"is_active"`
	IsSuperuser bool   `form:"is_superuser" json:"is_superuser"`
}

// Validate will validate the payload
func (r UserCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.FullName, validation.Length(0, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *APIController) UserCreate(c *fiber.Ctx) error {
	payload := new(UserCreateRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, invalidPayload(err))
	}

	ctx := c.UserContext()

	if err := a.ensureUsernameFree(ctx, payload.Username, uuid.Nil); err != nil {
		return a.ErrorHandler(c, err)
	}

	if err := a.ensureEmailFree(ctx, payload.Email, uuid.Nil); err != nil {
		return a.ErrorHandler(c, err)
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	user := &User{
		Username:     payload.Username,
		Email:        payload.Email,
		FullName:     payload.FullName,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  payload.IsSuperuser,
	}

	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}

	user, err = a.Repo.Users().Register(ctx, user)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewUserSummary(NewIdentityFromUser(user)))
}

// UserUpdateRequest payload. Nil fields are left untouched.
type UserUpdateRequest struct {
	Username *string `form:"username" json:"username"`
	Email    *string `form:"email" json:"email"`
	FullName *string `form:"full_name" json:"full_name"`
	Password *string `form:"password" json:"password"`
	IsActive *bool   `form:"is_active" json:"is_active"`
}

// Validate will validate the payload
func (r UserUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(3, 50), validation.Match(usernamePattern)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
		validation.Field(&r.FullName, validation.Length(0, 200)),
		validation.Field(&r.Password, validation.Length(6, 100)),
	)
}

func (a *APIController) UserUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	identity, err := a.currentIdentity(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	payload := new(UserUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, invalidPayload(err))
	}

	ctx := c.UserContext()

	record, err := a.Repo.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("user"))
		}
		return a.ErrorHandler(c, err)
	}

	// Owners update themselves, superusers update anyone.
	if err := RequirePermission(identity, record.ID); err != nil {
		return a.ErrorHandler(c, err)
	}

	if payload.Username != nil && NormalizeUsername(*payload.Username) != record.Username {
		if err := a.ensureUsernameFree(ctx, *payload.Username, record.ID); err != nil {
			return a.ErrorHandler(c, err)
		}
		record.Username = *payload.Username
	}

	if payload.Email != nil && *payload.Email != record.Email {
		if err := a.ensureEmailFree(ctx, *payload.Email, record.ID); err != nil {
			return a.ErrorHandler(c, err)
		}
		record.Email = *payload.Email
	}

	if payload.FullName != nil {
		record.FullName = *payload.FullName
	}

	if payload.Password != nil {
		hash, err := HashPassword(*payload.Password)
		if err != nil {
			return a.ErrorHandler(c, err)
		}
		record.PasswordHash = hash
	}

	// Only superusers flip the active flag.
	if payload.IsActive != nil && identity.IsSuperuser() {
		record.IsActive = *payload.IsActive
	}

	record, err = a.Repo.Users().Update(ctx, record)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(NewUserSummary(NewIdentityFromUser(record)))
}

func (a *APIController) UserDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	identity, err := a.currentIdentity(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	if identity.UUID() == id {
		return a.ErrorHandler(c, Conflict("cannot delete own account"))
	}

	ctx := c.UserContext()

	record, err := a.Repo.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("user"))
		}
		return a.ErrorHandler(c, err)
	}

	if err := a.Repo.Users().Delete(ctx, record.ID); err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("user %s deleted", record.Username),
	})
}

// ==================== posts ====================

func (a *APIController) PostsList(c *fiber.Ctx) error {
	filter := PostFilter{
		Offset: c.QueryInt("skip", 0),
		Limit:  c.QueryInt("limit", 100),
	}

	if author := c.Query("author_id"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			return a.ErrorHandler(c, invalidPayload(fmt.Errorf("author_id: must be a valid UUID")))
		}
		filter.AuthorID = &id
	}

	posts, err := a.Repo.Posts().List(c.UserContext(), filter)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(posts)
}

func (a *APIController) PostsPublished(c *fiber.Ctx) error {
	posts, err := a.Repo.Posts().List(c.UserContext(), PostFilter{
		PublishedOnly: true,
		Offset:        c.QueryInt("skip", 0),
		Limit:         c.QueryInt("limit", 100),
	})
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(posts)
}

func (a *APIController) PostsSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return a.ErrorHandler(c, invalidPayload(fmt.Errorf("q: cannot be blank")))
	}

	posts, err := a.Repo.Posts().Search(c.UserContext(), query, c.QueryInt("skip", 0), c.QueryInt("limit", 100))
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(posts)
}

func (a *APIController) PostShow(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	post, err := a.Repo.Posts().GetByID(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("post"))
		}
		return a.ErrorHandler(c, err)
	}

	return c.JSON(post)
}

// PostCreateRequest payload
type PostCreateRequest struct {
	Title       string  `form:"title" json:"title"`
	Content     string  `form:"content" json:"content"`
	Summary     string  `form:"summary" json:"summary"`
	IsPublished bool    `form:"is_published" json:"is_published"`
	CategoryID  *string `form:"category_id" json:"category_id"`
}

// Validate will validate the payload
func (r PostCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Summary, validation.Length(0, 500)),
		validation.Field(&r.CategoryID, is.UUID),
	)
}

func (a *APIController) PostCreate(c *fiber.Ctx) error {
	identity, err := a.currentIdentity(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	payload := new(PostCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, invalidPayload(err))
	}

	ctx := c.UserContext()

	post := &Post{
		Title:       payload.Title,
		Content:     payload.Content,
		Summary:     payload.Summary,
		IsPublished: payload.IsPublished,
		AuthorID:    identity.UUID(),
	}

	if payload.CategoryID != nil && *payload.CategoryID != "" {
		categoryID, err := a.resolveCategory(ctx, *payload.CategoryID)
		if err != nil {
			return a.ErrorHandler(c, err)
		}
		post.CategoryID = categoryID
	}

	post, err = a.Repo.Posts().Create(ctx, post)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// PostUpdateRequest payload. Nil fields are left untouched; an empty
// category_id clears the assignment.
type PostUpdateRequest struct {
	Title       *string `form:"title" json:"title"`
	Content     *string `form:"content" json:"content"`
	Summary     *string `form:"summary" json:"summary"`
	IsPublished *bool   `form:"is_published" json:"is_published"`
	CategoryID  *string `form:"category_id" json:"category_id"`
}

// Validate will validate the payload
func (r PostUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Summary, validation.Length(0, 500)),
	)
}

func (a *APIController) PostUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	identity, err := a.currentIdentity(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	payload := new(PostUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, invalidPayload(err))
	}

	ctx := c.UserContext()

	post, err := a.Repo.Posts().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("post"))
		}
		return a.ErrorHandler(c, err)
	}

	if err := RequirePermission(identity, post.AuthorID); err != nil {
		return a.ErrorHandler(c, err)
	}

	if payload.Title != nil {
		post.Title = *payload.Title
	}

	if payload.Content != nil {
		post.Content = *payload.Content
	}

	if payload.Summary != nil {
		post.Summary = *payload.Summary
	}

	if payload.IsPublished != nil {
		post.IsPublished = *payload.IsPublished
	}

	if payload.CategoryID != nil {
		if *payload.CategoryID == "" {
			post.CategoryID = nil
		} else {
			categoryID, err := a.resolveCategory(ctx, *payload.CategoryID)
			if err != nil {
				return a.ErrorHandler(c, err)
			}
			post.CategoryID = categoryID
		}
	}

	post, err = a.Repo.Posts().Update(ctx, post)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(post)
}

func (a *APIController) PostDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	identity, err := a.currentIdentity(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	ctx := c.UserContext()

	post, err := a.Repo.Posts().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("post"))
		}
		return a.ErrorHandler(c, err)
	}

	if err := RequirePermission(identity, post.AuthorID); err != nil {
		return a.ErrorHandler(c, err)
	}

	if err := a.Repo.Posts().Delete(ctx, post.ID); err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("post %s deleted", post.Title),
	})
}

// ==================== categories ====================

func (a *APIController) CategoriesList(c *fiber.Ctx) error {
	categories, err := a.Repo.Categories().List(c.UserContext(), c.QueryInt("skip", 0), c.QueryInt("limit", 100))
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(categories)
}

func (a *APIController) CategoriesActive(c *fiber.Ctx) error {
	categories, err := a.Repo.Categories().ListActive(c.UserContext())
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(categories)
}

func (a *APIController) CategoryShow(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	category, err := a.Repo.Categories().GetByID(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("category"))
		}
		return a.ErrorHandler(c, err)
	}

	return c.JSON(category)
}

// CategoryCreateRequest payload
type CategoryCreateRequest struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
	Color       string `form:"color" json:"color"`
}

// Validate will validate the payload
func (r CategoryCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Description, validation.Length(0, 200)),
		validation.Field(&r.Color, is.HexColor),
	)
}

func (a *APIController) CategoryCreate(c *fiber.Ctx) error {
	payload := new(CategoryCreateRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, invalidPayload(err))
	}

	ctx := c.UserContext()

	if err := a.ensureCategoryNameFree(ctx, payload.Name, uuid.Nil); err != nil {
		return a.ErrorHandler(c, err)
	}

	category, err := a.Repo.Categories().Create(ctx, &Category{
		Name:        payload.Name,
		Description: payload.Description,
		Color:       payload.Color,
		IsActive:    true,
	})
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

// CategoryUpdateRequest payload. Nil fields are left untouched.
type CategoryUpdateRequest struct {
	Name        *string `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	Color       *string `form:"color" json:"color"`
	IsActive    *bool   `form:"is_active" json:"is_active"`
}

// Validate will validate the payload
func (r CategoryUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 50)),
		validation.Field(&r.Description, validation.Length(0, 200)),
	)
}

func (a *APIController) CategoryUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	payload := new(CategoryUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, invalidPayload(err))
	}

	ctx := c.UserContext()

	category, err := a.Repo.Categories().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("category"))
		}
		return a.ErrorHandler(c, err)
	}

	if payload.Name != nil && *payload.Name != category.Name {
		if err := a.ensureCategoryNameFree(ctx, *payload.Name, category.ID); err != nil {
			return a.ErrorHandler(c, err)
		}
		category.Name = *payload.Name
	}

	if payload.Description != nil {
		category.Description = *payload.Description
	}

	if payload.Color != nil {
		category.Color = *payload.Color
	}

	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}

	category, err = a.Repo.Categories().Update(ctx, category)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(category)
}

func (a *APIController) CategoryDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	ctx := c.UserContext()

	category, err := a.Repo.Categories().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return a.ErrorHandler(c, NotFound("category"))
		}
		return a.ErrorHandler(c, err)
	}

	if err := a.Repo.Categories().Delete(ctx, category.ID); err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("category %s deleted", category.Name),
	})
}

// ==================== helpers ====================

func (a *APIController) currentIdentity(c *fiber.Ctx) (Identity, error) {
	identity, ok := IdentityFromFiber(c, a.cfg.GetContextKey())
	if !ok {
		return nil, ErrTokenMalformed
	}
	return identity, nil
}

func (a *APIController) ensureUsernameFree(ctx context.Context, username string, selfID uuid.UUID) error {
	existing, err := a.Repo.Users().GetByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return err
	}

	if existing.ID == selfID {
		return nil
	}

	return Conflict("username already taken")
}

func (a *APIController) ensureEmailFree(ctx context.Context, email string, selfID uuid.UUID) error {
	existing, err := a.Repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return err
	}

	if existing.ID == selfID {
		return nil
	}

	return Conflict("email already registered")
}

func (a *APIController) ensureCategoryNameFree(ctx context.Context, name string, selfID uuid.UUID) error {
	existing, err := a.Repo.Categories().GetByName(ctx, name)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return err
	}

	if existing.ID == selfID {
		return nil
	}

	return Conflict("category name already taken")
}

func (a *APIController) resolveCategory(ctx context.Context, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidPayload(fmt.Errorf("category_id: must be a valid UUID"))
	}

	category, err := a.Repo.Categories().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("category")
		}
		return nil, err
	}

	return &category.ID, nil
}

func userSummaries(users []*User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserSummary(NewIdentityFromUser(user)))
	}
	return out
}

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, goerrors.New("id must be a valid UUID", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

func badPayload(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse request body").
		WithCode(goerrors.CodeBadRequest)
}

func invalidPayload(err error) *goerrors.Error {
	return goerrors.New(err.Error(), goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("VALIDATION")
}
