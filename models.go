package blog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. PasswordHash never serializes outward.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	FullName      string     `bun:"full_name" json:"full_name,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	IsActive      bool       `bun:"is_active" json:"is_active"`
	IsSuperuser   bool       `bun:"is_superuser" json:"is_superuser"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Normalize lowercases the unique identifiers so lookups are case-insensitive
// by construction.
func (u *User) Normalize() *User {
	u.Username = NormalizeUsername(u.Username)
	u.Email = NormalizeEmail(u.Email)
	return u
}

// NormalizeUsername folds a username to its canonical stored form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail folds an email to its canonical stored form. Lookups fold the
// same way so a user can type the address with whatever casing they registered.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Post is the article model
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	Summary       string     `bun:"summary" json:"summary,omitempty"`
	IsPublished   bool       `bun:"is_published" json:"is_published"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author        *User      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	CategoryID    *uuid.UUID `bun:"category_id,nullzero,type:uuid" json:"category_id,omitempty"`
	Category      *Category  `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DefaultCategoryColor is used when a category is created without one.
const DefaultCategoryColor = "#007bff"

// Category is the post grouping model
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Color         string     `bun:"color,default:'#007bff'" json:"color,omitempty"`
	IsActive      bool       `bun:"is_active" json:"is_active"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// NOTE: boolean columns carry no bun default tag. bun substitutes DEFAULT for
// zero-value fields on insert, which would silently persist an explicit false
// as the column default. Callers set the flags they mean.
