package main

import (
	"context"

	"github.com/goliatone/go-blog"
	"github.com/goliatone/go-repository-bun"
)

type seedUser struct {
	Username    string
	Email       string
	FullName    string
	Password    string
	IsSuperuser bool
}

type seedCategory struct {
	Name        string
	Description string
	Color       string
}

type seedPost struct {
	Title       string
	Content     string
	Summary     string
	IsPublished bool
	Author      string
	Category    string
}

var seedUsers = []seedUser{
	{Username: "admin", Email: "admin@example.com", FullName: "Administrator", Password: "admin123", IsSuperuser: true},
	{Username: "john_doe", Email: "john@example.com", FullName: "John Doe", Password: "password123"},
	{Username: "jane_smith", Email: "jane@example.com", FullName: "Jane Smith", Password: "password123"},
	{Username: "bob_wilson", Email: "bob@example.com", FullName: "Bob Wilson", Password: "password123"},
}

var seedCategories = []seedCategory{
	{Name: "tech", Description: "Technology and programming", Color: "#007bff"},
	{Name: "life", Description: "Everyday notes", Color: "#28a745"},
	{Name: "study", Description: "Learning resources", Color: "#ffc107"},
}

var seedPosts = []seedPost{
	{
		Title:       "Getting started",
		Content:     "A walkthrough of the project layout, how authentication works, and where to go next.",
		Summary:     "Project walkthrough",
		IsPublished: true,
		Author:      "admin",
		Category:    "tech",
	},
	{
		Title:       "Notes on bearer tokens",
		Content:     "Why stateless tokens trade instant revocation for zero lookup cost, and when that trade is fine.",
		Summary:     "Stateless session design",
		IsPublished: true,
		Author:      "john_doe",
		Category:    "study",
	},
	{
		Title:       "Draft: kitchen experiments",
		Content:     "Unfinished thoughts, not ready to publish.",
		IsPublished: false,
		Author:      "jane_smith",
		Category:    "life",
	},
}

// Seed loads the demo dataset. Existing records are left alone so the command
// is safe to run repeatedly.
func Seed(ctx context.Context, app *App) error {
	lgr := app.GetLogger("seed")
	users := app.repo.Users()
	categories := app.repo.Categories()
	posts := app.repo.Posts()

	for _, su := range seedUsers {
		if _, err := users.GetByUsername(ctx, su.Username); err == nil {
			lgr.Info("user exists, skipping", "username", su.Username)
			continue
		} else if !repository.IsRecordNotFound(err) {
			return err
		}

		hash, err := blog.HashPassword(su.Password)
		if err != nil {
			return err
		}

		if _, err := users.Register(ctx, &blog.User{
			Username:     su.Username,
			Email:        su.Email,
			FullName:     su.FullName,
			PasswordHash: hash,
			IsActive:     true,
			IsSuperuser:  su.IsSuperuser,
		}); err != nil {
			return err
		}

		lgr.Info("created user", "username", su.Username)
	}

	for _, sc := range seedCategories {
		if _, err := categories.GetByName(ctx, sc.Name); err == nil {
			lgr.Info("category exists, skipping", "name", sc.Name)
			continue
		} else if !repository.IsRecordNotFound(err) {
			return err
		}

		if _, err := categories.Create(ctx, &blog.Category{
			Name:        sc.Name,
			Description: sc.Description,
			Color:       sc.Color,
			IsActive:    true,
		}); err != nil {
			return err
		}

		lgr.Info("created category", "name", sc.Name)
	}

	existing, err := posts.Count(ctx)
	if err != nil {
		return err
	}

	if existing > 0 {
		lgr.Info("posts exist, skipping", "count", existing)
		return nil
	}

	for _, sp := range seedPosts {
		author, err := users.GetByUsername(ctx, sp.Author)
		if err != nil {
			return err
		}

		post := &blog.Post{
			Title:       sp.Title,
			Content:     sp.Content,
			Summary:     sp.Summary,
			IsPublished: sp.IsPublished,
			AuthorID:    author.ID,
		}

		if sp.Category != "" {
			category, err := categories.GetByName(ctx, sp.Category)
			if err != nil {
				return err
			}
			post.CategoryID = &category.ID
		}

		if _, err := posts.Create(ctx, post); err != nil {
			return err
		}

		lgr.Info("created post", "title", sp.Title)
	}

	return nil
}
