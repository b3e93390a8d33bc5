package blog_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-blog"
	"github.com/stretchr/testify/assert"
)

func TestRegisterUserMessageType(t *testing.T) {
	assert.Equal(t, "user.register", blog.RegisterUserMessage{}.Type())
}

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with hashed password", func(t *testing.T) {
		repo := newFakeRepo()
		handler := blog.NewRegisterUserHandler(repo)

		var created *blog.User
		err := handler.Execute(ctx, blog.RegisterUserMessage{
			Username: "new_user",
			Email:    "new@example.com",
			FullName: "New User",
			Password: "secret123",
			OnResponse: func(user *blog.User) {
				created = user
			},
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, "new_user", created.Username)
		assert.True(t, created.IsActive)
		assert.NotEqual(t, "secret123", created.PasswordHash)
		assert.NoError(t, blog.ComparePasswordAndHash("secret123", created.PasswordHash))
	})

	t.Run("derives username from the email local part", func(t *testing.T) {
		repo := newFakeRepo()
		handler := blog.NewRegisterUserHandler(repo)

		var created *blog.User
		err := handler.Execute(ctx, blog.RegisterUserMessage{
			Email:    "solo@example.com",
			Password: "secret123",
			OnResponse: func(user *blog.User) {
				created = user
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, "solo", created.Username)
	})

	t.Run("derived username folds to the allowed charset", func(t *testing.T) {
		repo := newFakeRepo()
		handler := blog.NewRegisterUserHandler(repo)

		var created *blog.User
		err := handler.Execute(ctx, blog.RegisterUserMessage{
			Email:    "first.last+blog@example.com",
			Password: "secret123",
			OnResponse: func(user *blog.User) {
				created = user
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, "first_last_blog", created.Username)
	})

	t.Run("deterministic id from email when requested", func(t *testing.T) {
		first := newFakeRepo()
		second := newFakeRepo()

		var a, b *blog.User
		msg := blog.RegisterUserMessage{
			Username:  "same_user",
			Email:     "same@example.com",
			Password:  "secret123",
			UseHashid: true,
		}

		msg.OnResponse = func(user *blog.User) { a = user }
		assert.NoError(t, blog.NewRegisterUserHandler(first).Execute(ctx, msg))

		msg.OnResponse = func(user *blog.User) { b = user }
		assert.NoError(t, blog.NewRegisterUserHandler(second).Execute(ctx, msg))

		assert.Equal(t, a.ID, b.ID)
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		handler := blog.NewRegisterUserHandler(repo)

		err := handler.Execute(ctx, blog.RegisterUserMessage{
			Username: "no_pass",
			Email:    "nopass@example.com",
		})
		assert.Error(t, err)

		count, _ := repo.Users().Count(ctx)
		assert.Zero(t, count)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		handler := blog.NewRegisterUserHandler(newFakeRepo())
		err := handler.Execute(cancelled, blog.RegisterUserMessage{
			Username: "late",
			Email:    "late@example.com",
			Password: "secret123",
		})
		assert.Error(t, err)
	})
}
