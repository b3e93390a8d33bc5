package blog

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostFilter narrows List queries
type PostFilter struct {
	PublishedOnly bool
	AuthorID      *uuid.UUID
	Offset        int
	Limit         int
}

// Posts is the article repository
type Posts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	List(ctx context.Context, filter PostFilter) ([]*Post, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*Post, error)
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	CountPublished(ctx context.Context) (int, error)
}

// PostsRepository implements Posts using bun.
type PostsRepository struct {
	db *bun.DB
}

var _ Posts = (*PostsRepository)(nil)

// NewPostsRepository creates a new repository.
func NewPostsRepository(db *bun.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

func (r *PostsRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record := &Post{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return record, nil
}

func (r *PostsRepository) List(ctx context.Context, filter PostFilter) ([]*Post, error) {
	var records []*Post

	q := r.db.NewSelect().
		Model(&records).
		Order("created_at DESC")

	if filter.PublishedOnly {
		q = q.Where("?TableAlias.is_published = ?", true)
	}
	if filter.AuthorID != nil {
		q = q.Where("?TableAlias.author_id = ?", *filter.AuthorID)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostsRepository) Search(ctx context.Context, query string, offset, limit int) ([]*Post, error) {
	var records []*Post

	pattern := "%" + query + "%"
	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.title LIKE ? OR ?TableAlias.content LIKE ? OR ?TableAlias.summary LIKE ?",
			pattern, pattern, pattern).
		Order("created_at DESC").
		Offset(offset)

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostsRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostsRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	now := time.Now()
	post.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(post).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": post.ID.String()})
	}

	return r.GetByID(ctx, post.ID)
}

func (r *PostsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Post)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *PostsRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Post)(nil)).Count(ctx)
}

func (r *PostsRepository) CountPublished(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*Post)(nil)).
		Where("is_published = ?", true).
		Count(ctx)
}
