package blog

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Categories is the post grouping repository
type Categories interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context, offset, limit int) ([]*Category, error)
	ListActive(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, category *Category) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoriesRepository implements Categories using bun.
type CategoriesRepository struct {
	db *bun.DB
}

var _ Categories = (*CategoriesRepository)(nil)

// NewCategoriesRepository creates a new repository.
func NewCategoriesRepository(db *bun.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	record := &Category{}
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

func (r *CategoriesRepository) GetByName(ctx context.Context, name string) (*Category, error) {
	record := &Category{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"name": name})
		}
		return nil, err
	}
	return record, nil
}

func (r *CategoriesRepository) List(ctx context.Context, offset, limit int) ([]*Category, error) {
	var records []*Category

	q := r.db.NewSelect().
		Model(&records).
		Order("name ASC").
		Offset(offset)

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *CategoriesRepository) ListActive(ctx context.Context) ([]*Category, error) {
	var records []*Category
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.is_active = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *CategoriesRepository) Create(ctx context.Context, category *Category) (*Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Color == "" {
		category.Color = DefaultCategoryColor
	}

	if _, err := r.db.NewInsert().Model(category).Exec(ctx); err != nil {
		return nil, err
	}
	return category, nil
}

func (r *CategoriesRepository) Update(ctx context.Context, category *Category) (*Category, error) {
	res, err := r.db.NewUpdate().
		Model(category).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": category.ID.String()})
	}

	return r.GetByID(ctx, category.ID)
}

func (r *CategoriesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Category)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
