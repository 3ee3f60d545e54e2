package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/entitygraph/core/pkg/domain"
)

// Tabler is implemented by every persisted aggregate; GORM uses TableName to
// resolve the table a generic repository operates on.
type Tabler interface {
	TableName() string
}

// GormRepository is a base implementation of the Get/Create/Save/Delete/
// Exists/Count/List surface shared by every aggregate repository, generic
// over both the row type T and its id type ID. Unlike the teacher's
// UUID-only base, ids here vary per aggregate (ids.ClassID, ids.EntityID,
// ids.CuratorGroupID are all plain integers), so ID is a type parameter
// rather than fixed to properties.UUID.
type GormRepository[T Tabler, ID any] struct {
	db               *gorm.DB
	filterApplier    PageFilterApplier
	sortApplier      PageFilterApplier
	listPreloadPaths []string
}

// NewGormRepository creates a new instance of GormRepository.
func NewGormRepository[T Tabler, ID any](
	db *gorm.DB,
	filterApplier PageFilterApplier,
	sortApplier PageFilterApplier,
	listPreloadPaths []string,
) *GormRepository[T, ID] {
	return &GormRepository[T, ID]{
		db:               db,
		filterApplier:    filterApplier,
		sortApplier:      sortApplier,
		listPreloadPaths: listPreloadPaths,
	}
}

func (r *GormRepository[T, ID]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *GormRepository[T, ID]) Save(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *GormRepository[T, ID]) Delete(ctx context.Context, id ID) error {
	return r.db.WithContext(ctx).Delete(new(T), "id = ?", id).Error
}

func (r *GormRepository[T, ID]) Get(ctx context.Context, id ID) (*T, error) {
	entity := new(T)
	err := r.db.WithContext(ctx).Take(entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundErrorf("%w", err)
		}
		return nil, err
	}
	return entity, nil
}

func (r *GormRepository[T, ID]) List(ctx context.Context, page *domain.PageReq) (*domain.PageRes[T], error) {
	return listPaginated[T](ctx, r.db, page, r.filterApplier, r.sortApplier, r.listPreloadPaths)
}

func (r *GormRepository[T, ID]) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRepository[T, ID]) Exists(ctx context.Context, id ID) (bool, error) {
	entity := new(T)
	var exists bool
	err := r.db.WithContext(ctx).
		Select("1").
		Table((*entity).TableName()).
		Where("id = ?", id).
		Limit(1).
		Find(&exists).Error
	if err != nil {
		return false, err
	}
	return exists, nil
}

// idSequence is a durable per-namespace counter backing NextID on every
// aggregate repository. Each namespace (classes, entities, curator_groups)
// gets one row; nextIDFromSequence increments it atomically within the
// caller's transaction so ids issued inside a rolled-back Atomic call are
// not reused, matching the never-reused guarantee of pkg/ids.Sequence.
type idSequence struct {
	Name string `gorm:"primaryKey"`
	Next uint64
}

func (idSequence) TableName() string { return "id_sequences" }

func nextIDFromSequence(ctx context.Context, db *gorm.DB, name string) (uint64, error) {
	var seq idSequence
	err := db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		FirstOrCreate(&seq, idSequence{Name: name, Next: 1}).Error
	if err != nil {
		return 0, err
	}
	issued := seq.Next
	seq.Next++
	if err := db.WithContext(ctx).Save(&seq).Error; err != nil {
		return 0, err
	}
	return issued, nil
}
