package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
)

// GormClassRepository persists classes.
type GormClassRepository struct {
	*GormRepository[domain.Class, ids.ClassID]
	db *gorm.DB
}

var applyClassFilter = MapFilterApplier(map[string]FilterFieldApplier{
	"name": StringInFilterFieldApplier("name"),
})

var applyClassSort = MapSortApplier(map[string]string{
	"name":      "name",
	"createdAt": "created_at",
})

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{
		GormRepository: NewGormRepository[domain.Class, ids.ClassID](db, applyClassFilter, applyClassSort, nil),
		db:             db,
	}
}

func (r *GormClassRepository) NextID(ctx context.Context) (ids.ClassID, error) {
	next, err := nextIDFromSequence(ctx, r.db, "classes")
	return ids.ClassID(next), err
}
