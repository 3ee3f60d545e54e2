package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
)

// GormEntityRepository persists entities.
type GormEntityRepository struct {
	*GormRepository[domain.Entity, ids.EntityID]
	db *gorm.DB
}

var applyEntityFilter = MapFilterApplier(map[string]FilterFieldApplier{
	"classId": ParserInFilterFieldApplier("class_id", func(v string) (ids.ClassID, error) {
		var id uint64
		_, err := fmt.Sscanf(v, "%d", &id)
		return ids.ClassID(id), err
	}),
})

var applyEntitySort = MapSortApplier(map[string]string{
	"createdAt": "created_at",
})

// NewEntityRepository creates a new instance of EntityRepository.
func NewEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{
		GormRepository: NewGormRepository[domain.Entity, ids.EntityID](db, applyEntityFilter, applyEntitySort, nil),
		db:             db,
	}
}

func (r *GormEntityRepository) NextID(ctx context.Context) (ids.EntityID, error) {
	next, err := nextIDFromSequence(ctx, r.db, "entities")
	return ids.EntityID(next), err
}
