package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
)

// GormCuratorGroupRepository persists curator groups.
type GormCuratorGroupRepository struct {
	*GormRepository[domain.CuratorGroup, ids.CuratorGroupID]
	db *gorm.DB
}

var applyCuratorGroupSort = MapSortApplier(map[string]string{
	"createdAt": "created_at",
})

// NewCuratorGroupRepository creates a new instance of CuratorGroupRepository.
func NewCuratorGroupRepository(db *gorm.DB) *GormCuratorGroupRepository {
	return &GormCuratorGroupRepository{
		GormRepository: NewGormRepository[domain.CuratorGroup, ids.CuratorGroupID](db, nil, applyCuratorGroupSort, nil),
		db:             db,
	}
}

func (r *GormCuratorGroupRepository) NextID(ctx context.Context) (ids.CuratorGroupID, error) {
	next, err := nextIDFromSequence(ctx, r.db, "curator_groups")
	return ids.CuratorGroupID(next), err
}
