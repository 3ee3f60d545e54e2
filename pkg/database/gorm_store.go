package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/domain"
)

// GormStore implements domain.Store over a GORM connection.
type GormStore struct {
	db               *gorm.DB
	classRepo        domain.ClassRepository
	entityRepo       domain.EntityRepository
	curatorGroupRepo domain.CuratorGroupRepository
	voucherRepo      domain.VoucherRepository
	eventRepo        domain.EventRepository
}

// NewGormStore creates a new GormStore instance.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomic executes fn within a database transaction, handing fn a Store bound
// to that transaction.
func (s *GormStore) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

func (s *GormStore) ClassRepo() domain.ClassRepository {
	if s.classRepo == nil {
		s.classRepo = NewClassRepository(s.db)
	}
	return s.classRepo
}

func (s *GormStore) EntityRepo() domain.EntityRepository {
	if s.entityRepo == nil {
		s.entityRepo = NewEntityRepository(s.db)
	}
	return s.entityRepo
}

func (s *GormStore) CuratorGroupRepo() domain.CuratorGroupRepository {
	if s.curatorGroupRepo == nil {
		s.curatorGroupRepo = NewCuratorGroupRepository(s.db)
	}
	return s.curatorGroupRepo
}

func (s *GormStore) VoucherRepo() domain.VoucherRepository {
	if s.voucherRepo == nil {
		s.voucherRepo = NewVoucherRepository(s.db)
	}
	return s.voucherRepo
}

func (s *GormStore) EventRepo() domain.EventRepository {
	if s.eventRepo == nil {
		s.eventRepo = NewEventRepository(s.db)
	}
	return s.eventRepo
}
