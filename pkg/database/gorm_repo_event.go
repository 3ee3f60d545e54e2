package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/domain"
)

// GormEventRepository persists the append-only event log.
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListFromSequence retrieves events strictly after fromSequenceNumber, in
// sequence order, capped at limit. Used by catch-up subscribers replaying
// the log from their last acknowledged position.
func (r *GormEventRepository) ListFromSequence(ctx context.Context, fromSequenceNumber int64, limit int) ([]*domain.Event, error) {
	var events []*domain.Event
	err := r.db.WithContext(ctx).
		Where("sequence_number > ?", fromSequenceNumber).
		Order("sequence_number ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
