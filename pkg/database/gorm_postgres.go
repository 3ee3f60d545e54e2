package database

import (
	"fmt"

	"github.com/fulcrumproject/utils/gormpg"
	"github.com/fulcrumproject/utils/logging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/domain"
)

// NewConnection opens a database connection and runs migrations.
func NewConnection(conf *gormpg.Conf) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: conf.DSN,
	}), &gorm.Config{
		Logger:                                   logging.NewGormLogger(conf),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// autoMigrate performs automatic database migrations.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Class{},
		&domain.CuratorGroup{},
		&domain.Entity{},
		&domain.EntityCreationVoucher{},
		&domain.Event{},
		&idSequence{},
	)
}
