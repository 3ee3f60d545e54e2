package database

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/entitygraph/core/pkg/config"
	"github.com/fulcrumproject/utils/confbuilder"
	"gorm.io/gorm"
)

// TestDB contains the database connection and utility functions for tests
type TestDB struct {
	DB     *gorm.DB
	DBName string
}

func loadTestConfig(t *testing.T) *config.Config {
	cfg, err := confbuilder.New(config.Default).
		EnvPrefix(config.EnvPrefix).
		EnvFiles(".env").
		Build()
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}
	return cfg
}

// NewTestDB creates a new instance of TestDB
func NewTestDB(t *testing.T) *TestDB {
	dbName := "entitygraph_test_db"

	appConfig := loadTestConfig(t)

	// Connect to the default database to create the test database
	adminDB, err := NewConnection(&appConfig.DBConfig)
	if err != nil {
		t.Fatalf("Failed to connect to postgres database: %v", err)
	}

	sql := fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}

	sql = fmt.Sprintf("CREATE DATABASE %s", dbName)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	appConfig.DBConfig.DSN = replaceDatabaseInDSN(appConfig.DBConfig.DSN, dbName)
	db, err := NewConnection(&appConfig.DBConfig)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		DB:     db,
		DBName: dbName,
	}
}

// replaceDatabaseInDSN replaces the database name in a PostgreSQL DSN string
// Format: "host=localhost user=entitygraph password=password dbname=entitygraph_db port=5432 sslmode=disable"
func replaceDatabaseInDSN(dsn, newDBName string) string {
	re := regexp.MustCompile(`dbname=\S+`)
	return re.ReplaceAllString(dsn, "dbname="+newDBName)
}

// Cleanup removes the test database
func (tdb *TestDB) Cleanup(t *testing.T) {
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		t.Errorf("Failed to get underlying *sql.DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("Failed to close database connection: %v", err)
		return
	}

	appConfig := loadTestConfig(t)
	adminDB, err := NewConnection(&appConfig.DBConfig)
	if err != nil {
		t.Errorf("Failed to connect to postgres database: %v", err)
		return
	}

	sql := fmt.Sprintf(`
		SELECT pg_terminate_backend(pg_stat_activity.pid)
		FROM pg_stat_activity
		WHERE pg_stat_activity.datname = '%s'
		AND pid <> pg_backend_pid()`,
		tdb.DBName,
	)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Errorf("Failed to terminate database connections: %v", err)
	}

	sql = fmt.Sprintf("DROP DATABASE IF EXISTS %s", tdb.DBName)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Errorf("Failed to drop test database: %v", err)
	}
}
