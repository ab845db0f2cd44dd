package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PgDB is the shared GORM handle the domain repositories (ships, visits,
// trips, charges, feed snapshots) are built on. The audit and api-key
// repositories use the sqlx handle in postgres.go instead.
var PgDB *gorm.DB

func InitPostgresORM(dsn string) (*gorm.DB, error) {
	orm, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	PgDB = orm
	log.Println("Connected to Postgres (GORM)")
	return orm, nil
}
