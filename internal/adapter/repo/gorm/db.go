// Package gormrepo is the projection store: a postgres mirror of the
// ledger-owned game state, used for fast reads and narrative logging. Repos
// join the ambient transaction placed in the context by TxManager.
package gormrepo

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}
