// Package store provides all database access for the application. All
// queries are written as methods on the Store type.
package store

import (
	"database/sql"
)

// Store holds the database connection pool.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}
