// Package db wraps a Postgres connection pool for the Video table and
// the Segment Store (§4.4).
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB wraps *sql.DB so table-specific methods live in their own files
// (videos.go, segments.go) the way the teacher splits projects.go,
// clips.go, jobs.go off of one connection.
type DB struct {
	*sql.DB
}

func New(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{DB: conn}, nil
}
