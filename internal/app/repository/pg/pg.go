package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"interview-capture/internal/app/repository"
)

//go:embed schema.sql
var schema string

// Dialect is the postgres flavour of the record store
var Dialect = repository.Dialect{
	Name:              "postgres",
	Placeholder:       repository.Dollar,
	IsUniqueViolation: isUniqueViolation,
}

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// NewPostgresDB wraps an open connection without touching the schema
func NewPostgresDB(db *sql.DB) *repository.CommonDB {
	return repository.NewCommonDB(db, Dialect)
}

// Open connects with a lib/pq connection string, verifies the connection and applies the schema
func Open(ctx context.Context, connectionString string) (*repository.CommonDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresDB(db), nil
}

// Migrate creates the tables if they do not exist
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
