// Package postgresdb provides a PostgreSQL-based implementation of the
// record store. Each user record is kept as a JSONB document in a row
// keyed by the sanitized identifier, so the exists/load/save contract
// is identical to the file backend.
package postgresdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/coursetrack/internal/db/storage"
	"github.com/patric-chuzhbe/coursetrack/internal/user"
)

// PostgresDB is a PostgreSQL-backed record store.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption customizes New.
type InitOption func(*initOptions)

// WithDBPreReset drops the records table before running migrations.
// Used by tests that need a clean database.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`DROP TABLE IF EXISTS user_records, goose_db_version`,
	)

	return err
}

// Exists reports whether a record row is present for id.
func (db *PostgresDB) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM user_records WHERE identifier = $1)`,
		id,
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Load fetches and decodes the record document for id.
func (db *PostgresDB) Load(ctx context.Context, id string) (*user.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`SELECT record FROM user_records WHERE identifier = $1`,
		id,
	)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, err
	}

	record := &user.Record{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, errors.Join(storage.ErrCorruptRecord, err)
	}

	return record, nil
}

// Save upserts the full record document for id.
func (db *PostgresDB) Save(ctx context.Context, id string, record *user.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshaling the record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	_, err = db.database.ExecContext(
		ctx,
		`
			INSERT INTO user_records (identifier, record)
				VALUES ($1, $2)
				ON CONFLICT (identifier) DO UPDATE
				SET record = EXCLUDED.record;
		`,
		id,
		raw,
	)

	return err
}

// Ping verifies the database connection is alive.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}
