// Package postgres stores run history in PostgreSQL.
package postgres

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	applicationName = "shift-roster"

	// migrationLockKey serialises schema changes between roster processes sharing a database
	migrationLockKey int64 = 0x726f73746572
)

// DB provides run history operations using PostgreSQL
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to the run history database. Connections are tagged with the
// application name so roster sessions can be told apart in pg_stat_activity.
func NewDB(ctx context.Context, connString string, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("Connected to run history database",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database))

	return &DB{pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.pool.Close()
}

// migration is one embedded schema file
type migration struct {
	filename string
	sql      string
	checksum string
}

// RunMigrations brings the run history schema up to date.
//
// All pending files are applied in one transaction holding an advisory lock, so two
// roster processes starting against a fresh database do not both create the tables.
// An applied file whose content has since changed is an error.
func (db *DB) RunMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	_, err = tx.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS roster_schema_migrations (
			filename TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create roster_schema_migrations table: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT filename, checksum FROM roster_schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied := make(map[string]string)
	for rows.Next() {
		var filename, checksum string
		if err := rows.Scan(&filename, &checksum); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan applied migration: %w", err)
		}
		applied[filename] = checksum
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating applied migrations: %w", err)
	}

	pending, err := pendingMigrations(migrations, applied)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		db.logger.Debug("Run history schema is up to date", zap.Int("migrations", len(migrations)))
		return nil
	}

	for _, m := range pending {
		db.logger.Debug("Applying migration", zap.String("filename", m.filename))

		if _, err := tx.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", m.filename, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO roster_schema_migrations (filename, checksum) VALUES ($1, $2)`,
			m.filename, m.checksum); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.filename, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	db.logger.Info("Migrated run history schema", zap.Int("applied", len(pending)))
	return nil
}

// pendingMigrations returns the migrations not yet applied, in order.
// applied maps filenames to the checksum recorded when they ran.
func pendingMigrations(migrations []migration, applied map[string]string) ([]migration, error) {
	known := make(map[string]bool, len(migrations))
	var pending []migration
	for _, m := range migrations {
		known[m.filename] = true
		checksum, ok := applied[m.filename]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if checksum != m.checksum {
			return nil, fmt.Errorf("migration %s was changed after it was applied", m.filename)
		}
	}

	for filename := range applied {
		if !known[filename] {
			return nil, fmt.Errorf("database has migration %s which this build does not know; upgrade shift-roster", filename)
		}
	}
	return pending, nil
}

// loadMigrations reads the embedded migrations in the order they are applied
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var filenames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			filenames = append(filenames, entry.Name())
		}
	}
	sort.Strings(filenames)

	migrations := make([]migration, 0, len(filenames))
	for _, filename := range filenames {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", filename, err)
		}
		migrations = append(migrations, newMigration(filename, string(content)))
	}
	return migrations, nil
}

func newMigration(filename, sql string) migration {
	sum := sha256.Sum256([]byte(sql))
	return migration{filename: filename, sql: sql, checksum: hex.EncodeToString(sum[:])}
}
