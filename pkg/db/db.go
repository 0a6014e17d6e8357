package db

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/sheetssql"
)

// Schema returns the spreadsheet schema of the run history tables
func Schema() (*sheetssql.Schema, error) {
	return sheetssql.SchemaFromModels(RosterRun{}, RosterAssignment{}, RosterStatistic{})
}

// DB provides database operations using SheetsSQL
type DB struct {
	ssql *sheetssql.DB
}

// NewDB creates a new database instance
func NewDB(ssql *sheetssql.DB) *DB {
	return &DB{ssql: ssql}
}

// Open connects to the spreadsheet and creates any missing run history tab
func Open(client sheetssql.SheetsClient, spreadsheetID string) (*DB, error) {
	schema, err := Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	ssql, err := sheetssql.NewDB(client, spreadsheetID, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheets database: %w", err)
	}
	return NewDB(ssql), nil
}

// Close is a no-op for SheetsSQL
func (db *DB) Close() {}
