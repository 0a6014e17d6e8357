// Package sheetssql stores typed records in the tabs of a Google spreadsheet.
//
// Each tab is a table: row 1 holds the column names, row 2 the column types and
// every following row one record. Records are structs whose fields carry
// `ssql_header` and `ssql_type` tags; the table name is the snake_case struct name.
package sheetssql

import (
	"fmt"
)

// SheetsClient is the subset of the sheets client used by the store
type SheetsClient interface {
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	AppendRows(spreadsheetID, sheetRange string, values [][]interface{}) error
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
	CreateSheet(spreadsheetID, sheetTitle string) (int64, error)
	SheetTitles(spreadsheetID string) ([]string, error)
}

// Column defines a column with name and type
type Column struct {
	Name string
	Type string // e.g. "text", "int", "timestamp", "uuid"
}

// TableSchema defines the structure of a table
type TableSchema struct {
	Name    string
	Columns []Column
}

// Schema defines the tables of a spreadsheet database
type Schema struct {
	Tables []TableSchema
}

// DB is a spreadsheet used as a database
type DB struct {
	client        SheetsClient
	spreadsheetID string
	schema        *Schema
}

// NewDB opens the spreadsheet and creates any table of the schema that is missing.
// Existing tables must match the schema.
func NewDB(client SheetsClient, spreadsheetID string, schema *Schema) (*DB, error) {
	db := &DB{
		client:        client,
		spreadsheetID: spreadsheetID,
		schema:        schema,
	}

	if err := db.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// SpreadsheetID returns the database spreadsheet ID
func (db *DB) SpreadsheetID() string {
	return db.spreadsheetID
}

// InsertRows appends rows to the specified table
func (db *DB) InsertRows(tableName string, rows [][]interface{}) error {
	return db.client.AppendRows(db.spreadsheetID, tableName, rows)
}
