package sheetssql

import (
	"fmt"
	"reflect"
	"strings"
)

// SchemaFromModels builds a Schema by reflecting on struct definitions
func SchemaFromModels(models ...interface{}) (*Schema, error) {
	tables := make([]TableSchema, 0, len(models))

	for _, model := range models {
		table, err := tableSchemaFromType(reflect.TypeOf(model))
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return &Schema{Tables: tables}, nil
}

func tableSchemaFromType(t reflect.Type) (TableSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return TableSchema{}, fmt.Errorf("model must be a struct, got %s", t.Kind())
	}

	columns := make([]Column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		header := field.Tag.Get("ssql_header")
		if header == "" {
			return TableSchema{}, fmt.Errorf("field %s.%s missing 'ssql_header' tag", t.Name(), field.Name)
		}
		typ := field.Tag.Get("ssql_type")
		if typ == "" {
			return TableSchema{}, fmt.Errorf("field %s.%s missing 'ssql_type' tag", t.Name(), field.Name)
		}

		columns = append(columns, Column{Name: header, Type: typ})
	}

	if len(columns) == 0 {
		return TableSchema{}, fmt.Errorf("struct %s has no fields", t.Name())
	}

	return TableSchema{Name: toSnakeCase(t.Name()), Columns: columns}, nil
}

// toSnakeCase converts PascalCase to snake_case
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// ensureSchema verifies existing tables and creates missing ones
func (db *DB) ensureSchema() error {
	titles, err := db.client.SheetTitles(db.spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to get existing sheets: %w", err)
	}

	existing := make(map[string]bool, len(titles))
	for _, title := range titles {
		existing[title] = true
	}

	for _, table := range db.schema.Tables {
		if existing[table.Name] {
			if err := db.verifyTableSchema(table); err != nil {
				return fmt.Errorf("table %s schema mismatch: %w", table.Name, err)
			}
			continue
		}
		if err := db.createTable(table); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.Name, err)
		}
	}

	return nil
}

// verifyTableSchema checks that a table's header and type rows match the schema
func (db *DB) verifyTableSchema(table TableSchema) error {
	values, err := db.client.GetValues(db.spreadsheetID, fmt.Sprintf("%s!A1:ZZ2", table.Name))
	if err != nil {
		return fmt.Errorf("failed to read table headers: %w", err)
	}
	if len(values) < 2 {
		return fmt.Errorf("table missing header or type row")
	}

	headers, types := values[0], values[1]
	if len(headers) != len(table.Columns) {
		return fmt.Errorf("expected %d columns, found %d", len(table.Columns), len(headers))
	}

	for i, col := range table.Columns {
		if header, ok := headers[i].(string); !ok || header != col.Name {
			return fmt.Errorf("column %d: expected header '%s', got '%v'", i, col.Name, headers[i])
		}
		if i >= len(types) {
			return fmt.Errorf("missing type for column %s", col.Name)
		}
		if typ, ok := types[i].(string); !ok || typ != col.Type {
			return fmt.Errorf("column %d (%s): expected type '%s', got '%v'", i, col.Name, col.Type, types[i])
		}
	}

	return nil
}

// createTable creates a new sheet with header and type rows
func (db *DB) createTable(table TableSchema) error {
	if _, err := db.client.CreateSheet(db.spreadsheetID, table.Name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := make([]interface{}, len(table.Columns))
	types := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Name
		types[i] = col.Type
	}

	if err := db.client.AppendRows(db.spreadsheetID, table.Name, [][]interface{}{headers, types}); err != nil {
		return fmt.Errorf("failed to write headers and types: %w", err)
	}

	return nil
}
