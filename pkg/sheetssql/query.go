package sheetssql

import (
	"fmt"
	"reflect"
	"strconv"
)

// dataRowOffset is the sheet row number of the first record (1-based, after headers and types)
const dataRowOffset = 3

// TableName returns the table that stores records of type T
func TableName[T any]() string {
	var model T
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return toSnakeCase(t.Name())
}

// GetTableAs retrieves all records of a table
func GetTableAs[T any](db *DB) ([]T, error) {
	return GetWhere[T](db, nil)
}

// GetWhere retrieves the records of a table that satisfy match (all records if match is nil)
func GetWhere[T any](db *DB, match func(T) bool) ([]T, error) {
	records, _, err := readTable[T](db)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return records, nil
	}

	results := make([]T, 0, len(records))
	for _, r := range records {
		if match(r) {
			results = append(results, r)
		}
	}
	return results, nil
}

// InsertModels appends records to their table
func InsertModels[T any](db *DB, models []T) error {
	if len(models) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(models))
	for _, model := range models {
		rows = append(rows, rowValues(reflect.ValueOf(model)))
	}

	return db.InsertRows(TableName[T](), rows)
}

// UpdateWhere applies update to every record satisfying match and writes the rows back.
// It returns the number of updated records.
func UpdateWhere[T any](db *DB, match func(T) bool, update func(*T)) (int, error) {
	records, rowNumbers, err := readTable[T](db)
	if err != nil {
		return 0, err
	}

	table := TableName[T]()
	updated := 0
	for i := range records {
		if !match(records[i]) {
			continue
		}
		update(&records[i])

		sheetRange := fmt.Sprintf("%s!A%d", table, rowNumbers[i])
		row := rowValues(reflect.ValueOf(records[i]))
		if err := db.client.UpdateValues(db.spreadsheetID, sheetRange, [][]interface{}{row}); err != nil {
			return updated, fmt.Errorf("failed to update row %d of %s: %w", rowNumbers[i], table, err)
		}
		updated++
	}

	return updated, nil
}

// readTable maps every data row of the table to a record, returning the sheet row number of each
func readTable[T any](db *DB) ([]T, []int, error) {
	table := TableName[T]()
	values, err := db.client.GetValues(db.spreadsheetID, table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get table %s: %w", table, err)
	}
	if len(values) < dataRowOffset {
		return []T{}, nil, nil
	}

	columnIndexes := make(map[string]int)
	for i, header := range values[0] {
		if headerStr, ok := header.(string); ok {
			columnIndexes[headerStr] = i
		}
	}

	var model T
	t := reflect.TypeOf(model)
	fieldMap := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		if columnName := t.Field(i).Tag.Get("ssql_header"); columnName != "" {
			fieldMap[columnName] = i
		}
	}

	dataRows := values[dataRowOffset-1:]
	results := make([]T, 0, len(dataRows))
	rowNumbers := make([]int, 0, len(dataRows))
	for rowIdx, row := range dataRows {
		if len(row) == 0 {
			continue
		}
		result := reflect.New(t).Elem()

		for columnName, colIdx := range columnIndexes {
			fieldIdx, ok := fieldMap[columnName]
			if !ok || colIdx >= len(row) || row[colIdx] == nil {
				continue
			}
			if err := setFieldValue(result.Field(fieldIdx), row[colIdx]); err != nil {
				return nil, nil, fmt.Errorf("row %d, column %s: %w", rowIdx+dataRowOffset, columnName, err)
			}
		}

		results = append(results, result.Interface().(T))
		rowNumbers = append(rowNumbers, rowIdx+dataRowOffset)
	}

	return results, rowNumbers, nil
}

// rowValues lists the tagged field values of a record in column order
func rowValues(v reflect.Value) []interface{} {
	t := v.Type()
	row := make([]interface{}, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("ssql_header") == "" {
			continue
		}
		row = append(row, v.Field(i).Interface())
	}
	return row
}

// setFieldValue converts a sheet cell value to the field's type and sets it
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	var cellStr string
	switch v := cellValue.(type) {
	case string:
		cellStr = v
	case float64:
		cellStr = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		cellStr = strconv.FormatBool(v)
	default:
		return fmt.Errorf("unsupported cell value %T", cellValue)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cellStr == "" {
			field.SetInt(0)
			return nil
		}
		intVal, err := strconv.ParseInt(cellStr, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Float32, reflect.Float64:
		if cellStr == "" {
			field.SetFloat(0)
			return nil
		}
		floatVal, err := strconv.ParseFloat(cellStr, 64)
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		if cellStr == "" {
			field.SetBool(false)
			return nil
		}
		boolVal, err := strconv.ParseBool(cellStr)
		if err != nil {
			return fmt.Errorf("failed to parse bool: %w", err)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
