package tables

import (
	"fmt"
	"strconv"
	"strings"
)

// FromValues converts spreadsheet values (header row first) into a table.
// Rows whose cells are all empty are skipped and short rows are padded.
func FromValues(name string, values [][]interface{}) (*Table, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("table %s has no header row", name)
	}

	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = strings.TrimSpace(cellString(v))
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("table %s has an empty header row", name)
	}

	t := New(name, header[0], header[1:]...)
	for i, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d of table %s has %d cells but the header has %d", i+2, name, len(row), len(header))
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		if err := t.AppendRow(strings.TrimSpace(cells[0]), cells[1:]...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Values converts the table into spreadsheet values, header row first.
// Cells holding integers are written as numbers.
func (t *Table) Values() [][]interface{} {
	values := make([][]interface{}, 0, t.NumRows()+1)

	header := make([]interface{}, 0, len(t.Columns)+1)
	for _, h := range t.Header() {
		header = append(header, h)
	}
	values = append(values, header)

	for i, label := range t.Index {
		row := make([]interface{}, 0, len(t.Columns)+1)
		row = append(row, numberOrString(label))
		for _, cell := range t.Cells[i] {
			row = append(row, numberOrString(cell))
		}
		values = append(values, row)
	}
	return values
}

func cellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}

func numberOrString(s string) interface{} {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func isBlank(row []interface{}) bool {
	for _, v := range row {
		if strings.TrimSpace(cellString(v)) != "" {
			return false
		}
	}
	return true
}
