// Package tables holds the labelled tables exchanged with the outside world: input
// tables read from CSV files or spreadsheet tabs and the schedule and statistics
// tables written back.
package tables

import (
	"fmt"
	"strings"
)

// Table is a row-labelled grid of string cells.
// The first header cell names the index, the remaining header cells name the columns.
type Table struct {
	Name      string
	IndexName string
	Columns   []string
	Index     []string
	Cells     [][]string
}

// New creates an empty table with the given header
func New(name, indexName string, columns ...string) *Table {
	return &Table{
		Name:      name,
		IndexName: indexName,
		Columns:   columns,
	}
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Index)
}

// AppendRow adds a labelled row. Missing trailing cells are stored as empty strings.
func (t *Table) AppendRow(label string, cells ...string) error {
	if len(cells) > len(t.Columns) {
		return fmt.Errorf("row %q of table %s has %d cells but only %d columns", label, t.Name, len(cells), len(t.Columns))
	}
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Index = append(t.Index, label)
	t.Cells = append(t.Cells, row)
	return nil
}

// ColumnIndex returns the position of a column, matched after trimming and ignoring case
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(name)) {
			return i, true
		}
	}
	return -1, false
}

// Cell returns the trimmed cell at (row, col)
func (t *Table) Cell(row, col int) string {
	return strings.TrimSpace(t.Cells[row][col])
}

// Row returns the cells of the row with the given label
func (t *Table) Row(label string) ([]string, bool) {
	for i, l := range t.Index {
		if l == label {
			return t.Cells[i], true
		}
	}
	return nil, false
}

// Header returns the index name followed by the column names
func (t *Table) Header() []string {
	return append([]string{t.IndexName}, t.Columns...)
}
