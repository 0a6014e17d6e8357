package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadCSV reads a table whose first record is the header and whose first field is the row label
func ReadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv for table %s: %w", name, err)
	}

	values := make([][]interface{}, len(records))
	for i, record := range records {
		values[i] = make([]interface{}, len(record))
		for j, field := range record {
			values[i][j] = field
		}
	}
	return FromValues(name, values)
}

// ReadCSVFile reads a table from a CSV file. The table is named after the file.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadCSV(name, f)
}

// WriteCSV writes the header followed by one record per row
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header()); err != nil {
		return fmt.Errorf("failed to write header of table %s: %w", t.Name, err)
	}
	for i, label := range t.Index {
		record := append([]string{label}, t.Cells[i]...)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %s of table %s: %w", label, t.Name, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the table to dir/<name>.csv and returns the path
func WriteCSVFile(dir string, t *Table) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, t.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
