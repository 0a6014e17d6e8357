package sheetssql

import (
	"fmt"
	"strconv"
	"strings"
)

// memClient keeps tabs in memory and returns cells as formatted strings, like the Sheets API
type memClient struct {
	tabs    map[string][][]interface{}
	created []string
}

func newMemClient() *memClient {
	return &memClient{tabs: make(map[string][][]interface{})}
}

func (m *memClient) GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error) {
	tab, limit := sheetRange, 0
	if i := strings.Index(sheetRange, "!"); i >= 0 {
		tab = sheetRange[:i]
		if strings.HasSuffix(sheetRange, "2") {
			limit = 2
		}
	}
	rows, ok := m.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("no tab %s", tab)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memClient) AppendRows(spreadsheetID, sheetRange string, values [][]interface{}) error {
	for _, row := range values {
		m.tabs[sheetRange] = append(m.tabs[sheetRange], formatRow(row))
	}
	return nil
}

func (m *memClient) UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error {
	tab, cell, _ := strings.Cut(sheetRange, "!A")
	rowNum, err := strconv.Atoi(cell)
	if err != nil {
		return err
	}
	for i, row := range values {
		m.tabs[tab][rowNum-1+i] = formatRow(row)
	}
	return nil
}

func (m *memClient) CreateSheet(spreadsheetID, sheetTitle string) (int64, error) {
	m.created = append(m.created, sheetTitle)
	m.tabs[sheetTitle] = nil
	return int64(len(m.created)), nil
}

func (m *memClient) SheetTitles(spreadsheetID string) ([]string, error) {
	titles := make([]string, 0, len(m.tabs))
	for title := range m.tabs {
		titles = append(titles, title)
	}
	return titles, nil
}

func formatRow(row []interface{}) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
