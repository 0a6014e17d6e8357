package sheetsclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-roster/pkg/tables"
)

type mockValuesClient struct {
	titles  []string
	values  map[string][][]interface{}
	getErr  error
	cleared []string
	created []string
	updated map[string][][]interface{}
}

func (m *mockValuesClient) GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.values[sheetRange], nil
}

func (m *mockValuesClient) UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error {
	if m.updated == nil {
		m.updated = make(map[string][][]interface{})
	}
	m.updated[sheetRange] = values
	return nil
}

func (m *mockValuesClient) ClearValues(spreadsheetID, sheetRange string) error {
	m.cleared = append(m.cleared, sheetRange)
	return nil
}

func (m *mockValuesClient) CreateSheet(spreadsheetID, sheetTitle string) (int64, error) {
	m.created = append(m.created, sheetTitle)
	return 1, nil
}

func (m *mockValuesClient) SheetTitles(spreadsheetID string) ([]string, error) {
	return m.titles, nil
}

func TestReadTable(t *testing.T) {
	client := &mockValuesClient{values: map[string][][]interface{}{
		"demand": {
			{"day", "early_shift", "middle_shift", "late_shift"},
			{"1", "2", "1", "1"},
			{"2", "1", "1", "0"},
		},
	}}

	table, err := ReadTable(client, "sheet-id", "demand")
	require.NoError(t, err)
	assert.Equal(t, "demand", table.Name)
	assert.Equal(t, []string{"1", "2"}, table.Index)
	assert.Equal(t, "2", table.Cell(0, 0))
}

func TestReadTable_Errors(t *testing.T) {
	_, err := ReadTable(&mockValuesClient{getErr: errors.New("boom")}, "sheet-id", "demand")
	assert.ErrorContains(t, err, "failed to read tab demand")

	_, err = ReadTable(&mockValuesClient{}, "sheet-id", "demand")
	assert.ErrorContains(t, err, "failed to parse tab demand")
}

func TestPublishTable_CreatesTab(t *testing.T) {
	client := &mockValuesClient{}
	table := tables.New("schedule", "worker", "day_1")
	require.NoError(t, table.AppendRow("0", "-1"))

	require.NoError(t, PublishTable(client, "sheet-id", "schedule", table))
	assert.Equal(t, []string{"schedule"}, client.created)
	assert.Empty(t, client.cleared)
	assert.Equal(t, [][]interface{}{{"worker", "day_1"}, {0, -1}}, client.updated["schedule!A1"])
}

func TestPublishTable_ReplacesExistingTab(t *testing.T) {
	client := &mockValuesClient{titles: []string{"schedule"}}
	table := tables.New("schedule", "worker", "day_1")

	require.NoError(t, PublishTable(client, "sheet-id", "schedule", table))
	assert.Empty(t, client.created)
	assert.Equal(t, []string{"schedule"}, client.cleared)
}
