package sheetssql

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestRun struct {
	ID        string `ssql_header:"id" ssql_type:"uuid"`
	Objective int    `ssql_header:"objective" ssql_type:"int"`
	Published string `ssql_header:"published" ssql_type:"timestamp"`
}

type TestShiftCount struct {
	RunID string `ssql_header:"run_id" ssql_type:"uuid"`
	Early int    `ssql_header:"early" ssql_type:"int"`
}

func openTestDB(t *testing.T, client *memClient) *DB {
	t.Helper()
	schema, err := SchemaFromModels(TestRun{}, TestShiftCount{})
	require.NoError(t, err)
	db, err := NewDB(client, "sheet-id", schema)
	require.NoError(t, err)
	return db
}

func TestSchemaFromModels(t *testing.T) {
	schema, err := SchemaFromModels(TestRun{}, &TestShiftCount{})
	require.NoError(t, err)
	require.Len(t, schema.Tables, 2)

	assert.Equal(t, "test_run", schema.Tables[0].Name)
	assert.Equal(t, []Column{
		{Name: "id", Type: "uuid"},
		{Name: "objective", Type: "int"},
		{Name: "published", Type: "timestamp"},
	}, schema.Tables[0].Columns)
	assert.Equal(t, "test_shift_count", schema.Tables[1].Name)
}

func TestSchemaFromModels_Errors(t *testing.T) {
	type missingHeader struct {
		ID string `ssql_type:"uuid"`
	}
	type missingType struct {
		ID string `ssql_header:"id"`
	}

	_, err := SchemaFromModels(missingHeader{})
	assert.ErrorContains(t, err, "missing 'ssql_header' tag")

	_, err = SchemaFromModels(missingType{})
	assert.ErrorContains(t, err, "missing 'ssql_type' tag")

	_, err = SchemaFromModels("not a struct")
	assert.ErrorContains(t, err, "must be a struct")
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"RosterRun", "roster_run"},
		{"RosterAssignment", "roster_assignment"},
		{"UUID", "u_u_i_d"},
		{"simple", "simple"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, toSnakeCase(tt.input))
		})
	}
}

func TestNewDB_CreatesMissingTables(t *testing.T) {
	client := newMemClient()
	openTestDB(t, client)

	assert.ElementsMatch(t, []string{"test_run", "test_shift_count"}, client.created)
	assert.Equal(t, [][]interface{}{
		{"id", "objective", "published"},
		{"uuid", "int", "timestamp"},
	}, client.tabs["test_run"])

	// Reopening verifies instead of creating
	client.created = nil
	openTestDB(t, client)
	assert.Empty(t, client.created)
}

func TestNewDB_SchemaMismatch(t *testing.T) {
	client := newMemClient()
	client.tabs["test_run"] = [][]interface{}{
		{"id", "score", "published"},
		{"uuid", "int", "timestamp"},
	}
	schema, err := SchemaFromModels(TestRun{})
	require.NoError(t, err)

	_, err = NewDB(client, "sheet-id", schema)
	assert.ErrorContains(t, err, "table test_run schema mismatch")
}

func TestInsertAndGet(t *testing.T) {
	db := openTestDB(t, newMemClient())

	require.NoError(t, InsertModels(db, []TestRun{
		{ID: "a", Objective: 4},
		{ID: "b", Objective: -1, Published: "2024-01-01T00:00:00Z"},
	}))
	require.NoError(t, InsertModels(db, []TestShiftCount{{RunID: "a", Early: 2}}))

	runs, err := GetTableAs[TestRun](db)
	require.NoError(t, err)
	assert.Equal(t, []TestRun{
		{ID: "a", Objective: 4},
		{ID: "b", Objective: -1, Published: "2024-01-01T00:00:00Z"},
	}, runs)

	counts, err := GetWhere(db, func(c TestShiftCount) bool { return c.RunID == "a" })
	require.NoError(t, err)
	assert.Equal(t, []TestShiftCount{{RunID: "a", Early: 2}}, counts)
}

func TestInsertModels_Empty(t *testing.T) {
	db := openTestDB(t, newMemClient())
	assert.NoError(t, InsertModels[TestRun](db, nil))
}

func TestUpdateWhere(t *testing.T) {
	db := openTestDB(t, newMemClient())
	require.NoError(t, InsertModels(db, []TestRun{{ID: "a"}, {ID: "b"}}))

	n, err := UpdateWhere(db,
		func(r TestRun) bool { return r.ID == "b" },
		func(r *TestRun) { r.Published = "2024-02-01T10:00:00Z" },
	)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runs, err := GetTableAs[TestRun](db)
	require.NoError(t, err)
	assert.Equal(t, "", runs[0].Published)
	assert.Equal(t, "2024-02-01T10:00:00Z", runs[1].Published)
}

func TestSetFieldValue(t *testing.T) {
	type record struct {
		Name   string
		Count  int
		Ratio  float64
		Active bool
	}
	var r record
	v := reflect.ValueOf(&r).Elem()

	require.NoError(t, setFieldValue(v.Field(0), "test value"))
	require.NoError(t, setFieldValue(v.Field(1), "-1"))
	require.NoError(t, setFieldValue(v.Field(2), 0.5))
	require.NoError(t, setFieldValue(v.Field(3), "true"))
	assert.Equal(t, record{Name: "test value", Count: -1, Ratio: 0.5, Active: true}, r)

	require.NoError(t, setFieldValue(v.Field(1), ""))
	assert.Equal(t, 0, r.Count)

	err := setFieldValue(v.Field(1), "not a number")
	assert.ErrorContains(t, err, "failed to parse int")
}
