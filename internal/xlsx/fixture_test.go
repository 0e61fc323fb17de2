package xlsx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eac-lang/eac/internal/interp"
	"github.com/eac-lang/eac/internal/xlsx"
)

func TestLoadFixtureYAMLRegistersWorkbook(t *testing.T) {
	adapter := xlsx.NewAdapter()
	require.NoError(t, xlsx.LoadFixtureYAML(adapter, "testdata/invoices.yaml"))

	reg := interp.NewRegistry()
	adapter.Register(reg)

	handle, err := reg.Call("excel.open_workbook", map[string]any{"path": "invoices.xlsx"})
	require.NoError(t, err)

	result, err := reg.Call("excel.read_table", map[string]any{
		"workbook": handle, "sheet": "Data", "range": "A1C4",
	})
	require.NoError(t, err)

	table := result.(interp.Table)
	require.Len(t, table, 3)
	assert.Equal(t, "Alice", table[0]["Name"])
	assert.Equal(t, 0.0, table[1]["Balance"])
	assert.Equal(t, "Carol", table[2]["Name"])
}

func TestLoadFixtureYAMLErrorsOnMissingFile(t *testing.T) {
	adapter := xlsx.NewAdapter()
	err := xlsx.LoadFixtureYAML(adapter, "testdata/does_not_exist.yaml")
	assert.Error(t, err)
}
