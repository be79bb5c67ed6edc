package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gravitrone/clientdesk/internal/grid"
)

var columns = []grid.Column{
	{Key: "location_number", Label: "#", Type: grid.TypeNumber, ReadOnly: true, Sequence: true},
	{Key: "location_name", Label: "Location Name", Type: grid.TypeText, Width: 20},
	{Key: "occupancy", Label: "Occupancy", Type: grid.TypeSelect, Options: []grid.Option{{Value: "warehouse", Label: "Warehouse"}}},
	{Key: "building_value", Label: "Building Value", Type: grid.TypeCurrency},
}

var rows = []grid.Row{
	{Key: "loc-1", Values: map[string]any{"location_number": 1.0, "location_name": "Alpha Plant", "occupancy": "warehouse", "building_value": 1500000.0}},
	{Key: "loc-2", Values: map[string]any{"location_number": 2.0, "location_name": "Beta Plant"}},
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, columns, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	header, err := f.GetCellValue(SheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Location Name", header)

	label, err := f.GetCellValue(SheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Warehouse", label)

	raw, err := f.GetCellValue(SheetName, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500000", raw)

	empty, err := f.GetCellValue(SheetName, "D3")
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestExportThenImportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, columns, rows))

	text, err := ReadTSV(&buf)
	require.NoError(t, err)

	res := grid.ParsePaste(text, columns)
	require.NotNil(t, res.Headers)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Alpha Plant", res.Rows[0]["location_name"])
	assert.Equal(t, "warehouse", grid.ToStored(res.Rows[0]["occupancy"], columns[2]))
	assert.Equal(t, 1500000.0, grid.ToStored(res.Rows[0]["building_value"], columns[3]))
	assert.NotContains(t, res.Rows[0], "location_number")
}

func TestReadTSVRejectsGarbage(t *testing.T) {
	_, err := ReadTSV(bytes.NewReader([]byte("not a zip")))
	assert.Error(t, err)
}
