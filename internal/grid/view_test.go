package grid

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var viewColumns = []Column{
	{Key: "location_name", Label: "Location Name", Type: TypeText, Searchable: true},
	{Key: "city", Label: "City", Type: TypeText},
	{Key: "building_value", Label: "Building Value", Type: TypeCurrency},
}

func namedRows(names ...string) []Row {
	rows := make([]Row, len(names))
	for i, n := range names {
		rows[i] = Row{Key: fmt.Sprintf("loc-%d", i+1), Values: map[string]any{"location_name": n}}
	}
	return rows
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r.Values["location_name"].(string)
	}
	return out
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	rows := namedRows("Alpha Plant", "Beta Plant", "Gamma")

	for _, term := range []string{"plant", "PLANT", " Plant "} {
		page := Paginate(rows, viewColumns, ViewQuery{Term: term, PageSize: 10})
		assert.Equal(t, []string{"Alpha Plant", "Beta Plant"}, names(page.Rows), term)
		assert.Equal(t, 2, page.Total)
	}
}

func TestFilterIgnoresNonSearchableColumns(t *testing.T) {
	rows := namedRows("Alpha")
	rows[0].Values["city"] = "Plantation"

	assert.Empty(t, Filter(rows, viewColumns, "plant"))
}

func TestPaginateSlicesAndClamps(t *testing.T) {
	rows := namedRows("a", "b", "c", "d", "e")

	page := Paginate(rows, viewColumns, ViewQuery{PageIndex: 1, PageSize: 2})
	assert.Equal(t, []string{"c", "d"}, names(page.Rows))
	assert.Equal(t, 3, page.PageCount)
	assert.Equal(t, 2, page.Start)

	page = Paginate(rows, viewColumns, ViewQuery{PageIndex: 9, PageSize: 2})
	assert.Equal(t, 2, page.PageIndex)
	assert.Equal(t, []string{"e"}, names(page.Rows))

	page = Paginate(nil, viewColumns, ViewQuery{PageSize: 2})
	assert.Equal(t, 1, page.PageCount)
	assert.Empty(t, page.Rows)
}

func TestPaginateDoesNotMutateInput(t *testing.T) {
	rows := namedRows("b", "a")
	Paginate(rows, viewColumns, ViewQuery{SortKey: "location_name"})
	assert.Equal(t, []string{"b", "a"}, names(rows))
}

func TestSortRowsIsStableAndPutsEmptyLast(t *testing.T) {
	rows := []Row{
		{Key: "1", Values: map[string]any{"building_value": 200.0}},
		{Key: "2", Values: map[string]any{}},
		{Key: "3", Values: map[string]any{"building_value": 100.0}},
		{Key: "4", Values: map[string]any{"building_value": 200.0}},
	}
	SortRows(rows, viewColumns, "building_value", false)
	assert.Equal(t, []string{"3", "1", "4", "2"}, keysOf(rows))

	SortRows(rows, viewColumns, "building_value", true)
	assert.Equal(t, []string{"1", "4", "3", "2"}, keysOf(rows))
}

func TestViewStateSearchResetsPage(t *testing.T) {
	v := NewViewState(10)
	v.SetPage(3)
	assert.Equal(t, 3, v.Query().PageIndex)

	v.SetSearch("plant")
	assert.Equal(t, 0, v.Query().PageIndex)
	assert.Equal(t, "plant", v.Query().Term)

	v.ToggleSort("city")
	v.ToggleSort("city")
	assert.True(t, v.Query().SortDesc)
}

func keysOf(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}
