// Package locations binds the grid engine to the locations table: the
// column catalog and the store adapter over the REST client.
package locations

import "github.com/gravitrone/clientdesk/internal/grid"

var occupancyOptions = []grid.Option{
	{Value: "office", Label: "Office"},
	{Value: "retail", Label: "Retail"},
	{Value: "warehouse", Label: "Warehouse"},
	{Value: "manufacturing", Label: "Manufacturing"},
	{Value: "restaurant", Label: "Restaurant"},
	{Value: "residential", Label: "Residential"},
	{Value: "healthcare", Label: "Healthcare"},
	{Value: "other", Label: "Other"},
}

var constructionOptions = []grid.Option{
	{Value: "frame", Label: "Frame"},
	{Value: "joisted_masonry", Label: "Joisted Masonry"},
	{Value: "non_combustible", Label: "Non-Combustible"},
	{Value: "masonry_non_combustible", Label: "Masonry Non-Combustible"},
	{Value: "modified_fire_resistive", Label: "Modified Fire Resistive"},
	{Value: "fire_resistive", Label: "Fire Resistive"},
}

// Columns returns the location grid columns in display order. The slice
// is fresh on every call.
func Columns() []grid.Column {
	return []grid.Column{
		{Key: "location_number", Label: "#", Type: grid.TypeNumber, Width: 4, ReadOnly: true, Sequence: true,
			Aliases: []string{"Loc #", "Location Number", "Loc No"}},
		{Key: "location_name", Label: "Location Name", Type: grid.TypeText, Width: 24, Required: true, Searchable: true,
			Aliases: []string{"Name", "Location", "Site"}},
		{Key: "address", Label: "Address", Type: grid.TypeText, Width: 26, Searchable: true,
			Aliases: []string{"Street", "Street Address", "Address 1"}},
		{Key: "city", Label: "City", Type: grid.TypeText, Width: 14, Searchable: true},
		{Key: "state", Label: "State", Type: grid.TypeText, Width: 5, Aliases: []string{"ST"}},
		{Key: "zip_code", Label: "ZIP", Type: grid.TypeText, Width: 7, Aliases: []string{"Zip", "Postal Code", "Zipcode"}},
		{Key: "occupancy", Label: "Occupancy", Type: grid.TypeSelect, Width: 13, Options: occupancyOptions,
			Aliases: []string{"Occupancy Type", "Use"}},
		{Key: "construction_type", Label: "Construction", Type: grid.TypeSelect, Width: 14, Options: constructionOptions,
			Aliases: []string{"Construction Type", "Const"}},
		{Key: "year_built", Label: "Year Built", Type: grid.TypeText, Width: 6, Aliases: []string{"Year", "Built"}},
		{Key: "square_footage", Label: "Sq Ft", Type: grid.TypeNumber, Width: 9, Aliases: []string{"Square Feet", "Square Footage", "SF"}},
		{Key: "building_value", Label: "Building Value", Type: grid.TypeCurrency, Width: 14,
			Aliases: []string{"Building", "Bldg Value", "Building Limit"}},
		{Key: "contents_value", Label: "Contents Value", Type: grid.TypeCurrency, Width: 14,
			Aliases: []string{"Contents", "BPP", "Personal Property"}},
		{Key: "business_income", Label: "Business Income", Type: grid.TypeCurrency, Width: 14,
			Aliases: []string{"BI", "Business Income Limit", "Time Element"}},
		{Key: "effective_date", Label: "Effective", Type: grid.TypeDate, Width: 10, Aliases: []string{"Effective Date", "Eff Date"}},
	}
}

// TIV is the total insured value of a row: building, contents and
// business income.
func TIV(r grid.Row) float64 {
	var total float64
	for _, key := range []string{"building_value", "contents_value", "business_income"} {
		if f, ok := r.Value(key).(float64); ok {
			total += f
		}
	}
	return total
}

// NewRowDefaults is the edit text a blank location starts from. The name
// is required, so new rows get a placeholder the user overwrites.
func NewRowDefaults() map[string]string {
	return map[string]string{"location_name": "New Location"}
}
