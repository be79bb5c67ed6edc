package grid

import (
	"sort"
	"strings"
)

// DefaultPageSize is used when a query does not set one.
const DefaultPageSize = 25

// ViewQuery selects the visible slice of a dataset.
type ViewQuery struct {
	Term      string
	PageIndex int
	PageSize  int
	SortKey   string
	SortDesc  bool
}

// Page is the visible slice plus the numbers needed to render a pager.
type Page struct {
	Rows      []Row
	Total     int
	PageIndex int
	PageCount int
	// Start is the position of Rows[0] within the filtered rows.
	Start int
}

// Paginate filters, sorts and slices rows. It is a pure function of its
// arguments.
func Paginate(rows []Row, columns []Column, q ViewQuery) Page {
	filtered := Filter(rows, columns, q.Term)
	if q.SortKey != "" {
		SortRows(filtered, columns, q.SortKey, q.SortDesc)
	}

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	count := (len(filtered) + size - 1) / size
	if count == 0 {
		count = 1
	}
	idx := q.PageIndex
	if idx >= count {
		idx = count - 1
	}
	if idx < 0 {
		idx = 0
	}
	start := idx * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	return Page{
		Rows:      filtered[start:end],
		Total:     len(filtered),
		PageIndex: idx,
		PageCount: count,
		Start:     start,
	}
}

// Filter keeps rows whose searchable columns contain term, compared
// case-insensitively on display values. An empty term keeps everything.
func Filter(rows []Row, columns []Column, term string) []Row {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Row, 0, len(rows))
	if term == "" {
		return append(out, rows...)
	}
	for _, r := range rows {
		for _, c := range columns {
			if !c.Searchable {
				continue
			}
			if strings.Contains(strings.ToLower(ToDisplay(r.Value(c.Key), c)), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// SortRows sorts rows in place by one column, keeping the relative order
// of equal rows. Empty values sort last in both directions.
func SortRows(rows []Row, columns []Column, key string, desc bool) {
	ci := ColumnIndex(columns, key)
	if ci < 0 {
		return
	}
	col := columns[ci]
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Value(key), rows[j].Value(key)
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		cmp := compareValues(a, b, col)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareValues(a, b any, col Column) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(ToDisplay(a, col)), strings.ToLower(ToDisplay(b, col)))
}

// ViewState holds the search, sort and page settings of a grid screen.
type ViewState struct {
	query ViewQuery
}

func NewViewState(pageSize int) ViewState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return ViewState{query: ViewQuery{PageSize: pageSize}}
}

func (v ViewState) Query() ViewQuery { return v.query }

// SetSearch changes the search term and returns to the first page.
func (v *ViewState) SetSearch(term string) {
	if term == v.query.Term {
		return
	}
	v.query.Term = term
	v.query.PageIndex = 0
}

// SetPage moves to a page; Paginate clamps it.
func (v *ViewState) SetPage(idx int) {
	if idx < 0 {
		idx = 0
	}
	v.query.PageIndex = idx
}

// ToggleSort sorts by key, flipping direction when key is already active.
func (v *ViewState) ToggleSort(key string) {
	if v.query.SortKey == key {
		v.query.SortDesc = !v.query.SortDesc
		return
	}
	v.query.SortKey = key
	v.query.SortDesc = false
}
