package grid

// Cell addresses one cell by dataset row index and column index.
type Cell struct {
	Row int
	Col int
}

// Selection tracks the focused cell, the selected rows and the inline
// edit buffer of the focused cell.
type Selection struct {
	focused  Cell
	hasFocus bool

	selected map[string]struct{}
	anchor   string

	editing  bool
	buffer   string
	original string
}

func NewSelection() *Selection {
	return &Selection{selected: make(map[string]struct{})}
}

// Focus moves focus to a cell. Any edit in progress is discarded.
func (s *Selection) Focus(row, col int) {
	if row < 0 || col < 0 {
		s.Blur()
		return
	}
	if s.hasFocus && s.focused.Row == row && s.focused.Col == col {
		return
	}
	s.Cancel()
	s.focused = Cell{Row: row, Col: col}
	s.hasFocus = true
}

// Blur clears focus. Callers commit a pending edit first.
func (s *Selection) Blur() {
	s.Cancel()
	s.hasFocus = false
	s.focused = Cell{}
}

func (s *Selection) Focused() (Cell, bool) {
	return s.focused, s.hasFocus
}

// ToggleRow flips membership of a row and makes it the range anchor.
func (s *Selection) ToggleRow(key string) {
	if _, ok := s.selected[key]; ok {
		delete(s.selected, key)
	} else {
		s.selected[key] = struct{}{}
	}
	s.anchor = key
}

// SelectRange selects every row between a and b (inclusive) in order.
func (s *Selection) SelectRange(a, b string, order []string) {
	ia, ib := -1, -1
	for i, key := range order {
		if key == a {
			ia = i
		}
		if key == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return
	}
	if ia > ib {
		ia, ib = ib, ia
	}
	for _, key := range order[ia : ib+1] {
		s.selected[key] = struct{}{}
	}
	s.anchor = b
}

// Anchor is the last row toggled or range-selected.
func (s *Selection) Anchor() string {
	return s.anchor
}

func (s *Selection) ClearSelection() {
	s.selected = make(map[string]struct{})
	s.anchor = ""
}

func (s *Selection) IsSelected(key string) bool {
	_, ok := s.selected[key]
	return ok
}

func (s *Selection) SelectedCount() int {
	return len(s.selected)
}

// SelectedKeys returns the selected keys following order.
func (s *Selection) SelectedKeys(order []string) []string {
	var out []string
	for _, key := range order {
		if _, ok := s.selected[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

// Forget drops a row from the selection, e.g. after deletion.
func (s *Selection) Forget(key string) {
	delete(s.selected, key)
	if s.anchor == key {
		s.anchor = ""
	}
}

// Rekey carries selection state over to a row's new key.
func (s *Selection) Rekey(oldKey, newKey string) {
	if _, ok := s.selected[oldKey]; ok {
		delete(s.selected, oldKey)
		s.selected[newKey] = struct{}{}
	}
	if s.anchor == oldKey {
		s.anchor = newKey
	}
}

// --- Edit mode ---

func (s *Selection) Editing() bool {
	return s.editing
}

func (s *Selection) Buffer() string {
	return s.buffer
}

// TypeRune handles a printable key. On a focused cell that is not being
// edited it enters edit mode with the buffer seeded by r; while editing it
// appends r.
func (s *Selection) TypeRune(r rune, current string) bool {
	if !s.hasFocus {
		return false
	}
	if !s.editing {
		s.editing = true
		s.original = current
		s.buffer = string(r)
		return true
	}
	s.buffer += string(r)
	return true
}

// BeginEdit enters edit mode keeping the current value (Enter).
func (s *Selection) BeginEdit(current string) bool {
	if !s.hasFocus || s.editing {
		return false
	}
	s.editing = true
	s.original = current
	s.buffer = current
	return true
}

// Backspace removes the last rune of the buffer.
func (s *Selection) Backspace() {
	if !s.editing || s.buffer == "" {
		return
	}
	r := []rune(s.buffer)
	s.buffer = string(r[:len(r)-1])
}

// Cancel leaves edit mode and discards the buffer (Escape).
func (s *Selection) Cancel() {
	s.editing = false
	s.buffer = ""
	s.original = ""
}

// Commit leaves edit mode. changed is false when the buffer equals the
// value editing started from, in which case there is nothing to save.
func (s *Selection) Commit() (value string, changed bool) {
	if !s.editing {
		return "", false
	}
	value = s.buffer
	changed = value != s.original
	s.Cancel()
	return value, changed
}
