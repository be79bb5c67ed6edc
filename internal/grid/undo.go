package grid

// DefaultUndoDepth bounds the undo stack when no depth is configured.
const DefaultUndoDepth = 50

// Op names the kind of mutation an undo entry reverses.
type Op string

const (
	OpCellEdit     Op = "cellEdit"
	OpRowAdd       Op = "rowAdd"
	OpRowDelete    Op = "rowDelete"
	OpRowDuplicate Op = "rowDuplicate"
	OpBulkImport   Op = "bulkImport"
)

// RowSnapshot is a deep copy of a row and the index it occupied.
type RowSnapshot struct {
	Index int
	Row   Row
}

// UndoEntry reverses one committed mutation batch. Entries carry their own
// snapshots and never point into the live dataset.
type UndoEntry struct {
	ID      uint64
	Op      Op
	Inverse []RowSnapshot

	// Column and Version are set for cell edits.
	Column  string
	Version uint64
}

// UndoStack is a bounded LIFO of undo entries. Pushing past capacity
// evicts the oldest entry.
type UndoStack struct {
	entries []UndoEntry
	depth   int
}

// NewUndoStack creates a stack holding at most depth entries.
func NewUndoStack(depth int) *UndoStack {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &UndoStack{depth: depth}
}

func (s *UndoStack) Push(e UndoEntry) {
	if len(s.entries) >= s.depth {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, e)
}

// Pop removes the newest entry. ok is false when there is nothing to undo.
func (s *UndoStack) Pop() (UndoEntry, bool) {
	if len(s.entries) == 0 {
		return UndoEntry{}, false
	}
	e := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return e, true
}

func (s *UndoStack) Clear() {
	s.entries = nil
}

func (s *UndoStack) Size() int {
	return len(s.entries)
}

// Depth is the configured capacity.
func (s *UndoStack) Depth() int {
	return s.depth
}

// Remove drops the entry with id. It reports whether one was found.
func (s *UndoStack) Remove(id uint64) bool {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveFunc drops every entry for which drop returns true.
func (s *UndoStack) RemoveFunc(drop func(UndoEntry) bool) int {
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if drop(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// RekeyRow rewrites snapshots that refer to oldKey. temp marks whether
// newKey is still awaiting its create.
func (s *UndoStack) RekeyRow(oldKey, newKey string, temp bool) {
	for i := range s.entries {
		for j := range s.entries[i].Inverse {
			if s.entries[i].Inverse[j].Row.Key == oldKey {
				s.entries[i].Inverse[j].Row.Key = newKey
				s.entries[i].Inverse[j].Row.Temp = temp
			}
		}
	}
}

