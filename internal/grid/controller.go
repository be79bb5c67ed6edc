// Package grid is the editing engine behind the locations table: value
// coercion per column type, paste parsing, undo, selection, and the
// controller that applies optimistic changes and reconciles them with the
// store.
package grid

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type cellKey struct {
	row string
	col string
}

// cellState tracks the persistence of one cell. version is bumped on every
// local change; sent is the version of the update in flight (0 when none);
// confirmed is the last value the store acknowledged.
type cellState struct {
	version          uint64
	sent             uint64
	confirmed        any
	confirmedVersion uint64
}

// deleteState tracks a deletion whose remote call has not completed.
type deleteState struct {
	keys      []string
	snapshots []RowSnapshot
	undone    bool
}

// Controller is the only mutator of the dataset. Every operation applies
// its change to local state immediately and returns the commands that
// persist it; command results come back through Apply.
//
// Controller is not safe for concurrent use. It is driven from a single
// event loop.
type Controller struct {
	source  ScopeSource
	scope   Scope
	columns []Column
	rows    []Row

	undo *UndoStack
	sel  *Selection

	newKey func() string
	nextID uint64

	cells           map[cellKey]*cellState
	creating        map[string]uint64
	deleteOnConfirm map[string]bool
	deletes         map[uint64]*deleteState
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithUndoDepth bounds the undo stack.
func WithUndoDepth(depth int) ControllerOption {
	return func(c *Controller) { c.undo = NewUndoStack(depth) }
}

// WithKeyFunc replaces the temporary key generator.
func WithKeyFunc(fn func() string) ControllerOption {
	return func(c *Controller) { c.newKey = fn }
}

// NewController creates a controller for the dataset identified by scope.
func NewController(scope Scope, source ScopeSource, columns []Column, opts ...ControllerOption) *Controller {
	c := &Controller{
		source:  source,
		scope:   scope,
		columns: columns,
		undo:    NewUndoStack(DefaultUndoDepth),
		sel:     NewSelection(),
		newKey:  NewTempKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset()
	return c
}

func (c *Controller) reset() {
	c.rows = nil
	c.undo.Clear()
	c.sel = NewSelection()
	c.cells = make(map[cellKey]*cellState)
	c.creating = make(map[string]uint64)
	c.deleteOnConfirm = make(map[string]bool)
	c.deletes = make(map[uint64]*deleteState)
}

// Load replaces the dataset with rows read from the store.
func (c *Controller) Load(rows []Row) {
	c.reset()
	c.rows = make([]Row, len(rows))
	for i, r := range rows {
		c.rows[i] = r.Clone()
		if c.rows[i].Values == nil {
			c.rows[i].Values = make(map[string]any)
		}
	}
}

// --- Read access ---

func (c *Controller) Scope() Scope { return c.scope }
func (c *Controller) Columns() []Column { return c.columns }
func (c *Controller) Len() int { return len(c.rows) }
func (c *Controller) Selection() *Selection { return c.sel }
func (c *Controller) CanUndo() bool { return c.undo.Size() > 0 }
func (c *Controller) UndoStack() *UndoStack { return c.undo }

// Rows returns a copy of the dataset in display order.
func (c *Controller) Rows() []Row {
	out := make([]Row, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.Clone()
	}
	return out
}

// Keys returns the row keys in display order.
func (c *Controller) Keys() []string {
	keys := make([]string, len(c.rows))
	for i, r := range c.rows {
		keys[i] = r.Key
	}
	return keys
}

// Row returns a copy of the row with key.
func (c *Controller) Row(key string) (Row, bool) {
	i := c.indexOf(key)
	if i < 0 {
		return Row{}, false
	}
	return c.rows[i].Clone(), true
}

// Pending reports whether a change to the row (column == "") or to one of
// its cells has been applied locally but not confirmed by the store.
func (c *Controller) Pending(key, column string) bool {
	if column == "" {
		if _, ok := c.creating[key]; ok {
			return true
		}
		for k, cs := range c.cells {
			if k.row == key && cs.pending() {
				return true
			}
		}
		return false
	}
	if _, ok := c.creating[key]; ok {
		return true
	}
	cs, ok := c.cells[cellKey{row: key, col: column}]
	return ok && cs.pending()
}

func (cs *cellState) pending() bool {
	return cs.sent != 0 || cs.version > cs.confirmedVersion
}

// --- Mutations ---

// EditCell sets a cell from edit text. It is a no-op when the normalized
// value equals the stored one.
func (c *Controller) EditCell(rowKey, column, text string) ([]Command, error) {
	if err := c.checkScope(); err != nil {
		return nil, err
	}
	idx := c.indexOf(rowKey)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRow, rowKey)
	}
	ci := ColumnIndex(c.columns, column)
	if ci < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	col := c.columns[ci]
	if col.ReadOnly {
		return nil, fmt.Errorf("%w: %s is read-only", ErrValidation, col.Label)
	}
	value := ToStored(text, col)
	if value == nil && col.Required {
		return nil, fmt.Errorf("%w: %s is required", ErrValidation, col.Label)
	}
	current := c.rows[idx].Values[column]
	if Equal(current, value) {
		return nil, nil
	}

	snapshot := c.rows[idx].Clone()
	cs := c.cell(rowKey, column, current)
	c.rows[idx].Values[column] = value
	cs.version++

	c.undo.Push(UndoEntry{
		ID:      c.id(),
		Op:      OpCellEdit,
		Inverse: []RowSnapshot{{Index: idx, Row: snapshot}},
		Column:  column,
		Version: cs.version,
	})
	return c.flushCell(rowKey, column), nil
}

// AddRow appends a new row built from defaults (edit text per column).
func (c *Controller) AddRow(defaults map[string]string) ([]Command, error) {
	if err := c.checkScope(); err != nil {
		return nil, err
	}
	row, err := c.buildRow(RawRow(defaults), c.sequenceStart())
	if err != nil {
		return nil, err
	}
	idx := len(c.rows)
	c.rows = append(c.rows, row)

	entry := UndoEntry{ID: c.id(), Op: OpRowAdd, Inverse: []RowSnapshot{{Index: idx, Row: row.Clone()}}}
	c.undo.Push(entry)
	return []Command{c.createCommand([]Row{row}, entry.ID)}, nil
}

// DuplicateRows appends a copy of each row in keys, in dataset order.
// Sequence columns are regenerated and unique columns cleared.
func (c *Controller) DuplicateRows(keys []string) ([]Command, error) {
	if err := c.checkScope(); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	seq := c.sequenceStart()
	var copies []Row
	for _, r := range c.rows {
		if !want[r.Key] {
			continue
		}
		dup := r.Clone()
		dup.Key = c.newKey()
		dup.Temp = true
		for _, col := range c.columns {
			switch {
			case col.Sequence:
				dup.Values[col.Key] = float64(seq[col.Key])
				seq[col.Key]++
			case col.Unique:
				delete(dup.Values, col.Key)
			}
		}
		copies = append(copies, dup)
	}
	if len(copies) == 0 {
		return nil, nil
	}
	return c.appendBatch(copies, OpRowDuplicate), nil
}

// DeleteRows removes rows locally and queues their remote deletion.
func (c *Controller) DeleteRows(keys []string) ([]Command, error) {
	if err := c.checkScope(); err != nil {
		return nil, err
	}
	snapshots := c.removeRows(keys)
	if len(snapshots) == 0 {
		return nil, nil
	}
	entry := UndoEntry{ID: c.id(), Op: OpRowDelete, Inverse: snapshots}
	c.undo.Push(entry)

	var persisted []string
	var persistedSnaps []RowSnapshot
	for _, s := range snapshots {
		if s.Row.Temp {
			c.deleteOnConfirm[s.Row.Key] = true
			continue
		}
		persisted = append(persisted, s.Row.Key)
		persistedSnaps = append(persistedSnaps, s)
	}
	if len(persisted) == 0 {
		return nil, nil
	}
	c.deletes[entry.ID] = &deleteState{keys: persisted, snapshots: persistedSnaps}
	return []Command{DeleteRows{ID: c.id(), Scope: c.scope, Keys: persisted, Entry: entry.ID}}, nil
}

// BulkImport appends parsed rows as one batch covered by one undo entry.
// Any row failing validation rejects the whole import.
func (c *Controller) BulkImport(raw []RawRow) ([]Command, error) {
	if err := c.checkScope(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	seq := c.sequenceStart()
	rows := make([]Row, 0, len(raw))
	for i, r := range raw {
		row, err := c.buildRow(r, seq)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return c.appendBatch(rows, OpBulkImport), nil
}

// Undo reverts the newest undo entry. With nothing to undo it does
// nothing.
func (c *Controller) Undo() ([]Command, error) {
	if !c.CanUndo() {
		return nil, nil
	}
	if err := c.checkScope(); err != nil {
		return nil, err
	}
	entry, _ := c.undo.Pop()
	switch entry.Op {
	case OpCellEdit:
		return c.undoCellEdit(entry), nil
	case OpRowAdd, OpRowDuplicate, OpBulkImport:
		keys := make([]string, len(entry.Inverse))
		for i, s := range entry.Inverse {
			keys[i] = s.Row.Key
		}
		return c.discardRows(keys), nil
	case OpRowDelete:
		return c.undoDelete(entry), nil
	}
	return nil, fmt.Errorf("unknown undo operation %q", entry.Op)
}

func (c *Controller) undoCellEdit(entry UndoEntry) []Command {
	if len(entry.Inverse) == 0 {
		return nil
	}
	prior := entry.Inverse[0].Row
	idx := c.indexOf(prior.Key)
	if idx < 0 {
		return nil
	}
	current := c.rows[idx].Values[entry.Column]
	value := prior.Values[entry.Column]
	if Equal(current, value) {
		return nil
	}
	cs := c.cell(prior.Key, entry.Column, current)
	c.rows[idx].Values[entry.Column] = value
	cs.version++
	return c.flushCell(prior.Key, entry.Column)
}

// discardRows removes rows without recording an undo entry and deletes
// whatever already reached the store.
func (c *Controller) discardRows(keys []string) []Command {
	snapshots := c.removeRows(keys)
	var persisted []string
	for _, s := range snapshots {
		if s.Row.Temp {
			c.deleteOnConfirm[s.Row.Key] = true
			continue
		}
		persisted = append(persisted, s.Row.Key)
	}
	if len(persisted) == 0 {
		return nil
	}
	return []Command{DeleteRows{ID: c.id(), Scope: c.scope, Keys: persisted}}
}

func (c *Controller) undoDelete(entry UndoEntry) []Command {
	state := c.deletes[entry.ID]
	var recreate []Row
	for _, s := range entry.Inverse {
		if c.indexOf(s.Row.Key) >= 0 {
			continue
		}
		row := s.Row.Clone()
		switch {
		case row.Temp && c.deleteOnConfirm[row.Key]:
			// Its create has not confirmed yet; keep waiting for it.
			delete(c.deleteOnConfirm, row.Key)
		case !row.Temp && state != nil:
			// The remote delete is still in flight; its result decides.
		default:
			old := row.Key
			row.Key = c.newKey()
			row.Temp = true
			c.undo.RekeyRow(old, row.Key, true)
			c.sel.Rekey(old, row.Key)
			recreate = append(recreate, row)
		}
		c.insertAt(s.Index, row)
	}
	if state != nil {
		state.undone = true
	}
	if len(recreate) == 0 {
		return nil
	}
	return []Command{c.createCommand(recreate, 0)}
}

// --- Reconciliation ---

// Apply reconciles a command result with local state. It returns follow-up
// commands and the error to surface, if any.
func (c *Controller) Apply(res Result) ([]Command, error) {
	switch cmd := res.Command.(type) {
	case CreateRows:
		return c.applyCreate(cmd, res)
	case UpdateCell:
		return c.applyUpdate(cmd, res)
	case DeleteRows:
		return c.applyDelete(cmd, res)
	}
	return nil, fmt.Errorf("unknown command %T", res.Command)
}

func (c *Controller) applyCreate(cmd CreateRows, res Result) ([]Command, error) {
	if res.Err != nil {
		var keys []string
		for _, r := range cmd.Rows {
			delete(c.creating, r.Key)
			if c.deleteOnConfirm[r.Key] {
				delete(c.deleteOnConfirm, r.Key)
				continue
			}
			keys = append(keys, r.Key)
		}
		c.removeRows(keys)
		if cmd.Entry != 0 {
			c.undo.Remove(cmd.Entry)
		}
		c.dropUndoFor(keys)
		log.Warn().Err(res.Err).Int("rows", len(cmd.Rows)).Msg("create failed, rolled back")
		return nil, fmt.Errorf("save new rows: %w", res.Err)
	}

	var out []Command
	var orphans []string
	for i, sent := range cmd.Rows {
		tempKey := sent.Key
		persisted := res.Rows[i]
		delete(c.creating, tempKey)

		if c.deleteOnConfirm[tempKey] {
			delete(c.deleteOnConfirm, tempKey)
			orphans = append(orphans, persisted.Key)
			continue
		}
		idx := c.indexOf(tempKey)
		if idx < 0 {
			continue
		}
		// A realtime insert may have delivered the row already.
		if dup := c.indexOf(persisted.Key); dup >= 0 && dup != idx {
			c.rows = append(c.rows[:dup], c.rows[dup+1:]...)
			if dup < idx {
				idx--
			}
		}
		c.rows[idx].Key = persisted.Key
		c.rows[idx].Temp = false
		for k, v := range persisted.Values {
			if c.rows[idx].Values[k] == nil && v != nil {
				c.rows[idx].Values[k] = v
			}
		}
		c.undo.RekeyRow(tempKey, persisted.Key, false)
		c.sel.Rekey(tempKey, persisted.Key)
		out = append(out, c.rekeyCells(tempKey, persisted.Key, sent)...)
	}
	if len(orphans) > 0 {
		out = append(out, DeleteRows{ID: c.id(), Scope: c.scope, Keys: orphans})
	}
	return out, nil
}

// rekeyCells moves cell state to the store key and sends edits made while
// the create was in flight.
func (c *Controller) rekeyCells(tempKey, key string, sent Row) []Command {
	for k, cs := range c.cells {
		if k.row != tempKey {
			continue
		}
		delete(c.cells, k)
		cs.confirmed = sent.Values[k.col]
		cs.confirmedVersion = 0
		c.cells[cellKey{row: key, col: k.col}] = cs
	}
	return c.flushRow(key)
}

// flushRow sends every unsent cell edit of a row in column order.
func (c *Controller) flushRow(key string) []Command {
	var out []Command
	for _, col := range c.columns {
		if _, ok := c.cells[cellKey{row: key, col: col.Key}]; ok {
			out = append(out, c.flushCell(key, col.Key)...)
		}
	}
	return out
}

// moveCells carries cell state over to a row's new key.
func (c *Controller) moveCells(oldKey, newKey string) {
	for k, cs := range c.cells {
		if k.row == oldKey {
			delete(c.cells, k)
			c.cells[cellKey{row: newKey, col: k.col}] = cs
		}
	}
}

func (c *Controller) applyUpdate(cmd UpdateCell, res Result) ([]Command, error) {
	k := cellKey{row: cmd.RowKey, col: cmd.Column}
	cs, ok := c.cells[k]
	if !ok {
		// Row was reloaded or removed since the command was issued.
		if res.Err != nil && !errors.Is(res.Err, ErrStaleRow) {
			return nil, fmt.Errorf("save %s: %w", cmd.Column, res.Err)
		}
		return nil, nil
	}
	if cs.sent == cmd.Version {
		cs.sent = 0
	}

	if res.Err != nil {
		if errors.Is(res.Err, ErrStaleRow) {
			c.removeRows([]string{cmd.RowKey})
			c.dropUndoFor([]string{cmd.RowKey})
			log.Warn().Str("row", cmd.RowKey).Msg("row removed remotely, dropped locally")
			return nil, fmt.Errorf("%w: %s", ErrStaleRow, cmd.RowKey)
		}
		idx := c.indexOf(cmd.RowKey)
		if idx >= 0 {
			c.rows[idx].Values[cmd.Column] = cs.confirmed
		}
		since := cs.confirmedVersion
		c.undo.RemoveFunc(func(e UndoEntry) bool {
			return e.Op == OpCellEdit && e.Column == cmd.Column && e.Version > since &&
				len(e.Inverse) > 0 && e.Inverse[0].Row.Key == cmd.RowKey
		})
		cs.version++
		cs.confirmedVersion = cs.version
		log.Warn().Err(res.Err).Str("row", cmd.RowKey).Str("column", cmd.Column).Msg("cell save failed, rolled back")
		return nil, fmt.Errorf("save %s: %w", cmd.Column, res.Err)
	}

	if cmd.Version >= cs.confirmedVersion {
		cs.confirmed = cmd.Value
		cs.confirmedVersion = cmd.Version
	}
	return c.flushCell(cmd.RowKey, cmd.Column), nil
}

func (c *Controller) applyDelete(cmd DeleteRows, res Result) ([]Command, error) {
	state := c.deletes[cmd.Entry]
	delete(c.deletes, cmd.Entry)

	if res.Err == nil || errors.Is(res.Err, ErrStaleRow) {
		if state == nil || !state.undone {
			return nil, nil
		}
		// Undone while in flight: the rows are back locally but gone
		// remotely, so create them again with their current values.
		var recreate []Row
		for _, key := range state.keys {
			idx := c.indexOf(key)
			if idx < 0 {
				continue
			}
			newKey := c.newKey()
			c.sel.Rekey(key, newKey)
			c.undo.RekeyRow(key, newKey, true)
			c.moveCells(key, newKey)
			c.rows[idx].Key = newKey
			c.rows[idx].Temp = true
			recreate = append(recreate, c.rows[idx].Clone())
		}
		if len(recreate) == 0 {
			return nil, nil
		}
		return []Command{c.createCommand(recreate, 0)}, nil
	}

	log.Warn().Err(res.Err).Strs("rows", cmd.Keys).Msg("delete failed")
	if state == nil {
		return nil, fmt.Errorf("delete rows: %w", res.Err)
	}
	if state.undone {
		// The rows were restored locally and still exist remotely; send
		// any edits made in the meantime.
		var out []Command
		for _, key := range state.keys {
			out = append(out, c.flushRow(key)...)
		}
		return out, fmt.Errorf("delete rows: %w", res.Err)
	}
	c.undo.Remove(cmd.Entry)
	for _, s := range state.snapshots {
		if c.indexOf(s.Row.Key) < 0 {
			c.insertAt(s.Index, s.Row.Clone())
		}
	}
	return nil, fmt.Errorf("delete rows: %w", res.Err)
}

// --- Remote changes ---

// ChangeType is the kind of a realtime change.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Change is a mutation made by another session.
type Change struct {
	Type  ChangeType
	Scope Scope
	Row   Row
}

// ApplyRemote folds a change from another session into the dataset. Cells
// with unconfirmed local edits keep their local value. It reports whether
// the dataset changed.
func (c *Controller) ApplyRemote(ch Change) bool {
	if ch.Scope.OrganizationID != c.scope.OrganizationID ||
		(ch.Scope.ClientID != "" && c.scope.ClientID != "" && ch.Scope.ClientID != c.scope.ClientID) {
		return false
	}
	idx := c.indexOf(ch.Row.Key)
	switch ch.Type {
	case ChangeDelete:
		if idx < 0 {
			return false
		}
		c.removeRows([]string{ch.Row.Key})
		c.dropUndoFor([]string{ch.Row.Key})
		return true
	case ChangeInsert:
		if idx >= 0 {
			return false
		}
		row := ch.Row.Clone()
		row.Temp = false
		c.rows = append(c.rows, row)
		return true
	case ChangeUpdate:
		if idx < 0 {
			return false
		}
		changed := false
		for _, col := range c.columns {
			v, ok := ch.Row.Values[col.Key]
			if !ok {
				continue
			}
			if cs, tracked := c.cells[cellKey{row: ch.Row.Key, col: col.Key}]; tracked {
				if cs.pending() {
					continue
				}
				cs.confirmed = v
			}
			if !Equal(c.rows[idx].Values[col.Key], v) {
				c.rows[idx].Values[col.Key] = v
				changed = true
			}
		}
		return changed
	}
	return false
}

// --- Helpers ---

func (c *Controller) checkScope() error {
	if c.source == nil {
		return ErrNoSession
	}
	s, err := c.source.Scope()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if s.OrganizationID == "" {
		return ErrNoSession
	}
	if s.OrganizationID != c.scope.OrganizationID {
		return ErrScopeMismatch
	}
	return nil
}

func (c *Controller) id() uint64 {
	c.nextID++
	return c.nextID
}

func (c *Controller) indexOf(key string) int {
	for i, r := range c.rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

func (c *Controller) cell(row, col string, current any) *cellState {
	k := cellKey{row: row, col: col}
	cs, ok := c.cells[k]
	if !ok {
		cs = &cellState{confirmed: current}
		c.cells[k] = cs
	}
	return cs
}

// held reports whether a row cannot receive updates yet: it is not created
// remotely, or it was restored while its deletion is still in flight.
func (c *Controller) held(r Row) bool {
	if r.Temp {
		return true
	}
	for _, d := range c.deletes {
		if !d.undone {
			continue
		}
		for _, k := range d.keys {
			if k == r.Key {
				return true
			}
		}
	}
	return false
}

// flushCell sends the latest local value of a cell unless an update for
// it is already in flight or the row is not persisted yet. The in-flight
// update's completion calls back here, so only the newest value is ever
// sent after it.
func (c *Controller) flushCell(rowKey, column string) []Command {
	cs, ok := c.cells[cellKey{row: rowKey, col: column}]
	if !ok || cs.sent != 0 || cs.version <= cs.confirmedVersion {
		return nil
	}
	idx := c.indexOf(rowKey)
	if idx < 0 || c.held(c.rows[idx]) {
		return nil
	}
	value := c.rows[idx].Values[column]
	if Equal(value, cs.confirmed) {
		cs.confirmedVersion = cs.version
		return nil
	}
	cs.sent = cs.version
	return []Command{UpdateCell{
		ID:      c.id(),
		Scope:   c.scope,
		RowKey:  rowKey,
		Column:  column,
		Value:   value,
		Version: cs.version,
	}}
}

func (c *Controller) createCommand(rows []Row, entry uint64) CreateRows {
	cmd := CreateRows{ID: c.id(), Scope: c.scope, Entry: entry}
	for _, r := range rows {
		c.creating[r.Key] = cmd.ID
		cmd.Rows = append(cmd.Rows, r.Clone())
	}
	return cmd
}

func (c *Controller) appendBatch(rows []Row, op Op) []Command {
	snapshots := make([]RowSnapshot, len(rows))
	for i, r := range rows {
		snapshots[i] = RowSnapshot{Index: len(c.rows), Row: r.Clone()}
		c.rows = append(c.rows, r)
	}
	entry := UndoEntry{ID: c.id(), Op: op, Inverse: snapshots}
	c.undo.Push(entry)
	return []Command{c.createCommand(rows, entry.ID)}
}

// buildRow converts raw edit text into a new temporary row.
func (c *Controller) buildRow(raw RawRow, seq map[string]int) (Row, error) {
	row := Row{Key: c.newKey(), Temp: true, Values: make(map[string]any)}
	for _, col := range c.columns {
		if col.Sequence {
			row.Values[col.Key] = float64(seq[col.Key])
			seq[col.Key]++
			continue
		}
		if col.ReadOnly {
			continue
		}
		text, ok := raw[col.Key]
		if !ok {
			if col.Required {
				return Row{}, fmt.Errorf("%w: %s is required", ErrValidation, col.Label)
			}
			continue
		}
		v := ToStored(text, col)
		if v == nil {
			if col.Required {
				return Row{}, fmt.Errorf("%w: %s is required", ErrValidation, col.Label)
			}
			continue
		}
		row.Values[col.Key] = v
	}
	return row, nil
}

// sequenceStart returns max+1 for every sequence column.
func (c *Controller) sequenceStart() map[string]int {
	seq := make(map[string]int)
	for _, col := range c.columns {
		if !col.Sequence {
			continue
		}
		max := 0
		for _, r := range c.rows {
			if f, ok := toFloat(r.Values[col.Key]); ok && int(f) > max {
				max = int(f)
			}
		}
		seq[col.Key] = max + 1
	}
	return seq
}

// removeRows deletes rows from the dataset and returns their snapshots in
// ascending index order.
func (c *Controller) removeRows(keys []string) []RowSnapshot {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var snapshots []RowSnapshot
	kept := make([]Row, 0, len(c.rows))
	for i, r := range c.rows {
		if !want[r.Key] {
			kept = append(kept, r)
			continue
		}
		snapshots = append(snapshots, RowSnapshot{Index: i, Row: r.Clone()})
		c.sel.Forget(r.Key)
		for k := range c.cells {
			if k.row == r.Key {
				delete(c.cells, k)
			}
		}
	}
	c.rows = kept
	return snapshots
}

// insertAt places a row at index, clamped to the dataset bounds.
func (c *Controller) insertAt(index int, row Row) {
	if index < 0 {
		index = 0
	}
	if index > len(c.rows) {
		index = len(c.rows)
	}
	c.rows = append(c.rows, Row{})
	copy(c.rows[index+1:], c.rows[index:])
	c.rows[index] = row
}

// dropUndoFor discards undo entries that refer to any of keys.
func (c *Controller) dropUndoFor(keys []string) {
	if len(keys) == 0 {
		return
	}
	gone := make(map[string]bool, len(keys))
	for _, k := range keys {
		gone[k] = true
	}
	c.undo.RemoveFunc(func(e UndoEntry) bool {
		for _, s := range e.Inverse {
			if gone[s.Row.Key] {
				return true
			}
		}
		return false
	})
}
