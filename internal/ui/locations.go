package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/gravitrone/clientdesk/internal/grid"
	"github.com/gravitrone/clientdesk/internal/locations"
	"github.com/gravitrone/clientdesk/internal/ui/components"
)

const commandTimeout = 30 * time.Second

// --- Messages ---

type rowsLoadedMsg struct {
	rows []grid.Row
	err  error
}

type gridResultMsg struct{ res grid.Result }

type remoteChangeMsg struct{ change grid.Change }

type feedEndedMsg struct{ err error }

type pasteReadMsg struct {
	text string
	err  error
}

type copiedMsg struct {
	rows int
	err  error
}

// ChangeSource yields changes made by other sessions.
type ChangeSource interface {
	NextChange(ctx context.Context) (grid.Change, error)
}

// Clipboard reads and writes clipboard text.
type Clipboard struct {
	Read  func() (string, error)
	Write func(string) error
}

// SystemClipboard is backed by the OS clipboard.
var SystemClipboard = Clipboard{Read: clipboard.ReadAll, Write: clipboard.WriteAll}

type notice struct {
	level string
	text  string
}

// LocationsModel is the spreadsheet screen over a grid controller. The
// controller is only touched from Update; store calls run in tea.Cmds and
// come back as gridResultMsg.
type LocationsModel struct {
	ctrl    *grid.Controller
	store   grid.Store
	load    func(ctx context.Context) ([]grid.Row, error)
	refresh func(ctx context.Context) error
	feed    ChangeSource
	clip    Clipboard

	view      grid.ViewState
	pager     paginator.Model
	search    textinput.Model
	searching bool

	// cursor within the visible page
	row int
	col int

	editKey string
	editCol int

	confirmDelete []string
	loading       bool
	notice        *notice

	width  int
	height int
}

// LocationsOption configures a LocationsModel.
type LocationsOption func(*LocationsModel)

// WithLoader sets how the dataset is (re)loaded.
func WithLoader(load func(ctx context.Context) ([]grid.Row, error)) LocationsOption {
	return func(m *LocationsModel) { m.load = load }
}

// WithRefresher runs before every store call, renewing the session when
// its token is about to expire.
func WithRefresher(refresh func(ctx context.Context) error) LocationsOption {
	return func(m *LocationsModel) { m.refresh = refresh }
}

// WithChangeSource subscribes the grid to changes from other sessions.
func WithChangeSource(feed ChangeSource) LocationsOption {
	return func(m *LocationsModel) { m.feed = feed }
}

func WithClipboard(c Clipboard) LocationsOption {
	return func(m *LocationsModel) { m.clip = c }
}

func WithPageSize(n int) LocationsOption {
	return func(m *LocationsModel) { m.view = grid.NewViewState(n) }
}

// NewLocationsModel creates the grid screen. store executes the commands
// the controller emits.
func NewLocationsModel(ctrl *grid.Controller, store grid.Store, opts ...LocationsOption) LocationsModel {
	search := textinput.New()
	search.Prompt = "search> "
	search.Placeholder = "name, address or city"
	search.CharLimit = 128

	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.KeyMap = paginator.KeyMap{
		PrevPage: key.NewBinding(key.WithKeys("pgup")),
		NextPage: key.NewBinding(key.WithKeys("pgdown")),
	}

	m := LocationsModel{
		ctrl:   ctrl,
		store:  store,
		clip:   SystemClipboard,
		view:   grid.NewViewState(grid.DefaultPageSize),
		pager:  pager,
		search: search,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.loading = m.load != nil
	m.syncFocus()
	return m
}

func (m LocationsModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForChange())
}

func (m LocationsModel) Update(msg tea.Msg) (LocationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case rowsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.ctrl.Load(msg.rows)
		m.row, m.col = 0, 0
		m.editKey = ""
		m.syncFocus()
		m.setNotice("info", fmt.Sprintf("Loaded %d locations.", len(msg.rows)))
		return m, nil

	case gridResultMsg:
		m.followRekey(msg.res)
		follow, err := m.ctrl.Apply(msg.res)
		if err != nil {
			m.fail(err)
		}
		m.clampCursor()
		return m, m.runCommands(follow)

	case remoteChangeMsg:
		if m.ctrl.ApplyRemote(msg.change) {
			log.Debug().Str("type", string(msg.change.Type)).Str("row", msg.change.Row.Key).Msg("remote change applied")
			m.clampCursor()
		}
		return m, m.waitForChange()

	case feedEndedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			log.Warn().Err(msg.err).Msg("change feed ended")
			m.setNotice("warning", "Live updates stopped. Press ctrl+r to reload.")
		}
		return m, nil

	case pasteReadMsg:
		if msg.err != nil {
			m.setNotice("error", "Clipboard unavailable: "+msg.err.Error())
			return m, nil
		}
		return m, m.importText(msg.text)

	case copiedMsg:
		if msg.err != nil {
			m.setNotice("error", "Copy failed: "+msg.err.Error())
		} else {
			m.setNotice("success", fmt.Sprintf("Copied %d rows.", msg.rows))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// --- Key handling ---

func (m LocationsModel) handleKey(msg tea.KeyMsg) (LocationsModel, tea.Cmd) {
	if m.confirmDelete != nil {
		return m.handleConfirmKey(msg)
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.ctrl.Selection().Editing() {
		return m.handleEditKey(msg)
	}
	if msg.Paste && isPrintable(msg) {
		return m, m.importText(string(msg.Runes))
	}

	sel := m.ctrl.Selection()
	switch {
	case isUp(msg):
		m.move(-1, 0)
	case isDown(msg):
		m.move(1, 0)
	case isLeft(msg), isShiftTab(msg):
		m.move(0, -1)
	case isRight(msg), isTabKey(msg):
		m.move(0, 1)
	case isKey(msg, "shift+up"):
		m.extend(-1)
	case isKey(msg, "shift+down"):
		m.extend(1)
	case isSpace(msg):
		if k, ok := m.currentKey(); ok {
			sel.ToggleRow(k)
		}
	case isBack(msg):
		sel.ClearSelection()
	case isEnter(msg):
		m.beginEdit()
	case isKey(msg, "ctrl+n"):
		return m, m.addRow()
	case isKey(msg, "ctrl+d"):
		return m, m.duplicate()
	case isDelete(msg):
		if keys := m.targetKeys(); len(keys) > 0 {
			m.confirmDelete = keys
		}
	case isKey(msg, "ctrl+z"):
		return m, m.undo()
	case isKey(msg, "ctrl+v"):
		return m, m.readClipboard()
	case isKey(msg, "ctrl+y"):
		return m, m.copyRows()
	case isKey(msg, "ctrl+f"):
		m.searching = true
		m.search.SetValue(m.view.Query().Term)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case isKey(msg, "ctrl+s"):
		m.toggleSort()
	case isKey(msg, "ctrl+r"):
		return m, m.reload()
	case isKey(msg, "pgup", "pgdown"):
		m.syncPager()
		m.pager, _ = m.pager.Update(msg)
		m.view.SetPage(m.pager.Page)
		m.row = 0
		m.syncFocus()
	case isPrintable(msg):
		m.typeRunes(msg.Runes)
	}
	return m, nil
}

func (m LocationsModel) handleEditKey(msg tea.KeyMsg) (LocationsModel, tea.Cmd) {
	sel := m.ctrl.Selection()
	switch {
	case isBack(msg):
		sel.Cancel()
		m.editKey = ""
	case isEnter(msg), isDown(msg):
		cmd := m.commitEdit()
		m.move(1, 0)
		return m, cmd
	case isUp(msg):
		cmd := m.commitEdit()
		m.move(-1, 0)
		return m, cmd
	case isTabKey(msg):
		cmd := m.commitEdit()
		m.move(0, 1)
		return m, cmd
	case isShiftTab(msg):
		cmd := m.commitEdit()
		m.move(0, -1)
		return m, cmd
	case isBackspace(msg):
		sel.Backspace()
	case isSpace(msg):
		sel.TypeRune(' ', "")
	case isPrintable(msg):
		for _, r := range msg.Runes {
			if r == '\t' || r == '\n' || r == '\r' {
				continue
			}
			sel.TypeRune(r, "")
		}
	}
	return m, nil
}

func (m LocationsModel) handleSearchKey(msg tea.KeyMsg) (LocationsModel, tea.Cmd) {
	switch {
	case isEnter(msg):
		m.searching = false
		m.search.Blur()
		return m, nil
	case isBack(msg):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.view.SetSearch("")
		m.row = 0
		m.syncFocus()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.view.SetSearch(m.search.Value())
	m.row = 0
	m.syncFocus()
	return m, cmd
}

func (m LocationsModel) handleConfirmKey(msg tea.KeyMsg) (LocationsModel, tea.Cmd) {
	switch {
	case isKey(msg, "y"):
		keys := m.confirmDelete
		m.confirmDelete = nil
		cmds, err := m.ctrl.DeleteRows(keys)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.clampCursor()
		m.setNotice("success", fmt.Sprintf("Deleted %d %s. ctrl+z to undo.", len(keys), plural(len(keys), "location")))
		return m, m.runCommands(cmds)
	case isKey(msg, "n"), isBack(msg):
		m.confirmDelete = nil
	}
	return m, nil
}

// --- Cursor ---

func (m LocationsModel) page() grid.Page {
	return grid.Paginate(m.ctrl.Rows(), m.ctrl.Columns(), m.view.Query())
}

// viewOrder is the key order of the filtered and sorted dataset.
func (m LocationsModel) viewOrder() []string {
	q := m.view.Query()
	rows := grid.Filter(m.ctrl.Rows(), m.ctrl.Columns(), q.Term)
	if q.SortKey != "" {
		grid.SortRows(rows, m.ctrl.Columns(), q.SortKey, q.SortDesc)
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func (m LocationsModel) currentKey() (string, bool) {
	p := m.page()
	if m.row < 0 || m.row >= len(p.Rows) {
		return "", false
	}
	return p.Rows[m.row].Key, true
}

func (m *LocationsModel) clampCursor() {
	p := m.page()
	if p.PageIndex != m.view.Query().PageIndex {
		m.view.SetPage(p.PageIndex)
	}
	if m.row >= len(p.Rows) {
		m.row = len(p.Rows) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if n := len(m.ctrl.Columns()); m.col >= n {
		m.col = n - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if !m.ctrl.Selection().Editing() {
		m.syncFocus()
	}
}

// syncFocus mirrors the cursor into the controller selection, which
// addresses cells by dataset index.
func (m *LocationsModel) syncFocus() {
	sel := m.ctrl.Selection()
	k, ok := m.currentKey()
	if !ok {
		sel.Blur()
		return
	}
	for i, key := range m.ctrl.Keys() {
		if key == k {
			sel.Focus(i, m.col)
			return
		}
	}
	sel.Blur()
}

func (m *LocationsModel) syncPager() {
	p := m.page()
	m.pager.TotalPages = p.PageCount
	m.pager.Page = p.PageIndex
}

// move steps the cursor, crossing page boundaries at the top and bottom.
func (m *LocationsModel) move(dr, dc int) {
	p := m.page()
	m.row += dr
	m.col += dc
	switch {
	case m.row >= len(p.Rows) && p.PageIndex < p.PageCount-1:
		m.view.SetPage(p.PageIndex + 1)
		m.row = 0
	case m.row < 0 && p.PageIndex > 0:
		m.view.SetPage(p.PageIndex - 1)
		m.row = m.view.Query().PageSize - 1
	}
	m.clampCursor()
}

func (m *LocationsModel) extend(dr int) {
	sel := m.ctrl.Selection()
	from, ok := m.currentKey()
	if !ok {
		return
	}
	if a := sel.Anchor(); a != "" {
		from = a
	}
	m.move(dr, 0)
	if to, ok := m.currentKey(); ok {
		sel.SelectRange(from, to, m.viewOrder())
	}
}

// focusKey moves the cursor onto a row, paging as needed.
func (m *LocationsModel) focusKey(key string) bool {
	for i, k := range m.viewOrder() {
		if k == key {
			size := m.view.Query().PageSize
			m.view.SetPage(i / size)
			m.row = i % size
			m.clampCursor()
			return true
		}
	}
	return false
}

// targetKeys is the selected rows, or the row under the cursor.
func (m LocationsModel) targetKeys() []string {
	if keys := m.ctrl.Selection().SelectedKeys(m.ctrl.Keys()); len(keys) > 0 {
		return keys
	}
	if k, ok := m.currentKey(); ok {
		return []string{k}
	}
	return nil
}

func (m LocationsModel) column() grid.Column {
	return m.ctrl.Columns()[m.col]
}

// --- Editing ---

func (m *LocationsModel) editable() bool {
	if _, ok := m.currentKey(); !ok {
		return false
	}
	if col := m.column(); col.ReadOnly {
		m.setNotice("warning", col.Label+" is read-only.")
		return false
	}
	return true
}

func (m *LocationsModel) currentEditText() string {
	k, _ := m.currentKey()
	row, _ := m.ctrl.Row(k)
	return grid.EditText(row.Value(m.column().Key), m.column())
}

func (m *LocationsModel) beginEdit() {
	if !m.editable() {
		return
	}
	if m.ctrl.Selection().BeginEdit(m.currentEditText()) {
		m.editKey, _ = m.currentKey()
		m.editCol = m.col
	}
}

func (m *LocationsModel) typeRunes(runes []rune) {
	if len(runes) == 0 || !m.editable() {
		return
	}
	sel := m.ctrl.Selection()
	if !sel.TypeRune(runes[0], m.currentEditText()) {
		return
	}
	m.editKey, _ = m.currentKey()
	m.editCol = m.col
	for _, r := range runes[1:] {
		sel.TypeRune(r, "")
	}
}

func (m *LocationsModel) commitEdit() tea.Cmd {
	value, changed := m.ctrl.Selection().Commit()
	key, col := m.editKey, m.editCol
	m.editKey = ""
	if !changed || key == "" {
		return nil
	}
	cmds, err := m.ctrl.EditCell(key, m.ctrl.Columns()[col].Key, value)
	if err != nil {
		m.fail(err)
		return nil
	}
	return m.runCommands(cmds)
}

// followRekey keeps an open edit attached to a row whose temporary key is
// replaced by the store key.
func (m *LocationsModel) followRekey(res grid.Result) {
	create, ok := res.Command.(grid.CreateRows)
	if !ok || res.Err != nil || m.editKey == "" {
		return
	}
	for i, r := range create.Rows {
		if r.Key == m.editKey && i < len(res.Rows) {
			m.editKey = res.Rows[i].Key
			return
		}
	}
}

// --- Row operations ---

func (m *LocationsModel) addRow() tea.Cmd {
	cmds, err := m.ctrl.AddRow(locations.NewRowDefaults())
	if err != nil {
		m.fail(err)
		return nil
	}
	keys := m.ctrl.Keys()
	if len(keys) > 0 && m.focusKey(keys[len(keys)-1]) {
		for i, c := range m.ctrl.Columns() {
			if !c.ReadOnly {
				m.col = i
				break
			}
		}
		m.syncFocus()
	}
	m.setNotice("success", "Location added.")
	return m.runCommands(cmds)
}

func (m *LocationsModel) duplicate() tea.Cmd {
	keys := m.targetKeys()
	if len(keys) == 0 {
		return nil
	}
	cmds, err := m.ctrl.DuplicateRows(keys)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.setNotice("success", fmt.Sprintf("Duplicated %d %s.", len(keys), plural(len(keys), "location")))
	return m.runCommands(cmds)
}

func (m *LocationsModel) undo() tea.Cmd {
	if !m.ctrl.CanUndo() {
		m.setNotice("info", "Nothing to undo.")
		return nil
	}
	cmds, err := m.ctrl.Undo()
	if err != nil {
		m.fail(err)
		return nil
	}
	m.clampCursor()
	m.setNotice("info", "Undone.")
	return m.runCommands(cmds)
}

// importText pastes clipboard text: a single value goes into the focused
// cell, anything tabular is appended as new rows.
func (m *LocationsModel) importText(text string) tea.Cmd {
	trimmed := strings.TrimRight(text, "\r\n")
	if trimmed != "" && !strings.ContainsAny(trimmed, "\t\n\r") {
		k, ok := m.currentKey()
		if !ok || !m.editable() {
			return nil
		}
		cmds, err := m.ctrl.EditCell(k, m.column().Key, trimmed)
		if err != nil {
			m.fail(err)
			return nil
		}
		return m.runCommands(cmds)
	}

	res := grid.ParsePaste(text, m.ctrl.Columns())
	if len(res.Rows) == 0 {
		m.setNotice("warning", "Clipboard has no rows to import.")
		return nil
	}
	cmds, err := m.ctrl.BulkImport(res.Rows)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.setNotice("success", fmt.Sprintf("Imported %d %s.", len(res.Rows), plural(len(res.Rows), "location")))
	return m.runCommands(cmds)
}

func (m LocationsModel) readClipboard() tea.Cmd {
	read := m.clip.Read
	if read == nil {
		return nil
	}
	return func() tea.Msg {
		text, err := read()
		return pasteReadMsg{text: text, err: err}
	}
}

// copyRows copies the selected rows, or every row in view, as TSV with a
// header line.
func (m LocationsModel) copyRows() tea.Cmd {
	write := m.clip.Write
	if write == nil {
		return nil
	}
	var rows []grid.Row
	if keys := m.ctrl.Selection().SelectedKeys(m.ctrl.Keys()); len(keys) > 0 {
		for _, k := range keys {
			if r, ok := m.ctrl.Row(k); ok {
				rows = append(rows, r)
			}
		}
	} else {
		for _, k := range m.viewOrder() {
			if r, ok := m.ctrl.Row(k); ok {
				rows = append(rows, r)
			}
		}
	}
	text := grid.FormatTSV(rows, m.ctrl.Columns(), true)
	return func() tea.Msg {
		return copiedMsg{rows: len(rows), err: write(text)}
	}
}

func (m *LocationsModel) toggleSort() {
	col := m.column()
	m.view.ToggleSort(col.Key)
	dir := "ascending"
	if m.view.Query().SortDesc {
		dir = "descending"
	}
	m.row = 0
	m.syncFocus()
	m.setNotice("info", fmt.Sprintf("Sorted by %s, %s.", col.Label, dir))
}

func (m *LocationsModel) reload() tea.Cmd {
	if m.load == nil {
		return nil
	}
	if m.hasPending() {
		m.setNotice("warning", "Saves in progress. Try again in a moment.")
		return nil
	}
	m.loading = true
	return m.loadCmd()
}

// hasPending reports whether any change is still waiting on the store.
func (m LocationsModel) hasPending() bool {
	for _, k := range m.ctrl.Keys() {
		if m.ctrl.Pending(k, "") {
			return true
		}
	}
	return false
}

// --- Commands ---

func (m LocationsModel) loadCmd() tea.Cmd {
	load := m.load
	if load == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		rows, err := load(ctx)
		return rowsLoadedMsg{rows: rows, err: err}
	}
}

// runCommands executes controller commands off the event loop. Each result
// returns as a gridResultMsg.
func (m LocationsModel) runCommands(cmds []grid.Command) tea.Cmd {
	store, refresh := m.store, m.refresh
	if len(cmds) == 0 || store == nil {
		return nil
	}
	batch := make([]tea.Cmd, 0, len(cmds))
	for _, c := range cmds {
		batch = append(batch, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			if refresh != nil {
				if err := refresh(ctx); err != nil {
					return gridResultMsg{res: grid.Result{Command: c, Err: fmt.Errorf("%w: %w", grid.ErrNoSession, err)}}
				}
			}
			return gridResultMsg{res: grid.Execute(ctx, store, c)}
		})
	}
	return tea.Batch(batch...)
}

func (m LocationsModel) waitForChange() tea.Cmd {
	feed := m.feed
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		ch, err := feed.NextChange(context.Background())
		if err != nil {
			return feedEndedMsg{err: err}
		}
		return remoteChangeMsg{change: ch}
	}
}

// --- Feedback ---

func (m *LocationsModel) setNotice(level, text string) {
	m.notice = &notice{level: level, text: components.SanitizeOneLine(text)}
}

func (m *LocationsModel) fail(err error) {
	log.Warn().Err(err).Msg("grid operation failed")
	m.setNotice("error", describeError(err))
}

func describeError(err error) string {
	switch {
	case errors.Is(err, grid.ErrStaleRow):
		return "That location was deleted by another user. It has been removed here."
	case errors.Is(err, grid.ErrNoSession):
		return "Not signed in. Run `clientdesk login` and try again."
	case errors.Is(err, grid.ErrScopeMismatch):
		return "Your session belongs to another organization. Reload to continue."
	case errors.Is(err, grid.ErrValidation):
		return err.Error()
	}
	return "Save failed: " + err.Error()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// --- View ---

func (m LocationsModel) View() string {
	if m.loading {
		return components.Indent(components.Box(components.Muted("Loading locations..."), m.width), 1)
	}
	if m.confirmDelete != nil {
		n := len(m.confirmDelete)
		return components.Indent(components.ConfirmDialog("Delete",
			fmt.Sprintf("Delete %d %s?", n, plural(n, "location"))), 1)
	}

	p := m.page()
	cols := m.ctrl.Columns()
	sel := m.ctrl.Selection()
	editing := sel.Editing()

	tableCols := make([]components.TableColumn, len(cols))
	for i, c := range cols {
		align := lipgloss.Left
		if c.Type == grid.TypeNumber || c.Type == grid.TypeCurrency {
			align = lipgloss.Right
		}
		width := c.Width
		if width < lipgloss.Width(c.Label) {
			width = lipgloss.Width(c.Label)
		}
		tableCols[i] = components.TableColumn{Header: c.Label, Width: width, Align: align}
	}

	state := components.GridState{
		ActiveRow: m.row,
		ActiveCol: m.col,
		Editing:   editing,
		Selected:  map[int]bool{},
		Pending:   map[[2]int]bool{},
	}
	rows := make([][]string, len(p.Rows))
	for ri, r := range p.Rows {
		if sel.IsSelected(r.Key) {
			state.Selected[ri] = true
		}
		cells := make([]string, len(cols))
		for ci, c := range cols {
			cells[ci] = grid.ToDisplay(r.Value(c.Key), c)
			if m.ctrl.Pending(r.Key, c.Key) {
				state.Pending[[2]int{ri, ci}] = true
			}
		}
		if editing && ri == m.row {
			cells[m.col] = sel.Buffer() + "▏"
		}
		rows[ri] = cells
	}

	width := m.width
	if width <= 0 {
		width = 120
	}
	body := components.TableGrid(tableCols, rows, components.FrameContentWidth(width), state)
	if len(p.Rows) == 0 {
		empty := "No locations yet. Press ctrl+n to add one or ctrl+v to paste from a spreadsheet."
		if m.view.Query().Term != "" {
			empty = "No locations match the search."
		}
		body += "\n\n" + components.Indent(MutedStyle.Render(empty), 2)
	}

	var b strings.Builder
	if m.searching || m.view.Query().Term != "" {
		b.WriteString(SearchStyle.Render(m.search.View()) + "\n\n")
	}
	b.WriteString(components.Frame("Locations", body, width))
	b.WriteString("\n")
	b.WriteString(components.StatusLine(m.statusParts(p), width))
	if m.notice != nil {
		b.WriteString("\n" + m.renderNotice())
	}
	return b.String()
}

func (m LocationsModel) statusParts(p grid.Page) []string {
	m.syncPager()
	parts := []string{
		fmt.Sprintf("%d %s", p.Total, plural(p.Total, "location")),
		"page " + m.pager.View(),
	}
	if n := m.ctrl.Selection().SelectedCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	var tiv float64
	for _, k := range m.viewOrder() {
		if r, ok := m.ctrl.Row(k); ok {
			tiv += locations.TIV(r)
		}
	}
	parts = append(parts, "TIV "+grid.ToDisplay(tiv, grid.Column{Type: grid.TypeCurrency}))
	if m.hasPending() {
		parts = append(parts, "saving…")
	}
	if q := m.view.Query(); q.SortKey != "" {
		dir := "↑"
		if q.SortDesc {
			dir = "↓"
		}
		if i := grid.ColumnIndex(m.ctrl.Columns(), q.SortKey); i >= 0 {
			parts = append(parts, "sort "+m.ctrl.Columns()[i].Label+" "+dir)
		}
	}
	return parts
}

func (m LocationsModel) renderNotice() string {
	text := "  " + m.notice.text
	switch m.notice.level {
	case "error":
		return components.ErrorBox("Error", m.notice.text, m.width)
	case "warning":
		return WarningStyle.Render(text)
	case "success":
		return SuccessStyle.Render(text)
	}
	return MutedStyle.Render(text)
}

// hints are the key hints for the current mode.
func (m LocationsModel) hints() []string {
	switch {
	case m.confirmDelete != nil:
		return []string{components.Hint("y", "Confirm"), components.Hint("n", "Cancel")}
	case m.searching:
		return []string{components.Hint("enter", "Keep"), components.Hint("esc", "Clear")}
	case m.ctrl.Selection().Editing():
		return []string{
			components.Hint("enter", "Save"),
			components.Hint("tab", "Save, next"),
			components.Hint("esc", "Cancel"),
		}
	}
	return []string{
		components.Hint("↑↓←→", "Move"),
		components.Hint("enter", "Edit"),
		components.Hint("space", "Select"),
		components.Hint("ctrl+n", "Add"),
		components.Hint("ctrl+d", "Duplicate"),
		components.Hint("del", "Delete"),
		components.Hint("ctrl+z", "Undo"),
		components.Hint("ctrl+v", "Paste"),
		components.Hint("ctrl+y", "Copy"),
		components.Hint("ctrl+f", "Search"),
		components.Hint("ctrl+s", "Sort"),
		components.Hint("pgup/pgdn", "Page"),
	}
}
