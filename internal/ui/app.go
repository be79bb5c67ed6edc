package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/clientdesk/internal/ui/components"
)

// App is the root TUI model: banner, scope header and the locations grid.
type App struct {
	locations LocationsModel

	orgLabel    string
	clientLabel string

	width       int
	height      int
	helpOpen    bool
	quitConfirm bool
}

// NewApp creates the root application model. The labels name the
// organization and client the grid is scoped to.
func NewApp(locations LocationsModel, orgLabel, clientLabel string) App {
	return App{
		locations:   locations,
		orgLabel:    orgLabel,
		clientLabel: clientLabel,
	}
}

func (a App) Init() tea.Cmd {
	return a.locations.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if a.helpOpen {
			if isBack(msg) || isKey(msg, "f1") {
				a.helpOpen = false
			}
			return a, nil
		}
		if isQuit(msg) {
			if a.locations.hasPending() {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		}
		if isKey(msg, "f1") {
			a.helpOpen = true
			return a, nil
		}
		// Feedback lasts until the next key.
		a.locations.notice = nil
	}

	var cmd tea.Cmd
	a.locations, cmd = a.locations.Update(msg)
	return a, cmd
}

func (a App) View() string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		RenderBanner(),
		RenderScope(a.orgLabel, a.clientLabel),
	)

	content := a.locations.View()
	switch {
	case a.quitConfirm:
		content = a.renderQuitConfirm()
	case a.helpOpen:
		content = a.renderHelp()
	}

	hints := components.StatusBar(a.statusHints(), a.width)
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, content, hints)
}

func (a App) statusHints() []string {
	if a.quitConfirm {
		return []string{
			components.Hint("y", "Quit"),
			components.Hint("n", "Stay"),
		}
	}
	if a.helpOpen {
		return []string{components.Hint("esc", "Back")}
	}
	return append(a.locations.hints(),
		components.Hint("f1", "Help"),
		components.Hint("ctrl+c", "Quit"),
	)
}

var helpRows = []components.TableRow{
	{Label: "arrows, tab", Value: "Move between cells"},
	{Label: "shift+up/down", Value: "Extend the row selection"},
	{Label: "space", Value: "Select or unselect the row"},
	{Label: "enter", Value: "Edit the cell; enter again saves"},
	{Label: "typing", Value: "Replace the cell value"},
	{Label: "esc", Value: "Cancel the edit or clear the selection"},
	{Label: "ctrl+n", Value: "Add a location"},
	{Label: "ctrl+d", Value: "Duplicate selected locations"},
	{Label: "del", Value: "Delete selected locations"},
	{Label: "ctrl+z", Value: "Undo"},
	{Label: "ctrl+v", Value: "Paste a value or tab-separated rows"},
	{Label: "ctrl+y", Value: "Copy rows as tab-separated text"},
	{Label: "ctrl+f", Value: "Search name, address and city"},
	{Label: "ctrl+s", Value: "Sort by the current column"},
	{Label: "ctrl+r", Value: "Reload from the server"},
	{Label: "pgup, pgdn", Value: "Previous or next page"},
}

func (a App) renderHelp() string {
	table := components.Table("Help", helpRows, a.width)
	note := components.Muted("Paste tab-separated rows to import them; a header row is matched by name.")
	return components.Indent(table+"\n"+note, 1)
}

func (a App) renderQuitConfirm() string {
	body := "Some changes are still saving. Quit anyway?"
	return components.Indent(components.ConfirmDialog("Quit", body), 1)
}
