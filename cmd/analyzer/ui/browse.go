package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/render"
	"github.com/crashb/javascript-analyzer/internal/store"
)

// recordItem adapts store.Record to list.Item
type recordItem struct {
	rec store.Record
}

func (i recordItem) Title() string {
	return fmt.Sprintf("%s  %s", i.rec.Exercise, shortID(i.rec.ID))
}
func (i recordItem) Description() string {
	return fmt.Sprintf("%s | %d comments | %s",
		i.rec.Status, len(i.rec.Comments), i.rec.UpdatedAt.Format("2006-01-02 15:04"))
}
func (i recordItem) FilterValue() string {
	return i.rec.Exercise + " " + i.rec.Status + " " + filepath.Base(i.rec.SolutionPath)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// BrowseModel is the store browser: a record list beside a rendered
// verdict pane.
type BrowseModel struct {
	width  int
	height int

	list     list.Model
	viewport viewport.Model
	renderer *render.Renderer

	// Focus state
	focusViewport bool
	selectedID    string

	styles Styles
}

// NewBrowseModel builds the browse view over a fixed record set.
func NewBrowseModel(records []store.Record, renderer *render.Renderer) BrowseModel {
	items := make([]list.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, recordItem{rec: rec})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Stored analyses (%d)", len(records))
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	vp := viewport.New(0, 0)
	vp.SetContent("Select an analysis to view its comments.")

	return BrowseModel{
		list:     l,
		viewport: vp,
		renderer: renderer,
		styles:   DefaultStyles(),
	}
}

// Init initializes the model.
func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "tab":
				m.focusViewport = !m.focusViewport
				return m, nil
			}
		}
	}

	// Route key events to the focused pane only; everything else goes to
	// both components.
	_, isKey := msg.(tea.KeyMsg)
	updateList := !isKey || !m.focusViewport || m.list.FilterState() == list.Filtering
	updateViewport := !isKey || (m.focusViewport && m.list.FilterState() != list.Filtering)

	if updateList {
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	if updateViewport {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Check for selection change
	if sel := m.list.SelectedItem(); sel != nil {
		item := sel.(recordItem)
		if m.selectedID != item.rec.ID {
			m.selectedID = item.rec.ID
			m.viewport.SetContent(m.renderRecord(item.rec))
			m.viewport.GotoTop()
		}
	}

	return m, tea.Batch(cmds...)
}

// renderRecord renders the stored verdict as styled markdown, falling back
// to the raw document when terminal rendering fails.
func (m BrowseModel) renderRecord(rec store.Record) string {
	header := lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Title.Render(rec.Exercise),
		m.styles.StatusStyle(rec.Status).Render(rec.Status)+"  "+
			m.styles.Muted.Render(fmt.Sprintf("%s | %dms | %s", shortID(rec.ID), rec.ElapsedMS, rec.SolutionPath)),
	)

	result := analyzer.NewResult(analyzer.Verdict(rec.Status), rec.Comments)
	doc, err := m.renderer.RenderResult(result)
	if err != nil {
		return header + "\n\n" + m.styles.Error.Render(err.Error())
	}

	wrap := m.viewport.Width - 2
	if wrap < 20 {
		wrap = 80
	}
	styled, err := render.Terminal(doc, wrap)
	if err != nil {
		return header + "\n\n" + doc
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, styled)
}

// View renders the page.
func (m BrowseModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	// Split view: List (40%) | Viewport (60%)
	listPaneWidth := int(float64(m.width) * 0.4)
	viewPaneWidth := m.width - listPaneWidth

	baseStyle := m.styles.Content.
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var listStyle, viewStyle lipgloss.Style
	if !m.focusViewport {
		listStyle = baseStyle.BorderForeground(m.styles.FocusedBorder)
		viewStyle = baseStyle.BorderForeground(m.styles.BlurredBorder)
	} else {
		listStyle = baseStyle.BorderForeground(m.styles.BlurredBorder)
		viewStyle = baseStyle.BorderForeground(m.styles.FocusedBorder)
	}

	listView := listStyle.Width(listPaneWidth - 4).Render(m.list.View())
	contentView := viewStyle.Width(viewPaneWidth - 4).Render(m.viewport.View())

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, listView, contentView)
	help := m.styles.Muted.Render(" • tab: focus switch • /: filter • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, mainView, help)
}

// SetSize updates the size.
func (m *BrowseModel) SetSize(w, h int) {
	m.width = w
	m.height = h

	// Chrome: Border(2) + Padding(2) = 4 width per pane
	chromeW := 4
	// Vertical: Border(2) = 2 height
	chromeH := 2

	paneH := h - 3 - chromeH

	listPaneWidth := int(float64(w) * 0.4)
	viewPaneWidth := w - listPaneWidth

	m.list.SetSize(listPaneWidth-chromeW, paneH)
	m.viewport.Width = viewPaneWidth - chromeW
	m.viewport.Height = paneH
}
