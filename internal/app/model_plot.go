package app

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"perfdeck/internal/logging"
	"perfdeck/internal/selection"
	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

const plotHelp = "tab switch · j/k move · space toggle · c clear · / search · n/p page · m manage · y copy link · q quit"

// resetTab rebuilds the active tab from the query. The checked set always
// comes from the URL, never from a previous reconciler.
func (m *Model) resetTab() {
	kind := m.query.Tab
	if !kind.IsValid() {
		kind = types.DimensionBranch
		m.query = m.query.WithTab(kind)
	}
	m.tab = selection.New(kind, m.query.CheckedFor(kind))
	m.list.Reset()
	m.list.SetRows(m.tab.Rows())
	m.searching = false
	m.search.Blur()
	m.search.Placeholder = "Search " + kind.Plural()
	m.search.SetValue(m.listParams(kind).Search)
}

func (m *Model) listParams(kind types.DimensionKind) types.ListParams {
	params := m.query.ListFor(kind)
	if _, ok := m.query.Lists[kind]; !ok {
		params.PerPage = m.perPage
	}
	return params.Normalized()
}

func (m *Model) startFetch() tea.Cmd {
	if m.api == nil || m.tab == nil {
		return nil
	}
	kind := m.tab.Kind()
	params := m.listParams(kind)
	m.tab.BeginFetch(params)
	m.list.SetRows(m.tab.Rows())
	m.logger.Debug("fetch dimensions",
		logging.F("kind", string(kind)),
		logging.F("page", params.Page),
		logging.F("search", params.Search),
	)
	return fetchDimensionsCmd(m.api, m.project, kind, params)
}

// applyDimensions installs a fetch result. Whichever fetch of the active
// kind completes last wins; results for another kind are dropped.
func (m *Model) applyDimensions(msg dimensionsMsg) {
	if m.tab == nil || msg.kind != m.tab.Kind() {
		m.logger.Debug("drop stale dimensions", logging.F("kind", string(msg.kind)))
		return
	}
	if msg.err != nil {
		m.logger.Error("list dimensions failed", logging.F("kind", string(msg.kind)), logging.F("err", msg.err))
		m.tab.Resolve(nil)
		m.list.SetRows(m.tab.Rows())
		m.setStatusError("load " + msg.kind.Plural() + ": " + msg.err.Error())
		return
	}
	m.tab.Resolve(msg.records)
	m.list.SetRows(m.tab.Rows())
}

func (m *Model) switchTab(kind types.DimensionKind) tea.Cmd {
	if kind == m.tab.Kind() {
		return nil
	}
	m.query = m.query.WithTab(kind)
	m.resetTab()
	return tea.Batch(m.startFetch(), m.persist())
}

func (m *Model) toggleRow(row selection.Row) tea.Cmd {
	change, ok := m.tab.Toggle(row.Index, row.Ref.Slug)
	if !ok {
		return nil
	}
	m.query = m.query.WithChecked(m.tab.Kind(), m.tab.Checked())
	m.list.SetRows(m.tab.Rows())
	m.logger.Debug("toggle dimension",
		logging.F("kind", string(change.Ref.Kind)),
		logging.F("slug", change.Slug),
		logging.F("checked", change.Checked),
	)
	return m.persist()
}

func (m *Model) clearChecked() tea.Cmd {
	if !m.tab.CanClear() || !m.tab.Clear() {
		return nil
	}
	m.query = m.query.WithChecked(m.tab.Kind(), nil)
	m.list.SetRows(m.tab.Rows())
	m.setStatusInfo("cleared " + m.tab.Kind().Plural())
	return m.persist()
}

func (m *Model) changePage(delta int) tea.Cmd {
	if m.tab.Loading() {
		return nil
	}
	kind := m.tab.Kind()
	params := m.listParams(kind)
	switch {
	case delta > 0 && len(m.tab.Records()) < params.PerPage:
		return nil
	case delta < 0 && params.Page <= 1:
		return nil
	}
	params.Page += delta
	m.query = m.query.WithList(kind, params)
	m.list.Reset()
	return tea.Batch(m.startFetch(), m.persist())
}

func (m *Model) applySearch(value string) tea.Cmd {
	kind := m.tab.Kind()
	current := m.listParams(kind)
	next := current.WithSearch(value)
	if next == current {
		return nil
	}
	m.query = m.query.WithList(kind, next)
	m.list.Reset()
	return tea.Batch(m.startFetch(), m.persist())
}

func (m *Model) openManage() tea.Cmd {
	row, ok := m.list.Current()
	if !ok {
		return nil
	}
	slug := row.Ref.Slug
	if slug == "" {
		slug = row.Ref.UUID
	}
	m.router.Navigate(urlstate.ManagePath(m.project, m.tab.Kind(), slug, m.plotPath()))
	return m.syncRoute()
}

func (m *Model) copyPlotLink() {
	link := m.plotPath()
	if m.consoleURL != "" {
		link = m.consoleURL + link
	}
	m.copyWithStatus(link, "copied plot link")
}

func (m *Model) handlePlotKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	switch msg.String() {
	case "q":
		return tea.Quit
	case "tab", "right", "l":
		return m.switchTab(m.tab.Kind().Next(1))
	case "shift+tab", "left", "h":
		return m.switchTab(m.tab.Kind().Next(-1))
	case "1", "2", "3", "4":
		kinds := types.DimensionKinds()
		idx := int(msg.String()[0] - '1')
		if idx < len(kinds) {
			return m.switchTab(kinds[idx])
		}
	case "down", "j":
		m.list.Move(1)
	case "up", "k":
		m.list.Move(-1)
	case "space", " ", "x", "enter":
		if row, ok := m.list.Current(); ok {
			return m.toggleRow(row)
		}
	case "c":
		return m.clearChecked()
	case "n", "pgdown":
		return m.changePage(1)
	case "p", "pgup":
		return m.changePage(-1)
	case "/":
		m.searching = true
		return m.search.Focus()
	case "m":
		return m.openManage()
	case "r":
		return m.startFetch()
	case "y":
		m.copyPlotLink()
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter", "down", "tab":
		m.searching = false
		m.search.Blur()
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, m.applySearch(m.search.Value()))
}

func (m *Model) handlePlotMouse(msg tea.MouseClickMsg) tea.Cmd {
	mouse := msg.Mouse()
	if mouse.Button != tea.MouseLeft {
		return nil
	}
	switch {
	case mouse.Y == 1:
		for _, bound := range m.tabBounds {
			if mouse.X >= bound.start && mouse.X < bound.end {
				return m.switchTab(bound.kind)
			}
		}
	case mouse.Y == 2:
		if m.tab.CanClear() && mouse.X >= m.clearX[0] && mouse.X < m.clearX[1] {
			return m.clearChecked()
		}
		m.searching = true
		return m.search.Focus()
	case mouse.Y >= plotHeaderLines:
		if row, ok := m.list.HandleClick(mouse.Y - plotHeaderLines); ok {
			return m.toggleRow(row)
		}
	}
	return nil
}

func (m *Model) plotView() string {
	width := m.contentWidth()
	lines := []string{
		m.headerLine("perfdeck · " + m.project),
		m.tabsLine(),
		m.searchLine(),
		dividerStyle.Render(strings.Repeat("─", width)),
	}
	lines = append(lines, m.list.View(m.tab.Kind(), m.tab.NothingFound()))
	lines = append(lines, m.footer(m.plotFooterHelp())...)
	return strings.Join(lines, "\n")
}

func (m *Model) plotFooterHelp() string {
	params := m.listParams(m.tab.Kind())
	help := "page " + strconv.Itoa(params.Page) + " · " + plotHelp
	if !m.query.IsEmpty() {
		help = copyButtonStyle.Render("[y] copy link") + " · " + help
	}
	return help
}

func (m *Model) tabsLine() string {
	var b strings.Builder
	m.tabBounds = m.tabBounds[:0]
	x := 0
	for _, kind := range types.DimensionKinds() {
		plural := kind.Plural()
		label := " " + strings.ToUpper(plural[:1]) + plural[1:]
		if n := len(m.query.CheckedFor(kind)); n > 0 {
			label += " (" + strconv.Itoa(n) + ")"
		}
		label += " "
		style := tabStyle
		if kind == m.tab.Kind() {
			style = tabActiveStyle
		}
		w := xansi.StringWidth(label)
		m.tabBounds = append(m.tabBounds, tabBound{start: x, end: x + w, kind: kind})
		b.WriteString(style.Render(label))
		b.WriteString(" ")
		x += w + 1
	}
	return b.String()
}

func (m *Model) searchLine() string {
	prefix := " / "
	line := prefix + m.search.View()
	m.clearX = [2]int{}
	if m.tab.CanClear() {
		line += "  "
		start := xansi.StringWidth(line)
		button := "[Clear]"
		m.clearX = [2]int{start, start + xansi.StringWidth(button)}
		line += clearButtonStyle.Render(button)
	}
	return line
}
