package app

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"perfdeck/internal/deletion"
	"perfdeck/internal/logging"
	"perfdeck/internal/selection"
	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

const (
	tickInterval  = time.Second
	toastDuration = 3 * time.Second

	defaultWidth  = 80
	defaultHeight = 24

	plotHeaderLines = 4
	footerLines     = 3

	deleteConfirmMessage = "Are you sure? This is permanent."
	deleteConfirmLabel   = "I am 💯 sure"
	deleteBusyLabel      = "Deleting…"
)

type viewMode int

const (
	viewPlot viewMode = iota
	viewManage
)

// ReloadedMsg tells the console its data source changed underneath it, for
// example when the offline fixture file is edited.
type ReloadedMsg struct {
	Err error
}

type Options struct {
	API    DimensionAPI
	Plots  PlotViewStore
	Logger logging.Logger

	Project    string
	ConsoleURL string
	PerPage    int
	// InitialQuery seeds the plot view, usually the saved query of the
	// project. It is a raw query string without the leading "?".
	InitialQuery string

	Token    deletion.TokenFunc
	ValidJWT deletion.TokenValidator

	LightBackground bool
	Notices         []string
}

type Model struct {
	api        DimensionAPI
	plots      PlotViewStore
	logger     logging.Logger
	project    string
	consoleURL string
	perPage    int
	token      deletion.TokenFunc
	validJWT   deletion.TokenValidator

	router *router
	mode   viewMode

	query     urlstate.PlotQuery
	tab       *selection.Reconciler
	list      *DimensionList
	search    textinput.Model
	searching bool
	tabBounds []tabBound
	clearX    [2]int

	manage  *manageState
	panel   *ResourcePanel
	confirm *ConfirmController
	deleter *deletion.Controller

	width  int
	height int

	status    string
	statusErr bool
	toast     toast
}

type tabBound struct {
	start int
	end   int
	kind  types.DimensionKind
}

// manageState is read by the delete controller from a command goroutine.
type manageState struct {
	mu       sync.Mutex
	target   urlstate.ManageTarget
	resource types.Resource
	resolved bool
	err      error
}

func (s *manageState) snapshot() (types.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resource, s.resolved
}

func (s *manageState) resolve(resource types.Resource, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resource = resource
	s.resolved = err == nil && resource != nil
	s.err = err
}

func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = types.DefaultPerPage
	}
	query, err := urlstate.ParsePlotQuery(opts.InitialQuery)
	if err != nil {
		logger.Warn("ignoring saved plot query", logging.F("err", err))
	}
	project := strings.TrimSpace(opts.Project)
	consoleURL := strings.TrimRight(strings.TrimSpace(opts.ConsoleURL), "/")
	setMarkdownBackgroundDark(!opts.LightBackground)

	search := textinput.New()
	search.Prompt = ""
	search.CharLimit = 128

	m := Model{
		api:        opts.API,
		plots:      opts.Plots,
		logger:     logger,
		project:    project,
		consoleURL: consoleURL,
		perPage:    perPage,
		token:      opts.Token,
		validJWT:   opts.ValidJWT,
		query:      query,
		search:     search,
		list:       NewDimensionList(defaultWidth, perPage),
		panel:      NewResourcePanel(defaultWidth, defaultHeight-footerLines-2),
		confirm:    NewConfirmController(),
	}
	m.router = newRouter(urlstate.PlotPath(project, query))
	m.resetTab()
	for _, notice := range opts.Notices {
		m.queueNotice(notice)
	}
	return m
}

// NewProgram wraps the model in a bubbletea program. Callers that push
// ReloadedMsg need the program handle.
func NewProgram(opts Options) *tea.Program {
	model := NewModel(opts)
	return tea.NewProgram(&model)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startFetch(), tickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	case tea.MouseClickMsg:
		return m, m.handleMouse(msg)
	case tea.MouseWheelMsg:
		if m.mode == viewManage {
			if msg.Mouse().Button == tea.MouseWheelUp {
				m.panel.Scroll(-3)
			} else {
				m.panel.Scroll(3)
			}
		}
		return m, nil
	case dimensionsMsg:
		m.applyDimensions(msg)
		return m, nil
	case resourceMsg:
		m.applyResource(msg)
		return m, nil
	case deleteFinishedMsg:
		return m, m.applyDeleteFinished(msg)
	case plotSavedMsg:
		if msg.err != nil {
			m.logger.Warn("save plot view failed", logging.F("project", msg.project), logging.F("err", msg.err))
		}
		return m, nil
	case ReloadedMsg:
		return m, m.applyReload(msg)
	case tickMsg:
		m.handleTick(msg)
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) handleTick(msg tickMsg) {
	m.advanceToast(time.Time(msg))
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(m.contentWidth(), m.listHeight())
	m.search.SetWidth(max(10, m.contentWidth()/2))
	m.panel.Resize(m.contentWidth(), m.manageBodyHeight())
	if m.mode == viewManage {
		m.renderResource()
	}
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return max(minListWidth, m.width)
}

func (m *Model) listHeight() int {
	if m.height <= 0 {
		return m.perPage
	}
	return max(1, m.height-plotHeaderLines-footerLines)
}

func (m *Model) manageBodyHeight() int {
	height := m.height
	if height <= 0 {
		height = defaultHeight
	}
	return max(1, height-2-footerLines)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.confirm.IsOpen() {
		return m.handleConfirmKey(msg)
	}
	if m.mode == viewManage {
		return m.handleManageKey(msg)
	}
	return m.handlePlotKey(msg)
}

func (m *Model) handleMouse(msg tea.MouseClickMsg) tea.Cmd {
	if m.confirm.IsOpen() {
		_, choice := m.confirm.HandleMouse(msg, m.contentWidth(), m.viewHeight())
		return m.applyConfirmChoice(choice)
	}
	if m.mode == viewPlot {
		return m.handlePlotMouse(msg)
	}
	return nil
}

func (m *Model) viewHeight() int {
	if m.height <= 0 {
		return defaultHeight
	}
	return m.height
}

// syncRoute moves the model to whatever page the router now points at.
func (m *Model) syncRoute() tea.Cmd {
	path := m.router.Pathname()
	if target, err := urlstate.ParseManagePath(path); err == nil {
		return m.enterManage(target)
	}
	m.mode = viewPlot
	m.manage = nil
	m.deleter = nil
	m.confirm.Close()

	u, err := url.Parse(path)
	if err == nil && strings.HasSuffix(u.Path, "/perf") {
		if query, err := urlstate.ParsePlotQuery(u.RawQuery); err == nil {
			m.query = query
		}
	} else {
		m.router.Replace(m.plotPath())
	}
	m.resetTab()
	return m.startFetch()
}

func (m *Model) plotPath() string {
	return urlstate.PlotPath(m.project, m.query)
}

func (m *Model) persist() tea.Cmd {
	m.router.Replace(m.plotPath())
	return savePlotViewCmd(m.plots, m.project, m.query)
}

func (m *Model) applyReload(msg ReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.logger.Warn("reload failed", logging.F("err", msg.Err))
		m.showWarningToast("reload failed: " + msg.Err.Error())
		return nil
	}
	m.showInfoToast("data reloaded")
	if m.mode == viewManage && m.manage != nil {
		return fetchResourceCmd(m.api, m.manage.target)
	}
	return m.startFetch()
}

func (m *Model) View() tea.View {
	var content string
	if m.mode == viewManage {
		content = m.manageView()
	} else {
		content = m.plotView()
	}
	if m.confirm.IsOpen() {
		block, row := m.confirm.View(m.contentWidth(), m.viewHeight())
		content = composeLayers(content, layerOverlay{Row: row, Block: block})
	}
	v := tea.NewView(content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

func (m *Model) headerLine(title string) string {
	width := m.contentWidth()
	header := headerStyle.Render(truncateToWidth(title, width))
	if toast := m.toastLine(width - xansi.StringWidth(header)); toast != "" {
		header += toast
	}
	return header
}

func (m *Model) footer(help string) []string {
	width := m.contentWidth()
	status := truncateToWidth(m.status, width)
	if m.statusErr {
		status = statusErrorStyle.Render(status)
	} else {
		status = statusStyle.Render(status)
	}
	return []string{
		dividerStyle.Render(strings.Repeat("─", width)),
		status,
		helpStyle.Render(truncateToWidth(help, width)),
	}
}
