package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"perfdeck/internal/deletion"
	"perfdeck/internal/logging"
	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

const manageHelp = "esc back · j/k scroll · d delete · u copy api url · r reload · q quit"

func (m *Model) enterManage(target urlstate.ManageTarget) tea.Cmd {
	m.mode = viewManage
	m.confirm.Close()
	state := &manageState{target: target}
	m.manage = state
	m.deleter = m.newDeleter(state)
	m.panel.SetContent(resourcePanelLoadingMessage)
	if m.api == nil {
		return nil
	}
	return fetchResourceCmd(m.api, target)
}

func (m *Model) newDeleter(state *manageState) *deletion.Controller {
	target := state.target
	api := m.api
	var deleter deletion.Deleter
	if api != nil {
		deleter = api
	}
	return deletion.NewController(deletion.Options{
		Deleter:   deleter,
		Navigator: m.router,
		Resource:  state.snapshot,
		Token:     m.token,
		ValidJWT:  m.validJWT,
		URL: func(resource types.Resource) string {
			if api == nil {
				return ""
			}
			slug := resource.Slug()
			if slug == "" {
				slug = target.Slug
			}
			return api.DimensionURL(target.Project, target.Kind, slug)
		},
		Path: func(current string, _ types.Resource) string {
			return urlstate.AfterDeletePath(current)
		},
		Logger: m.logger.With(logging.F("kind", string(target.Kind))),
	})
}

func (m *Model) applyResource(msg resourceMsg) {
	if m.mode != viewManage || m.manage == nil || msg.target != m.manage.target {
		return
	}
	m.manage.resolve(msg.resource, msg.err)
	if msg.err != nil {
		m.logger.Error("get dimension failed",
			logging.F("kind", string(msg.target.Kind)),
			logging.F("slug", msg.target.Slug),
			logging.F("err", msg.err),
		)
		m.setStatusError("load " + string(msg.target.Kind) + ": " + msg.err.Error())
	}
	m.renderResource()
}

func (m *Model) renderResource() {
	if m.manage == nil {
		return
	}
	resource, ok := m.manage.snapshot()
	switch {
	case ok:
		m.panel.SetContent(renderMarkdown(resourceMarkdown(m.manage.target.Kind, resource), m.panel.Width()))
	case m.manage.err != nil:
		m.panel.SetContent(statusErrorStyle.Render(m.manage.err.Error()))
	default:
		m.panel.SetContent(resourcePanelLoadingMessage)
	}
}

func (m *Model) handleManageKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "esc", "b", "backspace":
		return m.leaveManage()
	case "down", "j":
		m.panel.Scroll(1)
	case "up", "k":
		m.panel.Scroll(-1)
	case "d":
		m.requestDelete()
	case "u":
		if m.api != nil && m.manage != nil {
			t := m.manage.target
			m.copyWithStatus(m.api.DimensionURL(t.Project, t.Kind, t.Slug), "copied api url")
		}
	case "r":
		if m.api != nil && m.manage != nil {
			m.manage.resolve(nil, nil)
			m.renderResource()
			return fetchResourceCmd(m.api, m.manage.target)
		}
	}
	return nil
}

func (m *Model) leaveManage() tea.Cmd {
	if m.manage != nil && m.manage.target.Back != "" {
		m.router.Navigate(m.manage.target.Back)
	} else if !m.router.Back() {
		m.router.Navigate(m.plotPath())
	}
	return m.syncRoute()
}

func (m *Model) requestDelete() {
	if m.deleter == nil || m.manage == nil {
		return
	}
	resource, ok := m.manage.snapshot()
	if !ok {
		m.setStatusError("still loading")
		return
	}
	m.deleter.RequestConfirm()
	if m.deleter.State() != deletion.StateConfirming {
		return
	}
	name := resource.Name()
	if name == "" {
		name = m.manage.target.Slug
	}
	m.confirm.Open("Delete "+string(m.manage.target.Kind)+" "+name, deleteConfirmMessage, deleteConfirmLabel, "Cancel")
}

func (m *Model) handleConfirmKey(msg tea.KeyPressMsg) tea.Cmd {
	_, choice := m.confirm.HandleKey(msg)
	return m.applyConfirmChoice(choice)
}

func (m *Model) applyConfirmChoice(choice confirmChoice) tea.Cmd {
	if m.deleter == nil {
		m.confirm.Close()
		return nil
	}
	switch choice {
	case confirmChoiceConfirm:
		if m.deleter.InFlight() {
			return nil
		}
		m.confirm.SetBusy(true, deleteBusyLabel)
		return confirmDeleteCmd(m.deleter)
	case confirmChoiceCancel:
		m.deleter.Cancel()
		if m.deleter.State() == deletion.StateIdle {
			m.confirm.Close()
		}
	}
	return nil
}

// applyDeleteFinished reacts once ConfirmDelete returns. On success the
// controller has already moved the router; a failure leaves the dialog up
// so the user can try again.
func (m *Model) applyDeleteFinished(msg deleteFinishedMsg) tea.Cmd {
	if m.deleter == nil {
		return nil
	}
	if !msg.sent {
		m.confirm.SetBusy(false, "")
		m.showWarningToast("delete not sent")
		return nil
	}
	switch m.deleter.State() {
	case deletion.StateIdle:
		name := ""
		if m.manage != nil {
			name = m.manage.target.Slug
		}
		m.confirm.Close()
		cmd := m.syncRoute()
		m.setStatusInfo("deleted " + name)
		return cmd
	default:
		m.confirm.SetBusy(false, "")
		return nil
	}
}

func (m *Model) manageView() string {
	width := m.contentWidth()
	title := "perfdeck · " + m.project
	if m.manage != nil {
		title += " · " + m.manage.target.Kind.Title() + " " + m.manage.target.Slug
	}
	lines := []string{
		m.headerLine(title),
		dividerStyle.Render(strings.Repeat("─", width)),
		m.panel.View(),
	}
	help := manageHelp
	if resource, ok := m.manageResource(); ok && resource.UUID() != "" {
		help = deleteButtonStyle.Render("[d] delete") + " · " + help
	}
	lines = append(lines, m.footer(help)...)
	return strings.Join(lines, "\n")
}

func (m *Model) manageResource() (types.Resource, bool) {
	if m.manage == nil {
		return nil, false
	}
	return m.manage.snapshot()
}
