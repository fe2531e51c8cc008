package app

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
)

const resourcePanelLoadingMessage = "Loading…"

// ResourcePanel shows one rendered dimension in a scrolling viewport.
type ResourcePanel struct {
	viewport viewport.Model
	content  string
}

func NewResourcePanel(width, height int) *ResourcePanel {
	vp := viewport.New(viewport.WithWidth(max(1, width)), viewport.WithHeight(max(1, height)))
	vp.SetContent(resourcePanelLoadingMessage)
	return &ResourcePanel{viewport: vp, content: resourcePanelLoadingMessage}
}

func (p *ResourcePanel) Resize(width, height int) {
	nextWidth := max(1, width)
	nextHeight := max(1, height)
	if p.viewport.Width() == nextWidth && p.viewport.Height() == nextHeight {
		return
	}
	p.viewport.SetWidth(nextWidth)
	p.viewport.SetHeight(nextHeight)
}

func (p *ResourcePanel) Width() int {
	return p.viewport.Width()
}

func (p *ResourcePanel) SetContent(content string) {
	if strings.TrimSpace(content) == "" {
		content = resourcePanelLoadingMessage
	}
	if p.content == content {
		return
	}
	p.content = content
	p.viewport.SetContent(content)
	p.viewport.GotoTop()
}

func (p *ResourcePanel) Scroll(delta int) {
	if delta > 0 {
		p.viewport.ScrollDown(delta)
	} else if delta < 0 {
		p.viewport.ScrollUp(-delta)
	}
}

func (p *ResourcePanel) View() string {
	body := p.viewport.View()
	if strings.TrimSpace(body) == "" {
		return resourcePanelLoadingMessage
	}
	return body
}
