package app

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
)

type toastLevel int

const (
	toastLevelInfo toastLevel = iota
	toastLevelWarning
	toastLevelError
)

// toast is the transient pill in the header. Notices queued at startup are
// shown one after another as each expires.
type toast struct {
	text    string
	level   toastLevel
	until   time.Time
	pending []notice
}

type notice struct {
	level   toastLevel
	message string
}

func (t *toast) show(level toastLevel, message string, now time.Time) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	t.text = message
	t.level = level
	t.until = now.Add(toastDuration)
}

func (t *toast) clear() {
	t.text = ""
	t.level = toastLevelInfo
	t.until = time.Time{}
}

func (t *toast) active(at time.Time) bool {
	if t.text == "" {
		return false
	}
	if t.until.IsZero() {
		return true
	}
	if at.IsZero() {
		at = time.Now()
	}
	return at.Before(t.until)
}

func (t *toast) queue(level toastLevel, message string) {
	message = strings.TrimSpace(message)
	if message != "" {
		t.pending = append(t.pending, notice{level: level, message: message})
	}
}

// advance expires the current toast and promotes the next queued notice. It
// returns the promoted message, if any.
func (t *toast) advance(at time.Time) string {
	if t.text != "" && !t.active(at) {
		t.clear()
	}
	if len(t.pending) == 0 || t.active(at) {
		return ""
	}
	next := t.pending[0]
	t.pending = t.pending[1:]
	t.show(next.level, next.message, time.Now())
	return next.message
}

func (t *toast) style() lipgloss.Style {
	switch t.level {
	case toastLevelWarning:
		return toastWarningStyle
	case toastLevelError:
		return toastErrorStyle
	default:
		return toastInfoStyle
	}
}

func (m *Model) setStatusInfo(message string) {
	m.status = message
	m.statusErr = false
	m.toast.show(toastLevelInfo, message, time.Now())
}

func (m *Model) setStatusError(message string) {
	m.status = message
	m.statusErr = true
	m.toast.show(toastLevelError, message, time.Now())
}

func (m *Model) showInfoToast(message string) {
	m.toast.show(toastLevelInfo, message, time.Now())
}

func (m *Model) showWarningToast(message string) {
	m.toast.show(toastLevelWarning, message, time.Now())
}

func (m *Model) queueNotice(message string) {
	m.toast.queue(toastLevelWarning, message)
	m.advanceToast(time.Now())
}

// advanceToast also copies a promoted notice to the status line so it stays
// visible after the pill fades.
func (m *Model) advanceToast(at time.Time) {
	if message := m.toast.advance(at); message != "" {
		m.status = message
		m.statusErr = false
	}
}

func (m *Model) toastLine(width int) string {
	if !m.toast.active(time.Now()) || width <= 0 {
		return ""
	}
	text := truncateToWidth(m.toast.text, max(1, width-4))
	pill := m.toast.style().Render(" " + text + " ")
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, pill)
}
