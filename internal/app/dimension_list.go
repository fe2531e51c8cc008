package app

import (
	"strings"

	"perfdeck/internal/selection"
	"perfdeck/internal/types"
)

const placeholderLabel = "░░░░░░░░░░░░"

// DimensionList is the scrolling checkbox list for one tab. It owns the
// cursor and scroll offset only; checked state comes from the rows.
type DimensionList struct {
	width  int
	height int
	cursor int
	offset int
	rows   []selection.Row
}

func NewDimensionList(width, height int) *DimensionList {
	return &DimensionList{width: width, height: height}
}

func (l *DimensionList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.ensureVisible()
}

func (l *DimensionList) SetRows(rows []selection.Row) {
	l.rows = rows
	if l.cursor >= len(l.rows) {
		l.cursor = max(0, len(l.rows)-1)
	}
	l.ensureVisible()
}

// Reset moves the cursor back to the top, for a new tab or page.
func (l *DimensionList) Reset() {
	l.cursor = 0
	l.offset = 0
}

func (l *DimensionList) Move(delta int) bool {
	if len(l.rows) == 0 || delta == 0 {
		return false
	}
	next := clamp(l.cursor+delta, 0, len(l.rows)-1)
	if next == l.cursor {
		return false
	}
	l.cursor = next
	l.ensureVisible()
	return true
}

func (l *DimensionList) Cursor() int {
	return l.cursor
}

// Current is the row under the cursor, if it is a real record.
func (l *DimensionList) Current() (selection.Row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return selection.Row{}, false
	}
	row := l.rows[l.cursor]
	return row, row.Interactive()
}

// HandleClick moves the cursor to the clicked line and returns its row.
func (l *DimensionList) HandleClick(line int) (selection.Row, bool) {
	if line < 0 || line >= l.visibleHeight() {
		return selection.Row{}, false
	}
	index := l.offset + line
	if index < 0 || index >= len(l.rows) {
		return selection.Row{}, false
	}
	l.cursor = index
	l.ensureVisible()
	row := l.rows[index]
	return row, row.Interactive()
}

func (l *DimensionList) View(kind types.DimensionKind, nothingFound bool) string {
	if l.height <= 0 {
		return ""
	}
	lines := make([]string, 0, l.visibleHeight())
	if nothingFound {
		lines = append(lines, emptyStyle.Render(" No "+kind.Plural()+" found"))
		return padLines(lines, l.width)
	}
	for i := 0; i < l.visibleHeight(); i++ {
		idx := l.offset + i
		if idx >= len(l.rows) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, l.renderRow(idx))
	}
	return padLines(lines, l.width)
}

func (l *DimensionList) renderRow(idx int) string {
	row := l.rows[idx]
	if row.Placeholder {
		return placeholderStyle.Render(" [ ] " + placeholderLabel)
	}
	checkbox := "[ ]"
	if row.Checked {
		checkbox = "[x]"
	}
	label := row.Ref.Name
	if label == "" {
		label = row.Ref.Slug
	}
	if row.Ref.Slug != "" && row.Ref.Slug != label {
		label += "  " + helpStyle.Render(row.Ref.Slug)
	}
	line := " " + checkbox + " " + label
	if l.width > 0 {
		line = truncateToWidth(line, l.width)
	}
	switch {
	case idx == l.cursor:
		return selectedStyle.Render(strings.TrimRight(line, " "))
	case row.Checked:
		return checkedStyle.Render(" "+checkbox) + strings.TrimPrefix(line, " "+checkbox)
	default:
		return line
	}
}

func (l *DimensionList) visibleHeight() int {
	if l.height <= 0 {
		return 0
	}
	return l.height
}

func (l *DimensionList) ensureVisible() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.visibleHeight() {
		l.offset = l.cursor - l.visibleHeight() + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
	maxOffset := max(0, len(l.rows)-l.visibleHeight())
	if l.offset > maxOffset {
		l.offset = maxOffset
	}
}
