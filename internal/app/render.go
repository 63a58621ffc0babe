package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/fathom-editor/fathom/internal/input/mode"
)

// render repaints the whole screen: document area, optional scratch
// panel, and a one-line status bar. No damage tracking; the documents
// this editor handles repaint fast enough.
func (a *App) render() {
	if a.screen == nil {
		return
	}
	a.screen.Clear()
	width, height := a.screen.Size()
	if height < 2 {
		return
	}

	textHeight := height - 1
	scratchText := ""
	if open, _ := a.editor.ScratchOpen(); open {
		scratchText = a.editor.ScratchText()
		scratchHeight := height / 3
		if scratchHeight > 0 {
			textHeight = height - 1 - scratchHeight
			a.drawLines(scratchText, 0, textHeight, scratchHeight, tcell.StyleDefault.Dim(true))
		}
	}

	a.drawLines(a.editor.Text(), 0, 0, textHeight, tcell.StyleDefault)
	a.drawCursor(textHeight)
	a.drawStatus(width, height-1)
	a.screen.Show()
}

// drawLines paints text into a horizontal band of the screen.
func (a *App) drawLines(text string, x, y, maxLines int, style tcell.Style) {
	for i, line := range strings.Split(text, "\n") {
		if i >= maxLines {
			return
		}
		col := x
		for _, r := range line {
			a.screen.SetContent(col, y+i, r, nil, style)
			col++
		}
	}
}

// drawCursor places the terminal cursor at the editing position when
// it is inside the visible band.
func (a *App) drawCursor(maxLines int) {
	text := a.editor.Text()
	offset := a.editor.Cursor()
	if offset > len(text) {
		offset = len(text)
	}
	row := strings.Count(text[:offset], "\n")
	if row >= maxLines {
		a.screen.HideCursor()
		return
	}
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	col := 0
	for range text[lineStart:offset] {
		col++
	}
	a.screen.ShowCursor(col, row)
}

// drawStatus paints the status bar: mode and pending input on the
// left, the latest message on the right. Command mode shows the
// command line instead.
func (a *App) drawStatus(width, y int) {
	var left string
	if a.modes.Current() == mode.Command {
		left = ":" + string(a.cmdline)
	} else {
		left = "-- " + strings.ToUpper(a.modes.Current()) + " --"
		if a.count > 0 {
			left += fmt.Sprintf(" %d", a.count)
		}
		if pending := a.resolver.PendingChord(); pending != "" {
			left += " " + pending
		}
	}

	right := ""
	if msgs := a.editor.Messages(); len(msgs) > 0 {
		right = msgs[len(msgs)-1].Text
	}

	style := tcell.StyleDefault.Reverse(true)
	col := 0
	for _, r := range left {
		if col >= width {
			break
		}
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for col < width-len(right) {
		a.screen.SetContent(col, y, ' ', nil, style)
		col++
	}
	for _, r := range right {
		if col >= width {
			break
		}
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
}
