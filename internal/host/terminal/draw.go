package terminal

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Screen layout: a title row, the page, the input line and the status
// line.
const (
	pageTop    = 1
	chromeRows = 3
)

var (
	styleTitle  = tcell.StyleDefault.Reverse(true).Bold(true)
	styleText   = tcell.StyleDefault
	styleLink   = tcell.StyleDefault.Foreground(tcell.ColorBlue).Underline(true)
	styleHint   = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack).Bold(true)
	styleInput  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

func (h *Host) draw() {
	h.screen.Clear()
	w, ht := h.screen.Size()
	if w == 0 || ht < chromeRows {
		h.screen.Show()
		return
	}

	h.drawText(0, 0, w, padRight(" "+h.page.Title, w), styleTitle)

	labels := make(map[int]string, len(h.hints))
	for _, hn := range h.hints {
		if i, ok := hn.Target.Payload.(int); ok {
			labels[i] = hn.Label
		}
	}

	_, rows := h.page.Viewport()
	for row := range rows {
		i, ok := h.page.LineAt(row)
		if !ok {
			break
		}
		line, _ := h.page.Line(i)
		style := styleText
		if line.IsLink() {
			style = styleLink
		}
		text := []rune(line.Text)
		if left := h.page.Left(); left < len(text) {
			text = text[left:]
		} else {
			text = nil
		}
		h.drawText(0, pageTop+row, w, string(text), style)
		if label, ok := labels[i]; ok {
			h.drawText(0, pageTop+row, w, label, styleHint)
		}
	}

	inputRow := ht - 2
	prompt := "  "
	if h.engine.Mode() == mode.Insert {
		prompt = "> "
		h.screen.ShowCursor(len(prompt)+len(h.input), inputRow)
	} else {
		h.screen.HideCursor()
	}
	h.drawText(0, inputRow, w, prompt+string(h.input), styleInput)

	h.drawText(0, ht-1, w, padRight(h.statusLine(w), w), styleStatus)
	h.screen.Show()
}

// statusLine renders the mode, the pending keys and the last message,
// right-aligned.
func (h *Host) statusLine(width int) string {
	left := fmt.Sprintf(" -- %s -- %s", strings.ToUpper(h.engine.Mode()), key.Join(h.engine.Pending()))
	right := h.status + " "
	gap := width - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (h *Host) drawText(x, y, width int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= width {
			return
		}
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
