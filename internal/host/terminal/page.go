package terminal

import (
	"fmt"

	"github.com/dshills/modalkeys/internal/input/hint"
)

// Line is one row of page text. A line with a URL is a link.
type Line struct {
	Text string
	URL  string
}

// IsLink reports whether the line can be followed.
func (l Line) IsLink() bool {
	return l.URL != ""
}

// Page is a scrollable document shown above the status line.
// It is the hint target source of the host.
type Page struct {
	Title string
	lines []Line

	top, left     int
	width, height int
}

// NewPage creates a page over lines.
func NewPage(title string, lines []Line) *Page {
	return &Page{Title: title, lines: lines}
}

// DemoPage builds a page of n paragraphs with a link every few lines.
func DemoPage(n int) *Page {
	lines := make([]Line, 0, n*4)
	for i := 1; i <= n; i++ {
		lines = append(lines,
			Line{Text: fmt.Sprintf("Section %d", i)},
			Line{Text: "  Press j/k to scroll, f to show link hints, i to type into the input line."},
			Line{Text: fmt.Sprintf("  -> Read more about section %d", i), URL: fmt.Sprintf("https://example.com/section/%d", i)},
			Line{},
		)
	}
	return NewPage("modalkeys demo", lines)
}

// Lines returns the number of lines.
func (p *Page) Lines() int {
	return len(p.lines)
}

// Line returns line i.
func (p *Page) Line(i int) (Line, bool) {
	if i < 0 || i >= len(p.lines) {
		return Line{}, false
	}
	return p.lines[i], true
}

// SetViewport sets the visible text area and re-clamps the scroll offset.
func (p *Page) SetViewport(width, height int) {
	p.width, p.height = max(width, 0), max(height, 0)
	p.ScrollBy(0)
	p.ScrollX(0)
}

// Viewport returns the visible width and height.
func (p *Page) Viewport() (int, int) {
	return p.width, p.height
}

// Top returns the index of the first visible line.
func (p *Page) Top() int {
	return p.top
}

// Left returns the horizontal scroll offset.
func (p *Page) Left() int {
	return p.left
}

func (p *Page) maxTop() int {
	return max(len(p.lines)-p.height, 0)
}

func (p *Page) maxLeft() int {
	widest := 0
	for _, l := range p.lines {
		widest = max(widest, len([]rune(l.Text)))
	}
	return max(widest-p.width, 0)
}

// ScrollBy moves the view dy lines down (negative is up).
func (p *Page) ScrollBy(dy int) {
	p.top = min(max(p.top+dy, 0), p.maxTop())
}

// ScrollX moves the view dx columns right (negative is left).
func (p *Page) ScrollX(dx int) {
	p.left = min(max(p.left+dx, 0), p.maxLeft())
}

// ScrollTop jumps to the first line.
func (p *Page) ScrollTop() {
	p.top = 0
}

// ScrollBottom jumps so the last line is visible.
func (p *Page) ScrollBottom() {
	p.top = p.maxTop()
}

// LineAt maps a screen row to a line index.
func (p *Page) LineAt(row int) (int, bool) {
	if row < 0 || row >= p.height {
		return 0, false
	}
	i := p.top + row
	if i >= len(p.lines) {
		return 0, false
	}
	return i, true
}

// Targets returns the visible links. Each payload is the line index.
func (p *Page) Targets() []hint.Target {
	var targets []hint.Target
	for row := range p.height {
		i, ok := p.LineAt(row)
		if !ok {
			break
		}
		if l := p.lines[i]; l.IsLink() {
			targets = append(targets, hint.Target{Text: l.URL, Payload: i})
		}
	}
	return targets
}
