package view

import (
	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/model"
)

// Theme holds the colors used by the painter.
type Theme struct {
	Text      backend.Color
	Heading   backend.Color
	Highlight backend.Color
	Current   backend.Color
	Status    backend.Color
}

// DefaultTheme returns the built-in colors.
func DefaultTheme() Theme {
	return Theme{
		Text:      backend.ColorDefault,
		Heading:   backend.ColorFromRGB(0x5f, 0xaf, 0xff),
		Highlight: backend.ColorFromRGB(0x5f, 0x5f, 0x00),
		Current:   backend.ColorFromRGB(0xd7, 0x87, 0x00),
		Status:    backend.ColorFromRGB(0x30, 0x30, 0x30),
	}
}

// Highlight is a model range painted with a highlight background.
type Highlight struct {
	Range   model.Range
	Current bool
}

// HighlightSource supplies the ranges to highlight on each paint.
type HighlightSource interface {
	Highlights() []Highlight
}

type layoutCell struct {
	r     rune
	w     int
	style backend.Style
	node  Node
}

// Painter paints attached roots into a backend and remembers which node
// was painted in each cell.
type Painter struct {
	backend backend.Backend
	mapper  *Mapper
	theme   Theme
	source  HighlightSource

	scroll int
	hits   [][]Node
}

// NewPainter creates a painter.
func NewPainter(b backend.Backend, m *Mapper, theme Theme) *Painter {
	return &Painter{backend: b, mapper: m, theme: theme}
}

// SetHighlightSource sets the source of highlighted ranges.
func (p *Painter) SetHighlightSource(s HighlightSource) { p.source = s }

// SetTheme replaces the theme.
func (p *Painter) SetTheme(t Theme) { p.theme = t }

// ScrollBy moves the first painted line by n lines.
func (p *Painter) ScrollBy(n int) {
	p.scroll = max(p.scroll+n, 0)
}

// HitTest returns the node painted at (x, y), or nil.
func (p *Painter) HitTest(x, y int) Node {
	if y < 0 || y >= len(p.hits) || x < 0 || x >= len(p.hits[y]) {
		return nil
	}
	return p.hits[y][x]
}

// Paint lays out the roots, keeps the current highlight visible and draws
// the status element of the first root on the last row.
func (p *Painter) Paint(roots []*Root) {
	width, height := p.backend.Size()
	if width <= 0 || height <= 0 {
		return
	}

	l := &layouter{
		width:  width,
		mapper: p.mapper,
		theme:  p.theme,
		row:    -1,
	}
	if p.source != nil {
		l.highlights = p.source.Highlights()
	}
	for _, r := range roots {
		l.root(r.Element())
	}
	l.flush()

	body := height - 1
	if l.row >= 0 {
		if l.row < p.scroll {
			p.scroll = l.row
		} else if l.row >= p.scroll+body {
			p.scroll = l.row - body + 1
		}
	}
	p.scroll = min(p.scroll, max(len(l.lines)-body, 0))

	p.backend.Clear()
	p.hits = make([][]Node, height)
	for y := range height {
		p.hits[y] = make([]Node, width)
	}
	for y := 0; y < body; y++ {
		if i := p.scroll + y; i < len(l.lines) {
			p.drawLine(y, l.lines[i])
		}
	}

	statusStyle := backend.DefaultStyle().
		WithBackground(p.theme.Status).
		WithForeground(p.theme.Status.Blend(backend.ColorFromRGB(0xff, 0xff, 0xff), 0.8))
	for x := range width {
		p.backend.SetCell(x, height-1, backend.NewCell(' ', statusStyle))
	}
	for i := range l.status {
		l.status[i].style = statusStyle
	}
	p.drawLine(height-1, l.status)
	p.backend.Show()
}

func (p *Painter) drawLine(y int, cells []layoutCell) {
	x := 0
	for _, c := range cells {
		if x+c.w > len(p.hits[y]) {
			break
		}
		p.backend.SetCell(x, y, backend.Cell{Rune: c.r, Width: c.w, Style: c.style})
		p.hits[y][x] = c.node
		for i := 1; i < c.w; i++ {
			p.backend.SetCell(x+i, y, backend.Cell{Style: c.style})
			p.hits[y][x+i] = c.node
		}
		x += c.w
	}
}

// layouter turns the view tree into wrapped lines of cells.
type layouter struct {
	width      int
	mapper     *Mapper
	theme      Theme
	highlights []Highlight

	lines  [][]layoutCell
	line   []layoutCell
	x      int
	indent []layoutCell
	status []layoutCell
	row    int // first line holding the current highlight
}

func (l *layouter) root(el *Element) {
	for _, c := range el.children {
		child, ok := c.(*Element)
		if !ok {
			continue
		}
		if child.name == StatusElement {
			if l.status == nil {
				for _, r := range child.TextContent() {
					l.status = append(l.status, layoutCell{r: r, w: backend.RuneWidth(r), node: child})
				}
			}
			continue
		}
		l.block(child)
	}
}

func (l *layouter) block(el *Element) {
	if !isInlineBlock(el) {
		prefix := layoutCell{r: ' ', w: 1, style: backend.DefaultStyle()}
		if el.name == "blockquote" {
			prefix = layoutCell{r: '│', w: 1, style: backend.DefaultStyle().WithForeground(l.theme.Heading)}
		}
		l.indent = append(l.indent, prefix, layoutCell{r: ' ', w: 1, style: backend.DefaultStyle()})
		for _, c := range el.children {
			if child, ok := c.(*Element); ok {
				l.block(child)
			}
		}
		l.indent = l.indent[:len(l.indent)-2]
		return
	}

	if len(l.lines) > 0 || len(l.line) > 0 {
		l.flush()
		l.newLine()
	}
	l.startLine()

	base := backend.DefaultStyle().WithForeground(l.theme.Text)
	if el.name == "h" {
		base = backend.DefaultStyle().WithForeground(l.theme.Heading).With(backend.AttrBold)
	}
	owner := l.mapper.ToModel(el)
	offset := 0
	for _, c := range el.children {
		switch n := c.(type) {
		case *Text:
			for _, r := range n.data {
				l.put(r, l.styleAt(base, owner, offset), n)
				offset++
			}
		case *Element:
			if n.name == "br" {
				l.flush()
				l.startLine()
			} else {
				l.put('▣', l.styleAt(base, owner, offset), n)
			}
			offset++
		}
	}
}

func (l *layouter) styleAt(base backend.Style, owner *model.Element, offset int) backend.Style {
	if owner == nil || len(l.highlights) == 0 {
		return base
	}
	pos, err := model.PositionAt(owner, offset)
	if err != nil {
		return base
	}
	hit, current := false, false
	for _, h := range l.highlights {
		if !pos.IsBefore(h.Range.Start) && pos.IsBefore(h.Range.End) {
			hit = true
			current = current || h.Current
		}
	}
	switch {
	case current:
		if l.row < 0 {
			l.row = len(l.lines)
		}
		return base.WithBackground(l.theme.Current)
	case hit:
		return base.WithBackground(l.theme.Highlight)
	}
	return base
}

func (l *layouter) put(r rune, style backend.Style, node Node) {
	w := backend.RuneWidth(r)
	if w == 0 {
		return
	}
	if l.x+w > l.width && l.x > len(l.indent) {
		l.flush()
		l.startLine()
	}
	l.line = append(l.line, layoutCell{r: r, w: w, style: style, node: node})
	l.x += w
}

func (l *layouter) startLine() {
	l.line = append(make([]layoutCell, 0, len(l.indent)+l.width), l.indent...)
	l.x = len(l.indent)
}

func (l *layouter) newLine() {
	l.lines = append(l.lines, nil)
}

func (l *layouter) flush() {
	if l.line != nil {
		l.lines = append(l.lines, l.line)
	}
	l.line = nil
	l.x = 0
}

// isInlineBlock reports whether el holds text flow rather than blocks.
func isInlineBlock(el *Element) bool {
	if len(el.children) == 0 {
		return el.name != "blockquote"
	}
	for _, c := range el.children {
		switch n := c.(type) {
		case *Text:
			return true
		case *Element:
			if n.name == "br" || n.name == "img" {
				return true
			}
		}
	}
	return false
}
