package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"tela/canvas"
	"tela/engine"
	"tela/geometry"
	"tela/graph"
)

var (
	styleDefault  = tcell.StyleDefault
	styleCard     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleGroup    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleCable    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleGuide    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleLasso    = tcell.StyleDefault.Foreground(tcell.ColorLightSkyBlue)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

func cellCenter(w, h float64) geometry.Point {
	return geometry.Point{X: w / 2, Y: h / 2}
}

// worldToCell projects a world point into terminal cell coordinates.
func (u *UI) worldToCell(p geometry.Point) (int, int) {
	s := u.vp.WorldToScreen(p)
	return int(s.X / cellW), int(s.Y / cellH)
}

func (u *UI) draw() {
	u.screen.Clear()

	col := u.eng.Collection()
	dimming := graph.HasEdges(col)
	connected := graph.ConnectedSet(col)

	// Fan-out guides and cables paint under the cards.
	for _, link := range graph.FanOutLinks(col) {
		u.drawLink(link.From, link.To, styleGroup, '·')
	}
	for _, e := range graph.Edges(col) {
		u.drawLink(e.From, e.To, styleCable, '•')
	}
	if src, anchor, ok := u.eng.ActiveCable(); ok {
		if el, found := col.Get(src); found {
			u.drawSegment(el.Center(), anchor, styleCable, '•')
		}
	}

	for _, el := range col.ByZ() {
		dim := dimming && !connected[el.ID]
		u.drawElement(el, dim)
	}

	if rect, ok := u.eng.LassoRect(); ok {
		u.drawRectOutline(rect, styleLasso, '░')
	}
	for _, g := range u.guides {
		u.drawGuide(g)
	}

	u.drawStatus()
	u.screen.Show()
}

func (u *UI) drawElement(el canvas.Element, dim bool) {
	pos, ok := u.eng.VisualPosition(el.ID)
	if !ok {
		return
	}
	b := el.Bounds()
	b.X, b.Y = pos.X, pos.Y

	x0, y0 := u.worldToCell(geometry.Point{X: b.X, Y: b.Y})
	x1, y1 := u.worldToCell(geometry.Point{X: b.X + b.W, Y: b.Y + b.H})
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	if x1 < 0 || y1 < 0 || x0 >= u.width || y0 >= u.height-1 {
		return
	}

	style := styleCard
	if el.IsGroup() {
		style = styleGroup
	}
	if dim {
		style = styleDim
	}
	if u.eng.IsSelected(el.ID) {
		style = styleSelected
	}

	u.drawBox(x0, y0, x1, y1, style)

	label := u.elementLabel(el)
	u.drawText(x0+1, y0+1, x1-1, label, style)
}

func (u *UI) elementLabel(el canvas.Element) string {
	switch el.Type {
	case canvas.TypeNote:
		if el.Text != "" {
			return el.Text
		}
		return "note"
	case canvas.TypeTask:
		mark := "[ ]"
		if el.Done {
			mark = "[x]"
		}
		return mark + " " + el.Text
	case canvas.TypeMedia:
		return "media " + el.URL
	case canvas.TypeEmbed:
		return "embed " + el.EmbedURL
	case canvas.TypeTicker:
		if el.Loading {
			return el.Symbol + " …"
		}
		return fmt.Sprintf("%s %.2f", el.Symbol, el.Price)
	case canvas.TypeBoard:
		return "board " + el.Quote
	case canvas.TypeGroup:
		if el.Collapsed {
			return "▣ " + el.Text
		}
		return "▢ " + el.Text
	default:
		return string(el.Type)
	}
}

func (u *UI) drawBox(x0, y0, x1, y1 int, style tcell.Style) {
	for x := x0; x <= x1; x++ {
		u.setCell(x, y0, '─', style)
		u.setCell(x, y1, '─', style)
	}
	for y := y0; y <= y1; y++ {
		u.setCell(x0, y, '│', style)
		u.setCell(x1, y, '│', style)
	}
	u.setCell(x0, y0, '┌', style)
	u.setCell(x1, y0, '┐', style)
	u.setCell(x0, y1, '└', style)
	u.setCell(x1, y1, '┘', style)
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			u.setCell(x, y, ' ', style)
		}
	}
}

func (u *UI) drawText(x0, y, x1 int, text string, style tcell.Style) {
	x := x0
	for _, r := range text {
		if x > x1 {
			break
		}
		u.setCell(x, y, r, style)
		x++
	}
}

// drawLink draws a straight rune line between two elements' visual centers.
func (u *UI) drawLink(fromID, toID string, style tcell.Style, r rune) {
	col := u.eng.Collection()
	from, okF := col.Get(fromID)
	to, okT := col.Get(toID)
	if !okF || !okT {
		return
	}
	fp, _ := u.eng.VisualPosition(fromID)
	tp, _ := u.eng.VisualPosition(toID)
	fs, ts := from.Size(), to.Size()
	u.drawSegment(
		geometry.Point{X: fp.X + fs.W/2, Y: fp.Y + fs.H/2},
		geometry.Point{X: tp.X + ts.W/2, Y: tp.Y + ts.H/2},
		style, r)
}

// walkSegment visits every cell on the stepped line between two world
// points. Zero-length segments visit nothing.
func (u *UI) walkSegment(from, to geometry.Point, visit func(x, y int)) {
	x0, y0 := u.worldToCell(from)
	x1, y1 := u.worldToCell(to)
	dx := x1 - x0
	dy := y1 - y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		return
	}
	for i := 0; i <= steps; i++ {
		visit(x0+dx*i/steps, y0+dy*i/steps)
	}
}

// drawSegment steps between two world points in cell space.
func (u *UI) drawSegment(from, to geometry.Point, style tcell.Style, r rune) {
	u.walkSegment(from, to, func(x, y int) {
		u.setCell(x, y, r, style)
	})
	x1, y1 := u.worldToCell(to)
	u.setCell(x1, y1, '▶', style)
}

// cableAt returns the cable whose rendered line passes through the given
// cell, if any. Cables are checked in paint order, so on overlap the
// earliest-painted one wins.
func (u *UI) cableAt(cx, cy int) (graph.Edge, bool) {
	col := u.eng.Collection()
	for _, e := range graph.Edges(col) {
		from, okF := col.Get(e.From)
		to, okT := col.Get(e.To)
		if !okF || !okT {
			continue
		}
		hit := false
		u.walkSegment(from.Center(), to.Center(), func(x, y int) {
			if x == cx && y == cy {
				hit = true
			}
		})
		if hit {
			return e, true
		}
	}
	return graph.Edge{}, false
}

func (u *UI) drawRectOutline(rect geometry.Rect, style tcell.Style, r rune) {
	x0, y0 := u.worldToCell(geometry.Point{X: rect.X, Y: rect.Y})
	x1, y1 := u.worldToCell(geometry.Point{X: rect.X + rect.W, Y: rect.Y + rect.H})
	for x := x0; x <= x1; x++ {
		u.setCell(x, y0, r, style)
		u.setCell(x, y1, r, style)
	}
	for y := y0; y <= y1; y++ {
		u.setCell(x0, y, r, style)
		u.setCell(x1, y, r, style)
	}
}

// drawGuide renders a snap guide as a full-height or full-width dashed line
// at the snapped world coordinate.
func (u *UI) drawGuide(g engine.Guide) {
	switch g.Axis {
	case engine.AxisX:
		cx, _ := u.worldToCell(geometry.Point{X: g.Value})
		for y := 0; y < u.height-1; y++ {
			u.setCell(cx, y, '┆', styleGuide)
		}
	case engine.AxisY:
		_, cy := u.worldToCell(geometry.Point{Y: g.Value})
		for x := 0; x < u.width; x++ {
			u.setCell(x, cy, '┄', styleGuide)
		}
	}
}

func (u *UI) drawStatus() {
	name := "(no workspace)"
	if ws, ok := u.sess.Current(); ok {
		name = ws.Name
	}
	line := fmt.Sprintf(" %s │ %d elements │ zoom %.0f%% │ sel %d │ %s",
		name, u.eng.Collection().Len(), u.vp.Zoom*100, len(u.eng.Selection()), u.status)
	y := u.height - 1
	for x := 0; x < u.width; x++ {
		u.setCell(x, y, ' ', styleStatus)
	}
	x := 0
	for _, r := range line {
		if x >= u.width {
			break
		}
		u.setCell(x, y, r, styleStatus)
		x++
	}
}

func (u *UI) setCell(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= u.width || y >= u.height {
		return
	}
	u.screen.SetContent(x, y, r, nil, style)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
