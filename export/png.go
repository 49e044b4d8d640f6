package export

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"tela/canvas"
	"tela/geometry"
	"tela/graph"
)

const (
	pngPadding = 40.0  // world units around the content bounds
	pngMaxDim  = 2048  // longest image edge in pixels
	pngFont    = 13.0
)

// RenderPNG draws a workspace's elements, cables and fan-out guides to a PNG
// file. Dimming follows the on-canvas rule: once any resolvable cable
// exists, unconnected elements render faded.
func RenderPNG(col *canvas.Collection, path string) error {
	bounds, ok := col.Bounds()
	if !ok {
		return fmt.Errorf("nothing to export")
	}
	bounds.X -= pngPadding
	bounds.Y -= pngPadding
	bounds.W += 2 * pngPadding
	bounds.H += 2 * pngPadding

	scale := 1.0
	if m := geometry.Max(bounds.W, bounds.H); m > pngMaxDim {
		scale = pngMaxDim / m
	}
	w := int(math.Ceil(bounds.W * scale))
	h := int(math.Ceil(bounds.H * scale))

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    pngFont,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	toPx := func(p geometry.Point) (float64, float64) {
		return (p.X - bounds.X) * scale, (p.Y - bounds.Y) * scale
	}

	dimming := graph.HasEdges(col)
	connected := graph.ConnectedSet(col)

	// Fan-out guides first, then cables, then cards on top.
	for _, link := range graph.FanOutLinks(col) {
		from, okF := col.Get(link.From)
		to, okT := col.Get(link.To)
		if !okF || !okT {
			continue
		}
		drawGuide(dc, toPx, from.Center(), to.Center())
	}
	for _, e := range graph.Edges(col) {
		from, okF := col.Get(e.From)
		to, okT := col.Get(e.To)
		if !okF || !okT {
			continue
		}
		drawCable(dc, toPx, from, to, scale)
	}
	for _, el := range col.ByZ() {
		dim := dimming && !connected[el.ID]
		drawElement(dc, toPx, el, scale, dim)
	}

	return dc.SavePNG(path)
}

// drawGuide renders a static curved parent/child fan-out link: a light
// quadratic arc, no arrowhead, visually distinct from user-drawn cables.
func drawGuide(dc *gg.Context, toPx func(geometry.Point) (float64, float64), from, to geometry.Point) {
	x1, y1 := toPx(from)
	x2, y2 := toPx(to)
	cx := (x1 + x2) / 2
	cy := geometry.Min(y1, y2) - 30

	dc.SetRGBA(0.6, 0.6, 0.7, 0.8)
	dc.SetLineWidth(1)
	dc.SetDash(4, 4)
	dc.MoveTo(x1, y1)
	dc.QuadraticTo(cx, cy, x2, y2)
	dc.Stroke()
	dc.SetDash()
}

// drawCable renders a directed cable from the source's right edge midpoint
// to the target's left edge midpoint, with an arrowhead at the target.
func drawCable(dc *gg.Context, toPx func(geometry.Point) (float64, float64), from, to canvas.Element, scale float64) {
	fb, tb := from.Bounds(), to.Bounds()
	x1, y1 := toPx(geometry.Point{X: fb.X + fb.W, Y: fb.Y + fb.H/2})
	x2, y2 := toPx(geometry.Point{X: tb.X, Y: tb.Y + tb.H/2})

	dc.SetRGB(0.15, 0.15, 0.2)
	dc.SetLineWidth(geometry.Max(1, 1.5*scale))
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	size := 7.0
	dc.MoveTo(x2, y2)
	dc.LineTo(x2-size*dx+size*dy*0.5, y2-size*dy-size*dx*0.5)
	dc.LineTo(x2-size*dx-size*dy*0.5, y2-size*dy+size*dx*0.5)
	dc.ClosePath()
	dc.Fill()
}

func drawElement(dc *gg.Context, toPx func(geometry.Point) (float64, float64), el canvas.Element, scale float64, dim bool) {
	b := el.Bounds()
	x, y := toPx(geometry.Point{X: b.X, Y: b.Y})
	w := b.W * scale
	h := b.H * scale

	alpha := 1.0
	if dim {
		alpha = 0.35
	}

	if el.IsGroup() {
		dc.SetRGBA(0.94, 0.94, 0.97, alpha)
	} else {
		dc.SetRGBA(1, 1, 1, alpha)
	}
	dc.DrawRoundedRectangle(x, y, w, h, geometry.Min(8*scale, w/4))
	dc.FillPreserve()
	dc.SetRGBA(0.2, 0.2, 0.25, alpha)
	dc.SetLineWidth(geometry.Max(1, scale))
	dc.Stroke()

	dc.SetRGBA(0.1, 0.1, 0.15, alpha)
	label := elementLabel(el)
	dc.DrawStringAnchored(label, x+6*scale, y+6*scale, 0, 1)
}

// elementLabel picks the one-line caption drawn on the card. The switch is
// exhaustive over the known card kinds; a new kind must decide its caption
// here.
func elementLabel(el canvas.Element) string {
	switch el.Type {
	case canvas.TypeNote, canvas.TypeTask:
		if el.Text != "" {
			return truncate(el.Text, 40)
		}
		return string(el.Type)
	case canvas.TypeMedia:
		if el.URL != "" {
			return truncate(el.URL, 40)
		}
		return "media"
	case canvas.TypeEmbed:
		if el.EmbedURL != "" {
			return truncate(el.EmbedURL, 40)
		}
		return "embed"
	case canvas.TypeTicker:
		if el.Symbol != "" {
			return fmt.Sprintf("%s %.2f", el.Symbol, el.Price)
		}
		return "ticker"
	case canvas.TypeBoard:
		if el.Quote != "" {
			return truncate(el.Quote, 40)
		}
		return "board"
	case canvas.TypeGroup:
		if el.Text != "" {
			return truncate(el.Text, 40)
		}
		return "group"
	default:
		return string(el.Type)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
