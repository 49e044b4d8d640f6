package terminal

import (
	"testing"

	"tela/canvas"
	"tela/geometry"
	"tela/viewport"
)

func TestWorldToCell(t *testing.T) {
	u := &UI{vp: viewport.New()}

	// One terminal cell covers cellW x cellH screen pixels; the taller cell
	// height is the x/y aspect correction.
	x, y := u.worldToCell(geometry.Point{X: 160, Y: 160})
	if x != 10 || y != 5 {
		t.Errorf("cell = (%d,%d), want (10,5)", x, y)
	}

	u.vp.Zoom = 2
	x, y = u.worldToCell(geometry.Point{X: 160, Y: 160})
	if x != 20 || y != 10 {
		t.Errorf("zoomed cell = (%d,%d), want (20,10)", x, y)
	}
}

func TestCellCenter(t *testing.T) {
	c := cellCenter(800, 600)
	if c != (geometry.Point{X: 400, Y: 300}) {
		t.Errorf("center = %+v", c)
	}
}

func TestElementLabel(t *testing.T) {
	u := &UI{}
	cases := []struct {
		el   canvas.Element
		want string
	}{
		{canvas.Element{Type: canvas.TypeNote, Text: "todo list"}, "todo list"},
		{canvas.Element{Type: canvas.TypeNote}, "note"},
		{canvas.Element{Type: canvas.TypeTask, Text: "ship it", Done: true}, "[x] ship it"},
		{canvas.Element{Type: canvas.TypeTask, Text: "ship it"}, "[ ] ship it"},
		{canvas.Element{Type: canvas.TypeTicker, Symbol: "ACME", Loading: true}, "ACME …"},
		{canvas.Element{Type: canvas.TypeGroup, Text: "pile", Collapsed: true}, "▣ pile"},
		{canvas.Element{Type: canvas.TypeGroup, Text: "pile"}, "▢ pile"},
	}
	for _, c := range cases {
		if got := u.elementLabel(c.el); got != c.want {
			t.Errorf("label(%s) = %q, want %q", c.el.Type, got, c.want)
		}
	}
}
