package engine

import (
	"testing"

	"tela/geometry"
)

func TestGroupSelection(t *testing.T) {
	t.Run("wraps the selection bounds with padding", func(t *testing.T) {
		col := loaded(note("a", 100, 100), note("b", 500, 300))
		e := New(col)
		e.SelectOnly("a")
		e.Toggle("b")

		g, ok := e.GroupSelection()
		if !ok {
			t.Fatalf("grouping refused")
		}

		if g.Position != (geometry.Point{X: 60, Y: 60}) {
			t.Errorf("group position = %+v, want {60 60}", g.Position)
		}
		// a..b span: x 100..720, y 100..440, plus padding on both sides.
		if g.Width != 700 || g.Height != 420 {
			t.Errorf("group box = %vx%v, want 700x420", g.Width, g.Height)
		}

		original := map[string]geometry.Point{
			"a": {X: 100, Y: 100},
			"b": {X: 500, Y: 300},
		}
		for _, id := range []string{"a", "b"} {
			el, _ := col.Get(id)
			if el.ParentID != g.ID {
				t.Errorf("%s not reparented", id)
			}
			if el.ZIndex <= g.ZIndex {
				t.Errorf("%s must paint above its group", id)
			}
			if el.Position != original[id] {
				t.Errorf("%s position changed on grouping: %+v", id, el.Position)
			}
		}

		if sel := e.Selection(); len(sel) != 1 || sel[0] != g.ID {
			t.Errorf("selection = %v, want the new group", sel)
		}
	})

	t.Run("requires two elements", func(t *testing.T) {
		col := loaded(note("a", 0, 0))
		e := New(col)
		e.SelectOnly("a")
		if _, ok := e.GroupSelection(); ok {
			t.Errorf("grouped a single element")
		}
	})
}

func TestUngroup(t *testing.T) {
	col := loaded(note("a", 100, 100), note("b", 500, 300))
	e := New(col)
	e.SelectOnly("a")
	e.Toggle("b")
	g, _ := e.GroupSelection()

	if !e.Ungroup(g.ID) {
		t.Fatalf("ungroup refused")
	}
	if _, ok := col.Get(g.ID); ok {
		t.Errorf("group element should be removed")
	}
	for _, id := range []string{"a", "b"} {
		el, ok := col.Get(id)
		if !ok {
			t.Fatalf("%s deleted by ungroup", id)
		}
		if el.ParentID != "" {
			t.Errorf("%s ParentID not cleared", id)
		}
	}

	if e.Ungroup("a") {
		t.Errorf("ungroup on a non-group must refuse")
	}
}

func TestGroupDragIsVisualOnly(t *testing.T) {
	col := loaded(note("a", 100, 100), note("b", 500, 300))
	e := New(col)
	e.SelectOnly("a")
	e.Toggle("b")
	g, _ := e.GroupSelection()

	grab := geometry.Point{X: g.Position.X + 5, Y: g.Position.Y + 5}
	e.PointerDown(grab)
	e.PointerMove(grab.Add(geometry.Point{X: 200, Y: 0}))

	// Mid-gesture both children ride along visually.
	va, _ := e.VisualPosition("a")
	if va != (geometry.Point{X: 300, Y: 100}) {
		t.Errorf("child visual = %+v, want {300 100}", va)
	}
	if e.Tilt(g.ID) != 0 {
		t.Errorf("groups never tilt")
	}

	e.PointerUp(grab.Add(geometry.Point{X: 200, Y: 0}))

	// The group commits the move; the children's stored positions do not.
	if got := pos(t, col, g.ID); got.X != g.Position.X+200 {
		t.Errorf("group x = %v, want %v", got.X, g.Position.X+200)
	}
	if got := pos(t, col, "a"); got != (geometry.Point{X: 100, Y: 100}) {
		t.Errorf("child committed position changed: %+v", got)
	}
}

func TestToggleCollapse(t *testing.T) {
	col := loaded(note("a", 100, 100), note("b", 500, 300))
	e := New(col)
	e.SelectOnly("a")
	e.Toggle("b")
	g, _ := e.GroupSelection()
	expanded := g.Size()

	if !e.ToggleCollapse(g.ID) {
		t.Fatalf("collapse refused")
	}
	got, _ := col.Get(g.ID)
	if !got.Collapsed || got.Size() != defaultCollapsedSize {
		t.Errorf("collapsed size = %+v", got.Size())
	}

	if !e.ToggleCollapse(g.ID) {
		t.Fatalf("expand refused")
	}
	got, _ = col.Get(g.ID)
	if got.Collapsed || got.Size() != expanded {
		t.Errorf("expanded size = %+v, want %+v", got.Size(), expanded)
	}

	if e.ToggleCollapse("a") {
		t.Errorf("cards don't collapse")
	}
}

func TestResize(t *testing.T) {
	t.Run("clamps to the per-kind minimum box", func(t *testing.T) {
		col := loaded(note("a", 100, 100))
		e := New(col)

		if !e.StartResize("a") {
			t.Fatalf("resize refused")
		}
		e.PointerMove(geometry.Point{X: 110, Y: 110})
		e.PointerUp(geometry.Point{X: 110, Y: 110})

		el, _ := col.Get("a")
		if el.Width != minCardWidth || el.Height != minCardHeight {
			t.Errorf("box = %vx%v, want minimum %vx%v",
				el.Width, el.Height, minCardWidth, minCardHeight)
		}
		if _, active := e.Resizing(); active {
			t.Errorf("resize state must clear on release")
		}
	})

	t.Run("collapsed groups are not resizable", func(t *testing.T) {
		col := loaded(note("a", 100, 100), note("b", 500, 300))
		e := New(col)
		e.SelectOnly("a")
		e.Toggle("b")
		g, _ := e.GroupSelection()
		e.ToggleCollapse(g.ID)

		if e.StartResize(g.ID) {
			t.Errorf("collapsed group accepted a resize")
		}
	})
}

func TestCableGesture(t *testing.T) {
	t.Run("release over an element commits the edge", func(t *testing.T) {
		col := loaded(note("a", 0, 0), note("b", 500, 0))
		e := New(col)

		ea, _ := col.Get("a")
		e.BeginCable("a", ea.Center())
		e.PointerMove(geometry.Point{X: 510, Y: 10})
		edge, ok := e.EndCable(geometry.Point{X: 510, Y: 10})
		if !ok || edge.From != "a" || edge.To != "b" {
			t.Fatalf("edge = %+v ok=%v", edge, ok)
		}

		got, _ := col.Get("a")
		if !got.ConnectsTo("b") {
			t.Errorf("connection not stored")
		}
	})

	t.Run("release over empty canvas cancels", func(t *testing.T) {
		col := loaded(note("a", 0, 0))
		e := New(col)
		ea, _ := col.Get("a")
		e.BeginCable("a", ea.Center())
		if _, ok := e.EndCable(geometry.Point{X: 5000, Y: 5000}); ok {
			t.Errorf("edge committed over empty canvas")
		}
	})

	t.Run("self target refuses", func(t *testing.T) {
		col := loaded(note("a", 0, 0))
		e := New(col)
		ea, _ := col.Get("a")
		e.BeginCable("a", ea.Center())
		if _, ok := e.EndCable(geometry.Point{X: 10, Y: 10}); ok {
			t.Errorf("self-loop committed")
		}
	})

	t.Run("remove deletes exactly one direction", func(t *testing.T) {
		col := loaded(note("a", 0, 0), note("b", 500, 0))
		e := New(col)
		ea, _ := col.Get("a")
		eb, _ := col.Get("b")
		e.BeginCable("a", ea.Center())
		e.EndCable(eb.Center())
		e.BeginCable("b", eb.Center())
		e.EndCable(ea.Center())

		if !e.RemoveCable("a", "b") {
			t.Fatalf("remove refused")
		}
		ga, _ := col.Get("a")
		gb, _ := col.Get("b")
		if ga.ConnectsTo("b") {
			t.Errorf("a->b survived removal")
		}
		if !gb.ConnectsTo("a") {
			t.Errorf("b->a must survive")
		}
	})
}
