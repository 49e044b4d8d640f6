package graph

import (
	"testing"

	"tela/canvas"
	"tela/geometry"
)

func build(els ...canvas.Element) *canvas.Collection {
	col := canvas.NewCollection()
	col.Load(els)
	return col
}

func el(id string) canvas.Element {
	return canvas.Element{ID: id, Type: canvas.TypeNote, Position: geometry.Point{}}
}

func TestConnect(t *testing.T) {
	t.Run("stores the directed edge", func(t *testing.T) {
		col := build(el("a"), el("b"))
		if !Connect(col, "a", "b") {
			t.Fatalf("connect refused")
		}
		edges := Edges(col)
		if len(edges) != 1 || edges[0] != (Edge{From: "a", To: "b"}) {
			t.Errorf("edges = %+v", edges)
		}
	})

	t.Run("self-loop is a no-op", func(t *testing.T) {
		col := build(el("a"))
		if Connect(col, "a", "a") {
			t.Errorf("self-loop accepted")
		}
	})

	t.Run("duplicate ordered pair is a no-op", func(t *testing.T) {
		col := build(el("a"), el("b"))
		Connect(col, "a", "b")
		if Connect(col, "a", "b") {
			t.Errorf("duplicate accepted")
		}
		a, _ := col.Get("a")
		if len(a.Connections) != 1 {
			t.Errorf("connections = %v", a.Connections)
		}
	})

	t.Run("reverse direction is an independent edge", func(t *testing.T) {
		col := build(el("a"), el("b"))
		Connect(col, "a", "b")
		if !Connect(col, "b", "a") {
			t.Errorf("reverse edge refused")
		}
		if len(Edges(col)) != 2 {
			t.Errorf("edges = %+v", Edges(col))
		}
	})

	t.Run("unknown endpoints refuse", func(t *testing.T) {
		col := build(el("a"))
		if Connect(col, "a", "ghost") || Connect(col, "ghost", "a") {
			t.Errorf("edge to a missing element accepted")
		}
	})
}

func TestDisconnect(t *testing.T) {
	col := build(el("a"), el("b"))
	Connect(col, "a", "b")
	Connect(col, "b", "a")

	if !Disconnect(col, "a", "b") {
		t.Fatalf("disconnect refused")
	}
	if Disconnect(col, "a", "b") {
		t.Errorf("second disconnect should report false")
	}
	if len(Edges(col)) != 1 {
		t.Errorf("b->a must survive: %+v", Edges(col))
	}
}

func TestDimming(t *testing.T) {
	t.Run("zero cables means nobody dims", func(t *testing.T) {
		col := build(el("a"), el("b"))
		if Dimmed(col, "a") || Dimmed(col, "b") {
			t.Errorf("dimming active without cables")
		}
	})

	t.Run("one cable dims everything off the component", func(t *testing.T) {
		col := build(el("a"), el("b"), el("c"))
		Connect(col, "a", "b")

		if Dimmed(col, "a") || Dimmed(col, "b") {
			t.Errorf("cable endpoints must stay lit")
		}
		if !Dimmed(col, "c") {
			t.Errorf("c is off the component and must dim")
		}
	})

	t.Run("reachability ignores edge direction", func(t *testing.T) {
		col := build(el("a"), el("b"), el("c"))
		Connect(col, "a", "b")
		Connect(col, "c", "b")

		set := ConnectedSet(col)
		for _, id := range []string{"a", "b", "c"} {
			if !set[id] {
				t.Errorf("%s unreachable, want whole chain connected", id)
			}
		}
	})

	t.Run("mutual pair does not loop", func(t *testing.T) {
		col := build(el("a"), el("b"))
		Connect(col, "a", "b")
		Connect(col, "b", "a")
		set := ConnectedSet(col)
		if !set["a"] || !set["b"] {
			t.Errorf("set = %v", set)
		}
	})
}

func TestDanglingReferences(t *testing.T) {
	// A deleted endpoint leaves the raw adjacency entry behind; traversal
	// filters it and the workspace behaves as if the cable were gone.
	col := build(el("a"), el("b"), el("c"))
	Connect(col, "a", "b")
	col.Remove("b")

	a, _ := col.Get("a")
	if !a.ConnectsTo("b") {
		t.Fatalf("raw adjacency entry should survive the delete")
	}
	if len(Edges(col)) != 0 {
		t.Errorf("dangling edge resolved: %+v", Edges(col))
	}
	if HasEdges(col) {
		t.Errorf("dangling edges must not enable dimming")
	}
	if Dimmed(col, "c") {
		t.Errorf("c dimmed with no resolvable cables")
	}
}

func TestFanOutLinks(t *testing.T) {
	parent := el("origin")
	child := el("spawn")
	child.ParentID = "origin"

	grouped := el("member")
	grouped.ParentID = "box"
	group := canvas.Element{ID: "box", Type: canvas.TypeGroup}

	orphan := el("orphan")
	orphan.ParentID = "gone"

	col := build(parent, child, grouped, group, orphan)
	links := FanOutLinks(col)
	if len(links) != 1 || links[0] != (Edge{From: "origin", To: "spawn"}) {
		t.Errorf("links = %+v, want only origin->spawn", links)
	}
}
