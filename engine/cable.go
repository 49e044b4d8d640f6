package engine

import (
	"tela/geometry"
	"tela/graph"
)

type cableState struct {
	src    string
	anchor geometry.Point
}

// BeginCable starts a cable gesture from an element's output port. The
// anchor is the port's world position and becomes the cable's moving end.
func (e *Engine) BeginCable(src string, anchor geometry.Point) {
	if _, ok := e.col.Get(src); !ok {
		return
	}
	e.drag = nil
	e.lasso = nil
	e.cable = &cableState{src: src, anchor: anchor}
}

// ActiveCable returns the in-progress cable for rendering.
func (e *Engine) ActiveCable() (src string, anchor geometry.Point, ok bool) {
	if e.cable == nil {
		return "", geometry.Point{}, false
	}
	return e.cable.src, e.cable.anchor, true
}

// EndCable finishes the cable gesture at a world point. Releasing over an
// element commits the edge subject to the graph rules (no self-loops, no
// duplicate ordered pairs); releasing over empty canvas cancels without
// mutation.
func (e *Engine) EndCable(p geometry.Point) (graph.Edge, bool) {
	c := e.cable
	if c == nil {
		return graph.Edge{}, false
	}
	e.cable = nil

	target, ok := e.col.HitTest(p)
	if !ok {
		return graph.Edge{}, false
	}
	if !graph.Connect(e.col, c.src, target.ID) {
		return graph.Edge{}, false
	}
	return graph.Edge{From: c.src, To: target.ID}, true
}

// CancelCable aborts the cable gesture without mutation.
func (e *Engine) CancelCable() {
	e.cable = nil
}

// RemoveCable deletes a specific rendered cable.
func (e *Engine) RemoveCable(src, dst string) bool {
	return graph.Disconnect(e.col, src, dst)
}
