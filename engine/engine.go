// Package engine implements the pointer-driven interaction protocol over a
// workspace collection: selection, dragging with snap correction, lasso
// selection, cable gestures and the bulk selection actions. Every operation
// is a total function over its inputs; nothing here returns an error to the
// UI layer.
package engine

import (
	"sort"

	"tela/canvas"
	"tela/geometry"
)

// Tuning defaults. SnapThreshold is in world units and can be overridden via
// configuration.
const (
	DefaultSnapThreshold = 12.0
	dragSlop             = 3.0 // world units of travel before a press counts as a drag
	stackStep            = 40.0
	maxTilt              = 12.0
)

// Axis identifies which axis a snap guide aligned.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Guide is a visual snap-guide line emitted for an axis that snapped on
// release.
type Guide struct {
	Axis  Axis
	Value float64
}

// Modifiers are the ambient input flags set by the host's keyboard adapter
// and consumed per gesture; the engine holds no module-level input state.
type Modifiers struct {
	Snap  bool // correct drop position to nearby element edges
	Union bool // add to the existing selection instead of replacing it
}

// DropResult describes how a drag gesture ended.
type DropResult struct {
	Moved  bool
	Delta  geometry.Point
	Guides []Guide
}

type dragState struct {
	id     string
	group  bool
	start  geometry.Point // pointer position at grab
	origin geometry.Point // element position at grab
	delta  geometry.Point
	moved  bool

	// passengers maps every other member of a multi-selection to its
	// committed position at grab time. Their on-screen position during the
	// gesture is visual only; the data model is written once, at drop.
	passengers map[string]geometry.Point

	// children mirrors passengers for a dragged group's members. They
	// translate in lockstep visually but their stored positions are never
	// touched: membership is organizational, not a coordinate frame.
	children map[string]geometry.Point

	lastX float64
	tilt  float64
}

type lassoState struct {
	start   geometry.Point
	current geometry.Point
	moved   bool
}

// Engine drives one workspace's interaction state. It is the sole mutator of
// its collection while active.
type Engine struct {
	col *canvas.Collection

	SnapThreshold float64
	Mods          Modifiers

	sel   map[string]bool
	drag  *dragState
	lasso *lassoState
	cable *cableState

	resize *resizeState
}

// New returns an engine over the given collection.
func New(col *canvas.Collection) *Engine {
	return &Engine{
		col:           col,
		SnapThreshold: DefaultSnapThreshold,
		sel:           make(map[string]bool),
	}
}

// Collection returns the engine's backing collection.
func (e *Engine) Collection() *canvas.Collection {
	return e.col
}

// Selection returns the selected ids, sorted for determinism.
func (e *Engine) Selection() []string {
	out := make([]string, 0, len(e.sel))
	for id := range e.sel {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsSelected reports whether the element is part of the selection.
func (e *Engine) IsSelected(id string) bool {
	return e.sel[id]
}

// SelectOnly replaces the selection with a single element.
func (e *Engine) SelectOnly(id string) {
	e.sel = map[string]bool{id: true}
}

// Toggle flips an element's selection membership.
func (e *Engine) Toggle(id string) {
	if e.sel[id] {
		delete(e.sel, id)
	} else {
		e.sel[id] = true
	}
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.sel = make(map[string]bool)
}

// PointerDown begins a gesture at a world point: a drag when an element is
// hit, otherwise a lasso from empty canvas background.
func (e *Engine) PointerDown(p geometry.Point) {
	if e.drag != nil || e.lasso != nil || e.cable != nil || e.resize != nil {
		return
	}
	hit, ok := e.col.HitTest(p)
	if !ok {
		e.lasso = &lassoState{start: p, current: p}
		return
	}

	d := &dragState{
		id:     hit.ID,
		group:  hit.IsGroup(),
		start:  p,
		origin: hit.Position,
		lastX:  p.X,
	}

	// A raised group would paint over its own children, so only cards get
	// the z bump on grab.
	if !hit.IsGroup() {
		e.col.BringToFront(hit.ID)
	}

	if e.sel[hit.ID] && len(e.sel) > 1 {
		d.passengers = make(map[string]geometry.Point)
		for id := range e.sel {
			if id == hit.ID {
				continue
			}
			if el, ok := e.col.Get(id); ok {
				d.passengers[id] = el.Position
			}
		}
	}

	if hit.IsGroup() {
		d.children = make(map[string]geometry.Point)
		for _, childID := range e.col.Children(hit.ID) {
			if el, ok := e.col.Get(childID); ok {
				d.children[childID] = el.Position
			}
		}
	}

	e.drag = d
}

// PointerMove advances the active gesture. Move events are applied in
// arrival order; only visual state changes here.
func (e *Engine) PointerMove(p geometry.Point) {
	switch {
	case e.resize != nil:
		e.resizeTo(p)
	case e.cable != nil:
		e.cable.anchor = p
	case e.drag != nil:
		d := e.drag
		d.delta = p.Sub(d.start)
		if !d.moved && geometry.Dist(p, d.start) > dragSlop {
			d.moved = true
		}
		if !d.group {
			d.tilt = geometry.Clamp((p.X-d.lastX)*1.5, -maxTilt, maxTilt)
		}
		d.lastX = p.X
	case e.lasso != nil:
		e.lasso.current = p
		if geometry.Dist(p, e.lasso.start) > dragSlop {
			e.lasso.moved = true
		}
	}
}

// PointerUp ends the active gesture and commits exactly once.
func (e *Engine) PointerUp(p geometry.Point) DropResult {
	switch {
	case e.resize != nil:
		e.endResize()
		return DropResult{}
	case e.cable != nil:
		e.EndCable(p)
		return DropResult{}
	case e.drag != nil:
		return e.dropDrag(p)
	case e.lasso != nil:
		e.dropLasso(p)
		return DropResult{}
	}
	return DropResult{}
}

func (e *Engine) dropDrag(p geometry.Point) DropResult {
	d := e.drag
	e.drag = nil

	if !d.moved {
		// A press without travel is a click: plain click replaces the
		// selection, a modifier click toggles membership.
		if e.Mods.Union {
			e.Toggle(d.id)
		} else {
			e.SelectOnly(d.id)
		}
		return DropResult{}
	}

	raw := d.origin.Add(d.delta)
	final := raw
	var guides []Guide
	if e.Mods.Snap {
		exclude := map[string]bool{d.id: true}
		for id := range d.passengers {
			exclude[id] = true
		}
		for id := range d.children {
			exclude[id] = true
		}
		final, guides = e.snapCorrect(raw, exclude)
	}

	// The authoritative delta is derived from the corrected drop position so
	// passengers land exactly where the primary did, snap included.
	delta := final.Sub(d.origin)

	if el, ok := e.col.Get(d.id); ok {
		el.Position = final
		e.col.Replace(el)
	}
	for id, origin := range d.passengers {
		el, ok := e.col.Get(id)
		if !ok {
			continue
		}
		el.Position = origin.Add(delta)
		e.col.Replace(el)
	}
	// Group children intentionally keep their stored positions; the lockstep
	// translation during the gesture was visual only.

	return DropResult{Moved: true, Delta: delta, Guides: guides}
}

func (e *Engine) dropLasso(p geometry.Point) {
	l := e.lasso
	e.lasso = nil

	if !l.moved {
		if !e.Mods.Union {
			e.ClearSelection()
		}
		return
	}

	rect := geometry.RectFrom(l.start, p)
	if !e.Mods.Union {
		e.sel = make(map[string]bool)
	}
	for _, el := range e.col.All() {
		if el.Bounds().Intersects(rect) {
			e.sel[el.ID] = true
		}
	}
}

// snapCorrect aligns the drop position to the nearest other element's x
// and/or independently y within the snap threshold, emitting a guide per
// snapped axis.
func (e *Engine) snapCorrect(pos geometry.Point, exclude map[string]bool) (geometry.Point, []Guide) {
	bestX, bestY := e.SnapThreshold, e.SnapThreshold
	corrected := pos
	var guides []Guide
	snappedX, snappedY := false, false

	for _, other := range e.col.All() {
		if exclude[other.ID] {
			continue
		}
		if dx := geometry.Abs(pos.X - other.Position.X); dx <= bestX {
			bestX = dx
			corrected.X = other.Position.X
			snappedX = true
		}
		if dy := geometry.Abs(pos.Y - other.Position.Y); dy <= bestY {
			bestY = dy
			corrected.Y = other.Position.Y
			snappedY = true
		}
	}

	if snappedX {
		guides = append(guides, Guide{Axis: AxisX, Value: corrected.X})
	}
	if snappedY {
		guides = append(guides, Guide{Axis: AxisY, Value: corrected.Y})
	}
	return corrected, guides
}

// VisualPosition returns the element's on-screen position: its committed
// position plus the live drag delta for the dragged element, multi-drag
// passengers and group children. Everything else reads straight from the
// collection.
func (e *Engine) VisualPosition(id string) (geometry.Point, bool) {
	el, ok := e.col.Get(id)
	if !ok {
		return geometry.Point{}, false
	}
	if d := e.drag; d != nil && d.moved {
		if id == d.id {
			return d.origin.Add(d.delta), true
		}
		if origin, ok := d.passengers[id]; ok {
			return origin.Add(d.delta), true
		}
		if origin, ok := d.children[id]; ok {
			return origin.Add(d.delta), true
		}
	}
	return el.Position, true
}

// Tilt returns the cosmetic drag rotation for the element, nonzero only for
// the non-group element currently being dragged. It is never persisted.
func (e *Engine) Tilt(id string) float64 {
	if d := e.drag; d != nil && d.id == id && !d.group {
		return d.tilt
	}
	return 0
}

// Dragging reports the id under an active drag gesture.
func (e *Engine) Dragging() (string, bool) {
	if e.drag == nil {
		return "", false
	}
	return e.drag.id, true
}

// LassoRect returns the live lasso rectangle for rendering.
func (e *Engine) LassoRect() (geometry.Rect, bool) {
	if e.lasso == nil || !e.lasso.moved {
		return geometry.Rect{}, false
	}
	return geometry.RectFrom(e.lasso.start, e.lasso.current), true
}

// AddElement creates a new element of the given type at a world position and
// returns it. This backs the toolbar add, paste and the bridge message path.
func (e *Engine) AddElement(t canvas.Type, pos geometry.Point) canvas.Element {
	return e.col.Create(t, pos)
}

// ApplyFetched merges the result of a completed async fetch into the current
// element by id. The patch runs against the element as it exists now, so a
// position change that happened while the fetch was in flight survives. A
// deleted element makes this a silent no-op.
func (e *Engine) ApplyFetched(id string, patch func(*canvas.Element)) bool {
	el, ok := e.col.Get(id)
	if !ok {
		return false
	}
	patch(&el)
	el.ID = id // the patch must not reassign identity
	return e.col.Replace(el)
}

// OrganizeSelection stacks the selected elements diagonally, sorted by
// x+y, each raised to a fresh top z-index. It requires at least two selected
// elements.
func (e *Engine) OrganizeSelection() bool {
	if len(e.sel) < 2 {
		return false
	}
	var els []canvas.Element
	for id := range e.sel {
		if el, ok := e.col.Get(id); ok {
			els = append(els, el)
		}
	}
	sort.Slice(els, func(i, j int) bool {
		si := els[i].Position.X + els[i].Position.Y
		sj := els[j].Position.X + els[j].Position.Y
		if si == sj {
			return els[i].ID < els[j].ID
		}
		return si < sj
	})

	base := els[0].Position
	for i, el := range els {
		el.Position = geometry.Point{
			X: base.X + float64(i)*stackStep,
			Y: base.Y + float64(i)*stackStep,
		}
		el.ZIndex = e.col.NextZ()
		e.col.Replace(el)
	}
	return true
}

// DeleteSelection removes every selected element and clears the selection.
// The destructive-action confirmation lives in the frontend. It requires at
// least two selected elements, matching when the bulk action is offered.
func (e *Engine) DeleteSelection() int {
	if len(e.sel) < 2 {
		return 0
	}
	n := 0
	for id := range e.sel {
		if e.col.Remove(id) {
			n++
		}
	}
	e.ClearSelection()
	return n
}

// DeleteElement removes a single element. Cables pointing at it go dangling
// and are filtered at traversal time.
func (e *Engine) DeleteElement(id string) bool {
	delete(e.sel, id)
	return e.col.Remove(id)
}
