package engine

import (
	"tela/canvas"
	"tela/geometry"
)

// Minimum boxes enforced by the resize gesture.
const (
	minGroupWidth  = 120.0
	minGroupHeight = 80.0
	minCardWidth   = 80.0
	minCardHeight  = 40.0
	groupPadding   = 40.0
)

// Collapsed groups render as a fixed icon tile.
var defaultCollapsedSize = geometry.Size{W: 48, H: 48}

type resizeState struct {
	id string
}

// GroupSelection creates a new group element around the current selection
// and reparents the selected elements into it. Children keep their absolute
// positions; the group box is a visual boundary only. Returns the group and
// false when fewer than two elements are selected.
func (e *Engine) GroupSelection() (canvas.Element, bool) {
	ids := e.Selection()
	if len(ids) < 2 {
		return canvas.Element{}, false
	}

	var bounds geometry.Rect
	first := true
	for _, id := range ids {
		el, ok := e.col.Get(id)
		if !ok {
			continue
		}
		if first {
			bounds = el.Bounds()
			first = false
		} else {
			bounds = bounds.Union(el.Bounds())
		}
	}
	if first {
		return canvas.Element{}, false
	}

	group := e.col.Create(canvas.TypeGroup, geometry.Point{
		X: bounds.X - groupPadding,
		Y: bounds.Y - groupPadding,
	})
	group.Width = bounds.W + 2*groupPadding
	group.Height = bounds.H + 2*groupPadding
	e.col.Replace(group)

	// Members are re-raised after the group so the container never paints
	// over its own children.
	for _, id := range ids {
		el, ok := e.col.Get(id)
		if !ok {
			continue
		}
		el.ParentID = group.ID
		el.ZIndex = e.col.NextZ()
		e.col.Replace(el)
	}

	group, _ = e.col.Get(group.ID)
	e.SelectOnly(group.ID)
	return group, true
}

// Ungroup removes a group element. Its children simply lose their ParentID;
// nothing cascades.
func (e *Engine) Ungroup(groupID string) bool {
	g, ok := e.col.Get(groupID)
	if !ok || !g.IsGroup() {
		return false
	}
	for _, childID := range e.col.Children(groupID) {
		if el, ok := e.col.Get(childID); ok {
			el.ParentID = ""
			e.col.Replace(el)
		}
	}
	delete(e.sel, groupID)
	return e.col.Remove(groupID)
}

// AddToGroup assigns elements to an existing group.
func (e *Engine) AddToGroup(ids []string, groupID string) {
	g, ok := e.col.Get(groupID)
	if !ok || !g.IsGroup() {
		return
	}
	for _, id := range ids {
		if id == groupID {
			continue
		}
		if el, ok := e.col.Get(id); ok {
			el.ParentID = groupID
			e.col.Replace(el)
		}
	}
}

// RemoveFromGroup clears the group membership of the given elements.
func (e *Engine) RemoveFromGroup(ids []string) {
	for _, id := range ids {
		if el, ok := e.col.Get(id); ok && el.ParentID != "" {
			el.ParentID = ""
			e.col.Replace(el)
		}
	}
}

// ToggleCollapse flips a group between its expanded box and the fixed-size
// collapsed tile. The expanded width/height are left untouched while
// collapsed, so expanding restores the prior dimensions exactly.
func (e *Engine) ToggleCollapse(id string) bool {
	el, ok := e.col.Get(id)
	if !ok || !el.IsGroup() {
		return false
	}
	if el.Collapsed {
		el.Collapsed = false
	} else {
		el.Collapsed = true
		if el.CollapsedSize == nil {
			s := defaultCollapsedSize
			el.CollapsedSize = &s
		}
	}
	return e.col.Replace(el)
}

// StartResize begins a corner-drag resize gesture on an element. Collapsed
// groups are not resizable.
func (e *Engine) StartResize(id string) bool {
	el, ok := e.col.Get(id)
	if !ok || (el.IsGroup() && el.Collapsed) {
		return false
	}
	e.drag = nil
	e.lasso = nil
	e.resize = &resizeState{id: id}
	return true
}

// Resizing reports the id under an active resize gesture.
func (e *Engine) Resizing() (string, bool) {
	if e.resize == nil {
		return "", false
	}
	return e.resize.id, true
}

func (e *Engine) resizeTo(p geometry.Point) {
	r := e.resize
	el, ok := e.col.Get(r.id)
	if !ok {
		e.resize = nil
		return
	}
	minW, minH := minCardWidth, minCardHeight
	if el.IsGroup() {
		minW, minH = minGroupWidth, minGroupHeight
	}
	el.Width = geometry.Max(p.X-el.Position.X, minW)
	el.Height = geometry.Max(p.Y-el.Position.Y, minH)
	e.col.Replace(el)
}

func (e *Engine) endResize() {
	e.resize = nil
}
