package terminal

import (
	"github.com/gdamore/tcell/v2"

	"tela/canvas"
	"tela/viewport"
)

// Pan step for keyboard panning, in screen pixels.
const keyPanStep = 64.0

func (u *UI) handleKey(ev *tcell.EventKey) {
	// A pending confirmation swallows everything except its answer.
	if u.confirm != confirmNone {
		switch ev.Rune() {
		case 'y', 'Y':
			u.runConfirmed()
		default:
			u.confirm = confirmNone
			u.statusf("cancelled")
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		u.eng.CancelCable()
		u.eng.ClearSelection()
		u.guides = nil
		return
	case tcell.KeyCtrlC:
		u.quit = true
		return
	case tcell.KeyUp:
		u.vp.Pan(0, keyPanStep)
		u.commitViewport()
		return
	case tcell.KeyDown:
		u.vp.Pan(0, -keyPanStep)
		u.commitViewport()
		return
	case tcell.KeyLeft:
		u.vp.Pan(keyPanStep, 0)
		u.commitViewport()
		return
	case tcell.KeyRight:
		u.vp.Pan(-keyPanStep, 0)
		u.commitViewport()
		return
	}

	w, h := u.viewSize()
	center := cellCenter(w, h)

	switch ev.Rune() {
	case 'q':
		u.quit = true
	case '+', '=':
		u.vp.ZoomIn(center)
		u.commitViewport()
		u.statusf("zoom %.0f%%", u.vp.Zoom*100)
	case '-', '_':
		u.vp.ZoomOut(center)
		u.commitViewport()
		u.statusf("zoom %.0f%%", u.vp.Zoom*100)
	case 'n':
		u.addElement(canvas.TypeNote, "")
	case 't':
		u.addElement(canvas.TypeTask, "")
	case 'p':
		u.pasteClipboard()
	case 'o':
		u.confirm = confirmOrganize
		u.statusf("organize discards the manual arrangement; confirm? (y/n)")
	case 's':
		if u.eng.OrganizeSelection() {
			u.markDirty()
			u.statusf("stacked selection")
		} else {
			u.statusf("select at least two elements")
		}
	case 'd', 'x':
		if n := len(u.eng.Selection()); n == 1 {
			u.confirm = confirmDeleteSelection
			u.statusf("delete 1 element? (y/n)")
		} else if n >= 2 {
			u.confirm = confirmDeleteSelection
			u.statusf("delete %d elements? (y/n)", n)
		} else {
			u.statusf("nothing selected")
		}
	case 'g':
		if _, ok := u.eng.GroupSelection(); ok {
			u.markDirty()
			u.statusf("grouped selection")
		} else {
			u.statusf("select at least two elements")
		}
	case 'G':
		if id, ok := u.singleSelectedGroup(); ok {
			u.eng.Ungroup(id)
			u.markDirty()
			u.statusf("ungrouped")
		}
	case 'a':
		if gid, members, ok := u.selectionWithGroup(); ok {
			u.eng.AddToGroup(members, gid)
			u.markDirty()
			u.statusf("added %d to group", len(members))
		} else {
			u.statusf("select one group plus its new members")
		}
	case 'r':
		if sel := u.eng.Selection(); len(sel) > 0 {
			u.eng.RemoveFromGroup(sel)
			u.markDirty()
			u.statusf("removed from group")
		} else {
			u.statusf("nothing selected")
		}
	case 'c':
		if id, ok := u.singleSelectedGroup(); ok {
			u.eng.ToggleCollapse(id)
			u.markDirty()
		}
	case 'f':
		if sel := u.eng.Selection(); len(sel) == 1 {
			if el, ok := u.eng.Collection().Get(sel[0]); ok {
				u.vp.FocusOn(el.Center(), w, h)
				u.commitViewport()
				u.statusf("focused %s", el.Type)
			}
		}
	case 'F':
		if u.vp.Unfocus() {
			u.commitViewport()
			u.statusf("focus restored")
		}
	case 'w':
		u.switchWorkspace()
	}
}

func (u *UI) runConfirmed() {
	action := u.confirm
	u.confirm = confirmNone
	switch action {
	case confirmDeleteSelection:
		n := 0
		if sel := u.eng.Selection(); len(sel) == 1 {
			if u.eng.DeleteElement(sel[0]) {
				n = 1
			}
		} else {
			n = u.eng.DeleteSelection()
		}
		u.markDirty()
		u.statusf("deleted %d elements", n)
	case confirmOrganize:
		u.organize()
	}
}

// selectionWithGroup splits the selection into exactly one group and the
// members to reparent into it.
func (u *UI) selectionWithGroup() (string, []string, bool) {
	var groupID string
	var members []string
	for _, id := range u.eng.Selection() {
		el, ok := u.eng.Collection().Get(id)
		if !ok {
			continue
		}
		if el.IsGroup() {
			if groupID != "" {
				return "", nil, false
			}
			groupID = id
		} else {
			members = append(members, id)
		}
	}
	if groupID == "" || len(members) == 0 {
		return "", nil, false
	}
	return groupID, members, true
}

func (u *UI) singleSelectedGroup() (string, bool) {
	sel := u.eng.Selection()
	if len(sel) != 1 {
		return "", false
	}
	el, ok := u.eng.Collection().Get(sel[0])
	if !ok || !el.IsGroup() {
		return "", false
	}
	return el.ID, true
}

func (u *UI) handleMouse(ev *tcell.EventMouse) {
	cx, cy := ev.Position()
	if cy >= u.height-1 {
		return // status bar row
	}
	world := u.cellToWorld(cx, cy)
	buttons := ev.Buttons()
	mods := ev.Modifiers()

	// Ambient input flags, consumed per gesture.
	u.eng.Mods.Snap = mods&tcell.ModAlt != 0
	u.eng.Mods.Union = mods&tcell.ModShift != 0

	// Wheel: plain scroll pans on both axes, modifier scroll zooms at the
	// pointer.
	wheel := tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight
	if buttons&wheel != 0 {
		if mods&tcell.ModCtrl != 0 && buttons&(tcell.WheelUp|tcell.WheelDown) != 0 {
			factor := viewport.ZoomStep
			if buttons&tcell.WheelDown != 0 {
				factor = 1 / factor
			}
			u.vp.ZoomAt(u.vp.Zoom*factor, cellToScreen(cx, cy))
		} else {
			var dx, dy float64
			if buttons&tcell.WheelUp != 0 {
				dy = cellH
			}
			if buttons&tcell.WheelDown != 0 {
				dy = -cellH
			}
			if buttons&tcell.WheelLeft != 0 {
				dx = cellW
			}
			if buttons&tcell.WheelRight != 0 {
				dx = -cellW
			}
			u.vp.Pan(dx, dy)
		}
		u.commitViewport()
		return
	}

	primaryDown := buttons&tcell.Button1 != 0
	primaryWas := u.prevButtons&tcell.Button1 != 0
	secondaryDown := buttons&tcell.Button2 != 0
	secondaryWas := u.prevButtons&tcell.Button2 != 0
	u.prevButtons = buttons

	switch {
	case primaryDown && !primaryWas:
		u.guides = nil
		// Modifier press on an element starts the corner-drag resize;
		// PointerDown yields to an active resize gesture.
		if mods&tcell.ModCtrl != 0 {
			if hit, ok := u.eng.Collection().HitTest(world); ok && u.eng.StartResize(hit.ID) {
				u.statusf("resizing %s", hit.Type)
			}
		}
		u.eng.PointerDown(world)
	case primaryDown && primaryWas:
		u.eng.PointerMove(world)
	case !primaryDown && primaryWas:
		_, resizing := u.eng.Resizing()
		res := u.eng.PointerUp(world)
		if resizing {
			u.markDirty()
			u.statusf("resized")
		}
		if res.Moved {
			u.guides = res.Guides
			u.markDirty()
		}
	case secondaryDown && !secondaryWas:
		// Cable gesture from the element under the pointer; on a cable's
		// own line instead, the click disconnects it.
		if hit, ok := u.eng.Collection().HitTest(world); ok {
			u.eng.BeginCable(hit.ID, world)
		} else if edge, ok := u.cableAt(cx, cy); ok {
			u.eng.RemoveCable(edge.From, edge.To)
			u.markDirty()
			u.statusf("disconnected %.8s -> %.8s", edge.From, edge.To)
		}
	case secondaryDown && secondaryWas:
		u.eng.PointerMove(world)
	case !secondaryDown && secondaryWas:
		if edge, ok := u.eng.EndCable(world); ok {
			u.markDirty()
			u.statusf("connected %.8s -> %.8s", edge.From, edge.To)
		}
	}
}
