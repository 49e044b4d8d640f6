// Package viewport implements the pan/zoom camera that maps the unbounded
// world plane onto the screen. The transform is screen = world*zoom + offset.
package viewport

import (
	"tela/canvas"
	"tela/geometry"
)

// Zoom limits and the fixed toolbar zoom step.
const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	ZoomStep = 1.2
)

// Viewport holds the camera state for the current workspace. Inputs are
// numeric and defensively bounded; there are no error states.
type Viewport struct {
	Offset geometry.Point
	Zoom   float64

	// prevOffset remembers the camera position before a focus move so it can
	// be restored exactly once. This is a single slot, not a stack.
	prevOffset *geometry.Point
}

// New returns a viewport at the origin with zoom 1.
func New() *Viewport {
	return &Viewport{Zoom: 1}
}

// FromSettings restores a viewport from persisted settings.
func FromSettings(s canvas.ViewportSettings) *Viewport {
	s = s.Normalize()
	return &Viewport{Offset: s.Offset, Zoom: geometry.Clamp(s.Zoom, MinZoom, MaxZoom)}
}

// Settings captures the viewport for persistence. The background token is
// owned by the session and filled in there.
func (v *Viewport) Settings() canvas.ViewportSettings {
	return canvas.ViewportSettings{Offset: v.Offset, Zoom: v.Zoom}
}

// WorldToScreen converts a world point to screen coordinates.
func (v *Viewport) WorldToScreen(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: p.X*v.Zoom + v.Offset.X,
		Y: p.Y*v.Zoom + v.Offset.Y,
	}
}

// ScreenToWorld converts a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: (p.X - v.Offset.X) / v.Zoom,
		Y: (p.Y - v.Offset.Y) / v.Zoom,
	}
}

// Pan translates the camera by a screen-space delta. The world is unbounded,
// so no clamping applies.
func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

// ZoomAt sets the zoom level, clamped to [MinZoom, MaxZoom], keeping the
// world point under the screen anchor visually fixed.
func (v *Viewport) ZoomAt(target float64, anchor geometry.Point) {
	newZoom := geometry.Clamp(target, MinZoom, MaxZoom)
	world := v.ScreenToWorld(anchor)
	v.Zoom = newZoom
	v.Offset.X = anchor.X - world.X*newZoom
	v.Offset.Y = anchor.Y - world.Y*newZoom
}

// ZoomIn applies one toolbar zoom step anchored at the given screen point,
// normally the viewport center.
func (v *Viewport) ZoomIn(anchor geometry.Point) {
	v.ZoomAt(v.Zoom*ZoomStep, anchor)
}

// ZoomOut applies one inverse toolbar zoom step anchored at the given screen
// point.
func (v *Viewport) ZoomOut(anchor geometry.Point) {
	v.ZoomAt(v.Zoom/ZoomStep, anchor)
}

// FocusOn recenters the camera on the world point (an element's midpoint) at
// the current zoom, remembering the prior offset for Unfocus. viewW/viewH are
// the screen dimensions.
func (v *Viewport) FocusOn(world geometry.Point, viewW, viewH float64) {
	prev := v.Offset
	v.prevOffset = &prev
	v.Offset.X = viewW/2 - world.X*v.Zoom
	v.Offset.Y = viewH/2 - world.Y*v.Zoom
}

// Unfocus restores the offset remembered by the last FocusOn and reports
// whether there was anything to restore.
func (v *Viewport) Unfocus() bool {
	if v.prevOffset == nil {
		return false
	}
	v.Offset = *v.prevOffset
	v.prevOffset = nil
	return true
}

// Focused reports whether a focus move is active.
func (v *Viewport) Focused() bool {
	return v.prevOffset != nil
}

// VisibleWorld returns the world-space rectangle currently on screen.
func (v *Viewport) VisibleWorld(viewW, viewH float64) geometry.Rect {
	tl := v.ScreenToWorld(geometry.Point{})
	br := v.ScreenToWorld(geometry.Point{X: viewW, Y: viewH})
	return geometry.RectFrom(tl, br)
}
