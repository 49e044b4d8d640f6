// Package canvas contains the data model for a tela workspace: typed content
// elements positioned on an unbounded plane, the per-workspace element
// collection, and the viewport settings that travel with it.
package canvas

import (
	"tela/geometry"
)

// Type discriminates the kind of content an element carries. It is immutable
// after creation.
type Type string

const (
	TypeNote   Type = "note"   // free-form text card
	TypeTask   Type = "task"   // checkable to-do card
	TypeMedia  Type = "media"  // image or video by URL
	TypeEmbed  Type = "embed"  // embedded external page
	TypeTicker Type = "ticker" // live price widget
	TypeBoard  Type = "board"  // live data board widget
	TypeGroup  Type = "group"  // container for other elements
)

// Default box for elements that have no explicit size yet. Renderers may
// substitute their own intrinsic size, but the engine needs a concrete box
// for hit testing and lasso selection.
const (
	DefaultWidth  = 200
	DefaultHeight = 100
)

// DefaultSize returns the intrinsic box for a freshly created element of the
// given type. Unknown types fall back to the generic card size.
func DefaultSize(t Type) geometry.Size {
	switch t {
	case TypeNote:
		return geometry.Size{W: 220, H: 140}
	case TypeTask:
		return geometry.Size{W: 220, H: 60}
	case TypeMedia:
		return geometry.Size{W: 320, H: 240}
	case TypeEmbed:
		return geometry.Size{W: 400, H: 300}
	case TypeTicker:
		return geometry.Size{W: 180, H: 80}
	case TypeBoard:
		return geometry.Size{W: 360, H: 220}
	case TypeGroup:
		return geometry.Size{W: 400, H: 280}
	default:
		return geometry.Size{W: DefaultWidth, H: DefaultHeight}
	}
}

// Element is a single positioned unit of content on the canvas. All card
// kinds share this shape; type-specific fields are populated only for the
// matching Type and ignored elsewhere. Mutation happens exclusively through
// whole-element replacement in the owning Collection.
type Element struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	Position geometry.Point `json:"position"`
	Width    float64        `json:"width,omitempty"`
	Height   float64        `json:"height,omitempty"`
	ZIndex   int            `json:"zIndex"`

	// ParentID is a weak reference to a group element (membership) or to the
	// element this card was fanned out from. It is an organizational hint,
	// never an ownership relationship; dangling values are tolerated.
	ParentID string `json:"parentId,omitempty"`

	// Connections is the outgoing adjacency list of user-drawn cables.
	// Entries may reference ids that no longer exist.
	Connections []string `json:"connections,omitempty"`

	// Text content (note, task).
	Text string `json:"text,omitempty"`
	Done bool   `json:"done,omitempty"`

	// Media / embed.
	URL      string `json:"url,omitempty"`
	EmbedURL string `json:"embedUrl,omitempty"`

	// Live data (ticker, board). Loading is cleared by the fetcher whether
	// or not data arrived.
	Symbol      string  `json:"symbol,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Quote       string  `json:"quote,omitempty"`
	Loading     bool    `json:"loading,omitempty"`
	LastFetched int64   `json:"lastFetched,omitempty"`

	// Group state. CollapsedSize is remembered across collapse cycles so the
	// expanded box can be restored exactly.
	Collapsed     bool           `json:"collapsed,omitempty"`
	CollapsedSize *geometry.Size `json:"collapsedSize,omitempty"`
}

// IsGroup reports whether the element is a container.
func (e Element) IsGroup() bool {
	return e.Type == TypeGroup
}

// Size returns the element's effective box size. A collapsed group
// substitutes its remembered collapsed size; unsized elements use the type
// default.
func (e Element) Size() geometry.Size {
	if e.IsGroup() && e.Collapsed && e.CollapsedSize != nil {
		return *e.CollapsedSize
	}
	if e.Width > 0 && e.Height > 0 {
		return geometry.Size{W: e.Width, H: e.Height}
	}
	return DefaultSize(e.Type)
}

// Bounds returns the element's axis-aligned box in world space.
func (e Element) Bounds() geometry.Rect {
	s := e.Size()
	return geometry.Rect{X: e.Position.X, Y: e.Position.Y, W: s.W, H: s.H}
}

// Center returns the midpoint of the element's box.
func (e Element) Center() geometry.Point {
	return e.Bounds().Center()
}

// Contains checks if a world point hits the element's box.
func (e Element) Contains(p geometry.Point) bool {
	return e.Bounds().Contains(p)
}

// ConnectsTo reports whether the element has an outgoing cable to id.
func (e Element) ConnectsTo(id string) bool {
	for _, c := range e.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	out := e
	if e.Connections != nil {
		out.Connections = append([]string(nil), e.Connections...)
	}
	if e.CollapsedSize != nil {
		s := *e.CollapsedSize
		out.CollapsedSize = &s
	}
	return out
}
