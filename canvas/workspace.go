package canvas

import (
	"time"

	"tela/geometry"
)

// Workspace identifies one isolated canvas: a named element collection plus
// its viewport settings.
type Workspace struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastModified time.Time `json:"lastModified"`
}

// DefaultBackground is the background token applied to new workspaces.
const DefaultBackground = "dots"

// ViewportSettings is the per-workspace camera state persisted alongside the
// element collection.
type ViewportSettings struct {
	Offset     geometry.Point `json:"offset"`
	Zoom       float64        `json:"zoom"`
	Background string         `json:"background"`
}

// DefaultViewportSettings returns the camera state for a fresh workspace.
func DefaultViewportSettings() ViewportSettings {
	return ViewportSettings{Zoom: 1, Background: DefaultBackground}
}

// Normalize repairs settings loaded from storage: a missing zoom becomes 1
// and a missing background becomes the default token.
func (v ViewportSettings) Normalize() ViewportSettings {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	if v.Background == "" {
		v.Background = DefaultBackground
	}
	return v
}
