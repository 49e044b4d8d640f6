// Package store implements the persistence gateway for tela workspaces: the
// load/save contract over a durable key-value store, debounced write
// scheduling, and versioned snapshot import/export.
package store

import (
	"errors"

	"tela/canvas"
	"tela/geometry"
)

// Sentinel errors surfaced by gateway implementations.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// Gateway is the durable storage contract. Element saves are full replaces;
// partial-field patches never cross this boundary. Implementations must
// tolerate elements carrying dangling parent and connection references.
type Gateway interface {
	ListWorkspaces() ([]canvas.Workspace, error)
	CreateWorkspace(name string) (canvas.Workspace, error)
	RenameWorkspace(id, name string) error
	// DeleteWorkspace cascades to the workspace's elements and viewport
	// settings.
	DeleteWorkspace(id string) error

	LoadElements(workspaceID string) ([]canvas.Element, error)
	SaveElements(workspaceID string, els []canvas.Element) error

	LoadViewport(workspaceID string) (canvas.ViewportSettings, error)
	SaveViewport(workspaceID string, vs canvas.ViewportSettings) error
	SaveViewportOffset(workspaceID string, off geometry.Point) error
	SaveViewportZoom(workspaceID string, zoom float64) error
	SaveViewportBackground(workspaceID string, bg string) error

	Close() error
}
