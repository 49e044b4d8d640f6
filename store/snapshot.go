package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"tela/canvas"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 2

// Snapshot is the single serializable export of everything: all workspaces,
// their element collections and viewport settings.
type Snapshot struct {
	Version    int                 `json:"version"`
	Workspaces []WorkspaceSnapshot `json:"workspaces"`
}

// WorkspaceSnapshot bundles one workspace's data.
type WorkspaceSnapshot struct {
	Workspace canvas.Workspace        `json:"workspace"`
	Elements  []canvas.Element        `json:"elements"`
	Viewport  canvas.ViewportSettings `json:"viewport"`
}

// legacySnapshot is the pre-versioning export shape: a single anonymous
// workspace with no version tag. Imports migrate it to one workspace.
type legacySnapshot struct {
	Version  int                      `json:"version"`
	Elements []canvas.Element         `json:"elements"`
	Viewport *canvas.ViewportSettings `json:"viewport"`
}

// Export reads every workspace out of the gateway into a snapshot.
func Export(g Gateway) (Snapshot, error) {
	wss, err := g.ListWorkspaces()
	if err != nil {
		return Snapshot{}, fmt.Errorf("export: %w", err)
	}
	snap := Snapshot{Version: SnapshotVersion}
	for _, ws := range wss {
		els, err := g.LoadElements(ws.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("export elements for %q: %w", ws.ID, err)
		}
		vs, err := g.LoadViewport(ws.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("export viewport for %q: %w", ws.ID, err)
		}
		snap.Workspaces = append(snap.Workspaces, WorkspaceSnapshot{
			Workspace: ws,
			Elements:  els,
			Viewport:  vs,
		})
	}
	return snap, nil
}

// Import loads a snapshot into the gateway, creating workspaces as needed.
// Version-less payloads are treated as the legacy single-workspace shape and
// migrated. Imported workspaces never overwrite existing ones; ids are
// regenerated on collision.
func Import(g Gateway, data []byte) (int, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("import: malformed snapshot: %w", err)
	}

	var snap Snapshot
	if probe.Version == 0 {
		var legacy legacySnapshot
		if err := json.Unmarshal(data, &legacy); err != nil {
			return 0, fmt.Errorf("import: malformed legacy snapshot: %w", err)
		}
		ws := WorkspaceSnapshot{
			Workspace: canvas.Workspace{Name: "Imported Space"},
			Elements:  legacy.Elements,
			Viewport:  canvas.DefaultViewportSettings(),
		}
		if legacy.Viewport != nil {
			ws.Viewport = legacy.Viewport.Normalize()
		}
		snap = Snapshot{Version: SnapshotVersion, Workspaces: []WorkspaceSnapshot{ws}}
	} else {
		if err := json.Unmarshal(data, &snap); err != nil {
			return 0, fmt.Errorf("import: malformed snapshot: %w", err)
		}
		if snap.Version > SnapshotVersion {
			return 0, fmt.Errorf("import: snapshot version %d is newer than supported %d", snap.Version, SnapshotVersion)
		}
	}

	imported := 0
	for _, ws := range snap.Workspaces {
		name := ws.Workspace.Name
		if name == "" {
			name = "Imported Space"
		}
		// CreateWorkspace generates a fresh id, so imports can never collide
		// with or overwrite an existing workspace.
		created, err := g.CreateWorkspace(name)
		if err != nil {
			return imported, fmt.Errorf("import workspace %q: %w", name, err)
		}

		els := ws.Elements
		for i := range els {
			if els[i].ID == "" {
				els[i].ID = uuid.NewString()
			}
		}
		if err := g.SaveElements(created.ID, els); err != nil {
			return imported, fmt.Errorf("import elements for %q: %w", name, err)
		}
		if err := g.SaveViewport(created.ID, ws.Viewport.Normalize()); err != nil {
			return imported, fmt.Errorf("import viewport for %q: %w", name, err)
		}
		imported++
	}
	return imported, nil
}
