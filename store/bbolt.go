package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"tela/canvas"
	"tela/geometry"
)

var (
	bucketWorkspaces = []byte("workspaces")
	bucketElements   = []byte("elements")
	bucketViewports  = []byte("viewports")
)

// BoltGateway is the bbolt-backed Gateway. One database file holds every
// workspace; elements and viewport settings are keyed by workspace id.
type BoltGateway struct {
	db *bolt.DB
	mu sync.Mutex
}

// Open opens (or creates) the database at path and initializes the schema.
func Open(path string) (*BoltGateway, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltGateway{db: db}, nil
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketWorkspaces, bucketElements, bucketViewports} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (g *BoltGateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

// ListWorkspaces returns every workspace, most recently modified first.
func (g *BoltGateway) ListWorkspaces() ([]canvas.Workspace, error) {
	out := make([]canvas.Workspace, 0)
	err := g.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorkspaces)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var ws canvas.Workspace
			if err := json.Unmarshal(v, &ws); err != nil {
				return err
			}
			out = append(out, ws)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

// CreateWorkspace adds an empty workspace with a fresh id.
func (g *BoltGateway) CreateWorkspace(name string) (canvas.Workspace, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ws := canvas.Workspace{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		LastModified: time.Now().UTC(),
	}
	if ws.Name == "" {
		ws.Name = "Untitled Space"
	}
	raw, err := json.Marshal(ws)
	if err != nil {
		return canvas.Workspace{}, err
	}
	if err := g.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWorkspaces).Put([]byte(ws.ID), raw)
	}); err != nil {
		return canvas.Workspace{}, err
	}
	return ws, nil
}

// RenameWorkspace updates a workspace's name and bumps its modified time.
func (g *BoltGateway) RenameWorkspace(id, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorkspaces)
		raw := b.Get([]byte(id))
		if len(raw) == 0 {
			return ErrWorkspaceNotFound
		}
		var ws canvas.Workspace
		if err := json.Unmarshal(raw, &ws); err != nil {
			return err
		}
		ws.Name = strings.TrimSpace(name)
		ws.LastModified = time.Now().UTC()
		updated, err := json.Marshal(ws)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
}

// DeleteWorkspace removes the workspace metadata and all associated element
// and viewport data in one transaction.
func (g *BoltGateway) DeleteWorkspace(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.db.Update(func(tx *bolt.Tx) error {
		key := []byte(id)
		workspaces := tx.Bucket(bucketWorkspaces)
		if workspaces.Get(key) == nil {
			return ErrWorkspaceNotFound
		}
		if err := workspaces.Delete(key); err != nil {
			return err
		}
		if err := tx.Bucket(bucketElements).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketViewports).Delete(key)
	})
}

// LoadElements returns the workspace's element collection. A workspace with
// nothing saved yet yields an empty slice.
func (g *BoltGateway) LoadElements(workspaceID string) ([]canvas.Element, error) {
	var out []canvas.Element
	err := g.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketElements).Get([]byte(workspaceID))
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []canvas.Element{}
	}
	return out, nil
}

// SaveElements replaces the workspace's element collection wholesale and
// bumps the workspace's modified time.
func (g *BoltGateway) SaveElements(workspaceID string, els []canvas.Element) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	raw, err := json.Marshal(els)
	if err != nil {
		return err
	}
	return g.db.Update(func(tx *bolt.Tx) error {
		key := []byte(workspaceID)
		b := tx.Bucket(bucketWorkspaces)
		wsRaw := b.Get(key)
		if len(wsRaw) == 0 {
			return ErrWorkspaceNotFound
		}
		var ws canvas.Workspace
		if err := json.Unmarshal(wsRaw, &ws); err != nil {
			return err
		}
		ws.LastModified = time.Now().UTC()
		if updated, err := json.Marshal(ws); err == nil {
			if err := b.Put(key, updated); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketElements).Put(key, raw)
	})
}

// LoadViewport returns the workspace's viewport settings, normalized so a
// never-saved workspace comes back with zoom 1 and the default background.
func (g *BoltGateway) LoadViewport(workspaceID string) (canvas.ViewportSettings, error) {
	vs := canvas.DefaultViewportSettings()
	err := g.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketViewports).Get([]byte(workspaceID))
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &vs)
	})
	if err != nil {
		return canvas.ViewportSettings{}, err
	}
	return vs.Normalize(), nil
}

// SaveViewport replaces the workspace's viewport settings.
func (g *BoltGateway) SaveViewport(workspaceID string, vs canvas.ViewportSettings) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.putViewport(workspaceID, vs)
}

// SaveViewportOffset persists only the pan offset, keeping the stored zoom
// and background.
func (g *BoltGateway) SaveViewportOffset(workspaceID string, off geometry.Point) error {
	return g.patchViewport(workspaceID, func(vs *canvas.ViewportSettings) {
		vs.Offset = off
	})
}

// SaveViewportZoom persists only the zoom scalar.
func (g *BoltGateway) SaveViewportZoom(workspaceID string, zoom float64) error {
	return g.patchViewport(workspaceID, func(vs *canvas.ViewportSettings) {
		vs.Zoom = zoom
	})
}

// SaveViewportBackground persists only the background token.
func (g *BoltGateway) SaveViewportBackground(workspaceID string, bg string) error {
	return g.patchViewport(workspaceID, func(vs *canvas.ViewportSettings) {
		vs.Background = bg
	})
}

func (g *BoltGateway) patchViewport(workspaceID string, patch func(*canvas.ViewportSettings)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	vs, err := g.LoadViewport(workspaceID)
	if err != nil {
		return err
	}
	patch(&vs)
	return g.putViewport(workspaceID, vs)
}

func (g *BoltGateway) putViewport(workspaceID string, vs canvas.ViewportSettings) error {
	raw, err := json.Marshal(vs.Normalize())
	if err != nil {
		return err
	}
	return g.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketViewports).Put([]byte(workspaceID), raw)
	})
}
