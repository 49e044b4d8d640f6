// Package space manages the workspace lifecycle over the persistence
// gateway: exactly one workspace is current at a time, mutations are written
// back on debounced timers, and switching or teardown flushes pending writes
// first.
package space

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"tela/canvas"
	"tela/store"
)

// Default write delays. Element writes are cheap to coalesce aggressively;
// viewport writes trail a little longer since pan/zoom mutates every frame.
const (
	DefaultElementDelay  = 500 * time.Millisecond
	DefaultViewportDelay = time.Second
)

// DefaultWorkspaceName is used when the store is empty on first open.
const DefaultWorkspaceName = "My Space"

// Session owns the current workspace: its element collection, its viewport
// settings and the debounced write-back of both. The collection itself is
// only ever touched on the frontend's event goroutine; debounced element
// writes carry a snapshot captured there at schedule time, so the timer
// goroutine never reads the live collection.
type Session struct {
	gw  store.Gateway
	log *zap.Logger

	mu       sync.Mutex
	current  *canvas.Workspace
	col      *canvas.Collection
	viewport canvas.ViewportSettings

	elDeb *store.Debouncer
	vpDeb *store.Debouncer
}

// NewSession returns a session over the gateway. A nil logger is replaced
// with a no-op logger.
func NewSession(gw store.Gateway, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		gw:    gw,
		log:   log,
		col:   canvas.NewCollection(),
		elDeb: store.NewDebouncer(DefaultElementDelay),
		vpDeb: store.NewDebouncer(DefaultViewportDelay),
	}
}

// SetDelays reconfigures the debounce intervals (config live-reload). Any
// pending write runs first so nothing is lost in the swap.
func (s *Session) SetDelays(elements, viewport time.Duration) {
	s.elDeb.Flush()
	s.vpDeb.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elDeb = store.NewDebouncer(elements)
	s.vpDeb = store.NewDebouncer(viewport)
}

// Open hydrates the most recently modified workspace, creating a default one
// when the store is empty.
func (s *Session) Open() error {
	wss, err := s.gw.ListWorkspaces()
	if err != nil {
		return err
	}
	if len(wss) == 0 {
		ws, err := s.gw.CreateWorkspace(DefaultWorkspaceName)
		if err != nil {
			return err
		}
		wss = []canvas.Workspace{ws}
	}
	return s.Switch(wss[0].ID)
}

// Switch makes another workspace current. Pending writes of the outgoing
// workspace are flushed before the incoming one is hydrated.
func (s *Session) Switch(id string) error {
	s.Flush()

	els, err := s.gw.LoadElements(id)
	if err != nil {
		return err
	}
	vs, err := s.gw.LoadViewport(id)
	if err != nil {
		return err
	}
	wss, err := s.gw.ListWorkspaces()
	if err != nil {
		return err
	}
	var ws *canvas.Workspace
	for i := range wss {
		if wss[i].ID == id {
			ws = &wss[i]
			break
		}
	}
	if ws == nil {
		return store.ErrWorkspaceNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ws
	s.col = canvas.NewCollection()
	s.col.Load(els)
	s.viewport = vs
	s.log.Info("workspace switched",
		zap.String("workspace_id", ws.ID),
		zap.String("name", ws.Name),
		zap.Int("elements", s.col.Len()))
	return nil
}

// Current returns the current workspace, if any.
func (s *Session) Current() (canvas.Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return canvas.Workspace{}, false
	}
	return *s.current, true
}

// Collection returns the current workspace's element collection.
func (s *Session) Collection() *canvas.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col
}

// Viewport returns the current viewport settings.
func (s *Session) Viewport() canvas.ViewportSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Workspaces lists every workspace in the store.
func (s *Session) Workspaces() ([]canvas.Workspace, error) {
	return s.gw.ListWorkspaces()
}

// Create adds a new workspace and makes it current.
func (s *Session) Create(name string) (canvas.Workspace, error) {
	ws, err := s.gw.CreateWorkspace(name)
	if err != nil {
		return canvas.Workspace{}, err
	}
	if err := s.Switch(ws.ID); err != nil {
		return canvas.Workspace{}, err
	}
	return ws, nil
}

// Rename renames a workspace.
func (s *Session) Rename(id, name string) error {
	if err := s.gw.RenameWorkspace(id, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		s.current.Name = name
	}
	return nil
}

// Delete removes a workspace and everything persisted under it. Deleting the
// current workspace promotes an arbitrary survivor, or leaves the session
// workspace-less when none remain.
func (s *Session) Delete(id string) error {
	s.mu.Lock()
	deletingCurrent := s.current != nil && s.current.ID == id
	s.mu.Unlock()

	if deletingCurrent {
		// Pending writes for a workspace about to disappear are dropped,
		// not flushed.
		s.elDeb.Stop()
		s.vpDeb.Stop()
	}
	if err := s.gw.DeleteWorkspace(id); err != nil {
		return err
	}
	if !deletingCurrent {
		return nil
	}

	remaining, err := s.gw.ListWorkspaces()
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		s.mu.Lock()
		s.current = nil
		s.col = canvas.NewCollection()
		s.viewport = canvas.DefaultViewportSettings()
		s.mu.Unlock()
		return nil
	}
	return s.Switch(remaining[0].ID)
}

// MarkElementsDirty schedules a debounced write of the current element
// collection. The snapshot is captured here, on the mutating goroutine; the
// timer goroutine only ever sees the copy. A burst of mutations still
// coalesces into a single save, since each call replaces the pending one.
func (s *Session) MarkElementsDirty() {
	s.mu.Lock()
	ws := s.current
	col := s.col
	s.mu.Unlock()
	if ws == nil {
		return
	}
	id := ws.ID
	els := col.All()
	s.elDeb.Trigger(func() {
		s.saveElements(id, els)
	})
}

// MarkViewportDirty records new viewport settings and schedules their
// debounced write.
func (s *Session) MarkViewportDirty(vs canvas.ViewportSettings) {
	s.mu.Lock()
	s.viewport = vs
	ws := s.current
	s.mu.Unlock()
	if ws == nil {
		return
	}
	id := ws.ID
	s.vpDeb.Trigger(func() {
		s.saveViewport(id)
	})
}

func (s *Session) saveElements(id string, els []canvas.Element) {
	s.mu.Lock()
	stale := s.current == nil || s.current.ID != id
	s.mu.Unlock()
	if stale {
		// A switch raced the timer; the outgoing workspace was already
		// flushed by Switch.
		return
	}
	if err := s.gw.SaveElements(id, els); err != nil {
		// In-memory state stays authoritative for the session; a failed
		// write is logged and retried on the next mutation.
		s.log.Error("element save failed", zap.String("workspace_id", id), zap.Error(err))
	}
}

func (s *Session) saveViewport(id string) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != id {
		s.mu.Unlock()
		return
	}
	vs := s.viewport
	s.mu.Unlock()
	if err := s.gw.SaveViewport(id, vs); err != nil {
		s.log.Error("viewport save failed", zap.String("workspace_id", id), zap.Error(err))
	}
}

// Flush writes any pending state immediately.
func (s *Session) Flush() {
	s.elDeb.Flush()
	s.vpDeb.Flush()
}

// Teardown is the page-teardown path: the viewport is flushed synchronously;
// the element flush is best effort (the durable store may legitimately lose
// the last sub-debounce-interval of element changes on abrupt termination).
func (s *Session) Teardown() {
	s.vpDeb.Flush()
	s.elDeb.Flush()
}
