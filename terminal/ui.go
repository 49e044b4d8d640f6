// Package terminal is the interactive frontend: a tcell screen that projects
// the world plane onto terminal cells and adapts mouse and keyboard events
// into the engine's pointer protocol.
package terminal

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"tela/canvas"
	"tela/config"
	"tela/engine"
	"tela/geometry"
	"tela/layout"
	"tela/space"
	"tela/viewport"
)

// Terminal cells are taller than wide; these factors map cells to the square
// screen-pixel space the viewport works in.
const (
	cellW = 16.0
	cellH = 32.0
)

// confirmAction identifies the destructive action awaiting confirmation.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmDeleteSelection
	confirmOrganize
)

// EventConfig delivers a live-reloaded configuration into the event loop.
type EventConfig struct {
	tcell.EventTime
	Config config.Config
}

// UI drives one interactive session.
type UI struct {
	scrMu  sync.Mutex // guards screen for cross-goroutine PostConfig
	screen tcell.Screen
	sess   *space.Session
	eng    *engine.Engine
	vp     *viewport.Viewport
	log    *zap.Logger
	cfg    config.Config

	width  int // cells
	height int

	status  string
	confirm confirmAction
	guides  []engine.Guide

	prevButtons tcell.ButtonMask
	quit        bool
}

// New builds a UI over an opened session. The engine and viewport are bound
// to the session's current workspace.
func New(sess *space.Session, cfg config.Config, log *zap.Logger) *UI {
	if log == nil {
		log = zap.NewNop()
	}
	ui := &UI{
		sess: sess,
		cfg:  cfg,
		log:  log,
	}
	ui.bindWorkspace()
	return ui
}

// bindWorkspace rebuilds the engine and viewport from the session's current
// workspace.
func (u *UI) bindWorkspace() {
	u.eng = engine.New(u.sess.Collection())
	u.eng.SnapThreshold = u.cfg.Canvas.SnapThreshold
	u.vp = viewport.FromSettings(u.sess.Viewport())
}

// ApplyConfig adopts live-reloaded tunables. It must run on the event-loop
// goroutine; external goroutines deliver updates through PostConfig.
func (u *UI) ApplyConfig(cfg config.Config) {
	u.cfg = cfg
	u.eng.SnapThreshold = cfg.Canvas.SnapThreshold
}

// PostConfig hands a live-reloaded configuration to the event loop. Safe to
// call from the config watcher goroutine; the tunables are adopted between
// frames. A dropped post is fine, the next config write re-posts.
func (u *UI) PostConfig(cfg config.Config) {
	u.scrMu.Lock()
	screen := u.screen
	u.scrMu.Unlock()
	if screen == nil {
		return
	}
	ev := &EventConfig{Config: cfg}
	ev.SetEventNow()
	_ = screen.PostEvent(ev)
}

// Run starts the event loop and blocks until quit. Pending writes are
// flushed on the way out.
func (u *UI) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	u.scrMu.Lock()
	u.screen = screen
	u.scrMu.Unlock()
	screen.EnableMouse()
	defer func() {
		u.scrMu.Lock()
		u.screen = nil
		u.scrMu.Unlock()
		screen.DisableMouse()
		screen.Fini()
	}()

	u.width, u.height = screen.Size()
	u.statusf("workspace ready")

	for !u.quit {
		u.draw()
		ev := screen.PollEvent()
		if ev == nil {
			break
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			u.width, u.height = ev.Size()
			screen.Sync()
		case *tcell.EventKey:
			u.handleKey(ev)
		case *tcell.EventMouse:
			u.handleMouse(ev)
		case *EventConfig:
			u.sess.SetDelays(ev.Config.ElementDebounce(), ev.Config.ViewportDebounce())
			u.ApplyConfig(ev.Config)
			u.statusf("configuration reloaded")
		}
	}

	u.commitViewport()
	u.sess.Teardown()
	return nil
}

// viewSize returns the canvas area in screen pixels (the status bar row is
// excluded).
func (u *UI) viewSize() (float64, float64) {
	return float64(u.width) * cellW, float64(u.height-1) * cellH
}

// cellToScreen converts a terminal cell to viewport screen pixels.
func cellToScreen(cx, cy int) geometry.Point {
	return geometry.Point{X: (float64(cx) + 0.5) * cellW, Y: (float64(cy) + 0.5) * cellH}
}

// cellToWorld converts a terminal cell to world coordinates.
func (u *UI) cellToWorld(cx, cy int) geometry.Point {
	return u.vp.ScreenToWorld(cellToScreen(cx, cy))
}

func (u *UI) statusf(format string, args ...interface{}) {
	u.status = fmt.Sprintf(format, args...)
}

// markDirty schedules the debounced element write.
func (u *UI) markDirty() {
	u.sess.MarkElementsDirty()
}

// commitViewport pushes the camera state into the debounced viewport write.
func (u *UI) commitViewport() {
	vs := u.vp.Settings()
	vs.Background = u.sess.Viewport().Background
	u.sess.MarkViewportDirty(vs)
}

// viewCenterWorld returns the world point at the middle of the canvas area.
func (u *UI) viewCenterWorld() geometry.Point {
	w, h := u.viewSize()
	return u.vp.ScreenToWorld(geometry.Point{X: w / 2, Y: h / 2})
}

// addElement creates an element centered near the view middle and selects
// it.
func (u *UI) addElement(t canvas.Type, text string) {
	pos := u.viewCenterWorld()
	s := canvas.DefaultSize(t)
	pos.X -= s.W / 2
	pos.Y -= s.H / 2
	el := u.eng.AddElement(t, pos)
	if text != "" {
		el.Text = text
		u.eng.Collection().Replace(el)
	}
	u.eng.SelectOnly(el.ID)
	u.markDirty()
	u.statusf("added %s", t)
}

// pasteClipboard creates a note from the system clipboard.
func (u *UI) pasteClipboard() {
	text, err := clipboard.ReadAll()
	if err != nil || text == "" {
		u.statusf("clipboard empty")
		return
	}
	u.addElement(canvas.TypeNote, text)
}

// organize runs the full-workspace re-flow, centered on the camera.
func (u *UI) organize() {
	layout.NewOrganizer().Organize(u.eng.Collection(), u.viewCenterWorld())
	u.markDirty()
	u.statusf("organized %d elements", u.eng.Collection().Len())
}

// switchWorkspace cycles to the next workspace in the list.
func (u *UI) switchWorkspace() {
	wss, err := u.sess.Workspaces()
	if err != nil || len(wss) < 2 {
		u.statusf("no other workspace")
		return
	}
	cur, _ := u.sess.Current()
	next := wss[0]
	for i, ws := range wss {
		if ws.ID == cur.ID {
			next = wss[(i+1)%len(wss)]
			break
		}
	}
	u.commitViewport()
	if err := u.sess.Switch(next.ID); err != nil {
		u.log.Error("workspace switch failed", zap.Error(err))
		u.statusf("switch failed: %v", err)
		return
	}
	u.bindWorkspace()
	u.statusf("switched to %s", next.Name)
}
