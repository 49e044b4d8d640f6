package space

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tela/canvas"
	"tela/geometry"
	"tela/store"
)

func openTestSession(t *testing.T) (*Session, *store.BoltGateway) {
	t.Helper()
	gw, err := store.Open(filepath.Join(t.TempDir(), "workspaces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	return NewSession(gw, nil), gw
}

func TestOpen(t *testing.T) {
	t.Run("empty store creates the default workspace", func(t *testing.T) {
		s, _ := openTestSession(t)
		require.NoError(t, s.Open())

		ws, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, DefaultWorkspaceName, ws.Name)
		assert.Equal(t, canvas.DefaultViewportSettings(), s.Viewport())
	})

	t.Run("hydrates the most recently modified workspace", func(t *testing.T) {
		s, gw := openTestSession(t)
		_, err := gw.CreateWorkspace("Old")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		recent, err := gw.CreateWorkspace("Recent")
		require.NoError(t, err)
		require.NoError(t, gw.SaveElements(recent.ID, []canvas.Element{
			{ID: "a", Type: canvas.TypeNote, Text: "hydrated"},
		}))

		require.NoError(t, s.Open())
		ws, _ := s.Current()
		assert.Equal(t, recent.ID, ws.ID)
		el, ok := s.Collection().Get("a")
		require.True(t, ok)
		assert.Equal(t, "hydrated", el.Text)
	})
}

func TestSwitchFlushesOutgoing(t *testing.T) {
	s, gw := openTestSession(t)
	require.NoError(t, s.Open())
	first, _ := s.Current()

	second, err := gw.CreateWorkspace("Second")
	require.NoError(t, err)

	// Mutate the first workspace and switch before the debounce fires; the
	// pending write must land under the first workspace anyway.
	s.Collection().Create(canvas.TypeNote, geometry.Point{X: 1, Y: 2})
	s.MarkElementsDirty()
	require.NoError(t, s.Switch(second.ID))

	els, err := gw.LoadElements(first.ID)
	require.NoError(t, err)
	assert.Len(t, els, 1, "outgoing workspace changes flush on switch")

	ws, _ := s.Current()
	assert.Equal(t, second.ID, ws.ID)
	assert.Equal(t, 0, s.Collection().Len(), "collections never leak across workspaces")
}

func TestSwitchUnknownWorkspace(t *testing.T) {
	s, _ := openTestSession(t)
	require.NoError(t, s.Open())
	assert.ErrorIs(t, s.Switch("ghost"), store.ErrWorkspaceNotFound)
}

func TestDebouncedSaves(t *testing.T) {
	s, gw := openTestSession(t)
	s.SetDelays(20*time.Millisecond, 20*time.Millisecond)
	require.NoError(t, s.Open())
	ws, _ := s.Current()

	t.Run("element burst produces one trailing save", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			s.Collection().Create(canvas.TypeNote, geometry.Point{})
			s.MarkElementsDirty()
		}
		assert.Eventually(t, func() bool {
			els, err := gw.LoadElements(ws.ID)
			return err == nil && len(els) == 3
		}, time.Second, 5*time.Millisecond, "the last scheduled snapshot includes the whole burst")
	})

	t.Run("viewport save captures the latest settings", func(t *testing.T) {
		s.MarkViewportDirty(canvas.ViewportSettings{Zoom: 2, Background: "grid"})
		s.MarkViewportDirty(canvas.ViewportSettings{Zoom: 3, Background: "grid"})
		assert.Eventually(t, func() bool {
			vs, err := gw.LoadViewport(ws.ID)
			return err == nil && vs.Zoom == 3
		}, time.Second, 5*time.Millisecond)
	})
}

func TestCreateAndRename(t *testing.T) {
	s, _ := openTestSession(t)
	require.NoError(t, s.Open())

	ws, err := s.Create("Planning")
	require.NoError(t, err)
	cur, _ := s.Current()
	assert.Equal(t, ws.ID, cur.ID, "create makes the new workspace current")

	require.NoError(t, s.Rename(ws.ID, "Planning v2"))
	cur, _ = s.Current()
	assert.Equal(t, "Planning v2", cur.Name)
}

func TestDelete(t *testing.T) {
	t.Run("deleting the current workspace promotes a survivor", func(t *testing.T) {
		s, gw := openTestSession(t)
		require.NoError(t, s.Open())
		survivor, err := gw.CreateWorkspace("Survivor")
		require.NoError(t, err)
		doomed, err := s.Create("Doomed")
		require.NoError(t, err)

		require.NoError(t, s.Delete(doomed.ID))
		cur, ok := s.Current()
		require.True(t, ok)
		assert.NotEqual(t, doomed.ID, cur.ID)

		list, err := s.Workspaces()
		require.NoError(t, err)
		ids := make([]string, 0, len(list))
		for _, ws := range list {
			ids = append(ids, ws.ID)
		}
		assert.Contains(t, ids, survivor.ID)
		assert.NotContains(t, ids, doomed.ID)
	})

	t.Run("deleting the last workspace leaves the session empty", func(t *testing.T) {
		s, _ := openTestSession(t)
		require.NoError(t, s.Open())
		only, _ := s.Current()

		require.NoError(t, s.Delete(only.ID))
		_, ok := s.Current()
		assert.False(t, ok)
		assert.Equal(t, 0, s.Collection().Len())
	})

	t.Run("deleting another workspace leaves the current one alone", func(t *testing.T) {
		s, gw := openTestSession(t)
		require.NoError(t, s.Open())
		cur, _ := s.Current()
		other, err := gw.CreateWorkspace("Other")
		require.NoError(t, err)

		require.NoError(t, s.Delete(other.ID))
		still, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, cur.ID, still.ID)
	})
}

func TestHandleAddMessage(t *testing.T) {
	s, _ := openTestSession(t)
	require.NoError(t, s.Open())

	t.Run("creates the described element near the center", func(t *testing.T) {
		raw := []byte(`{"type":"ADD_ELEMENT","payload":{"elementType":"note","data":{"text":"from outside"}}}`)
		el, err := s.HandleAddMessage(raw, geometry.Point{X: 500, Y: 400})
		require.NoError(t, err)
		assert.Equal(t, canvas.TypeNote, el.Type)
		assert.Equal(t, "from outside", el.Text)

		sz := canvas.DefaultSize(canvas.TypeNote)
		assert.InDelta(t, 500-sz.W/2, el.Position.X, 25, "jitter stays near the center")
		assert.InDelta(t, 400-sz.H/2, el.Position.Y, 25)

		stored, ok := s.Collection().Get(el.ID)
		require.True(t, ok)
		assert.Equal(t, "from outside", stored.Text)
	})

	t.Run("rejects other message types", func(t *testing.T) {
		_, err := s.HandleAddMessage([]byte(`{"type":"NOPE","payload":{"elementType":"note"}}`), geometry.Point{})
		require.Error(t, err)
	})

	t.Run("rejects a missing element type", func(t *testing.T) {
		_, err := s.HandleAddMessage([]byte(`{"type":"ADD_ELEMENT","payload":{}}`), geometry.Point{})
		require.Error(t, err)
	})
}

func TestTeardownFlushes(t *testing.T) {
	s, gw := openTestSession(t)
	s.SetDelays(time.Hour, time.Hour)
	require.NoError(t, s.Open())
	ws, _ := s.Current()

	s.Collection().Create(canvas.TypeNote, geometry.Point{})
	s.MarkElementsDirty()
	s.MarkViewportDirty(canvas.ViewportSettings{Zoom: 2})

	s.Teardown()

	els, err := gw.LoadElements(ws.ID)
	require.NoError(t, err)
	assert.Len(t, els, 1)
	vs, err := gw.LoadViewport(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, vs.Zoom)
}

func TestMarkElementsDirtySnapshots(t *testing.T) {
	t.Run("the write carries the state at schedule time", func(t *testing.T) {
		s, gw := openTestSession(t)
		s.SetDelays(time.Hour, time.Hour)
		require.NoError(t, s.Open())
		ws, _ := s.Current()

		s.Collection().Create(canvas.TypeNote, geometry.Point{X: 1})
		s.MarkElementsDirty()

		// A mutation after the mark is not part of the pending write.
		s.Collection().Create(canvas.TypeNote, geometry.Point{X: 2})
		s.Flush()

		els, err := gw.LoadElements(ws.ID)
		require.NoError(t, err)
		assert.Len(t, els, 1)
	})

	t.Run("timer fires never touch the live collection", func(t *testing.T) {
		s, gw := openTestSession(t)
		s.SetDelays(time.Millisecond, time.Millisecond)
		require.NoError(t, s.Open())
		ws, _ := s.Current()

		// Keep mutating while timers fire concurrently; the race detector
		// trips here if a save ever reads the collection itself.
		for i := 0; i < 200; i++ {
			s.Collection().Create(canvas.TypeNote, geometry.Point{X: float64(i)})
			s.MarkElementsDirty()
		}
		s.Flush()

		els, err := gw.LoadElements(ws.ID)
		require.NoError(t, err)
		assert.Len(t, els, 200)
	})
}
