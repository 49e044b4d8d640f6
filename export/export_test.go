package export

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tela/canvas"
	"tela/geometry"
	"tela/store"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		err  bool
	}{
		{"json", FormatJSON, false},
		{"png", FormatPNG, false},
		{"image", FormatPNG, false},
		{"svg", "", true},
	}
	for _, c := range cases {
		got, err := ParseFormat(c.in)
		if c.err {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got)
	}
}

func TestRenderPNG(t *testing.T) {
	t.Run("renders a decodable image", func(t *testing.T) {
		col := canvas.NewCollection()
		a := col.Create(canvas.TypeNote, geometry.Point{X: 0, Y: 0})
		a.Text = "hello"
		col.Replace(a)
		b := col.Create(canvas.TypeTask, geometry.Point{X: 400, Y: 200})
		b.Connections = []string{a.ID}
		col.Replace(b)

		path := filepath.Join(t.TempDir(), "out.png")
		require.NoError(t, RenderPNG(col, path))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		img, err := png.Decode(f)
		require.NoError(t, err)
		assert.Positive(t, img.Bounds().Dx())
		assert.Positive(t, img.Bounds().Dy())
	})

	t.Run("huge worlds scale down to the cap", func(t *testing.T) {
		col := canvas.NewCollection()
		col.Create(canvas.TypeNote, geometry.Point{X: 0, Y: 0})
		col.Create(canvas.TypeNote, geometry.Point{X: 50000, Y: 0})

		path := filepath.Join(t.TempDir(), "big.png")
		require.NoError(t, RenderPNG(col, path))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		cfg, err := png.DecodeConfig(f)
		require.NoError(t, err)
		assert.LessOrEqual(t, cfg.Width, 2048)
		assert.LessOrEqual(t, cfg.Height, 2048)
	})

	t.Run("empty collection refuses", func(t *testing.T) {
		err := RenderPNG(canvas.NewCollection(), filepath.Join(t.TempDir(), "x.png"))
		assert.Error(t, err)
	})
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	gw, err := store.Open(filepath.Join(t.TempDir(), "src.db"))
	require.NoError(t, err)
	defer gw.Close()

	ws, err := gw.CreateWorkspace("Exported")
	require.NoError(t, err)
	require.NoError(t, gw.SaveElements(ws.ID, []canvas.Element{{ID: "a", Type: canvas.TypeNote, Text: "x"}}))

	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, WriteSnapshot(gw, path))

	dst, err := store.Open(filepath.Join(t.TempDir(), "dst.db"))
	require.NoError(t, err)
	defer dst.Close()

	n, err := ImportSnapshot(dst, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := dst.ListWorkspaces()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Exported", list[0].Name)
}
