package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tela/canvas"
	"tela/config"
	"tela/export"
	"tela/geometry"
	"tela/space"
	"tela/store"
	"tela/terminal"
	"tela/viewport"
)

// Nominal view used to resolve "viewport center" for headless commands,
// where no real screen size exists.
const (
	nominalViewW = 1280.0
	nominalViewH = 800.0
)

// runApp opens the store and launches the terminal frontend, with config
// live-reload feeding the running session and UI.
func runApp(cfg config.Config, configPath string) error {
	log, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	gw, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer gw.Close()

	sess := space.NewSession(gw, log)
	sess.SetDelays(cfg.ElementDebounce(), cfg.ViewportDebounce())
	if err := sess.Open(); err != nil {
		return err
	}

	ui := terminal.New(sess, cfg, log)

	stop, err := config.Watch(configPath, func(next config.Config) {
		// The reload is applied by the event loop; the watcher goroutine
		// never touches UI or session state directly.
		ui.PostConfig(next)
		log.Info("config reloaded",
			zap.Float64("snap_threshold", next.Canvas.SnapThreshold))
	})
	if err != nil {
		log.Warn("config watch unavailable", zap.Error(err))
	} else {
		defer stop()
	}

	return ui.Run()
}

// runExport writes a snapshot of the store and exits.
func runExport(cfg config.Config, format, output string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	gw, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer gw.Close()

	switch f {
	case export.FormatJSON:
		if output == "" {
			snap, err := store.Export(gw)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		return export.WriteSnapshot(gw, output)

	case export.FormatPNG:
		if output == "" {
			output = "tela" + f.FileExtension()
		}
		workspaces, err := gw.ListWorkspaces()
		if err != nil {
			return err
		}
		if len(workspaces) == 0 {
			return fmt.Errorf("no workspaces to export")
		}
		els, err := gw.LoadElements(workspaces[0].ID)
		if err != nil {
			return err
		}
		col := canvas.NewCollection()
		col.Load(els)
		if err := export.RenderPNG(col, output); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %q to %s\n", workspaces[0].Name, output)
		return nil

	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// runImport loads a snapshot file into the store and exits.
func runImport(cfg config.Config, path string) error {
	gw, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer gw.Close()

	n, err := export.ImportSnapshot(gw, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Imported %d workspaces\n", n)
	return nil
}

// runAdd applies a single bridge message from stdin to the most recent
// workspace and exits.
func runAdd(cfg config.Config) error {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	gw, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer gw.Close()

	sess := space.NewSession(gw, nil)
	if err := sess.Open(); err != nil {
		return err
	}

	vp := viewport.FromSettings(sess.Viewport())
	center := vp.ScreenToWorld(geometry.Point{X: nominalViewW / 2, Y: nominalViewH / 2})

	el, err := sess.HandleAddMessage(raw, center)
	if err != nil {
		return err
	}
	sess.Flush()
	fmt.Fprintf(os.Stderr, "Added %s %s\n", el.Type, el.ID)
	return nil
}

// buildLogger writes structured logs to a file in the data directory so
// nothing ever races the terminal frontend for the tty.
func buildLogger(cfg config.Config) (*zap.Logger, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{cfg.LogPath()}
	zcfg.ErrorOutputPaths = []string{cfg.LogPath()}
	return zcfg.Build()
}
