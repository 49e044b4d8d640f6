package main

import (
	"flag"
	"fmt"
	"os"

	"tela/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (default: $TELA_CONFIG, else the user config dir)")
		dataDir    = flag.String("data", "", "Data directory override")
		exportFmt  = flag.String("export", "", "Export and exit: json (full snapshot) or png (most recent workspace)")
		importFile = flag.String("import", "", "Import a JSON snapshot file and exit")
		outputFile = flag.String("o", "", "Output file for -export (default: stdout for json, tela.png for png)")
		addMsg     = flag.Bool("add", false, "Read an ADD_ELEMENT message from stdin, apply it, and exit")
		help       = flag.Bool("help", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An infinite-canvas workspace for the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Open the canvas\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -export json -o all.json # Snapshot every workspace\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -export png -o space.png # Render the current workspace\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -import all.json         # Import workspaces from a snapshot\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  echo '{\"type\":\"ADD_ELEMENT\",\"payload\":{\"elementType\":\"note\",\"data\":{\"text\":\"hi\"}}}' | %s -add\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	switch {
	case *importFile != "":
		err = runImport(cfg, *importFile)
	case *exportFmt != "":
		err = runExport(cfg, *exportFmt, *outputFile)
	case *addMsg:
		err = runAdd(cfg)
	default:
		err = runApp(cfg, path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
