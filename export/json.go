package export

import (
	"encoding/json"
	"fmt"
	"os"

	"tela/store"
)

// WriteSnapshot exports every workspace in the gateway to a versioned JSON
// snapshot file.
func WriteSnapshot(g store.Gateway, path string) error {
	snap, err := store.Export(g)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ImportSnapshot loads a snapshot file into the gateway and returns the
// number of workspaces imported. Legacy version-less payloads are migrated.
func ImportSnapshot(g store.Gateway, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}
	return store.Import(g, data)
}
