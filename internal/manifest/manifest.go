// Package manifest reads the package manifest at a module root, the Go
// retargeting of the source's Cargo.toml reader (util.rs's
// load_cargo_toml): a missing or unparseable manifest is fatal to the
// scan, matching spec §6/§7. The manifest reader itself returns only
// {name, version}; it is an external-interface concern, not core logic.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModuleData is the retargeted CrateData: the stable identity
// ("name","version") the policy file's header binds to.
type ModuleData struct {
	Name    string
	Version string
}

// Load reads and parses go.mod at moduleRoot. A missing go.mod, or one
// lacking a module directive, is a fatal error (mirroring the source's
// requirement that Cargo.toml exist at the crate root).
func Load(moduleRoot string) (ModuleData, error) {
	path := filepath.Join(moduleRoot, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return ModuleData{}, fmt.Errorf("manifest: reading %s: %w", path, err)
	}
	mf, err := modfile.Parse(path, data, nil)
	if err != nil {
		return ModuleData{}, fmt.Errorf("manifest: parsing %s: %w", path, err)
	}
	if mf.Module == nil || mf.Module.Mod.Path == "" {
		return ModuleData{}, fmt.Errorf("manifest: %s has no module directive", path)
	}
	version := mf.Module.Mod.Version
	if version == "" {
		version = "0.0.0"
	}
	return ModuleData{Name: mf.Module.Mod.Path, Version: version}, nil
}
