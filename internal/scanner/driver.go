package scanner

import (
	"fmt"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/goscan/goscan/internal/effect"
	"github.com/goscan/goscan/internal/manifest"
	"github.com/goscan/goscan/internal/resolver"
	"github.com/goscan/goscan/internal/sink"
)

func resolverFor(pkg *packages.Package, fset *token.FileSet, unsafeFns map[types.Object]bool) resolver.Resolver {
	return resolver.New(pkg, fset, unsafeFns)
}

// ScanModule is the crate driver (spec §2's "Crate driver" component):
// it requires the module manifest to exist (fatal otherwise, mirroring
// the source's Cargo.toml requirement), loads every package under the
// module root, classifies unsafe functions module-wide (pass one), then
// drives the per-package, per-file scanner (pass two), merging every
// package's ScanResults into one aggregate. Loading and directory
// discovery themselves are delegated to golang.org/x/tools/go/packages,
// the external collaborator spec §1 calls "directory walking."
func ScanModule(moduleRoot string, extraSinks []sink.Sink) (*effect.ScanResults, manifest.ModuleData, []string, error) {
	modData, err := manifest.Load(moduleRoot)
	if err != nil {
		return nil, manifest.ModuleData{}, nil, err
	}

	fset := token.NewFileSet()
	pkgs, loadErrs, err := Load(moduleRoot, fset)
	if err != nil {
		return nil, modData, nil, fmt.Errorf("scanner: loading packages: %w", err)
	}

	sinks := sink.BuiltinSinks()
	for _, sk := range extraSinks {
		sinks.Add(sk)
	}

	unsafeFns := ClassifyUnsafe(pkgs)

	results := effect.NewScanResults()
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		r := resolverFor(pkg, fset, unsafeFns)
		pkgResults := effect.NewScanResults()
		sc := New(pkg, fset, r, sinks, pkgResults)
		for i, file := range pkg.Syntax {
			if i >= len(pkg.CompiledGoFiles) {
				continue
			}
			relFile := pkg.CompiledGoFiles[i]
			sc.ScanFile(file, relFile)
		}
		results.Merge(pkgResults)
	}

	return results, modData, loadErrs, nil
}

// Load runs golang.org/x/tools/go/packages over the module rooted at
// moduleRoot, returning every loaded package plus a flattened list of
// load diagnostics (ScanErrors' source). Exposed separately from
// ScanModule so other drivers - the VTA call-graph enrichment in
// internal/callgraph, for one - can reuse the exact same load without
// re-scanning.
func Load(moduleRoot string, fset *token.FileSet) ([]*packages.Package, []string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedTypesSizes,
		Dir:   moduleRoot,
		Fset:  fset,
		Tests: false,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, nil, err
	}

	var loadErrs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	})
	return pkgs, loadErrs, nil
}

// ScanErrors surfaces non-fatal package load diagnostics (malformed
// source files): the driver logs these and continues, matching spec §7 -
// parse errors skip only the offending file, never the whole scan.
func ScanErrors(pkgs []*packages.Package) []string {
	var out []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			out = append(out, e.Error())
		}
	})
	return out
}
