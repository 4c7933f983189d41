package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"

	"github.com/goscan/goscan/internal/effect"
	"github.com/goscan/goscan/internal/logging"
	"github.com/goscan/goscan/internal/manifest"
	"github.com/goscan/goscan/internal/policy"
	"github.com/goscan/goscan/internal/scanner"
	"github.com/goscan/goscan/internal/store"
)

var cachePath string

var checkCmd = &cobra.Command{
	Use:   "check <module-path> <policy-path>",
	Short: "scan a module and check its call graph against a policy file",
	Long: `check loads a policy file, scans the named module, marks every
sink-matched callee as of interest, and reports every call-graph edge
whose requirements the caller's allow list does not satisfy.

If --cache is given, the scan's effects and call-graph edges persist to
a SQLite cache keyed by module name and version; since Go module
versions are immutable, a later check of the same name@version reuses
the cached scan instead of re-walking the module's AST.`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&cachePath, "cache", "", "SQLite cache path; skips re-scanning an unchanged module version")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	moduleRoot, policyPath := args[0], args[1]

	pol, err := policy.FromFile(policyPath)
	if err != nil {
		return fmt.Errorf("check: loading policy: %w", err)
	}

	var conn *sqlite.Conn
	if cachePath != "" {
		conn, err = store.Open(cachePath)
		if err != nil {
			return fmt.Errorf("check: opening cache: %w", err)
		}
		defer func() { _ = conn.Close() }()
	}

	results, modData, loadErrs, err := scanModuleWithCache(conn, moduleRoot, log)
	if err != nil {
		return err
	}

	lookup := policy.FromPolicy(pol)
	lookup.MarkSinksOfInterest(results)
	violations := policy.CheckGraph(results, lookup)

	log.Infof("checked %s@%s against %s: %d edge(s), %d violation(s)",
		modData.Name, modData.Version, policyPath, len(results.Edges), len(violations))

	for _, e := range loadErrs {
		log.Warnf("package load: %s", e)
	}

	if conn != nil {
		for _, v := range violations {
			if err := store.WriteViolations(conn, modData.Name, modData.Version,
				v.Caller.String(), v.Callee.String(), v.Diagnostics); err != nil {
				log.Warnf("writing violations to cache: %s", err)
			}
		}
	}

	if len(violations) == 0 {
		fmt.Println("no policy violations found")
		return nil
	}

	for _, v := range violations {
		fmt.Printf("%s: %s -> %s\n", v.Loc, v.Caller.String(), v.Callee.String())
		for _, d := range v.Diagnostics {
			fmt.Printf("  %s\n", d)
		}
	}
	return fmt.Errorf("check: %d policy violation(s) found", len(violations))
}

// scanModuleWithCache consults conn (when non-nil) for a cached scan of
// moduleRoot before falling back to a full scanner.ScanModule pass; a
// fresh scan's results are written back to conn so the next check of
// the same module@version can skip scanning entirely.
func scanModuleWithCache(conn *sqlite.Conn, moduleRoot string, log *zap.SugaredLogger) (*effect.ScanResults, manifest.ModuleData, []string, error) {
	modData, err := manifest.Load(moduleRoot)
	if err != nil {
		return nil, manifest.ModuleData{}, nil, fmt.Errorf("check: loading manifest: %w", err)
	}

	if conn != nil {
		hit, err := store.HasScan(conn, modData.Name, modData.Version)
		if err != nil {
			return nil, modData, nil, fmt.Errorf("check: consulting cache: %w", err)
		}
		if hit {
			log.Infof("cache hit for %s@%s, skipping scan", modData.Name, modData.Version)
			cached, err := store.ReadScan(conn, modData.Name, modData.Version)
			if err != nil {
				return nil, modData, nil, fmt.Errorf("check: reading cache: %w", err)
			}
			return cached, modData, nil, nil
		}
	}

	results, modData, loadErrs, err := scanner.ScanModule(moduleRoot, nil)
	if err != nil {
		return nil, modData, nil, fmt.Errorf("check: scanning module: %w", err)
	}

	if conn != nil {
		scannedAt := time.Now().UTC().Format(time.RFC3339)
		if err := store.WriteScan(conn, modData.Name, modData.Version, scannedAt, results); err != nil {
			log.Warnf("writing scan to cache: %s", err)
		}
	}
	return results, modData, loadErrs, nil
}
