// Package store persists the most recent scan of a module to a small
// SQLite cache, keyed by module name and version, so repeated checks
// against an unchanged dependency don't re-run the scanner. This is not
// the vetting front-end's check-file (spec §1 scopes that format's
// persistence out of core) — it is a scan-result cache, a distinct
// artifact this module introduces to exercise the teacher's sqlite
// stack (see SPEC_FULL.md's Domain Stack section).
//
// Adapted from the teacher's db.go: the same pragma/transaction/
// prepared-statement insert pattern, reduced from several dozen
// analysis tables down to four that mirror ScanResults directly.
package store

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/goscan/goscan/internal/effect"
	"github.com/goscan/goscan/internal/ident"
	"github.com/goscan/goscan/internal/srcloc"
)

// Open creates (if needed) and opens the cache database at path.
func Open(path string) (*sqlite.Conn, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA synchronous = NORMAL", nil); err != nil {
		return nil, err
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA journal_mode = WAL", nil); err != nil {
		return nil, err
	}
	if err := createTables(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func createTables(conn *sqlite.Conn) error {
	ddl := `
CREATE TABLE IF NOT EXISTS modules (
    name TEXT NOT NULL,
    version TEXT NOT NULL,
    scanned_at TEXT NOT NULL,
    PRIMARY KEY (name, version)
);

CREATE TABLE IF NOT EXISTS effects (
    module_name TEXT NOT NULL,
    module_version TEXT NOT NULL,
    caller TEXT NOT NULL,
    callee TEXT NOT NULL,
    kind TEXT NOT NULL,
    file TEXT,
    line INTEGER,
    is_unsafe INTEGER NOT NULL,
    sink_match TEXT
);

CREATE TABLE IF NOT EXISTS call_edges (
    module_name TEXT NOT NULL,
    module_version TEXT NOT NULL,
    caller TEXT NOT NULL,
    callee TEXT NOT NULL,
    file TEXT,
    line INTEGER
);

CREATE TABLE IF NOT EXISTS policy_violations (
    module_name TEXT NOT NULL,
    module_version TEXT NOT NULL,
    caller TEXT NOT NULL,
    callee TEXT NOT NULL,
    diagnostic TEXT NOT NULL
);
`
	return sqlitex.ExecuteScript(conn, ddl, nil)
}

// WriteScan replaces the cached rows for (moduleName, moduleVersion)
// with the given results inside one immediate transaction.
func WriteScan(conn *sqlite.Conn, moduleName, moduleVersion, scannedAt string, results *effect.ScanResults) error {
	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer endFn(&err)

	if err = sqlitex.ExecuteTransient(conn, "DELETE FROM modules WHERE name = ? AND version = ?", &sqlitex.ExecOptions{
		Args: []any{moduleName, moduleVersion},
	}); err != nil {
		return err
	}
	for _, table := range []string{"effects", "call_edges", "policy_violations"} {
		q := fmt.Sprintf("DELETE FROM %s WHERE module_name = ? AND module_version = ?", table)
		if err = sqlitex.ExecuteTransient(conn, q, &sqlitex.ExecOptions{
			Args: []any{moduleName, moduleVersion},
		}); err != nil {
			return err
		}
	}

	if err = sqlitex.ExecuteTransient(conn,
		"INSERT INTO modules (name, version, scanned_at) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{moduleName, moduleVersion, scannedAt}}); err != nil {
		return err
	}

	if err = insertEffects(conn, moduleName, moduleVersion, results.Effects); err != nil {
		return err
	}
	if err = insertEdges(conn, moduleName, moduleVersion, results.Edges); err != nil {
		return err
	}
	return nil
}

func insertEffects(conn *sqlite.Conn, moduleName, moduleVersion string, effects []effect.EffectInstance) error {
	stmt, err := conn.Prepare(
		"INSERT INTO effects (module_name, module_version, caller, callee, kind, file, line, is_unsafe, sink_match) " +
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare effect insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, inst := range effects {
		stmt.BindText(1, moduleName)
		stmt.BindText(2, moduleVersion)
		stmt.BindText(3, inst.Caller.String())
		stmt.BindText(4, inst.Callee.String())
		stmt.BindText(5, inst.Kind.Kind.String())
		stmt.BindText(6, inst.Loc.File)
		stmt.BindInt64(7, int64(inst.Loc.StartLine))
		unsafeFlag := int64(0)
		if inst.Kind.IsUnsafe {
			unsafeFlag = 1
		}
		stmt.BindInt64(8, unsafeFlag)
		if inst.Kind.SinkMatch != nil {
			stmt.BindText(9, inst.Kind.SinkMatch.String())
		} else {
			stmt.BindNull(9)
		}
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("store: insert effect %s: %w", inst.Callee.String(), err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func insertEdges(conn *sqlite.Conn, moduleName, moduleVersion string, edges []effect.CallGraphEdge) error {
	stmt, err := conn.Prepare(
		"INSERT INTO call_edges (module_name, module_version, caller, callee, file, line) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare edge insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, e := range edges {
		stmt.BindText(1, moduleName)
		stmt.BindText(2, moduleVersion)
		stmt.BindText(3, e.Caller.String())
		stmt.BindText(4, e.Callee.String())
		stmt.BindText(5, e.Loc.File)
		stmt.BindInt64(6, int64(e.Loc.StartLine))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("store: insert edge %s->%s: %w", e.Caller.String(), e.Callee.String(), err)
		}
		_ = stmt.Reset()
	}
	return nil
}

// HasScan reports whether the cache already holds a scan for
// (moduleName, moduleVersion). Consulted before scanning: Go module
// versions are immutable, so a cache hit on name+version means the
// source hasn't changed and the scan can be skipped outright.
func HasScan(conn *sqlite.Conn, moduleName, moduleVersion string) (bool, error) {
	found := false
	err := sqlitex.ExecuteTransient(conn,
		"SELECT 1 FROM modules WHERE name = ? AND version = ?",
		&sqlitex.ExecOptions{
			Args: []any{moduleName, moduleVersion},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("store: has scan: %w", err)
	}
	return found, nil
}

// ReadScan reconstructs a *effect.ScanResults from the cached effects
// and call_edges rows for (moduleName, moduleVersion), sufficient to
// re-run policy.MarkSinksOfInterest/CheckGraph without re-walking the
// module's AST. Call-graph nodes aren't cached (MarkSinksOfInterest and
// CheckGraph only read Effects/Edges), so the returned ScanResults has
// an empty node set; callers that need HasNode/Nodes must re-scan.
func ReadScan(conn *sqlite.Conn, moduleName, moduleVersion string) (*effect.ScanResults, error) {
	results := effect.NewScanResults()

	// Only Call effects matter to MarkSinksOfInterest/CheckGraph; other
	// kinds' Callee column holds their Target, not a real callee, so
	// reconstructing them as Call effects here would be a category
	// error.
	err := sqlitex.ExecuteTransient(conn,
		"SELECT caller, callee, kind, file, line, is_unsafe, sink_match FROM effects "+
			"WHERE module_name = ? AND module_version = ? AND kind = 'Call'",
		&sqlitex.ExecOptions{
			Args: []any{moduleName, moduleVersion},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				caller := ident.New(stmt.ColumnText(0))
				callee := ident.New(stmt.ColumnText(1))
				loc := srcloc.SrcLoc{File: stmt.ColumnText(3), StartLine: int(stmt.ColumnInt64(4))}
				isUnsafe := stmt.ColumnInt64(5) != 0
				var sinkMatch *ident.CanonicalPath
				if stmt.ColumnType(6) != sqlite.TypeNull {
					p := ident.New(stmt.ColumnText(6))
					sinkMatch = &p
				}
				eff := effect.NewCall(callee, nil, isUnsafe, sinkMatch)
				results.Effects = append(results.Effects, effect.NewInstance(caller, loc, eff))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("store: read effects: %w", err)
	}

	err = sqlitex.ExecuteTransient(conn,
		"SELECT caller, callee, file, line FROM call_edges WHERE module_name = ? AND module_version = ?",
		&sqlitex.ExecOptions{
			Args: []any{moduleName, moduleVersion},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				loc := srcloc.SrcLoc{File: stmt.ColumnText(2), StartLine: int(stmt.ColumnInt64(3))}
				results.Edges = append(results.Edges, effect.CallGraphEdge{
					Caller: ident.New(stmt.ColumnText(0)),
					Callee: ident.New(stmt.ColumnText(1)),
					Loc:    loc,
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("store: read call edges: %w", err)
	}

	return results, nil
}

// WriteViolations appends policy-check diagnostics to the cache for
// (moduleName, moduleVersion).
func WriteViolations(conn *sqlite.Conn, moduleName, moduleVersion string, caller, callee string, diagnostics []string) error {
	stmt, err := conn.Prepare(
		"INSERT INTO policy_violations (module_name, module_version, caller, callee, diagnostic) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare violation insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, d := range diagnostics {
		stmt.BindText(1, moduleName)
		stmt.BindText(2, moduleVersion)
		stmt.BindText(3, caller)
		stmt.BindText(4, callee)
		stmt.BindText(5, d)
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("store: insert violation: %w", err)
		}
		_ = stmt.Reset()
	}
	return nil
}
