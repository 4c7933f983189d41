// Package callgraph builds a supplementary, interface-resolved call
// graph alongside the scanner's primary AST-walk call graph (spec §3's
// ScanResults.call_graph, built by effect.ScanResults.AddEdge under the
// opportunistic-edge rule: an edge is only recorded once both endpoints
// already have a declared node). That rule is deliberately syntactic -
// it never resolves a call through an interface method set or a
// function value assigned across variables. Go's toolchain ships a
// dedicated solver for exactly that gap (VTA, Variable Type Analysis),
// so this package wires it in as an enrichment pass: the teacher's
// ssa_cfg.go/BuildSSA and callgraph.go/BuildCallGraph construct the same
// SSA program and VTA call graph to resolve CPG call edges that its own
// AST pass can't see; this package adapts that two-step build to
// produce Edge values keyed by the same CanonicalPath shape the AST
// walk uses, so the two views can be displayed side by side.
package callgraph

import (
	"go/types"
	"strings"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/goscan/goscan/internal/ident"
)

// Edge is one VTA-resolved call edge, reported as a supplement to the
// scanner's own syntactic call graph.
type Edge struct {
	Caller ident.CanonicalPath
	Callee ident.CanonicalPath
}

// Build constructs the SSA program for pkgs (ssa_cfg.go's BuildSSA step)
// then runs VTA over it (callgraph.go's BuildCallGraph step), returning
// every edge whose endpoints are both ordinary, non-synthetic functions
// belonging to a loaded package. Synthetic nodes (wrappers, thunks, the
// root node) are dropped, mirroring the teacher's
// cg.DeleteSyntheticNodes() call.
func Build(pkgs []*packages.Package) []Edge {
	prog, _ := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()
	allFuncs := ssautil.AllFunctions(prog)

	cg := vta.CallGraph(allFuncs, nil)
	cg.DeleteSyntheticNodes()

	var edges []Edge
	seen := make(map[string]bool)
	_ = callgraph.GraphVisitEdges(cg, func(e *callgraph.Edge) error {
		caller := e.Caller.Func
		callee := e.Callee.Func
		if caller == nil || callee == nil {
			return nil
		}
		if caller.Pkg == nil || callee.Pkg == nil {
			return nil
		}
		if caller.Synthetic != "" || callee.Synthetic != "" {
			return nil
		}
		callerPath := funcPath(caller)
		calleePath := funcPath(callee)
		key := callerPath.String() + "->" + calleePath.String()
		if seen[key] {
			return nil
		}
		seen[key] = true
		edges = append(edges, Edge{Caller: callerPath, Callee: calleePath})
		return nil
	})
	return edges
}

// funcPath builds the same "<pkgPath>::<recv?>.<name>" shape as
// resolver.objectPath, so an Edge's endpoints compare equal to the AST
// walk's CanonicalPath for the same declaration.
func funcPath(fn *ssa.Function) ident.CanonicalPath {
	pkgPath := fn.Pkg.Pkg.Path()
	name := fn.Name()
	if recv := fn.Signature.Recv(); recv != nil {
		recvName := strings.TrimPrefix(types.TypeString(recv.Type(), types.RelativeTo(fn.Pkg.Pkg)), "*")
		return ident.New(pkgPath + ident.Sep + recvName + "." + name)
	}
	return ident.New(pkgPath + ident.Sep + name)
}
