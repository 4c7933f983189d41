// Package scanner implements the stateful AST walk that classifies every
// security-relevant construct in a package into structured effect
// instances, while simultaneously building a call graph.
//
// The walk discipline mirrors the source scanner's four explicit scope
// stacks (effect blocks, unsafe depth, assign-lhs flag, fn declarations)
// rather than relying on Go's own recursion to carry that state, per
// spec §4.2 and the "scope stacks" design note in §9.
package scanner

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/goscan/goscan/internal/effect"
	"github.com/goscan/goscan/internal/ident"
	"github.com/goscan/goscan/internal/resolver"
	"github.com/goscan/goscan/internal/sink"
	"github.com/goscan/goscan/internal/srcloc"
)

// Scanner walks one package's syntax trees, given a positioned resolver
// and an active sink set, and accumulates into a shared ScanResults.
type Scanner struct {
	pkg      *packages.Package
	fset     *token.FileSet
	resolver resolver.Resolver
	results  *effect.ScanResults
	sinks    *sink.Set

	scopeEffectBlocks []*effect.EffectBlock
	scopeUnsafe       int
	scopeAssignLHS    bool
	scopeFns          []effect.FnDec

	relFile string
}

// New builds a Scanner over one package, writing into results.
func New(pkg *packages.Package, fset *token.FileSet, r resolver.Resolver, sinks *sink.Set, results *effect.ScanResults) *Scanner {
	return &Scanner{pkg: pkg, fset: fset, resolver: r, sinks: sinks, results: results}
}

// assertTopLevelInvariant panics if the scope stacks are not balanced,
// matching the source's debug_assert at entry/exit of a file scan
// (spec §7: stack imbalance indicates a programmer bug, not user input).
func (s *Scanner) assertTopLevelInvariant() {
	if len(s.scopeEffectBlocks) != 0 {
		panic("scanner: scope_effect_blocks not empty at file boundary")
	}
	if s.scopeUnsafe != 0 {
		panic("scanner: scope_unsafe not zero at file boundary")
	}
	if len(s.scopeFns) != 0 {
		panic("scanner: scope_fns not empty at file boundary")
	}
}

// ScanFile scans one parsed source file belonging to the scanner's
// package.
func (s *Scanner) ScanFile(file *ast.File, relFile string) {
	s.assertTopLevelInvariant()
	s.relFile = relFile
	s.results.TotalLoC.Add(s.loc(file))

	foreign := fileImportsC(file)
	if foreign {
		s.scopeUnsafe++
	}

	for _, decl := range file.Decls {
		s.scanDecl(decl)
	}

	if foreign {
		s.scopeUnsafe--
	}
	s.assertTopLevelInvariant()
}

func fileImportsC(file *ast.File) bool {
	for _, imp := range file.Imports {
		if imp.Path != nil && imp.Path.Value == `"C"` {
			return true
		}
	}
	return false
}

func (s *Scanner) loc(n ast.Node) srcloc.SrcLoc {
	return srcloc.FromNode(s.fset, s.relFile, n)
}

// scanDecl dispatches a top-level declaration: function declarations,
// and GenDecl (import/const/var/type) value specs for StaticMut/
// StaticExt detection on package-level var initializers.
func (s *Scanner) scanDecl(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		s.scanFuncDecl(d)
	case *ast.GenDecl:
		s.scanGenDecl(d)
	default:
		s.results.SkippedOther.Add(s.loc(decl))
	}
}

func (s *Scanner) scanGenDecl(d *ast.GenDecl) {
	if s.skipCfg(d.Doc) {
		s.results.SkippedConditionalCode.Add(s.loc(d))
		return
	}
	for _, spec := range d.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, val := range vs.Values {
			s.scanExpr(val)
		}
	}
}

// skipCfg replicates the source's shallow cfg heuristic (scanner.rs
// skip_cfg/skip_attr), retargeted to Go's //go:build and legacy
// "// +build" constraint comments: a constraint naming exactly one GOOS
// (the target_os analogue) or a single negated build tag (the
// "not(feature=...)" analogue) causes the item to be skipped; anything
// else scans normally, same as the original's catch-all.
func (s *Scanner) skipCfg(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		text := strings.TrimSpace(c.Text)
		switch {
		case strings.HasPrefix(text, "//go:build"):
			expr := strings.TrimSpace(strings.TrimPrefix(text, "//go:build"))
			if isSingleGOOS(expr) || isSingleNegatedTag(expr) {
				return true
			}
		case strings.HasPrefix(text, "// +build"):
			expr := strings.TrimSpace(strings.TrimPrefix(text, "// +build"))
			if isSingleGOOS(expr) || isSingleNegatedTag(expr) {
				return true
			}
		}
	}
	return false
}

func isSingleGOOS(expr string) bool {
	for _, goos := range []string{"linux", "darwin", "windows", "freebsd"} {
		if expr == goos {
			return true
		}
	}
	return false
}

func isSingleNegatedTag(expr string) bool {
	return strings.HasPrefix(expr, "!") && !strings.ContainsAny(expr, "&|,")
}

// scanFuncDecl implements the five-step function scan: build FnDec, push
// scopes, build the effect block (UnsafeFn vs NormalFn), visit the body,
// then pop everything back off, decrementing scope_unsafe if it was the
// function scan itself that raised it.
func (s *Scanner) scanFuncDecl(fd *ast.FuncDecl) {
	if s.skipCfg(fd.Doc) {
		s.results.SkippedConditionalCode.Add(s.loc(fd))
		return
	}
	if fd.Body == nil {
		// A declaration with no body: Go's closest analogue to an
		// extern/foreign function signature (typically assembly-backed).
		s.resolver.ScanForeignFn(fd.Name.Name)
		return
	}

	fnName := s.funcCanonicalPath(fd)
	vis := effect.Other
	if fd.Name.IsExported() {
		vis = effect.Public
	}
	dec := effect.FnDec{
		File:         s.relFile,
		SignatureLoc: s.loc(fd.Type),
		FnName:       fnName,
		Visibility:   vis,
	}
	s.results.AddFnDec(dec)
	s.scopeFns = append(s.scopeFns, dec)
	s.resolver.PushFn(fnName.String())

	// A function in a file with `import "C"` is entered with the
	// file-level unsafe scope ScanFile already raised; like the first
	// pass (ClassifyUnsafe), it is classified UnsafeFn.
	inForeignFile := s.scopeUnsafe > 0
	raisedUnsafe := s.isUnsafeFn(fd)
	kind := effect.NormalFn
	if raisedUnsafe || inForeignFile {
		kind = effect.UnsafeFn
	}
	if raisedUnsafe {
		s.scopeUnsafe++
	}
	block := &effect.EffectBlock{Kind: kind, Loc: s.loc(fd), ContainingFn: dec}
	s.scopeEffectBlocks = append(s.scopeEffectBlocks, block)

	s.scanBlockStmt(fd.Body)

	s.popEffectBlock()
	s.scopeFns = s.scopeFns[:len(s.scopeFns)-1]
	s.resolver.PopFn()
	if raisedUnsafe {
		s.scopeUnsafe--
	}
}

func (s *Scanner) popEffectBlock() {
	n := len(s.scopeEffectBlocks)
	b := s.scopeEffectBlocks[n-1]
	s.scopeEffectBlocks = s.scopeEffectBlocks[:n-1]
	s.results.AddEffectBlock(*b)
}

func (s *Scanner) funcCanonicalPath(fd *ast.FuncDecl) ident.CanonicalPath {
	if obj := s.pkg.TypesInfo.Defs[fd.Name]; obj != nil {
		return funcObjectPath(obj)
	}
	pkgPath := ""
	if s.pkg.Types != nil {
		pkgPath = s.pkg.Types.Path()
	}
	return ident.New(pkgPath + ident.Sep + fd.Name.Name)
}

func funcObjectPath(obj types.Object) ident.CanonicalPath {
	pkgPath := "builtin"
	if obj.Pkg() != nil {
		pkgPath = obj.Pkg().Path()
	}
	if fn, ok := obj.(*types.Func); ok {
		if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
			recv := strings.TrimPrefix(types.TypeString(sig.Recv().Type(), types.RelativeTo(obj.Pkg())), "*")
			return ident.New(pkgPath + ident.Sep + recv + "." + obj.Name())
		}
	}
	return ident.New(pkgPath + ident.Sep + obj.Name())
}

// push appends an effect instance to the innermost effect block, or
// records it as a rare top-level effect outside any function if the
// stack is empty (spec §3's EffectBlock invariant exception).
func (s *Scanner) push(kind effect.Effect, loc srcloc.SrcLoc) {
	caller := s.currentCaller()
	inst := effect.NewInstance(caller, loc, kind)
	if n := len(s.scopeEffectBlocks); n > 0 {
		s.scopeEffectBlocks[n-1].Effects = append(s.scopeEffectBlocks[n-1].Effects, inst)
		return
	}
	s.results.Effects = append(s.results.Effects, inst)
}

func (s *Scanner) currentCaller() ident.CanonicalPath {
	if n := len(s.scopeFns); n > 0 {
		return s.scopeFns[n-1].FnName
	}
	return ident.CanonicalPath{}
}

// isUnsafeFn runs the first-pass classification heuristic over a single
// function's own statements (not descending into nested FuncLits, which
// are classified independently when visited): true if the body directly
// uses the unsafe package.
func (s *Scanner) isUnsafeFn(fd *ast.FuncDecl) bool {
	found := false
	var walk func(ast.Node) bool
	walk = func(n ast.Node) bool {
		if found {
			return false
		}
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if pkgIdent, ok := sel.X.(*ast.Ident); ok {
				if obj := s.pkg.TypesInfo.Uses[pkgIdent]; obj != nil {
					if pn, ok := obj.(*types.PkgName); ok && pn.Imported().Path() == "unsafe" {
						found = true
						return false
					}
				}
			}
		}
		return true
	}
	ast.Inspect(fd.Body, walk)
	return found
}
