package scanner

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// ClassifyUnsafe runs the scanner's first pass over every loaded
// package: a function is classified unsafe when its body directly uses
// the unsafe package, or it is declared in a file with `import "C"`.
// This registry resolves the chicken-and-egg problem Go's implicit
// unsafety creates (see SPEC_FULL.md's unsafe-scope redesign): unlike
// the source scanner, which knows `unsafe fn` from the keyword before
// it scans a single call site, Go only reveals unsafety by scanning the
// body — so the whole module is classified once, up front, before the
// effect walk (pass two) needs to answer ResolveUnsafePath for a call
// into some other function in the same module.
func ClassifyUnsafe(pkgs []*packages.Package) map[types.Object]bool {
	result := make(map[types.Object]bool)
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			foreign := fileImportsC(file)
			for _, decl := range file.Decls {
				fd, ok := decl.(*ast.FuncDecl)
				if !ok || fd.Body == nil {
					continue
				}
				obj := pkg.TypesInfo.Defs[fd.Name]
				if obj == nil {
					continue
				}
				if foreign || usesUnsafeDirectly(fd.Body, pkg) {
					result[obj] = true
				}
			}
		}
	}
	return result
}

func usesUnsafeDirectly(body *ast.BlockStmt, pkg *packages.Package) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		pkgIdent, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		obj := pkg.TypesInfo.Uses[pkgIdent]
		if pn, ok := obj.(*types.PkgName); ok && pn.Imported().Path() == "unsafe" {
			found = true
			return false
		}
		return true
	})
	return found
}
