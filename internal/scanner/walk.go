package scanner

import (
	"go/ast"
	"go/types"

	"github.com/goscan/goscan/internal/effect"
	"github.com/goscan/goscan/internal/ident"
)

// scanBlockStmt visits every statement of a block in order.
func (s *Scanner) scanBlockStmt(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, stmt := range b.List {
		s.scanStmt(stmt)
	}
}

// scanStmt dispatches one statement. Before visiting, it checks whether
// the statement directly contains an unsafe-package use (the UnsafeExpr
// redesign from SPEC_FULL.md): if so, it wraps the statement's scan in
// its own effect block and raises scope_unsafe for its duration,
// mirroring the source's `unsafe {}` block handling at finer-than-
// function granularity.
func (s *Scanner) scanStmt(stmt ast.Stmt) {
	if stmt == nil {
		return
	}
	if s.directlyUsesUnsafe(stmt) {
		s.scopeUnsafe++
		block := &effect.EffectBlock{Kind: effect.UnsafeExpr, Loc: s.loc(stmt), ContainingFn: s.currentFnDec()}
		s.scopeEffectBlocks = append(s.scopeEffectBlocks, block)
		s.scanStmtInner(stmt)
		s.popEffectBlock()
		s.scopeUnsafe--
		return
	}
	s.scanStmtInner(stmt)
}

func (s *Scanner) currentFnDec() effect.FnDec {
	if n := len(s.scopeFns); n > 0 {
		return s.scopeFns[n-1]
	}
	return effect.FnDec{}
}

// directlyUsesUnsafe reports whether stmt itself (not a nested block,
// not a nested FuncLit) contains a selector into the unsafe package.
func (s *Scanner) directlyUsesUnsafe(stmt ast.Stmt) bool {
	found := false
	ast.Inspect(stmt, func(n ast.Node) bool {
		if found {
			return false
		}
		switch n.(type) {
		case *ast.BlockStmt, *ast.FuncLit:
			if n != stmt {
				return false
			}
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
	})
	return found
}

func (s *Scanner) scanStmtInner(stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.ExprStmt:
		s.scanExpr(st.X)
	case *ast.AssignStmt:
		s.scanAssign(st)
	case *ast.DeclStmt:
		if gd, ok := st.Decl.(*ast.GenDecl); ok {
			s.scanGenDecl(gd)
		}
	case *ast.ReturnStmt:
		for _, r := range st.Results {
			s.scanExpr(r)
		}
	case *ast.IfStmt:
		if st.Init != nil {
			s.scanStmt(st.Init)
		}
		s.scanExpr(st.Cond)
		s.scanBlockStmt(st.Body)
		if st.Else != nil {
			s.scanStmt(st.Else)
		}
	case *ast.ForStmt:
		if st.Init != nil {
			s.scanStmt(st.Init)
		}
		if st.Cond != nil {
			s.scanExpr(st.Cond)
		}
		if st.Post != nil {
			s.scanStmt(st.Post)
		}
		s.scanBlockStmt(st.Body)
	case *ast.RangeStmt:
		if st.X != nil {
			s.scanExpr(st.X)
		}
		s.scanBlockStmt(st.Body)
	case *ast.SwitchStmt:
		if st.Init != nil {
			s.scanStmt(st.Init)
		}
		if st.Tag != nil {
			s.scanExpr(st.Tag)
		}
		s.scanBlockStmt(st.Body)
	case *ast.TypeSwitchStmt:
		if st.Init != nil {
			s.scanStmt(st.Init)
		}
		s.scanStmt(st.Assign)
		s.scanBlockStmt(st.Body)
	case *ast.CaseClause:
		for _, e := range st.List {
			s.scanExpr(e)
		}
		for _, inner := range st.Body {
			s.scanStmt(inner)
		}
	case *ast.CommClause:
		if st.Comm != nil {
			s.scanStmt(st.Comm)
		}
		for _, inner := range st.Body {
			s.scanStmt(inner)
		}
	case *ast.SelectStmt:
		s.scanBlockStmt(st.Body)
	case *ast.BlockStmt:
		s.scanBlockStmt(st)
	case *ast.GoStmt:
		s.scanExpr(st.Call)
	case *ast.DeferStmt:
		s.scanExpr(st.Call)
	case *ast.SendStmt:
		s.scanExpr(st.Chan)
		s.scanExpr(st.Value)
	case *ast.IncDecStmt:
		s.scanExpr(st.X)
	case *ast.LabeledStmt:
		s.scanStmt(st.Stmt)
	case *ast.BranchStmt:
		// break/continue/goto/fallthrough: no operands to visit.
	case *ast.EmptyStmt:
		// nothing to do.
	default:
		s.results.SkippedOther.Add(s.loc(stmt))
	}
}

func (s *Scanner) scanAssign(st *ast.AssignStmt) {
	for _, lhs := range st.Lhs {
		prev := s.scopeAssignLHS
		s.scopeAssignLHS = true
		s.scanExpr(lhs)
		s.scopeAssignLHS = prev
	}
	for _, rhs := range st.Rhs {
		prev := s.scopeAssignLHS
		s.scopeAssignLHS = false
		s.scanExpr(rhs)
		s.scopeAssignLHS = prev
	}
}

// scanExpr implements the expression-level effect rules table (spec
// §4.2): call, method call, field-call, path expressions of function/
// fn-pointer/static type, pointer dereference, field access, and
// closure literals all produce an effect before recursing into operands.
func (s *Scanner) scanExpr(expr ast.Expr) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.CallExpr:
		s.scanCallExpr(e)
	case *ast.Ident:
		s.scanPathExpr(e)
	case *ast.SelectorExpr:
		s.scanSelectorExpr(e)
	case *ast.StarExpr:
		s.scanStarExpr(e)
	case *ast.FuncLit:
		s.scanClosure(e)
	case *ast.UnaryExpr:
		s.scanExpr(e.X)
	case *ast.BinaryExpr:
		s.scanExpr(e.X)
		s.scanExpr(e.Y)
	case *ast.ParenExpr:
		s.scanExpr(e.X)
	case *ast.IndexExpr:
		s.scanExpr(e.X)
		s.scanExpr(e.Index)
	case *ast.IndexListExpr:
		s.scanExpr(e.X)
		for _, i := range e.Indices {
			s.scanExpr(i)
		}
	case *ast.SliceExpr:
		s.scanExpr(e.X)
		s.scanExpr(e.Low)
		s.scanExpr(e.High)
		s.scanExpr(e.Max)
	case *ast.TypeAssertExpr:
		s.scanExpr(e.X)
	case *ast.KeyValueExpr:
		s.scanExpr(e.Key)
		s.scanExpr(e.Value)
	case *ast.CompositeLit:
		for _, elt := range e.Elts {
			s.scanExpr(elt)
		}
	case *ast.BasicLit:
		// literal: no effect.
	default:
		s.results.SkippedOther.Add(s.loc(expr))
	}
}

func (s *Scanner) scanCallExpr(e *ast.CallExpr) {
	switch fn := e.Fun.(type) {
	case *ast.Ident:
		s.emitCall(s.resolver.ResolvePath(fn), fn)
	case *ast.SelectorExpr:
		// Distinguish a method call (recv.m(args)) from a call through a
		// field value (x.f(args)) using the type-checker's selection
		// kind, per the effect rules table's two distinct forms.
		if selInfo, ok := s.pkgSelection(fn); ok && selInfo.Kind() == types.MethodVal {
			s.emitCall(s.resolver.ResolveMethod(fn), fn)
		} else {
			s.emitCall(s.resolver.ResolveField(fn), fn)
		}
		s.scanExpr(fn.X)
	default:
		s.scanExpr(e.Fun)
	}
	for _, arg := range e.Args {
		s.scanExpr(arg)
	}
}

func (s *Scanner) pkgSelection(sel *ast.SelectorExpr) (*types.Selection, bool) {
	selInfo, ok := s.pkg.TypesInfo.Selections[sel]
	return selInfo, ok
}

func (s *Scanner) emitCall(callee ident.CanonicalPath, site ast.Node) {
	if callee.IsZero() {
		s.results.SkippedFnCalls.Add(s.loc(site))
		return
	}
	ffi := s.resolver.ResolveFFI(site.(ast.Expr))
	isUnsafe := s.resolver.ResolveUnsafePath(site.(ast.Expr)) && s.scopeUnsafe > 0
	sinkMatch := s.sinks.Match(callee)
	loc := s.loc(site)
	s.push(effect.NewCall(callee, ffi, isUnsafe, sinkMatch), loc)

	caller := s.currentCaller()
	if !caller.IsZero() {
		s.results.AddEdge(caller, callee, loc)
	}
}

// scanPathExpr handles a bare identifier used as a value (not as the Fun
// of a CallExpr, which scanCallExpr handles directly): function-pointer
// creation, or a reference to a mutable/foreign static.
func (s *Scanner) scanPathExpr(id *ast.Ident) {
	if id.Name == "_" || id.Name == "" {
		return
	}
	cls := s.resolver.ResolvePathType(id)
	path := s.resolver.ResolveIdent(id)
	if path.IsZero() {
		return
	}
	switch {
	case cls.IsFunction || cls.IsFnPtr:
		s.push(effect.NewFnPtrCreation(path), s.loc(id))
	case cls.IsMutStatic:
		if ffi := s.resolver.ResolveFFI(id); ffi != nil {
			s.push(effect.NewStaticExt(path), s.loc(id))
		} else {
			s.push(effect.NewStaticMut(path), s.loc(id))
		}
	}
}

// scanSelectorExpr handles e.f value access: union-field reads (only
// when not the LHS of an assignment), and falls through to the path
// rules for package-qualified static references.
func (s *Scanner) scanSelectorExpr(e *ast.SelectorExpr) {
	if selInfo, ok := s.pkgSelection(e); ok {
		switch selInfo.Kind() {
		case types.MethodVal, types.MethodExpr:
			s.scanExpr(e.X)
			return
		case types.FieldVal:
			if !s.scopeAssignLHS {
				fieldCls := s.resolver.ResolveFieldType(e)
				if fieldCls.IsUnionField {
					s.push(effect.NewUnionField(s.resolver.ResolveField(e)), s.loc(e))
				}
			}
			s.scanExpr(e.X)
			return
		}
	}
	// Package-qualified reference (pkg.Ident): treat like a path
	// expression for static/FFI/function-pointer detection.
	if pkgIdent, ok := e.X.(*ast.Ident); ok {
		if _, isPkg := s.pkg.TypesInfo.Uses[pkgIdent].(*types.PkgName); isPkg {
			cls := s.resolver.ResolvePathType(e)
			path := s.resolver.ResolvePath(e)
			if path.IsZero() {
				return
			}
			switch {
			case cls.IsFunction || cls.IsFnPtr:
				s.push(effect.NewFnPtrCreation(path), s.loc(e))
			case cls.IsMutStatic:
				if ffi := s.resolver.ResolveFFI(e); ffi != nil {
					s.push(effect.NewStaticExt(path), s.loc(e))
				} else {
					s.push(effect.NewStaticMut(path), s.loc(e))
				}
			}
			return
		}
	}
	s.scanExpr(e.X)
}

// scanStarExpr handles dereference `*e`. RawPointer fires when the
// dereferenced operand is (or is parenthesized/converted from) an
// unsafe.Pointer conversion — Go's only raw-pointer idiom.
func (s *Scanner) scanStarExpr(e *ast.StarExpr) {
	if target := s.rawPointerTarget(e.X); target != nil {
		s.push(effect.NewRawPointer(*target), s.loc(e))
	}
	s.scanExpr(e.X)
}

func (s *Scanner) rawPointerTarget(x ast.Expr) *ident.CanonicalPath {
	call, ok := x.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil
	}
	var convTo ast.Expr
	switch fn := call.Fun.(type) {
	case *ast.ParenExpr:
		convTo = fn.X
	default:
		convTo = call.Fun
	}
	star, ok := convTo.(*ast.StarExpr)
	if !ok {
		return nil
	}
	argTV, ok := s.pkg.TypesInfo.Types[call.Args[0]]
	if !ok || argTV.Type == nil {
		return nil
	}
	basic, ok := argTV.Type.Underlying().(*types.Basic)
	if !ok || basic.Kind() != types.UnsafePointer {
		return nil
	}
	path := s.resolver.ResolvePath(star.X)
	if path.IsZero() {
		path = ident.New("unsafe::Pointer")
	}
	return &path
}

// scanClosure handles a closure literal: emits ClosureCreation with a
// synthetic (file, span)-derived identifier, then scans the body as a
// nested, unnamed function scope.
func (s *Scanner) scanClosure(e *ast.FuncLit) {
	loc := s.loc(e)
	closureID := s.resolver.ClosureIdent(s.relFile, loc)
	s.push(effect.NewClosureCreation(closureID), loc)

	dec := effect.FnDec{File: s.relFile, SignatureLoc: loc, FnName: closureID, Visibility: effect.Other}
	s.results.AddFnDec(dec)
	s.scopeFns = append(s.scopeFns, dec)

	raisedUnsafe := s.directlyUsesUnsafe(e.Body)
	kind := effect.NormalFn
	if raisedUnsafe {
		kind = effect.UnsafeFn
		s.scopeUnsafe++
	}
	block := &effect.EffectBlock{Kind: kind, Loc: loc, ContainingFn: dec}
	s.scopeEffectBlocks = append(s.scopeEffectBlocks, block)

	s.scanBlockStmt(e.Body)

	s.popEffectBlock()
	s.scopeFns = s.scopeFns[:len(s.scopeFns)-1]
	if raisedUnsafe {
		s.scopeUnsafe--
	}
}
