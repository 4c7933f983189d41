// Package effect holds the effect taxonomy, effect-block model, function
// and trait declarations, and the aggregate scan results the scanner
// produces.
package effect

import (
	"github.com/goscan/goscan/internal/ident"
	"github.com/goscan/goscan/internal/srcloc"
)

// Visibility distinguishes exported declarations from everything else.
type Visibility int

const (
	Other Visibility = iota
	Public
)

// Kind discriminates the Effect tagged union. Go has no native sum type,
// so Effect carries a discriminator plus a union of per-variant fields,
// per the tagged-variant pattern.
type Kind int

const (
	KindCall Kind = iota
	KindFnPtrCreation
	KindStaticMut
	KindStaticExt
	KindRawPointer
	KindUnionField
	KindClosureCreation
)

func (k Kind) String() string {
	switch k {
	case KindCall:
		return "Call"
	case KindFnPtrCreation:
		return "FnPtrCreation"
	case KindStaticMut:
		return "StaticMut"
	case KindStaticExt:
		return "StaticExt"
	case KindRawPointer:
		return "RawPointer"
	case KindUnionField:
		return "UnionField"
	case KindClosureCreation:
		return "ClosureCreation"
	default:
		return "Unknown"
	}
}

// Effect is the tagged variant describing one security-relevant
// syntactic construct. Only the fields relevant to Kind are populated;
// Target holds the subject of every non-Call variant, Callee/FFI/
// IsUnsafe/SinkMatch are Call-specific.
type Effect struct {
	Kind      Kind
	Target    ident.CanonicalPath
	Callee    ident.CanonicalPath
	FFI       *ident.CanonicalPath
	IsUnsafe  bool
	SinkMatch *ident.CanonicalPath
}

// NewCall builds a Call effect.
func NewCall(callee ident.CanonicalPath, ffi *ident.CanonicalPath, isUnsafe bool, sinkMatch *ident.CanonicalPath) Effect {
	return Effect{Kind: KindCall, Callee: callee, FFI: ffi, IsUnsafe: isUnsafe, SinkMatch: sinkMatch}
}

// NewFnPtrCreation builds a FnPtrCreation effect.
func NewFnPtrCreation(target ident.CanonicalPath) Effect {
	return Effect{Kind: KindFnPtrCreation, Target: target}
}

// NewStaticMut builds a StaticMut effect.
func NewStaticMut(target ident.CanonicalPath) Effect {
	return Effect{Kind: KindStaticMut, Target: target}
}

// NewStaticExt builds a StaticExt effect.
func NewStaticExt(target ident.CanonicalPath) Effect {
	return Effect{Kind: KindStaticExt, Target: target}
}

// NewRawPointer builds a RawPointer effect.
func NewRawPointer(target ident.CanonicalPath) Effect {
	return Effect{Kind: KindRawPointer, Target: target}
}

// NewUnionField builds a UnionField effect.
func NewUnionField(target ident.CanonicalPath) Effect {
	return Effect{Kind: KindUnionField, Target: target}
}

// NewClosureCreation builds a ClosureCreation effect.
func NewClosureCreation(target ident.CanonicalPath) Effect {
	return Effect{Kind: KindClosureCreation, Target: target}
}

// Subject returns the canonical path the effect is "about": the callee
// for Call, the target for every other variant.
func (e Effect) Subject() ident.CanonicalPath {
	if e.Kind == KindCall {
		return e.Callee
	}
	return e.Target
}

// EffectInstance is the single output unit consumed by downstream
// analysis: a located effect with its enclosing caller.
type EffectInstance struct {
	Caller ident.CanonicalPath
	Callee ident.CanonicalPath
	Loc    srcloc.SrcLoc
	Kind   Effect
}

// NewInstance builds an EffectInstance, keeping Callee in sync with the
// effect's subject so non-Call variants still carry a usable callee.
func NewInstance(caller ident.CanonicalPath, loc srcloc.SrcLoc, kind Effect) EffectInstance {
	return EffectInstance{Caller: caller, Callee: kind.Subject(), Loc: loc, Kind: kind}
}

// BlockType classifies the syntactic region an effect block represents.
type BlockType int

const (
	NormalFn BlockType = iota
	UnsafeFn
	UnsafeExpr
)

func (b BlockType) String() string {
	switch b {
	case NormalFn:
		return "NormalFn"
	case UnsafeFn:
		return "UnsafeFn"
	case UnsafeExpr:
		return "UnsafeExpr"
	default:
		return "Unknown"
	}
}

// FnDec records a function declaration: created the moment the
// declaration is entered, pushed on the scanner's function stack, and
// retained in ScanResults.FnLocs for the lifetime of the scan.
type FnDec struct {
	File         string
	SignatureLoc srcloc.SrcLoc
	FnName       ident.CanonicalPath
	Visibility   Visibility
}

// TraitDec records an unsafe trait (Go: unsafe interface-satisfying type
// declaration backed by cgo or linkname) declaration.
type TraitDec struct {
	File      string
	Loc       srcloc.SrcLoc
	TraitName ident.CanonicalPath
}

// TraitImpl records an unsafe trait implementation.
type TraitImpl struct {
	File      string
	Loc       srcloc.SrcLoc
	TraitName ident.CanonicalPath
	ImplType  ident.CanonicalPath
}

// EffectBlock groups the effects emitted inside one syntactic region:
// an unsafe expression, an unsafe function, or a normal function.
type EffectBlock struct {
	Kind         BlockType
	Loc          srcloc.SrcLoc
	ContainingFn FnDec
	Effects      []EffectInstance
}
