package effect

import (
	"github.com/goscan/goscan/internal/ident"
	"github.com/goscan/goscan/internal/srcloc"
)

// CallGraphEdge is one directed, SrcLoc-labelled call-graph edge.
type CallGraphEdge struct {
	Caller ident.CanonicalPath
	Callee ident.CanonicalPath
	Loc    srcloc.SrcLoc
}

// ScanResults is the aggregate output of scanning a package: effect
// instances, effect blocks, unsafe trait declarations/impls, the public
// function set, a fn-name to location map, the call graph, the
// node-index map, and the LoC trackers. The node-index map is kept in
// bijection with the call-graph node set; edges are added only when
// both endpoints have already been declared (function declarations may
// textually follow calls to them).
type ScanResults struct {
	Effects      []EffectInstance
	EffectBlocks []EffectBlock
	UnsafeTraits []TraitDec
	UnsafeImpls  []TraitImpl
	PubFns       map[string]ident.CanonicalPath
	FnLocs       map[string]srcloc.SrcLoc

	nodeIdxs map[string]int
	nodes    []ident.CanonicalPath
	Edges    []CallGraphEdge

	TotalLoC               LoCTracker
	SkippedMacros          LoCTracker
	SkippedConditionalCode LoCTracker
	SkippedFnCalls         LoCTracker
	SkippedOther           LoCTracker
}

// NewScanResults returns an empty ScanResults ready to receive one scan.
func NewScanResults() *ScanResults {
	return &ScanResults{
		PubFns:   make(map[string]ident.CanonicalPath),
		FnLocs:   make(map[string]srcloc.SrcLoc),
		nodeIdxs: make(map[string]int),
	}
}

// AddFnDec registers a function declaration: allocates its call-graph
// node (if not already present), records its source location, and adds
// it to the public-function set when exported.
func (r *ScanResults) AddFnDec(fd FnDec) {
	key := fd.FnName.String()
	r.FnLocs[key] = fd.SignatureLoc
	if fd.Visibility == Public {
		r.PubFns[key] = fd.FnName
	}
	r.addNode(fd.FnName)
}

func (r *ScanResults) addNode(p ident.CanonicalPath) {
	key := p.String()
	if _, ok := r.nodeIdxs[key]; ok {
		return
	}
	r.nodeIdxs[key] = len(r.nodes)
	r.nodes = append(r.nodes, p)
}

// HasNode reports whether a canonical path has a call-graph node.
func (r *ScanResults) HasNode(p ident.CanonicalPath) bool {
	_, ok := r.nodeIdxs[p.String()]
	return ok
}

// AddEdge adds a call-graph edge iff both endpoints already have nodes,
// matching the source's opportunistic-edge discipline. Returns whether
// the edge was added.
func (r *ScanResults) AddEdge(caller, callee ident.CanonicalPath, loc srcloc.SrcLoc) bool {
	if !r.HasNode(caller) || !r.HasNode(callee) {
		return false
	}
	r.Edges = append(r.Edges, CallGraphEdge{Caller: caller, Callee: callee, Loc: loc})
	return true
}

// NodeIdxs returns the canonical-path-to-index map backing the call
// graph. Callers must not mutate the returned map.
func (r *ScanResults) NodeIdxs() map[string]int {
	return r.nodeIdxs
}

// Nodes returns every registered call-graph node, in registration order.
func (r *ScanResults) Nodes() []ident.CanonicalPath {
	return r.nodes
}

// GetCallers returns every caller with an edge into callee.
func (r *ScanResults) GetCallers(callee ident.CanonicalPath) []ident.CanonicalPath {
	var out []ident.CanonicalPath
	calleeKey := callee.String()
	for _, e := range r.Edges {
		if e.Callee.String() == calleeKey {
			out = append(out, e.Caller)
		}
	}
	return out
}

// UnsafeEffectBlocksSet returns the set of containing-function names
// that own at least one UnsafeFn or UnsafeExpr effect block.
func (r *ScanResults) UnsafeEffectBlocksSet() map[string]struct{} {
	out := make(map[string]struct{})
	for _, b := range r.EffectBlocks {
		if b.Kind == UnsafeFn || b.Kind == UnsafeExpr {
			out[b.ContainingFn.FnName.String()] = struct{}{}
		}
	}
	return out
}

// AddEffectBlock appends a completed effect block and its effects to the
// aggregate results.
func (r *ScanResults) AddEffectBlock(b EffectBlock) {
	r.EffectBlocks = append(r.EffectBlocks, b)
	r.Effects = append(r.Effects, b.Effects...)
}

// Merge folds another partition's results into r, for the parallel scan
// strategy described in the concurrency model: partition by file,
// scan independently, merge. Effects, blocks, and LoC trackers are
// additive; call-graph nodes are unioned; edges go through AddEdge after
// other's nodes are added, so every edge other holds is kept. An edge a
// partition dropped because one endpoint was declared only in another
// partition is not recovered by the merge.
func (r *ScanResults) Merge(other *ScanResults) {
	r.Effects = append(r.Effects, other.Effects...)
	r.EffectBlocks = append(r.EffectBlocks, other.EffectBlocks...)
	r.UnsafeTraits = append(r.UnsafeTraits, other.UnsafeTraits...)
	r.UnsafeImpls = append(r.UnsafeImpls, other.UnsafeImpls...)
	for k, v := range other.PubFns {
		r.PubFns[k] = v
	}
	for k, v := range other.FnLocs {
		r.FnLocs[k] = v
	}
	for _, n := range other.nodes {
		r.addNode(n)
	}
	for _, e := range other.Edges {
		r.AddEdge(e.Caller, e.Callee, e.Loc)
	}
	r.TotalLoC.instances += other.TotalLoC.instances
	r.TotalLoC.lines += other.TotalLoC.lines
	r.TotalLoC.zeroSizeLines += other.TotalLoC.zeroSizeLines
	r.SkippedMacros.instances += other.SkippedMacros.instances
	r.SkippedMacros.lines += other.SkippedMacros.lines
	r.SkippedConditionalCode.instances += other.SkippedConditionalCode.instances
	r.SkippedConditionalCode.lines += other.SkippedConditionalCode.lines
	r.SkippedFnCalls.instances += other.SkippedFnCalls.instances
	r.SkippedFnCalls.lines += other.SkippedFnCalls.lines
	r.SkippedOther.instances += other.SkippedOther.instances
	r.SkippedOther.lines += other.SkippedOther.lines
}
