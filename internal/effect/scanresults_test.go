package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goscan/goscan/internal/ident"
	"github.com/goscan/goscan/internal/srcloc"
)

func fn(name string, vis Visibility) FnDec {
	return FnDec{File: "f.go", SignatureLoc: srcloc.SrcLoc{File: "f.go", StartLine: 1, EndLine: 1}, FnName: ident.New(name), Visibility: vis}
}

func TestAddEdgeOnlyWhenBothNodesExist(t *testing.T) {
	r := NewScanResults()
	r.AddFnDec(fn("pkg::Foo", Other))

	loc := srcloc.SrcLoc{File: "f.go", StartLine: 2, EndLine: 2}
	assert.False(t, r.AddEdge(ident.New("pkg::Foo"), ident.New("pkg::Bar"), loc), "callee not yet declared")

	r.AddFnDec(fn("pkg::Bar", Other))
	assert.True(t, r.AddEdge(ident.New("pkg::Foo"), ident.New("pkg::Bar"), loc))
	assert.Len(t, r.Edges, 1)
}

func TestPubFnsOnlyTracksExported(t *testing.T) {
	r := NewScanResults()
	r.AddFnDec(fn("pkg::Foo", Public))
	r.AddFnDec(fn("pkg::bar", Other))

	assert.Contains(t, r.PubFns, "pkg::Foo")
	assert.NotContains(t, r.PubFns, "pkg::bar")
}

func TestUnsafeEffectBlocksSet(t *testing.T) {
	r := NewScanResults()
	loc := srcloc.SrcLoc{File: "f.go", StartLine: 1, EndLine: 3}
	r.AddEffectBlock(EffectBlock{Kind: UnsafeFn, Loc: loc, ContainingFn: fn("pkg::Foo", Other)})
	r.AddEffectBlock(EffectBlock{Kind: NormalFn, Loc: loc, ContainingFn: fn("pkg::Bar", Other)})

	set := r.UnsafeEffectBlocksSet()
	assert.Contains(t, set, "pkg::Foo")
	assert.NotContains(t, set, "pkg::Bar")
}

func TestMergeIsAdditiveAndRevalidatesEdges(t *testing.T) {
	a := NewScanResults()
	a.AddFnDec(fn("pkg::Foo", Other))

	b := NewScanResults()
	b.AddFnDec(fn("pkg::Bar", Other))
	loc := srcloc.SrcLoc{File: "f.go", StartLine: 5, EndLine: 5}
	// Foo isn't declared in b's partition, so this edge can't be added yet.
	assert.False(t, b.AddEdge(ident.New("pkg::Foo"), ident.New("pkg::Bar"), loc))

	a.Merge(b)
	assert.True(t, a.HasNode(ident.New("pkg::Bar")))
	// Merge doesn't retroactively add edges dropped by a sub-scan; callers
	// must add edges after all partitions are merged if cross-partition
	// edges are needed.
	assert.Len(t, a.Edges, 0)
}

func TestLoCTrackerZeroSizeSpansDontCountAsLines(t *testing.T) {
	var tr LoCTracker
	tr.Add(srcloc.SrcLoc{File: "f.go", StartLine: 3, EndLine: 3})
	tr.Add(srcloc.SrcLoc{File: "f.go", StartLine: 5, EndLine: 7})
	tr.Add(srcloc.SrcLoc{File: "f.go", StartLine: 9, EndLine: 8}) // zero-size span
	assert.Equal(t, 3, tr.Instances())
	assert.Equal(t, 1+3, tr.AsLoC())
	assert.False(t, tr.IsEmpty())
}
