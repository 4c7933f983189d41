package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goscan/goscan/internal/ident"
	"github.com/goscan/goscan/internal/srcloc"
)

func TestEffectSubject(t *testing.T) {
	callee := ident.New("os::exec::Command")
	call := NewCall(callee, nil, false, nil)
	assert.True(t, call.Subject().Equal(callee))

	target := ident.New("mypkg::counter")
	raw := NewRawPointer(target)
	assert.True(t, raw.Subject().Equal(target))
}

func TestNewInstanceKeepsCalleeInSyncWithSubject(t *testing.T) {
	caller := ident.New("mypkg::Foo")
	target := ident.New("mypkg::counter")
	loc := srcloc.SrcLoc{File: "f.go", StartLine: 1, EndLine: 1}
	inst := NewInstance(caller, loc, NewStaticMut(target))
	assert.True(t, inst.Callee.Equal(target))
	assert.True(t, inst.Caller.Equal(caller))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Call", KindCall.String())
	assert.Equal(t, "UnionField", KindUnionField.String())
}

func TestBlockTypeString(t *testing.T) {
	assert.Equal(t, "NormalFn", NormalFn.String())
	assert.Equal(t, "UnsafeFn", UnsafeFn.String())
	assert.Equal(t, "UnsafeExpr", UnsafeExpr.String())
}
