package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndString(t *testing.T) {
	p := New("os::exec::Command")
	assert.Equal(t, "os::exec::Command", p.String())
	assert.Equal(t, []string{"os", "exec", "Command"}, p.Segments())
}

func TestNewEmpty(t *testing.T) {
	p := New("")
	assert.True(t, p.IsZero())
	assert.Equal(t, "", p.String())
}

func TestJoinSkipsEmptySegments(t *testing.T) {
	p := Join("os", "", "exec")
	assert.Equal(t, "os::exec", p.String())
}

func TestPopIdent(t *testing.T) {
	p := New("os::exec::Command")
	assert.Equal(t, "os::exec", p.PopIdent().String())
	assert.Equal(t, "os", p.PopIdent().PopIdent().String())
	assert.True(t, p.PopIdent().PopIdent().PopIdent().IsZero())
}

func TestLastIdent(t *testing.T) {
	assert.Equal(t, "Command", New("os::exec::Command").LastIdent())
	assert.Equal(t, "", New("").LastIdent())
}

func TestHasPrefix(t *testing.T) {
	p := New("os::exec::Command")
	assert.True(t, p.HasPrefix(New("os::exec")))
	assert.True(t, p.HasPrefix(New("os::exec::Command")))
	assert.False(t, p.HasPrefix(New("os::exec::Command::Run")))
	assert.False(t, p.HasPrefix(New("net")))
}

func TestEqual(t *testing.T) {
	assert.True(t, New("a::b").Equal(New("a::b")))
	assert.False(t, New("a::b").Equal(New("a::c")))
	assert.False(t, New("a::b").Equal(New("a::b::c")))
}

func TestFnCallConstructors(t *testing.T) {
	fc := NewFnCall(New("foo::bar"), "1, 2")
	assert.Equal(t, "foo::bar", fc.FnPath.String())
	assert.Equal(t, "1, 2", fc.Args)

	all := NewFnCallAll(New("foo::bar"))
	assert.Equal(t, "", all.Args)
}
