package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goscan/goscan/internal/ident"
)

func TestSinkMatchIsPrefix(t *testing.T) {
	s := New(ident.New("os::exec"), "subprocess execution")
	assert.True(t, s.Match(ident.New("os::exec::Command")))
	assert.True(t, s.Match(ident.New("os::exec")))
	assert.False(t, s.Match(ident.New("os::exec2")))
	assert.False(t, s.Match(ident.New("net")))
}

func TestSetMatchReturnsFirst(t *testing.T) {
	set := NewSet(
		New(ident.New("os"), "first"),
		New(ident.New("os::exec"), "second"),
	)
	m := set.Match(ident.New("os::exec::Command"))
	if assert.NotNil(t, m) {
		assert.Equal(t, "os", m.String())
	}
}

func TestSetMatchNoneFound(t *testing.T) {
	set := NewSet(New(ident.New("os"), "reason"))
	assert.Nil(t, set.Match(ident.New("net::Dial")))
}

func TestBuiltinSinksCoverDangerousSurface(t *testing.T) {
	set := BuiltinSinks()
	// Paths mirror what resolver.objectPath actually emits for a
	// resolved callee: the import path keeps its slash as one segment,
	// and a method is "<pkgPath>::<Receiver>.<Name>".
	cases := []string{
		"os/exec::Command",
		"os::RemoveAll",
		"syscall::Syscall",
		"net/http::Get",
		"unsafe::Pointer",
		"C::free",
		"database/sql::DB.Exec",
	}
	for _, c := range cases {
		assert.NotNilf(t, set.Match(ident.New(c)), "expected a sink match for %s", c)
	}
	assert.Nil(t, set.Match(ident.New("fmt::Println")))
}
