// Package sink holds the registry of callee paths treated as inherently
// dangerous: edges into a sink always carry a requirement once marked
// "of interest" in the policy lookup index.
package sink

import "github.com/goscan/goscan/internal/ident"

// Sink is a dangerous-callee pattern. Match semantics: exact path
// equality, or a prefix match against Path (Path="os::exec" matches
// "os::exec::Command").
type Sink struct {
	Path   ident.CanonicalPath
	Reason string
}

// New builds a Sink pattern.
func New(path ident.CanonicalPath, reason string) Sink {
	return Sink{Path: path, Reason: reason}
}

// Match reports whether callee matches this sink pattern.
func (s Sink) Match(callee ident.CanonicalPath) bool {
	return callee.HasPrefix(s.Path)
}

// Set is an ordered collection of sink patterns the scanner checks a
// resolved callee against when producing a Call effect.
type Set struct {
	sinks []Sink
}

// NewSet builds a Set from the given sinks, in the order given. A scan
// may extend the built-in set with caller-supplied sinks before the
// walk begins.
func NewSet(sinks ...Sink) *Set {
	s := &Set{}
	s.sinks = append(s.sinks, sinks...)
	return s
}

// Add appends a sink to the set.
func (s *Set) Add(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// Match returns the first sink pattern that matches callee, or nil.
func (s *Set) Match(callee ident.CanonicalPath) *ident.CanonicalPath {
	for _, sink := range s.sinks {
		if sink.Match(callee) {
			p := sink.Path
			return &p
		}
	}
	return nil
}

// All returns every registered sink pattern.
func (s *Set) All() []Sink {
	return s.sinks
}

// BuiltinSinks returns the default sink set for Go source: the standard
// library's and runtime's dangerous-call surface, grounded on gosec's
// rule table (subprocess execution, raw filesystem mutation, process
// control, unsafe/reflect escape hatches, FFI, and raw SQL).
//
// Paths follow resolver.objectPath's convention, not a naive per-path-
// element split: an import path's slash stays inside one segment
// ("os/exec", not "os::exec"), and a method path is
// "<pkgPath>::<Receiver>.<Name>".
func BuiltinSinks() *Set {
	return NewSet(
		New(ident.New("os/exec::Command"), "subprocess execution"),
		New(ident.New("os/exec::CommandContext"), "subprocess execution"),
		New(ident.New("os::Remove"), "filesystem mutation"),
		New(ident.New("os::RemoveAll"), "filesystem mutation"),
		New(ident.New("os::WriteFile"), "filesystem mutation"),
		New(ident.New("os::Setenv"), "process environment mutation"),
		New(ident.New("os::Exit"), "process control"),
		New(ident.New("os::StartProcess"), "process control"),
		New(ident.New("syscall"), "raw syscall"),
		New(ident.New("net::Dial"), "outbound network"),
		New(ident.New("net::DialContext"), "outbound network"),
		New(ident.New("net/http::Get"), "outbound network"),
		New(ident.New("net/http::Post"), "outbound network"),
		New(ident.New("unsafe"), "raw memory escape hatch"),
		New(ident.New("reflect"), "reflective escape hatch"),
		New(ident.New("C"), "foreign function interface"),
		New(ident.New("database/sql::DB.Exec"), "raw SQL execution"),
		New(ident.New("database/sql::DB.Query"), "raw SQL execution"),
	)
}
