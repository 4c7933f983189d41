// Package ident implements the canonical identifier model shared by the
// scanner and the policy engine: a stable, fully-qualified path for every
// definition, call site, field, method, and foreign symbol.
package ident

import "strings"

// Sep is the canonical path segment separator, matching the policy
// language's textual surface (e.g. "foo::bar::baz").
const Sep = "::"

// CanonicalPath is a dotted fully-qualified identifier. Equality is
// structural: two paths with the same segments are the same identity.
type CanonicalPath struct {
	segments []string
}

// New builds a CanonicalPath from a literal "::"-separated string.
func New(s string) CanonicalPath {
	if s == "" {
		return CanonicalPath{}
	}
	return CanonicalPath{segments: strings.Split(s, Sep)}
}

// Join builds a CanonicalPath from already-split segments.
func Join(segments ...string) CanonicalPath {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return CanonicalPath{segments: out}
}

// String renders the path in its canonical textual form.
func (p CanonicalPath) String() string {
	return strings.Join(p.segments, Sep)
}

// Segments returns the path's components. Callers must not mutate the
// returned slice.
func (p CanonicalPath) Segments() []string {
	return p.segments
}

// IsZero reports whether the path has no segments.
func (p CanonicalPath) IsZero() bool {
	return len(p.segments) == 0
}

// PopIdent drops the trailing segment, returning the parent path. Popping
// an empty or single-segment path returns the zero path.
func (p CanonicalPath) PopIdent() CanonicalPath {
	if len(p.segments) <= 1 {
		return CanonicalPath{}
	}
	out := make([]string, len(p.segments)-1)
	copy(out, p.segments[:len(p.segments)-1])
	return CanonicalPath{segments: out}
}

// LastIdent returns the trailing segment, or "" for the zero path.
func (p CanonicalPath) LastIdent() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// HasPrefix reports whether p starts with the segments of prefix, used by
// sink matching (an exact match or a prefix match against a sink pattern).
func (p CanonicalPath) HasPrefix(prefix CanonicalPath) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i, s := range prefix.segments {
		if p.segments[i] != s {
			return false
		}
	}
	return true
}

// Equal reports structural equality.
func (p CanonicalPath) Equal(other CanonicalPath) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, s := range p.segments {
		if other.segments[i] != s {
			return false
		}
	}
	return true
}

// FnCall pairs a canonical path with a literal argument pattern. args=""
// is the wildcard: it matches any argument shape for region/effect
// narrowing in policy statements.
type FnCall struct {
	FnPath CanonicalPath
	Args   string
}

// NewFnCall builds an FnCall with an explicit argument pattern.
func NewFnCall(path CanonicalPath, args string) FnCall {
	return FnCall{FnPath: path, Args: args}
}

// NewFnCallAll builds an FnCall with the wildcard argument pattern.
func NewFnCallAll(path CanonicalPath) FnCall {
	return FnCall{FnPath: path, Args: ""}
}
