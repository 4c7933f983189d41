// Package policy implements the declarative allow/require/trust
// statement language, its TOML file format, the lookup index built from
// a policy, and the call-graph edge admissibility checker.
//
// Ported from original_source/rust-src/src/policy.rs, retargeted to
// Go's ident.CanonicalPath and serialized with BurntSushi/toml instead
// of the source's toml crate.
package policy

import (
	"fmt"

	"github.com/goscan/goscan/internal/ident"
)

// StatementKind discriminates the Statement tagged union. It serializes
// as a lowercase discriminator string ("allow"/"require"/"trust"),
// matching the policy file format's one-discriminator-field-per-
// statement contract (spec §6).
type StatementKind int

const (
	KindAllow StatementKind = iota
	KindRequire
	KindTrust
)

func (k StatementKind) MarshalText() ([]byte, error) {
	switch k {
	case KindAllow:
		return []byte("allow"), nil
	case KindRequire:
		return []byte("require"), nil
	case KindTrust:
		return []byte("trust"), nil
	default:
		return nil, fmt.Errorf("policy: unknown statement kind %d", k)
	}
}

func (k *StatementKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "allow":
		*k = KindAllow
	case "require":
		*k = KindRequire
	case "trust":
		*k = KindTrust
	default:
		return fmt.Errorf("policy: unknown statement discriminator %q", text)
	}
	return nil
}

// Statement is one policy rule. Trust statements carry only Region;
// Allow/Require carry both Region and Effect.
type Statement struct {
	Kind   StatementKind `toml:"kind"`
	Region FnCallTOML    `toml:"region"`
	Effect FnCallTOML    `toml:"effect"`
}

// FnCallTOML is the TOML-serializable form of ident.FnCall.
type FnCallTOML struct {
	Path string `toml:"path"`
	Args string `toml:"args"`
}

func toTOML(fc ident.FnCall) FnCallTOML {
	return FnCallTOML{Path: fc.FnPath.String(), Args: fc.Args}
}

func fromTOML(t FnCallTOML) ident.FnCall {
	return ident.NewFnCall(ident.New(t.Path), t.Args)
}

// RegionCall returns the statement's region as an ident.FnCall.
func (s Statement) RegionCall() ident.FnCall { return fromTOML(s.Region) }

// EffectCall returns the statement's effect as an ident.FnCall.
func (s Statement) EffectCall() ident.FnCall { return fromTOML(s.Effect) }

// Allow builds an Allow{region, effect} statement.
func Allow(region, effect ident.FnCall) Statement {
	return Statement{Kind: KindAllow, Region: toTOML(region), Effect: toTOML(effect)}
}

// AllowSimple builds an Allow statement with wildcard-args region and
// effect, from literal path strings.
func AllowSimple(region, effect string) Statement {
	return Allow(ident.NewFnCallAll(ident.New(region)), ident.NewFnCallAll(ident.New(effect)))
}

// Require builds a Require{region, effect} statement.
func Require(region, effect ident.FnCall) Statement {
	return Statement{Kind: KindRequire, Region: toTOML(region), Effect: toTOML(effect)}
}

// RequireSimple builds a Require statement with wildcard-args region and
// effect, from literal path strings.
func RequireSimple(region, effect string) Statement {
	return Require(ident.NewFnCallAll(ident.New(region)), ident.NewFnCallAll(ident.New(effect)))
}

// Trust builds a Trust{region} statement.
func Trust(region ident.FnCall) Statement {
	return Statement{Kind: KindTrust, Region: toTOML(region)}
}

// TrustSimple builds a Trust statement with a wildcard-args region.
func TrustSimple(region string) Statement {
	return Trust(ident.NewFnCallAll(ident.New(region)))
}

// String renders the statement in the policy language's normative
// grammar: "allow region effect" / "require region effect" / "trust
// region".
func (s Statement) String() string {
	switch s.Kind {
	case KindAllow:
		return fmt.Sprintf("allow %s %s", fnCallString(s.RegionCall()), fnCallString(s.EffectCall()))
	case KindRequire:
		return fmt.Sprintf("require %s %s", fnCallString(s.RegionCall()), fnCallString(s.EffectCall()))
	case KindTrust:
		return fmt.Sprintf("trust %s", fnCallString(s.RegionCall()))
	default:
		return "<unknown statement>"
	}
}

func fnCallString(fc ident.FnCall) string {
	if fc.Args == "" {
		return fc.FnPath.String()
	}
	return fmt.Sprintf("%s(%s)", fc.FnPath.String(), fc.Args)
}
