package policy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/goscan/goscan/internal/ident"
)

// Policy is a serializable record: the module identity it applies to,
// a policy format version, and an ordered list of statements.
type Policy struct {
	ModuleName    string      `toml:"module_name"`
	ModuleVersion string      `toml:"module_version"`
	PolicyVersion string      `toml:"policy_version"`
	Statements    []Statement `toml:"statements"`
}

// New builds an empty policy for the given module identity.
func New(moduleName, moduleVersion, policyVersion string) *Policy {
	return &Policy{ModuleName: moduleName, ModuleVersion: moduleVersion, PolicyVersion: policyVersion}
}

// AddStatement appends one statement, preserving insertion order (order
// does not affect the built lookup index; see PolicyLookup).
func (p *Policy) AddStatement(s Statement) {
	p.Statements = append(p.Statements, s)
}

// AddAllow is a convenience wrapper around AddStatement(Allow(...)).
func (p *Policy) AddAllow(region, effect ident.FnCall) {
	p.AddStatement(Allow(region, effect))
}

// AddRequire is a convenience wrapper around AddStatement(Require(...)).
func (p *Policy) AddRequire(region, effect ident.FnCall) {
	p.AddStatement(Require(region, effect))
}

// AddTrust is a convenience wrapper around AddStatement(Trust(...)).
func (p *Policy) AddTrust(region ident.FnCall) {
	p.AddStatement(Trust(region))
}

// Serialize renders the policy as its TOML text form.
func (p *Policy) Serialize() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return "", fmt.Errorf("policy: serializing: %w", err)
	}
	return buf.String(), nil
}

// Parse decodes a policy from TOML text. This is the counterpart to
// Serialize; parse(serialize(p)) == p for any well-formed policy
// (spec §8 property 3).
func Parse(text string) (*Policy, error) {
	var p Policy
	if _, err := toml.Decode(text, &p); err != nil {
		return nil, fmt.Errorf("policy: parsing: %w", err)
	}
	return &p, nil
}

// FromFile loads a policy from a file, requiring the ".toml" extension
// (spec §4.3: "parsing from file requires the file extension be the
// table-format extension; other extensions fail the load").
func FromFile(path string) (*Policy, error) {
	if filepath.Ext(path) != ".toml" {
		return nil, fmt.Errorf("policy: %s is not a .toml file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: reading %s: %w", path, err)
	}
	return Parse(string(data))
}
