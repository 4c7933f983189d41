package policy

import "fmt"

// pathSet is a set of canonical path strings, keeping PolicyLookup's
// maps-of-sets shape simple and comparable.
type pathSet map[string]struct{}

func (s pathSet) add(key string) { s[key] = struct{}{} }

func (s pathSet) contains(key string) bool {
	_, ok := s[key]
	return ok
}

// PolicyLookup is the index built from a policy: per-caller allow and
// require sets, keyed by the caller's canonical path string. Built by
// streaming every statement through AddStatement; insertion order does
// not affect the result (spec §8 property 5).
type PolicyLookup struct {
	allowSets   map[string]pathSet
	requireSets map[string]pathSet
}

// Empty returns a PolicyLookup with no entries.
func Empty() *PolicyLookup {
	return &PolicyLookup{allowSets: make(map[string]pathSet), requireSets: make(map[string]pathSet)}
}

// FromPolicy builds a PolicyLookup from every statement in p, in order.
func FromPolicy(p *Policy) *PolicyLookup {
	l := Empty()
	for _, s := range p.Statements {
		l.AddStatement(s)
	}
	return l
}

func (l *PolicyLookup) allowSet(region string) pathSet {
	s, ok := l.allowSets[region]
	if !ok {
		s = make(pathSet)
		l.allowSets[region] = s
	}
	return s
}

func (l *PolicyLookup) requireSet(region string) pathSet {
	s, ok := l.requireSets[region]
	if !ok {
		s = make(pathSet)
		l.requireSets[region] = s
	}
	return s
}

// AddStatement folds one statement into the index:
//   - Allow{r, e}: allow_sets[r] ∪= {e}.
//   - Require{r, e}: require_sets[r] ∪= {e} AND allow_sets[r] ∪= {e} —
//     a requirement implies allowance for the region itself.
//   - Trust{r}: reserved; not implemented (spec §9 open question 1).
func (l *PolicyLookup) AddStatement(s Statement) {
	switch s.Kind {
	case KindAllow:
		region := s.RegionCall().FnPath.String()
		eff := s.EffectCall().FnPath.String()
		l.allowSet(region).add(eff)
	case KindRequire:
		region := s.RegionCall().FnPath.String()
		eff := s.EffectCall().FnPath.String()
		l.requireSet(region).add(eff)
		l.allowSet(region).add(eff)
	case KindTrust:
		// Left unimplemented, matching the source: the statement is
		// parsed and stored in the policy but has no lookup effect yet.
	}
}

// MarkOfInterest registers path as a dangerous callee by inserting it
// into its own require set: require_sets[p] ∪= {p}. This is the
// mechanism by which sinks become self-propagating requirements. Must
// be called for every interesting callee before any edge is checked
// (spec §4.4).
func (l *PolicyLookup) MarkOfInterest(path string) {
	l.requireSet(path).add(path)
}

// IterRequirements returns every element of require_sets[callee], or
// nil if callee has no requirements.
func (l *PolicyLookup) IterRequirements(callee string) []string {
	set, ok := l.requireSets[callee]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func (l *PolicyLookup) allowListContains(caller, req string) (bool, string) {
	set, ok := l.allowSets[caller]
	if !ok {
		return false, fmt.Sprintf("No allow list for function %s with effect %s", caller, req)
	}
	if !set.contains(req) {
		return false, fmt.Sprintf("Allow list for function %s missing effect %s", caller, req)
	}
	return true, ""
}

// CheckEdge validates one call-graph edge's admissibility: every
// requirement on callee must be present in caller's allow set.
// Returns the list of human-readable diagnostics for every unmet
// requirement (empty when the edge is admissible). A callee with no
// requirements always passes at zero cost (spec §4.5).
func (l *PolicyLookup) CheckEdge(caller, callee string) []string {
	var diagnostics []string
	for req := range l.requireSets[callee] {
		if ok, msg := l.allowListContains(caller, req); !ok {
			diagnostics = append(diagnostics, msg)
		}
	}
	return diagnostics
}

// CheckEdgeBool is CheckEdge short-circuited to a boolean: true iff
// every requirement is satisfied.
func (l *PolicyLookup) CheckEdgeBool(caller, callee string) bool {
	for req := range l.requireSets[callee] {
		if ok, _ := l.allowListContains(caller, req); !ok {
			return false
		}
	}
	return true
}
