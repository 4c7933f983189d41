package policy

import (
	"github.com/goscan/goscan/internal/effect"
	"github.com/goscan/goscan/internal/ident"
)

// Violation is one inadmissible call-graph edge: the edge itself, its
// source location, and the diagnostics CheckEdge produced.
type Violation struct {
	Caller      ident.CanonicalPath
	Callee      ident.CanonicalPath
	Loc         string
	Diagnostics []string
}

// MarkSinksOfInterest marks every callee that matched a sink pattern
// anywhere in the scan's effects as "of interest", before any edge is
// checked — the
// mechanism spec §4.4 requires for raw sinks to become self-propagating
// requirements. It marks the exact matched callee path recorded on each
// Call effect, not the (possibly broader) sink pattern itself.
func (l *PolicyLookup) MarkSinksOfInterest(results *effect.ScanResults) {
	seen := make(map[string]struct{})
	for _, inst := range results.Effects {
		if inst.Kind.Kind != effect.KindCall || inst.Kind.SinkMatch == nil {
			continue
		}
		key := inst.Callee.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		l.MarkOfInterest(key)
	}
}

// CheckGraph walks every call-graph edge in results and returns the
// edges that fail CheckEdge, with their diagnostics. Edge order does
// not affect the result (spec §4.5, §8 property: edge order
// independence).
func CheckGraph(results *effect.ScanResults, lookup *PolicyLookup) []Violation {
	var violations []Violation
	for _, e := range results.Edges {
		diag := lookup.CheckEdge(e.Caller.String(), e.Callee.String())
		if len(diag) == 0 {
			continue
		}
		violations = append(violations, Violation{
			Caller:      e.Caller,
			Callee:      e.Callee,
			Loc:         e.Loc.String(),
			Diagnostics: diag,
		})
	}
	return violations
}
