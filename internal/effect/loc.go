package effect

import "github.com/goscan/goscan/internal/srcloc"

// LoCTracker aggregates line spans across skipped or seen constructs, for
// reporting scan coverage. Ported from the source scanner's LoCTracker:
// it counts both the number of spans added and the number of source
// lines they cover, tracking zero-size spans separately since they
// would otherwise silently inflate instance counts without adding lines.
type LoCTracker struct {
	instances     int
	lines         int
	zeroSizeLines int
}

// Add records one more span.
func (t *LoCTracker) Add(loc srcloc.SrcLoc) {
	n := loc.Lines()
	t.instances++
	if n == 0 {
		t.zeroSizeLines++
		return
	}
	t.lines += n
}

// IsEmpty reports whether no spans have been recorded.
func (t *LoCTracker) IsEmpty() bool {
	return t.instances == 0
}

// AsLoC returns the total line count recorded (excluding zero-size
// spans, which are tracked but never contribute lines).
func (t *LoCTracker) AsLoC() int {
	return t.lines
}

// Instances returns the number of spans recorded, including zero-size
// ones.
func (t *LoCTracker) Instances() int {
	return t.instances
}
