package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goscan/goscan/internal/effect"
)

// writeModule creates a minimal module (go.mod + one source file) under a
// temp directory and scans it via ScanModule, mirroring how the end-to-end
// scenarios in spec.md §8 build a fixture crate and scan it in one step.
func writeModule(t *testing.T, src string) *effect.ScanResults {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/fixture\n\ngo 1.25.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))

	results, _, _, err := ScanModule(dir, nil)
	require.NoError(t, err)
	return results
}

func TestScanUnionFieldReadVsWrite(t *testing.T) {
	// spec §8's UnionField scenario: a punned field read through
	// unsafe.Pointer is an effect; a write to the same field through the
	// plain typed path is not.
	const src = `package fixture

import "unsafe"

type raw struct{ bits uint64 }
type typed struct{ value float64 }

func Read(r *raw) float64 {
	return (*typed)(unsafe.Pointer(r)).value
}

func Write(t *typed, v float64) {
	t.value = v
}
`
	results := writeModule(t, src)

	var sawUnionRead, sawUnionWrite bool
	for _, inst := range results.Effects {
		if inst.Kind.Kind == effect.KindUnionField {
			switch inst.Caller.LastIdent() {
			case "Read":
				sawUnionRead = true
			case "Write":
				sawUnionWrite = true
			}
		}
	}
	assert.True(t, sawUnionRead, "expected a UnionField effect from the punned read")
	assert.False(t, sawUnionWrite, "a field write emits no UnionField effect")
}

func TestScanDetectsUnsafeFunctionAndCallSite(t *testing.T) {
	// is_unsafe on a Call effect requires both an unsafe-classified
	// callee and an unsafe-scoped call site, mirroring Rust's rule that
	// every call to an unsafe fn sits inside an unsafe block or an
	// unsafe fn itself (see SPEC_FULL.md's language retargeting notes).
	const src = `package fixture

import "unsafe"

func unsafeLen(p *int) uintptr {
	return unsafe.Sizeof(*p)
}

func CallFromUnsafeScope(p *int) uintptr {
	return unsafeLen(p) + unsafe.Sizeof(p)
}

func CallFromSafeScope(p *int) uintptr {
	return unsafeLen(p)
}
`
	results := writeModule(t, src)

	blocksByFn := make(map[string]effect.BlockType)
	for _, b := range results.EffectBlocks {
		blocksByFn[b.ContainingFn.FnName.LastIdent()] = b.Kind
	}
	assert.Equal(t, effect.UnsafeFn, blocksByFn["unsafeLen"])
	assert.Equal(t, effect.UnsafeFn, blocksByFn["CallFromUnsafeScope"])
	assert.Equal(t, effect.NormalFn, blocksByFn["CallFromSafeScope"])

	isUnsafeCallFrom := make(map[string]bool)
	for _, inst := range results.Effects {
		if inst.Kind.Kind == effect.KindCall && inst.Callee.LastIdent() == "unsafeLen" {
			isUnsafeCallFrom[inst.Caller.LastIdent()] = inst.Kind.IsUnsafe
		}
	}
	assert.True(t, isUnsafeCallFrom["CallFromUnsafeScope"], "calling an unsafe fn from an unsafe scope is unsafe")
	assert.False(t, isUnsafeCallFrom["CallFromSafeScope"], "calling an unsafe fn from a safe scope carries no unsafe-scope context")
}

func TestScanBuildsCallGraphEdgeBetweenDeclaredFunctions(t *testing.T) {
	const src = `package fixture

func Helper() int { return 1 }

func Caller() int { return Helper() }
`
	results := writeModule(t, src)

	found := false
	for _, e := range results.Edges {
		if e.Caller.LastIdent() == "Caller" && e.Callee.LastIdent() == "Helper" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestScanSinkMatchOnDangerousCall(t *testing.T) {
	const src = `package fixture

import "os/exec"

func Run() error {
	return exec.Command("ls").Run()
}
`
	results := writeModule(t, src)

	sawSink := false
	for _, inst := range results.Effects {
		if inst.Kind.Kind == effect.KindCall && inst.Kind.SinkMatch != nil {
			sawSink = true
		}
	}
	assert.True(t, sawSink, "os/exec.Command should match the built-in subprocess-execution sink")
}

func TestScanFileInvariantHoldsAcrossFiles(t *testing.T) {
	// ScanFile asserts its own stack-balance invariant at entry and exit;
	// scanning two independent files back-to-back through one Scanner
	// must never panic (spec §7).
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/fixture\n\ngo 1.25.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package fixture\n\nfunc A() int { return 1 }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package fixture\n\nfunc B() int { return A() }\n"), 0o644))

	results, _, _, err := ScanModule(dir, nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
}
