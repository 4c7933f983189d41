package callgraph

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

func loadFixture(t *testing.T, src string) []*packages.Package {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/fixture\n\ngo 1.25.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedTypesSizes,
		Dir:  dir,
		Fset: token.NewFileSet(),
	}
	pkgs, err := packages.Load(cfg, "./...")
	require.NoError(t, err)
	return pkgs
}

func TestBuildResolvesInterfaceDispatch(t *testing.T) {
	const src = `package fixture

type Greeter interface {
	Greet() string
}

type English struct{}

func (English) Greet() string { return "hello" }

func Run(g Greeter) string {
	return g.Greet()
}

func Main() string {
	return Run(English{})
}
`
	pkgs := loadFixture(t, src)
	edges := Build(pkgs)
	require.NotEmpty(t, edges)

	var sawGreetCallee bool
	for _, e := range edges {
		if e.Callee.LastIdent() == "English.Greet" {
			sawGreetCallee = true
		}
	}
	assert.True(t, sawGreetCallee, "VTA should resolve Run's interface call down to English.Greet")
}

func TestBuildSkipsSyntheticAndUnknownPackageNodes(t *testing.T) {
	const src = `package fixture

func Plain() int { return 1 }
`
	pkgs := loadFixture(t, src)
	edges := Build(pkgs)
	for _, e := range edges {
		assert.NotContains(t, e.Caller.String(), "$")
		assert.NotContains(t, e.Callee.String(), "$")
	}
}
