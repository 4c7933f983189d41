package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGoMod(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(contents), 0o644))
}

func TestLoadReadsNameAndVersion(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, "module github.com/example/thing\n\ngo 1.25.0\n")

	data, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "github.com/example/thing", data.Name)
	assert.Equal(t, "0.0.0", data.Version, "go.mod module directives carry no version; default applies")
}

func TestLoadMissingGoModIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadMissingModuleDirectiveIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, "go 1.25.0\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadUnparseableGoModIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, "not a go.mod file {{{\n")

	_, err := Load(dir)
	assert.Error(t, err)
}
