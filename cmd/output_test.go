package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	first := uniquePath(dir, "run.report", ".json")
	assert.Equal(t, filepath.Join(dir, "run.report.json"), first)

	require.NoError(t, os.WriteFile(first, []byte("{}"), 0o644))
	second := uniquePath(dir, "run.report", ".json")
	assert.Equal(t, filepath.Join(dir, "run.report__2.json"), second)

	require.NoError(t, os.WriteFile(second, []byte("{}"), 0o644))
	assert.Equal(t, filepath.Join(dir, "run.report__3.json"), uniquePath(dir, "run.report", ".json"))
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, ".json", formatExt(""))
	assert.Equal(t, ".yaml", formatExt("YAML"))
	assert.Equal(t, ".txt", formatExt("text"))
}

func TestExpandInputsDedupesAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("1 2\n"), 0o644))
	}
	files, err := expandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, files)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "******", mask("abc"))
	assert.Equal(t, "sk-****xyz", mask("sk-secretxyz"))
}
