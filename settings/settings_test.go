package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enginetrace.toml")

	require.NoError(t, SaveDefault(path))
	require.Error(t, SaveDefault(path), "existing files are not overwritten")

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)

	path := filepath.Join(dir, "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Occlusion]\nAsync = 2\nJitter = 0.5\n"), 0644))
	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, s.Occlusion.Async)
	require.Equal(t, float32(0.5), s.Occlusion.Jitter)
	require.Equal(t, DefaultSettings().Trace, s.Trace, "missing values keep their defaults")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[Occlusion\n"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
}
