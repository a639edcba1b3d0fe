package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromPathMissingFileReturnsNilConfig(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestShouldIgnoreMatchesGlobPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".pgschemaignore")
	content := `
[tables]
patterns = ["tmp_*", "audit_log"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.True(t, cfg.ShouldIgnore("table", "tmp_sessions"))
	require.True(t, cfg.ShouldIgnore("table", "audit_log"))
	require.False(t, cfg.ShouldIgnore("table", "orders"))
	require.False(t, cfg.ShouldIgnore("view", "tmp_sessions"))
}

func TestShouldIgnoreNegationPatternOverridesMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".pgschemaignore")
	content := `
[tables]
patterns = ["tmp_*", "!tmp_keep"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	require.True(t, cfg.ShouldIgnore("table", "tmp_sessions"))
	require.False(t, cfg.ShouldIgnore("table", "tmp_keep"))
}

func TestShouldIgnoreNilConfigNeverIgnores(t *testing.T) {
	var cfg *Config
	require.False(t, cfg.ShouldIgnore("table", "anything"))
}
