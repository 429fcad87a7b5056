package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tqbf/shasync/pkg/fetch"
	"github.com/tqbf/shasync/pkg/verify"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, fetch.DefaultURL, cfg.ManifestURL)
	assert.Equal(t, verify.CatalogPath, cfg.ProbePath)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Equal(t, 0, cfg.Throttle.RPS)
	assert.Len(t, cfg.FetchOptions(), 1)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
manifest_url = "http://mirror.local/manifest.txt"
timeout = "30s"
excludes = ["*.log", "LimbusCompany_Data/Logs/"]

[throttle]
rps = 2
burst = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://mirror.local/manifest.txt", cfg.ManifestURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"*.log", "LimbusCompany_Data/Logs/"}, cfg.Excludes)
	assert.Equal(t, Throttle{RPS: 2, Burst: 4}, cfg.Throttle)
	assert.Equal(t, verify.CatalogPath, cfg.ProbePath)
	assert.Len(t, cfg.FetchOptions(), 2)
}

func TestLoadXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir := filepath.Join(home, "shasync")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.toml"),
		[]byte(`probe_path = "GameAssembly.dll"`),
		0644,
	))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "GameAssembly.dll", cfg.ProbePath)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
manifest_url = "http://mirror.local/manifest.txt"
token = "from-file"
`)
	t.Setenv("SHASYNC_TOKEN", "from-env")
	t.Setenv("SHASYNC_THROTTLE__RPS", "3")
	t.Setenv("SHASYNC_THROTTLE__BURST", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "http://mirror.local/manifest.txt", cfg.ManifestURL)
	assert.Equal(t, Throttle{RPS: 3, Burst: 1}, cfg.Throttle)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadTOML(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, "manifest_url = \n"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
manifest_url = ""
probe_path = "/etc/passwd"

[throttle]
rps = 5
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	names := map[string]bool{}
	for _, f := range fields {
		names[f.Field] = true
	}
	assert.True(t, names["manifest_url"])
	assert.True(t, names["throttle.burst"])
	assert.True(t, names["probe_path"])
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "manifest_url", envKey("SHASYNC_MANIFEST_URL"))
	assert.Equal(t, "throttle.rps", envKey("SHASYNC_THROTTLE__RPS"))
}
