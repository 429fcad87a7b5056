package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRelPathDepotNames(t *testing.T) {
	for _, name := range []string{
		"LimbusCompany.exe",
		"LimbusCompany_Data",
		"LimbusCompany_Data/Managed/Assembly-CSharp.dll",
		"LimbusCompany_Data/StreamingAssets/aa/catalog.json",
		"MonoBleedingEdge/EmbedRuntime/mono-2.0-bdwgc.dll",
		"LimbusCompany_Data/Resources/unity default resources",
		"LimbusCompany_Data/StreamingAssets/한국어.bundle",
		"LimbusCompany_Data/./globalgamemanagers",
		"LimbusCompany_Data/..data/level0",
	} {
		assert.NoError(t, ValidateRelPath(name), name)
	}
}

func TestValidateRelPathRejects(t *testing.T) {
	for _, name := range []string{
		"",
		".",
		"./",
		"..",
		"../LimbusCompany.exe",
		"LimbusCompany_Data/../../outside.dll",
		"/LimbusCompany.exe",
		"LimbusCompany_Data/level0\x00.dll",
	} {
		assert.Error(t, ValidateRelPath(name), "%q", name)
	}
}

func TestValidateRelPathWindowsNames(t *testing.T) {
	for _, name := range []string{
		`C:\Games\LimbusCompany\LimbusCompany.exe`,
		`c:LimbusCompany.exe`,
		"D:/SteamLibrary/LimbusCompany.exe",
		`\Windows\System32\drivers\etc\hosts`,
		`\\server\share\LimbusCompany.exe`,
		`..\LimbusCompany.exe`,
		`LimbusCompany_Data\..\..\outside.dll`,
	} {
		assert.Error(t, ValidateRelPath(name), "%q", name)
	}

	assert.NoError(t, ValidateRelPath(`LimbusCompany_Data\Managed\x.dll`))
	assert.NoError(t, ValidateRelPath("C_Drive/readme.txt"))
}

func TestResolve(t *testing.T) {
	root := filepath.Join("games", "LimbusCompany")

	got, err := Resolve(root, "LimbusCompany_Data/StreamingAssets/aa/catalog.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(
		root, "LimbusCompany_Data", "StreamingAssets", "aa", "catalog.json",
	), got)

	got, err = Resolve(root, "LimbusCompany_Data/./Managed")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "LimbusCompany_Data", "Managed"), got)

	for _, name := range []string{
		"",
		"../LimbusCompany.exe",
		"LimbusCompany_Data/../../outside.dll",
		"/etc/passwd",
		`C:\Windows\win.ini`,
		`..\..\outside.dll`,
	} {
		_, err := Resolve(root, name)
		assert.Error(t, err, "%q", name)
	}
}

func TestIsWithinDir(t *testing.T) {
	root := filepath.Join("games", "LimbusCompany")

	assert.True(t, IsWithinDir(root, root))
	assert.True(t, IsWithinDir(root, filepath.Join(root, "LimbusCompany.exe")))
	assert.True(t, IsWithinDir(
		root+string(filepath.Separator),
		filepath.Join(root, "LimbusCompany_Data", "Managed"),
	))

	assert.False(t, IsWithinDir(root, filepath.Join("games", "Other")))
	assert.False(t, IsWithinDir(root, filepath.Join("games", "LimbusCompany2", "x")))
	assert.False(t, IsWithinDir(root, "games"))
}
