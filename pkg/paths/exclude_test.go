package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileKinds(t *testing.T) {
	cases := []struct {
		glob   string
		kind   patternKind
		prefix string
		suffix string
	}{
		{"Player.log", kindComponent, "", ""},
		{"*.dmp", kindComponent, "", ""},
		{"Logs/", kindComponent, "", ""},
		{"LimbusCompany_Data/Logs", kindPath, "", ""},
		{"LimbusCompany_Data/*.tmp", kindPath, "", ""},
		{"**", kindDoublestar, "", ""},
		{"**/*.dmp", kindDoublestar, "", "*.dmp"},
		{"LimbusCompany_Data/**", kindDoublestar, "LimbusCompany_Data", ""},
		{
			"LimbusCompany_Data/**/*.bundle",
			kindDoublestar, "LimbusCompany_Data", "*.bundle",
		},
		// a second "**" is left to filepath.Match as a plain path glob
		{"a/**/b/**/c", kindPath, "", ""},
	}
	for _, tc := range cases {
		p := compile(tc.glob)
		assert.Equal(t, tc.kind, p.kind, tc.glob)
		assert.Equal(t, tc.prefix, p.prefix, tc.glob)
		assert.Equal(t, tc.suffix, p.suffix, tc.glob)
	}
}

func TestExcludeComponent(t *testing.T) {
	m := NewExcludeMatcher([]string{"Logs/", "*.log"})

	assert.True(t, m.Match("Player.log"))
	assert.True(t, m.Match("LimbusCompany_Data/Logs"))
	assert.True(t, m.Match("LimbusCompany_Data/Logs/output.txt"))
	assert.True(t, m.Match("LimbusCompany_Data/Plugins/x86_64/steam.log"))

	assert.False(t, m.Match("LimbusCompany_Data/globalgamemanagers"))
	assert.False(t, m.Match("LimbusCompany_Data/Logsheet.asset"))
	assert.False(t, m.Match("Player.log.bak"))
}

func TestExcludeComponentSingleChar(t *testing.T) {
	m := NewExcludeMatcher([]string{"level?"})
	assert.True(t, m.Match("LimbusCompany_Data/level0"))
	assert.True(t, m.Match("level9"))
	assert.False(t, m.Match("LimbusCompany_Data/level10"))
	assert.False(t, m.Match("LimbusCompany_Data/sharedassets0.assets"))
}

func TestExcludePath(t *testing.T) {
	m := NewExcludeMatcher([]string{"LimbusCompany_Data/*.tmp"})
	assert.True(t, m.Match("LimbusCompany_Data/update.tmp"))
	assert.False(t, m.Match("LimbusCompany_Data/StreamingAssets/update.tmp"))
	assert.False(t, m.Match("update.tmp"))
}

func TestExcludeDoublestarTail(t *testing.T) {
	m := NewExcludeMatcher([]string{"**/*.dmp"})
	assert.True(t, m.Match("crash.dmp"))
	assert.True(t, m.Match("Crashes/Crash_2025-01-01/crash.dmp"))
	assert.True(t, m.Match("LimbusCompany_Data/Crashes/minidump.dmp"))
	assert.False(t, m.Match("LimbusCompany_Data/crash.dmp.meta"))
}

func TestExcludeDoublestarPrefix(t *testing.T) {
	m := NewExcludeMatcher([]string{"LimbusCompany_Data/StreamingAssets/**"})
	assert.True(t, m.Match("LimbusCompany_Data/StreamingAssets"))
	assert.True(t, m.Match(
		"LimbusCompany_Data/StreamingAssets/aa/catalog.json",
	))
	assert.False(t, m.Match("LimbusCompany_Data/StreamingAssetsOld"))
	assert.False(t, m.Match("LimbusCompany_Data/globalgamemanagers"))
}

func TestExcludeDoublestarBoth(t *testing.T) {
	m := NewExcludeMatcher([]string{"LimbusCompany_Data/**/*.bundle"})
	assert.True(t, m.Match(
		"LimbusCompany_Data/StreamingAssets/aa/StandaloneWindows64/ui.bundle",
	))
	assert.True(t, m.Match("LimbusCompany_Data/ui.bundle"))
	assert.False(t, m.Match("Mods/ui.bundle"))
	assert.False(t, m.Match("LimbusCompany_Data/aa/catalog.json"))
}

func TestExcludeEverything(t *testing.T) {
	m := NewExcludeMatcher([]string{"**"})
	assert.True(t, m.Match("LimbusCompany.exe"))
	assert.True(t, m.Match("LimbusCompany_Data/Managed/empty.bin"))
}

func TestExcludeLauncherArtifacts(t *testing.T) {
	m := NewExcludeMatcher([]string{
		"*.log",
		"LimbusCompany_Data/Logs",
		"**/*.dmp",
		"desktop.ini",
	})
	assert.True(t, m.Match("Player.log"))
	assert.True(t, m.Match("LimbusCompany_Data/Logs"))
	assert.True(t, m.Match("desktop.ini"))
	assert.True(t, m.Match("LimbusCompany_Data/desktop.ini"))
	assert.True(t, m.Match("a/Crashes/dump.dmp"))

	// Generate never descends into an excluded directory, so a
	// whole-path pattern need not match the paths below it.
	assert.False(t, m.Match("LimbusCompany_Data/Logs/output.txt"))

	assert.False(t, m.Match("LimbusCompany.exe"))
	assert.False(t, m.Match("LimbusCompany_Data/globalgamemanagers"))
	assert.False(t, m.Match(
		"LimbusCompany_Data/StreamingAssets/aa/catalog.json",
	))
}

func TestExcludeNone(t *testing.T) {
	m := NewExcludeMatcher(nil)
	assert.False(t, m.Match("LimbusCompany.exe"))
	assert.False(t, m.Match("LimbusCompany_Data/Managed/empty.bin"))
}
