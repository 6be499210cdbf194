package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/gomsv/internal/release"
)

func rel(t *testing.T, v string) release.Release {
	t.Helper()
	return release.Release{Version: semver.MustParse(v), Channel: release.Stable}
}

func TestReleaseName(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.21.5", "go1.21.5"},
		{"1.21.0", "go1.21.0"},
		{"1.20.0", "go1.20"},
		{"1.20.1", "go1.20.1"},
		{"1.9.0", "go1.9"},
		{"1.22.0-rc1", "go1.22rc1"},
		{"1.19.0-beta2", "go1.19beta2"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, ReleaseName(rel(t, tt.version)))
		})
	}
}

func TestSDKRootUsesReleaseName(t *testing.T) {
	m := &DLManager{storeDir: "/store", sdkDir: "/home/user/sdk"}

	assert.Equal(t, filepath.Join("/home/user/sdk", "go1.21.5"), m.sdkRoot(rel(t, "1.21.5")))
	assert.Equal(t, filepath.Join("/store", "bin"), m.binDir())
}

func TestInstalledRequiresMarker(t *testing.T) {
	m := &DLManager{storeDir: t.TempDir(), sdkDir: t.TempDir()}

	assert.False(t, m.installed(rel(t, "1.21.5")))
}

func TestRunEnvShadowsHostToolchain(t *testing.T) {
	env := []string{
		"PATH=/usr/bin:/bin",
		"GOROOT=/usr/lib/go",
		"GOTOOLCHAIN=auto",
		"HOME=/home/user",
	}

	got := runEnv(env, "/home/user/sdk/go1.21.5")

	assert.Contains(t, got, "HOME=/home/user")
	assert.Contains(t, got, "GOROOT=/home/user/sdk/go1.21.5")
	assert.Contains(t, got, "GOTOOLCHAIN=local")

	var path string
	for _, kv := range got {
		if strings.HasPrefix(kv, "PATH=") {
			path = kv
		}
	}
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(path, "PATH="+filepath.Join("/home/user/sdk/go1.21.5", "bin")),
		"SDK bin must lead PATH, got %q", path)

	// The host GOROOT and GOTOOLCHAIN must not survive.
	assert.NotContains(t, got, "GOROOT=/usr/lib/go")
	assert.NotContains(t, got, "GOTOOLCHAIN=auto")
}

func TestRecordInstalledInventory(t *testing.T) {
	m := &DLManager{storeDir: t.TempDir(), sdkDir: t.TempDir()}

	require.NoError(t, m.recordInstalled("go1.21.5"))
	require.NoError(t, m.recordInstalled("go1.22.1"))

	// Recording the same name again must not duplicate the entry.
	require.NoError(t, m.recordInstalled("go1.21.5"))

	data, err := os.ReadFile(m.inventoryPath())
	require.NoError(t, err)
	assert.Equal(t, "go1.21.5\ngo1.22.1\n", string(data))

	// The atomic write must not leave temp files behind in the store.
	entries, err := os.ReadDir(m.storeDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "installed.txt", entries[0].Name())
}

func TestRunRejectsEmptyCommand(t *testing.T) {
	m := &DLManager{storeDir: t.TempDir(), sdkDir: t.TempDir()}

	_, err := m.Run(context.Background(), rel(t, "1.21.5"), ".", nil)
	require.Error(t, err)
}
