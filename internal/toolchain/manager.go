// Package toolchain manages installed Go toolchains for gomsv.
//
// Toolchains are installed through the golang.org/dl version shims: the shim
// binary is built into the store's bin directory, and `go<version> download`
// unpacks the SDK under $HOME/sdk, the location shared with every other tool
// that follows the golang.org/dl convention. Installs are idempotent and
// never rolled back; an installed SDK is a cache for later runs.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/harrison/gomsv/internal/filelock"
	"github.com/harrison/gomsv/internal/release"
)

// ErrInstallFailed indicates a toolchain could not be installed. This is an
// infrastructure failure, fatal to the run, and is never treated as a
// failing check.
var ErrInstallFailed = errors.New("toolchain: install failed")

// Manager is the capability surface the checker needs from a toolchain
// manager: idempotent installation and command execution under a specific
// toolchain version.
type Manager interface {
	// EnsureInstalled makes the toolchain for rel available, doing nothing
	// if it already is.
	EnsureInstalled(ctx context.Context, rel release.Release) error

	// Run executes argv in dir under the toolchain for rel, returning the
	// combined output. A nonzero exit is returned as an *exec.ExitError.
	Run(ctx context.Context, rel release.Release, dir string, argv []string) (string, error)
}

// DLManager installs and runs toolchains via golang.org/dl shims.
type DLManager struct {
	storeDir string
	sdkDir   string
}

// NewDLManager creates a manager using storeDir for shim binaries and the
// install lock. SDKs unpack under $HOME/sdk per the golang.org/dl
// convention.
func NewDLManager(storeDir string) (*DLManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("toolchain: resolve home directory: %w", err)
	}

	return &DLManager{
		storeDir: storeDir,
		sdkDir:   filepath.Join(home, "sdk"),
	}, nil
}

// ReleaseName returns the golang.org/dl name for a release: "go1.21.5",
// "go1.22rc1", or "go1.20" for pre-1.21 lines whose first release carried no
// patch component.
func ReleaseName(rel release.Release) string {
	v := rel.Version

	if pre := v.Prerelease(); pre != "" {
		return fmt.Sprintf("go%d.%d%s", v.Major(), v.Minor(), pre)
	}

	// Until Go 1.21, the first release of a line was published without the
	// ".0" patch component.
	if v.Patch() == 0 && v.Major() == 1 && v.Minor() < 21 {
		return fmt.Sprintf("go%d.%d", v.Major(), v.Minor())
	}

	return fmt.Sprintf("go%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// binDir is where shim binaries are installed.
func (m *DLManager) binDir() string {
	return filepath.Join(m.storeDir, "bin")
}

// sdkRoot is where the SDK for rel lives once downloaded.
func (m *DLManager) sdkRoot(rel release.Release) string {
	return filepath.Join(m.sdkDir, ReleaseName(rel))
}

// installed reports whether the SDK for rel is fully unpacked. The dl shim
// writes a marker file when a download completes, which distinguishes a
// finished install from an interrupted one.
func (m *DLManager) installed(rel release.Release) bool {
	marker := filepath.Join(m.sdkRoot(rel), ".unpacked-success")
	_, err := os.Stat(marker)
	return err == nil
}

// EnsureInstalled installs the toolchain for rel if it is not already
// present. The store lock serializes installs across processes; install is
// safe to call repeatedly and succeeds immediately when the SDK exists.
func (m *DLManager) EnsureInstalled(ctx context.Context, rel release.Release) error {
	if m.installed(rel) {
		return nil
	}

	if err := os.MkdirAll(m.storeDir, 0755); err != nil {
		return fmt.Errorf("%w: create store: %v", ErrInstallFailed, err)
	}

	lock := filelock.New(filepath.Join(m.storeDir, ".install.lock"))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}
	defer lock.Unlock()

	// Another process may have finished the install while we waited.
	if m.installed(rel) {
		return nil
	}

	name := ReleaseName(rel)

	shim := filepath.Join(m.binDir(), name)
	if _, err := os.Stat(shim); err != nil {
		if err := m.installShim(ctx, name); err != nil {
			return err
		}
	}

	cmd := exec.CommandContext(ctx, shim, "download")
	cmd.Env = append(os.Environ(), "GOTOOLCHAIN=local")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s download: %v\n%s", ErrInstallFailed, name, err, out)
	}

	if !m.installed(rel) {
		return fmt.Errorf("%w: %s downloaded but SDK marker missing in %s", ErrInstallFailed, name, m.sdkRoot(rel))
	}

	return m.recordInstalled(name)
}

// inventoryPath is the store file listing installed release names, one per
// line.
func (m *DLManager) inventoryPath() string {
	return filepath.Join(m.storeDir, "installed.txt")
}

// recordInstalled adds name to the store inventory. The inventory is rewritten
// atomically while the install lock is held, so concurrent runs and an
// interrupted write never leave it half-updated.
func (m *DLManager) recordInstalled(name string) error {
	data, err := os.ReadFile(m.inventoryPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: read store inventory: %v", ErrInstallFailed, err)
	}

	names := strings.Fields(string(data))
	for _, have := range names {
		if have == name {
			return nil
		}
	}
	names = append(names, name)

	if err := filelock.AtomicWrite(m.inventoryPath(), []byte(strings.Join(names, "\n")+"\n")); err != nil {
		return fmt.Errorf("%w: write store inventory: %v", ErrInstallFailed, err)
	}
	return nil
}

// installShim builds the golang.org/dl shim binary into the store.
func (m *DLManager) installShim(ctx context.Context, name string) error {
	cmd := exec.CommandContext(ctx, "go", "install", fmt.Sprintf("golang.org/dl/%s@latest", name))
	cmd.Env = append(os.Environ(),
		"GOBIN="+m.binDir(),
		"GOTOOLCHAIN=local",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: install %s shim: %v\n%s", ErrInstallFailed, name, err, out)
	}
	return nil
}

// Run executes argv in dir with the toolchain for rel first on PATH and
// GOROOT pointed at its SDK. GOTOOLCHAIN is pinned to local so the toolchain
// under test cannot silently substitute a newer one to satisfy go.mod.
func (m *DLManager) Run(ctx context.Context, rel release.Release, dir string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("toolchain: empty command")
	}

	sdk := m.sdkRoot(rel)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = runEnv(os.Environ(), sdk)

	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runEnv rewrites the environment so the SDK's binaries shadow the host
// toolchain.
func runEnv(env []string, sdkRoot string) []string {
	out := make([]string, 0, len(env)+3)

	var path string
	for _, kv := range env {
		switch {
		case hasKey(kv, "PATH"):
			path = kv[len("PATH="):]
			continue
		case hasKey(kv, "GOROOT"):
			continue
		case hasKey(kv, "GOTOOLCHAIN"):
			continue
		default:
			out = append(out, kv)
		}
	}

	sdkBin := filepath.Join(sdkRoot, "bin")
	if path != "" {
		path = sdkBin + string(os.PathListSeparator) + path
	} else {
		path = sdkBin
	}

	out = append(out,
		"PATH="+path,
		"GOROOT="+sdkRoot,
		"GOTOOLCHAIN=local",
	)
	return out
}

func hasKey(kv, key string) bool {
	return len(kv) > len(key) && kv[len(key)] == '=' && kv[:len(key)] == key
}
