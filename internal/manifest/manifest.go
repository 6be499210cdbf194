// Package manifest extracts the declared minimum toolchain version from a
// project's go.mod file. Only the parts gomsv needs are read: the go
// directive, with the toolchain directive as a fallback.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/harrison/gomsv/internal/version"
)

// ErrNoManifest indicates the project directory has no go.mod file.
var ErrNoManifest = errors.New("manifest: no go.mod found")

// Manifest holds the values from a go.mod file relevant to gomsv.
type Manifest struct {
	minimum *version.Bare
}

// MinimumVersion returns the declared minimum toolchain version, if any.
func (m *Manifest) MinimumVersion() (version.Bare, bool) {
	if m.minimum == nil {
		return version.Bare{}, false
	}
	return *m.minimum, true
}

// Load reads the go.mod in the given project directory and extracts the
// declared minimum toolchain version. The go directive is the standard key;
// when absent, the toolchain directive (stripped of its "go" prefix) is the
// fallback. A manifest with neither yields a Manifest without a minimum.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "go.mod")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}

	return Parse(path, data)
}

// Parse parses go.mod contents. The path is used in error messages only.
func Parse(path string, data []byte) (*Manifest, error) {
	file, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}

	raw, ok := declaredVersion(file)
	if !ok {
		return &Manifest{}, nil
	}

	bare, err := version.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}

	return &Manifest{minimum: &bare}, nil
}

// declaredVersion picks the declared version string out of the parsed file:
// the go directive first, the toolchain directive as fallback.
func declaredVersion(file *modfile.File) (string, bool) {
	if file.Go != nil && file.Go.Version != "" {
		return file.Go.Version, true
	}

	if file.Toolchain != nil && file.Toolchain.Name != "" {
		name := strings.TrimPrefix(file.Toolchain.Name, "go")
		if name != "" && name != file.Toolchain.Name {
			return name, true
		}
	}

	return "", false
}
