// Package version implements the bare version model used by gomsv.
//
// A bare version is a toolchain version as declared in a project manifest:
// either major.minor ("1.21") or major.minor.patch ("1.21.3"). It carries no
// resolution against a concrete release catalog; matching a bare version to a
// released toolchain is the catalog's job.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Bare is a two- or three-component version value. The zero value is "0.0".
// Bare values are immutable once parsed.
type Bare struct {
	major    uint64
	minor    uint64
	patch    uint64
	hasPatch bool
}

// NewTwoComponent returns a major.minor bare version.
func NewTwoComponent(major, minor uint64) Bare {
	return Bare{major: major, minor: minor}
}

// NewThreeComponent returns a major.minor.patch bare version.
func NewThreeComponent(major, minor, patch uint64) Bare {
	return Bare{major: major, minor: minor, patch: patch, hasPatch: true}
}

// Parse parses a dot-separated bare version string. Exactly two or three
// numeric components are accepted. A pre-release suffix ("-nightly") on the
// patch component is stripped before parsing; earlier components must be
// plain numbers. Build metadata without a pre-release id ("1.2.3+abc") does
// not parse, matching what a strict manifest reader should accept.
func Parse(s string) (Bare, error) {
	components := strings.Split(s, ".")

	if len(components) > 3 {
		return Bare{}, fmt.Errorf("version %q: unexpected tokens after patch component: %q", s, components[3])
	}
	if len(components) < 2 {
		return Bare{}, fmt.Errorf("version %q: missing minor component", s)
	}

	major, err := parseComponent(s, "major", components[0])
	if err != nil {
		return Bare{}, err
	}

	minor, err := parseComponent(s, "minor", components[1])
	if err != nil {
		return Bare{}, err
	}

	if len(components) == 2 {
		return NewTwoComponent(major, minor), nil
	}

	// Strip a pre-release suffix from the patch component only. "1.2.3-rc1"
	// declares 1.2.3; "1.2-rc1" stays malformed.
	patchToken := components[2]
	if idx := strings.IndexByte(patchToken, '-'); idx >= 0 {
		patchToken = patchToken[:idx]
	}

	patch, err := parseComponent(s, "patch", patchToken)
	if err != nil {
		return Bare{}, err
	}

	return NewThreeComponent(major, minor, patch), nil
}

func parseComponent(version, name, token string) (uint64, error) {
	if token == "" {
		return 0, fmt.Errorf("version %q: missing %s component", version, name)
	}

	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version %q: %s component %q is not an unsigned number", version, name, token)
	}

	return n, nil
}

// Major returns the major component.
func (b Bare) Major() uint64 { return b.major }

// Minor returns the minor component.
func (b Bare) Minor() uint64 { return b.minor }

// Patch returns the patch component and whether one was specified.
// A two-component version never specifies a patch.
func (b Bare) Patch() (uint64, bool) { return b.patch, b.hasPatch }

// String renders the version with exactly the components it carries.
func (b Bare) String() string {
	if b.hasPatch {
		return fmt.Sprintf("%d.%d.%d", b.major, b.minor, b.patch)
	}
	return fmt.Sprintf("%d.%d", b.major, b.minor)
}

// Compare orders two bare versions component-wise. An absent patch compares
// as zero. Returns -1, 0 or 1.
func (b Bare) Compare(other Bare) int {
	if c := compareUint64(b.major, other.major); c != 0 {
		return c
	}
	if c := compareUint64(b.minor, other.minor); c != 0 {
		return c
	}
	return compareUint64(b.patch, other.patch)
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareVersion orders the bare version against a concrete release version
// using ordinary semantic-version ordering (absent patch treated as zero).
// This is the ordering used for bounds filtering, not tilde matching.
func (b Bare) CompareVersion(v *semver.Version) int {
	return b.asSemver().Compare(v)
}

// Constraint returns the tilde requirement this bare version designates:
// ~M.m for two components (any patch in the M.m line), ~M.m.p for three
// (that patch or higher within the M.m line).
func (b Bare) Constraint() *semver.Constraints {
	c, err := semver.NewConstraint("~" + b.String())
	if err != nil {
		// A bare version always renders to a valid tilde range.
		panic(fmt.Sprintf("version: invalid tilde constraint for %q: %v", b, err))
	}
	return c
}

func (b Bare) asSemver() *semver.Version {
	return semver.New(b.major, b.minor, b.patch, "", "")
}
