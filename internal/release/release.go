// Package release models the catalog of released Go toolchains that gomsv
// searches. A catalog is an ordered, deduplicated set of concrete releases,
// narrowed by bounds and patch-collapsing before the search runs.
package release

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/harrison/gomsv/internal/version"
)

// ErrNoCandidatesInRange indicates bounds filtering left no release to search.
var ErrNoCandidatesInRange = errors.New("release: no candidate releases within the requested range")

// Channel identifies the release channel a toolchain was published on.
// Only stable releases are ever search candidates.
type Channel int

const (
	// Stable is a regular released toolchain.
	Stable Channel = iota
	// Beta is a pre-release beta toolchain.
	Beta
	// RC is a pre-release release-candidate toolchain.
	RC
)

// String returns the lowercase channel name.
func (c Channel) String() string {
	switch c {
	case Stable:
		return "stable"
	case Beta:
		return "beta"
	case RC:
		return "rc"
	default:
		return "unknown"
	}
}

// Release is a concrete released toolchain version. Immutable; produced by
// the release index.
type Release struct {
	// Version is the concrete semantic version of the release.
	Version *semver.Version

	// Channel is the release channel the version was published on.
	Channel Channel
}

// String renders the release version.
func (r Release) String() string {
	return r.Version.String()
}

// Catalog is an ordered sequence of unique releases, sorted descending
// (newest first). Built once per run from the release index.
type Catalog struct {
	releases []Release
}

// NewCatalog deduplicates the given releases by version and sorts them
// descending. The input order does not matter.
func NewCatalog(releases []Release) *Catalog {
	seen := make(map[string]struct{}, len(releases))
	unique := make([]Release, 0, len(releases))

	for _, r := range releases {
		key := r.Version.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Version.GreaterThan(unique[j].Version)
	})

	return &Catalog{releases: unique}
}

// Len returns the number of releases in the catalog.
func (c *Catalog) Len() int {
	return len(c.releases)
}

// Releases returns the releases in descending order (newest first).
// The returned slice must not be modified.
func (c *Catalog) Releases() []Release {
	return c.releases
}

// Ascending returns the releases in ascending order (oldest first). This is
// the candidate order the search algorithms operate on.
func (c *Catalog) Ascending() []Release {
	out := make([]Release, len(c.releases))
	for i, r := range c.releases {
		out[len(c.releases)-1-i] = r
	}
	return out
}

// Stable returns a catalog holding only stable-channel releases.
func (c *Catalog) Stable() *Catalog {
	kept := make([]Release, 0, len(c.releases))
	for _, r := range c.releases {
		if r.Channel == Stable {
			kept = append(kept, r)
		}
	}
	return &Catalog{releases: kept}
}

// Bounds narrows a catalog to an inclusive version range. Nil bounds are
// open. Comparison uses ordinary semantic-version ordering (an absent patch
// compares as zero), not tilde matching.
type Bounds struct {
	// Min is the inclusive lower bound, if any.
	Min *version.Bare

	// Max is the inclusive upper bound, if any.
	Max *version.Bare
}

// Filter returns a catalog with releases strictly below Min or strictly
// above Max removed.
func (c *Catalog) Filter(b Bounds) *Catalog {
	kept := make([]Release, 0, len(c.releases))
	for _, r := range c.releases {
		if b.Min != nil && b.Min.CompareVersion(r.Version) > 0 {
			continue
		}
		if b.Max != nil && b.Max.CompareVersion(r.Version) < 0 {
			continue
		}
		kept = append(kept, r)
	}
	return &Catalog{releases: kept}
}

// LatestPatches collapses each major.minor line to its highest patch
// release. Used when not every patch release should be a search candidate.
func (c *Catalog) LatestPatches() *Catalog {
	seen := make(map[[2]uint64]struct{}, len(c.releases))
	kept := make([]Release, 0, len(c.releases))

	// Descending order guarantees the first release seen per line is its
	// highest patch.
	for _, r := range c.releases {
		line := [2]uint64{r.Version.Major(), r.Version.Minor()}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		kept = append(kept, r)
	}

	return &Catalog{releases: kept}
}

// NoMatchError reports that no catalog release satisfies a bare version
// requirement. It carries the full list of available versions for diagnosis.
type NoMatchError struct {
	// Requirement is the bare version that failed to resolve.
	Requirement version.Bare

	// Available are the versions that were considered.
	Available []*semver.Version
}

// Error renders the requirement and the versions it was checked against.
func (e *NoMatchError) Error() string {
	versions := make([]string, len(e.Available))
	for i, v := range e.Available {
		versions[i] = v.String()
	}
	return fmt.Sprintf("release: no release matches requirement ~%s (available: %s)",
		e.Requirement, strings.Join(versions, ", "))
}

// Resolve matches a bare version against the catalog using tilde semantics
// and returns the first release, in catalog (descending) order, that
// satisfies it. With a descending catalog this is the highest acceptable
// patch in the requirement's major.minor line.
func (c *Catalog) Resolve(bare version.Bare) (Release, error) {
	constraint := bare.Constraint()

	for _, r := range c.releases {
		if constraint.Check(r.Version) {
			return r, nil
		}
	}

	available := make([]*semver.Version, len(c.releases))
	for i, r := range c.releases {
		available[i] = r.Version
	}

	return Release{}, &NoMatchError{Requirement: bare, Available: available}
}
