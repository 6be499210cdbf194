package release

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/gomsv/internal/version"
)

func stable(t *testing.T, versions ...string) []Release {
	t.Helper()

	releases := make([]Release, len(versions))
	for i, v := range versions {
		releases[i] = Release{Version: semver.MustParse(v), Channel: Stable}
	}
	return releases
}

func catalogVersions(c *Catalog) []string {
	out := make([]string, 0, c.Len())
	for _, r := range c.Releases() {
		out = append(out, r.Version.String())
	}
	return out
}

func TestNewCatalogDeduplicatesAndSortsDescending(t *testing.T) {
	c := NewCatalog(stable(t, "1.54.1", "1.55.0", "1.54.1", "1.0.0", "1.54.2"))

	assert.Equal(t, []string{"1.55.0", "1.54.2", "1.54.1", "1.0.0"}, catalogVersions(c))
}

func TestAscendingReversesOrder(t *testing.T) {
	c := NewCatalog(stable(t, "1.54.0", "1.55.0", "1.0.0"))

	asc := c.Ascending()
	require.Len(t, asc, 3)
	assert.Equal(t, "1.0.0", asc[0].Version.String())
	assert.Equal(t, "1.55.0", asc[2].Version.String())

	// Ascending must not disturb the catalog's own order.
	assert.Equal(t, []string{"1.55.0", "1.54.0", "1.0.0"}, catalogVersions(c))
}

func TestFilterBounds(t *testing.T) {
	c := NewCatalog(stable(t, "1.0.0", "1.54.0", "1.54.1", "1.55.0", "2.56.0"))

	min := version.NewTwoComponent(1, 54)
	max := version.NewTwoComponent(1, 55)
	filtered := c.Filter(Bounds{Min: &min, Max: &max})

	assert.Equal(t, []string{"1.55.0", "1.54.1", "1.54.0"}, catalogVersions(filtered))
}

func TestFilterBoundsAreInclusive(t *testing.T) {
	c := NewCatalog(stable(t, "1.54.0", "1.55.0"))

	min := version.NewThreeComponent(1, 54, 0)
	max := version.NewThreeComponent(1, 55, 0)
	filtered := c.Filter(Bounds{Min: &min, Max: &max})

	assert.Equal(t, 2, filtered.Len())
}

func TestFilterOpenBounds(t *testing.T) {
	c := NewCatalog(stable(t, "1.0.0", "1.54.0"))

	assert.Equal(t, 2, c.Filter(Bounds{}).Len())
}

func TestLatestPatchesCollapsesLines(t *testing.T) {
	c := NewCatalog(stable(t, "1.0.0", "1.54.0", "1.54.1", "1.55.0", "2.56.0"))

	min := version.NewTwoComponent(1, 54)
	max := version.NewTwoComponent(1, 55)
	collapsed := c.Filter(Bounds{Min: &min, Max: &max}).LatestPatches()

	assert.Equal(t, []string{"1.55.0", "1.54.1"}, catalogVersions(collapsed))
}

func TestStableDropsUnstableChannels(t *testing.T) {
	releases := stable(t, "1.54.0")
	releases = append(releases,
		Release{Version: semver.MustParse("1.55.0-beta1"), Channel: Beta},
		Release{Version: semver.MustParse("1.55.0-rc1"), Channel: RC},
	)

	c := NewCatalog(releases).Stable()

	assert.Equal(t, []string{"1.54.0"}, catalogVersions(c))
}

func TestResolveTwoComponentPicksHighestPatch(t *testing.T) {
	c := NewCatalog(stable(t, "1.54.0", "1.54.1", "1.54.2", "1.55.0"))

	rel, err := c.Resolve(version.NewTwoComponent(1, 54))
	require.NoError(t, err)
	assert.Equal(t, "1.54.2", rel.Version.String())
}

func TestResolveThreeComponentTilde(t *testing.T) {
	c := NewCatalog(stable(t, "1.54.0", "1.54.1", "1.54.2", "1.55.0"))

	// ~1.54.1 accepts 1.54.1 or higher within the 1.54 line, never 1.55.0.
	rel, err := c.Resolve(version.NewThreeComponent(1, 54, 1))
	require.NoError(t, err)
	assert.Equal(t, "1.54.2", rel.Version.String())

	rel, err = c.Resolve(version.NewThreeComponent(1, 54, 2))
	require.NoError(t, err)
	assert.Equal(t, "1.54.2", rel.Version.String())
}

func TestResolveExcludesHigherMinor(t *testing.T) {
	c := NewCatalog(stable(t, "1.55.0"))

	_, err := c.Resolve(version.NewThreeComponent(1, 54, 1))

	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, "1.54.1", noMatch.Requirement.String())
	require.Len(t, noMatch.Available, 1)
	assert.Equal(t, "1.55.0", noMatch.Available[0].String())
}

func TestResolveNoMatchCarriesDiagnostics(t *testing.T) {
	c := NewCatalog(stable(t, "1.54.0", "1.55.0"))

	_, err := c.Resolve(version.NewTwoComponent(1, 60))

	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Contains(t, noMatch.Error(), "~1.60")
	assert.Contains(t, noMatch.Error(), "1.54.0")
	assert.Contains(t, noMatch.Error(), "1.55.0")
}

func TestErrNoCandidatesInRangeIsSentinel(t *testing.T) {
	err := ErrNoCandidatesInRange

	assert.True(t, errors.Is(err, ErrNoCandidatesInRange))
}
