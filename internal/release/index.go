package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultIndexURL is the canonical Go release index. The include=all mode
// also lists beta and release-candidate toolchains.
const DefaultIndexURL = "https://go.dev/dl/?mode=json&include=all"

// ErrIndexUnavailable indicates the release index could not be retrieved or
// decoded. This is an infrastructure failure, fatal to the run.
var ErrIndexUnavailable = errors.New("release: release index unavailable")

// HTTPClient is the minimal HTTP capability the index client needs, so tests
// can substitute a scripted implementation.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// IndexOption configures an IndexClient.
type IndexOption func(*IndexClient)

// WithIndexURL overrides the release index URL.
func WithIndexURL(url string) IndexOption {
	return func(c *IndexClient) {
		if url != "" {
			c.indexURL = url
		}
	}
}

// WithHTTPClient overrides the HTTP client used to fetch the index.
func WithHTTPClient(h HTTPClient) IndexOption {
	return func(c *IndexClient) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// IndexClient fetches the set of released Go toolchains from the release
// index. One fetch per run; the catalog is built from the result.
type IndexClient struct {
	indexURL   string
	httpClient HTTPClient
}

// NewIndexClient creates an index client for the canonical Go release index.
func NewIndexClient(opts ...IndexOption) *IndexClient {
	c := &IndexClient{
		indexURL:   DefaultIndexURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// indexEntry mirrors one entry of the go.dev download index.
type indexEntry struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// Fetch retrieves the release index and returns every release it lists,
// across all channels. Entries whose version string does not parse are
// skipped. Any retrieval or decode failure wraps ErrIndexUnavailable.
func (c *IndexClient) Fetch(ctx context.Context) ([]Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrIndexUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrIndexUnavailable, resp.StatusCode, c.indexURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrIndexUnavailable, err)
	}

	var entries []indexEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode index: %v", ErrIndexUnavailable, err)
	}

	releases := make([]Release, 0, len(entries))
	for _, entry := range entries {
		rel, err := ParseGoVersion(entry.Version)
		if err != nil {
			continue
		}
		releases = append(releases, rel)
	}

	return releases, nil
}

// ParseGoVersion parses a release index version string such as "go1.21.5",
// "go1.22rc1" or "go1.19beta2" into a Release. The channel is derived from
// the beta/rc marker; a bare "go1.21" normalizes to 1.21.0.
func ParseGoVersion(s string) (Release, error) {
	raw := strings.TrimPrefix(s, "go")
	if raw == s {
		return Release{}, fmt.Errorf("release: version %q lacks go prefix", s)
	}

	channel := Stable
	pre := ""

	if idx := strings.Index(raw, "beta"); idx >= 0 {
		channel = Beta
		pre = raw[idx:]
		raw = raw[:idx]
	} else if idx := strings.Index(raw, "rc"); idx >= 0 {
		channel = RC
		pre = raw[idx:]
		raw = raw[:idx]
	}

	components := strings.Split(raw, ".")
	if len(components) < 2 || len(components) > 3 {
		return Release{}, fmt.Errorf("release: unrecognized version %q", s)
	}
	if len(components) == 2 {
		raw += ".0"
	}

	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return Release{}, fmt.Errorf("release: unrecognized version %q: %v", s, err)
	}

	if pre != "" {
		withPre, err := v.SetPrerelease(pre)
		if err != nil {
			return Release{}, fmt.Errorf("release: pre-release marker in %q: %v", s, err)
		}
		v = &withPre
	}

	return Release{Version: v, Channel: channel}, nil
}
