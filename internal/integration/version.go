package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Version is a semantic version of the plugin.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String returns the version in semver format (e.g., "0.4.1").
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v Version) Compare(other Version) int {
	for _, d := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		if d[0] < d[1] {
			return -1
		}
		if d[0] > d[1] {
			return 1
		}
	}
	return 0
}

// After the patch number only end of string or a non-dot non-digit suffix
// is allowed, so "1.2.3-beta" parses and "1.2.3.4" does not.
var versionPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:[^\d.].*)?$`)

// ParseVersion parses a semantic version string like "0.4.1" or "v0.4.1".
func ParseVersion(s string) (*Version, error) {
	s = strings.TrimSpace(s)
	matches := versionPattern.FindStringSubmatch(s)
	if matches == nil {
		return nil, fmt.Errorf("invalid version string %q: expected format v?MAJOR.MINOR.PATCH", s)
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	patch, _ := strconv.Atoi(matches[3])
	return &Version{Major: major, Minor: minor, Patch: patch}, nil
}

// UpdateChecker compares the running version with the published plugin
// manifest.
type UpdateChecker interface {
	// CheckForUpdate returns a message for the user, or "" when the local
	// version is current or the manifest could not be reached. It never
	// fails.
	CheckForUpdate(ctx context.Context, localVersion string) string
}

type updateChecker struct {
	manifestURL string
	http        *http.Client
}

// NewUpdateChecker creates an UpdateChecker reading the manifest at
// manifestURL. httpClient defaults to a client with a 5 second timeout.
func NewUpdateChecker(manifestURL string, httpClient *http.Client) UpdateChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &updateChecker{manifestURL: manifestURL, http: httpClient}
}

func (u *updateChecker) CheckForUpdate(ctx context.Context, localVersion string) string {
	local, err := ParseVersion(localVersion)
	if err != nil {
		return fmt.Sprintf("Warning: Could not parse local version (got: %s)", localVersion)
	}

	remoteVersion, err := u.fetchRemoteVersion(ctx)
	if err != nil {
		// Offline or manifest unavailable: stay quiet.
		return ""
	}
	if remoteVersion == "" {
		return "Warning: Could not determine remote plugin version"
	}
	remote, err := ParseVersion(remoteVersion)
	if err != nil {
		return fmt.Sprintf("Warning: Could not determine remote plugin version (got: %s)", remoteVersion)
	}

	if remote.Compare(*local) > 0 {
		return fmt.Sprintf("Plugin update available! You're using v%s, the latest is v%s.", local, remote)
	}
	return ""
}

// fetchRemoteVersion returns the manifest's "version" field, or "" when the
// manifest has none.
func (u *updateChecker) fetchRemoteVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.manifestURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := u.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching manifest: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("manifest is not valid JSON")
	}
	v := gjson.GetBytes(data, "version")
	if v.Type != gjson.String {
		return "", nil
	}
	return v.Str, nil
}
