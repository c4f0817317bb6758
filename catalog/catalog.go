// Package catalog lists the loaders and game versions a modpack can target.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

var (
	ErrInvalidLoader      = errors.New("invalid loader")
	ErrInvalidGameVersion = errors.New("invalid game version")
)

var loaders = []string{"forge", "fabric", "neoforge", "quilt"}

// Releases the upstream version list is known to miss.
var extraGameVersions = []string{
	"1.21.1",
	"1.21.3",
	"1.21.4",
	"1.21.5",
}

// Loaders returns the supported mod loaders.
func Loaders() []string {
	return slices.Clone(loaders)
}

func ValidateLoader(loader string) error {
	if slices.Contains(loaders, strings.ToLower(loader)) {
		return nil
	}
	return fmt.Errorf("%w %q, expected one of %s", ErrInvalidLoader, loader, strings.Join(loaders, ", "))
}

func ValidateGameVersion(version string, available []string) error {
	if slices.Contains(available, version) {
		return nil
	}
	return fmt.Errorf("%w %q", ErrInvalidGameVersion, version)
}

// SortVersionsDesc de-duplicates release versions and orders them newest
// first. Entries that are not dotted numeric releases (snapshots, typos) are
// dropped.
func SortVersionsDesc(versions []string) []string {
	seen := make(map[string]bool, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		v = strings.TrimSpace(v)
		if seen[v] || !semver.IsValid("v"+v) || semver.Prerelease("v"+v) != "" || semver.Build("v"+v) != "" {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return semver.Compare("v"+out[i], "v"+out[j]) > 0
	})
	return out
}

// VersionSource fetches the list of released game versions.
type VersionSource struct {
	URL        string
	UserAgent  string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type versionsResponse struct {
	Result []string `json:"result"`
}

// GameVersions returns the upstream releases plus the known extras, newest first.
func (s *VersionSource) GameVersions(ctx context.Context) ([]string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game versions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch game versions: status %d", resp.StatusCode)
	}

	var body versionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode game versions: %w", err)
	}
	return SortVersionsDesc(append(body.Result, extraGameVersions...)), nil
}
