package modrinth

import (
	"slices"
	"sort"
	"strings"
)

// FilterVersions keeps the versions supporting both gameVersion and loader
// (compared lowercase) and orders them by publish time, newest first. Versions
// published at the same instant keep their registry order.
func FilterVersions(versions []Version, gameVersion, loader string) []Version {
	loader = strings.ToLower(loader)
	valid := make([]Version, 0, len(versions))
	for _, v := range versions {
		if slices.Contains(v.GameVersions, gameVersion) && slices.Contains(v.Loaders, loader) {
			valid = append(valid, v)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].PublishedAt.After(valid[j].PublishedAt)
	})
	return valid
}

// LatestVersion returns the most recently published matching version.
func LatestVersion(versions []Version, gameVersion, loader string) (Version, bool) {
	valid := FilterVersions(versions, gameVersion, loader)
	if len(valid) == 0 {
		return Version{}, false
	}
	return valid[0], true
}

// FindPrimaryFile locates the primary file in a version, or the first file if no primary is marked.
func FindPrimaryFile(v Version) *File {
	for i := range v.Files {
		if v.Files[i].Primary {
			return &v.Files[i]
		}
	}
	if len(v.Files) > 0 {
		return &v.Files[0]
	}
	return nil
}
