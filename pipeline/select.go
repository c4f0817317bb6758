package pipeline

import (
	"context"
	"sort"

	"modpack-builder/modrinth"
)

// Download is one file to place in the archive.
type Download struct {
	ProjectID string
	URL       string
	SHA1      string // registry-provided checksum, may be empty
}

// SelectDownloads picks the primary file (or the first file) of the newest
// matching version of every id. Ids without a version or without files are
// returned as skips. The result holds each URL once and is sorted by URL.
func SelectDownloads(ctx context.Context, source VersionSource, ids []string, gameVersion, loader string) ([]Download, []Skip, error) {
	byURL := make(map[string]Download)
	var skipped []Skip

	for _, id := range ids {
		v, ok, err := source.LatestVersion(ctx, id, gameVersion, loader)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			skipped = append(skipped, Skip{Stage: StageSelect, Name: id, ProjectID: id, Reason: "no version for " + gameVersion + "/" + loader})
			continue
		}
		f := modrinth.FindPrimaryFile(v)
		if f == nil {
			skipped = append(skipped, Skip{Stage: StageSelect, Name: id, ProjectID: id, Reason: "version " + v.ID + " has no files"})
			continue
		}
		if _, dup := byURL[f.URL]; dup {
			continue
		}
		byURL[f.URL] = Download{ProjectID: id, URL: f.URL, SHA1: f.Hashes["sha1"]}
	}

	downloads := make([]Download, 0, len(byURL))
	for _, d := range byURL {
		downloads = append(downloads, d)
	}
	sort.Slice(downloads, func(i, j int) bool { return downloads[i].URL < downloads[j].URL })
	return downloads, skipped, nil
}
