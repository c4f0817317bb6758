package pipeline

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"modpack-builder/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	files map[string]string
}

func (f fakeFetcher) Download(ctx context.Context, url string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, ok := f.files[url]
	if !ok {
		return fmt.Errorf("GET %s: status 404", url)
	}
	_, err := io.WriteString(w, body)
	return err
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]string)
	for _, f := range zr.File {
		assert.Equal(t, zip.Deflate, f.Method, "entry %s", f.Name)
		r, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(r)
		r.Close()
		require.NoError(t, err)
		_, dup := entries[f.Name]
		assert.False(t, dup, "entry %s written twice", f.Name)
		entries[f.Name] = string(b)
	}
	return entries
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, de := range des {
		names = append(names, de.Name())
	}
	sort.Strings(names)
	return names
}

func TestEntryName(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://cdn.modrinth.com/data/AANobbMI/versions/abc/sodium-fabric-0.5.8.jar", "sodium-fabric-0.5.8.jar", false},
		{"https://cdn.example/mods/lithium.jar?sig=123", "lithium.jar", false},
		{"https://cdn.example/mods/Farmer%27s%20Delight.jar", "Farmer's Delight.jar", false},
		{"https://cdn.example", "", true},
		{"https://cdn.example/", "", true},
		{"https://cdn.modrinth.com/data/x/versions/y/sodium-fabric-0.5.8%2Bmc1.20.1.jar", "sodium-fabric-0.5.8+mc1.20.1.jar", false},
		{"https://cdn.example/a/..", "", true},
		{"https://cdn.example/a/%2E%2E", "", true},
		{"https://cdn.example/a/..%5Cevil.jar", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := EntryName(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArchiveBuildStrict(t *testing.T) {
	dir := t.TempDir()
	b := &ArchiveBuilder{
		Fetcher: fakeFetcher{files: map[string]string{
			"https://cdn/a/sodium.jar":  "sodium",
			"https://cdn/b/lithium.jar": "lithium",
		}},
		Dir:         dir,
		Policy:      config.PolicyStrict,
		Concurrency: 2,
	}

	path, skipped, err := b.Build(context.Background(), []Download{
		{ProjectID: "sodium", URL: "https://cdn/a/sodium.jar", SHA1: sha1Hex("sodium")},
		{ProjectID: "lithium", URL: "https://cdn/b/lithium.jar"},
	}, "pack.zip")
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, filepath.Join(dir, "pack.zip"), path)
	assert.Equal(t, map[string]string{"sodium.jar": "sodium", "lithium.jar": "lithium"}, readArchive(t, path))
	assert.Equal(t, []string{"pack.zip"}, dirNames(t, dir), "staging files are cleaned up")
}

func TestArchiveEntriesCarryFetchTime(t *testing.T) {
	dir := t.TempDir()
	b := &ArchiveBuilder{
		Fetcher: fakeFetcher{files: map[string]string{"https://cdn/a/sodium.jar": "sodium"}},
		Dir:     dir,
		Policy:  config.PolicyStrict,
	}
	before := time.Now().Add(-2 * time.Second)

	path, _, err := b.Build(context.Background(), []Download{{ProjectID: "sodium", URL: "https://cdn/a/sodium.jar"}}, "pack.zip")
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.True(t, zr.File[0].Modified.After(before), "entry stamped %s", zr.File[0].Modified)
}

func TestArchiveBuildStrictFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	b := &ArchiveBuilder{
		Fetcher: fakeFetcher{files: map[string]string{"https://cdn/ok.jar": "ok"}},
		Dir:     dir,
		Policy:  config.PolicyStrict,
	}

	_, _, err := b.Build(context.Background(), []Download{
		{ProjectID: "ok", URL: "https://cdn/ok.jar"},
		{ProjectID: "gone", URL: "https://cdn/gone.jar"},
	}, "pack.zip")
	require.ErrorIs(t, err, ErrDownloadFailed)
	assert.Empty(t, dirNames(t, dir), "no partial archive or staging left behind")
}

func TestArchiveBuildChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	b := &ArchiveBuilder{
		Fetcher: fakeFetcher{files: map[string]string{"https://cdn/a.jar": "tampered"}},
		Dir:     dir,
		Policy:  config.PolicyStrict,
	}

	_, _, err := b.Build(context.Background(), []Download{{ProjectID: "a", URL: "https://cdn/a.jar", SHA1: sha1Hex("original")}}, "pack.zip")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.Empty(t, dirNames(t, dir))
}

func TestArchiveBuildBestEffort(t *testing.T) {
	dir := t.TempDir()
	var (
		mu     sync.Mutex
		events []Event
	)
	b := &ArchiveBuilder{
		Fetcher: fakeFetcher{files: map[string]string{"https://cdn/ok.jar": "ok"}},
		Dir:     dir,
		Policy:  config.PolicyBestEffort,
		Progress: func(e Event) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		},
	}

	path, skipped, err := b.Build(context.Background(), []Download{
		{ProjectID: "gone", URL: "https://cdn/gone.jar"},
		{ProjectID: "ok", URL: "https://cdn/ok.jar"},
	}, "pack.zip")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ok.jar": "ok"}, readArchive(t, path))
	require.Len(t, skipped, 1)
	assert.Equal(t, "gone", skipped[0].ProjectID)
	assert.Equal(t, StageArchive, skipped[0].Stage)
	assert.Len(t, events, 2)
}

func TestArchiveBuildDuplicateEntryName(t *testing.T) {
	dir := t.TempDir()
	b := &ArchiveBuilder{
		Fetcher: fakeFetcher{files: map[string]string{
			"https://cdn/a/lib.jar": "first",
			"https://cdn/b/lib.jar": "second",
		}},
		Dir:    dir,
		Policy: config.PolicyStrict,
	}

	path, _, err := b.Build(context.Background(), []Download{
		{ProjectID: "b", URL: "https://cdn/b/lib.jar"},
		{ProjectID: "a", URL: "https://cdn/a/lib.jar"},
	}, "pack.zip")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"lib.jar": "first"}, readArchive(t, path))
}

func TestArchiveBuildEmpty(t *testing.T) {
	dir := t.TempDir()
	b := &ArchiveBuilder{Fetcher: fakeFetcher{}, Dir: dir, Policy: config.PolicyStrict}

	path, _, err := b.Build(context.Background(), nil, "empty.zip")
	require.NoError(t, err)
	assert.Empty(t, readArchive(t, path))
}
