package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"modpack-builder/config"
	"modpack-builder/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDownloadFailed   = errors.New("download failed")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Fetcher streams a URL's content. *modrinth.Client implements it.
type Fetcher interface {
	Download(ctx context.Context, url string, w io.Writer) error
}

// ArchiveBuilder fetches downloads and writes them into one zip archive.
type ArchiveBuilder struct {
	Fetcher     Fetcher
	Dir         string
	Policy      string // config.PolicyStrict or config.PolicyBestEffort
	Concurrency int
	Log         *zap.SugaredLogger
	Progress    ProgressFunc
}

// EntryName is the archive entry for a download URL: the last segment of its
// path, percent-decoded. Names that could escape the extraction directory are
// rejected.
func EntryName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	switch {
	case name == "" || name == "." || name == "/":
		return "", fmt.Errorf("url %q has no file name", rawURL)
	case name == ".." || strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("url %q has an unsafe file name %q", rawURL, name)
	}
	return name, nil
}

type staged struct {
	download Download
	entry     string
	file      string
	fetchedAt time.Time
}

// Build fetches every download and writes the archive to Dir/name, returning
// its path. Under the strict policy the first failed fetch cancels the others
// and nothing is written. Under best-effort failed fetches are returned as
// skips and the archive holds the rest.
func (b *ArchiveBuilder) Build(ctx context.Context, downloads []Download, name string) (string, []Skip, error) {
	log := logger.OrNop(b.Log)
	bestEffort := b.Policy == config.PolicyBestEffort

	if err := os.MkdirAll(b.Dir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory '%s': %w", b.Dir, err)
	}
	stageDir, err := os.MkdirTemp(b.Dir, ".modpack-staging-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stageDir)

	var (
		mu      sync.Mutex
		files   []staged
		skipped []Skip
	)
	g, gctx := errgroup.WithContext(ctx)
	if b.Concurrency > 0 {
		g.SetLimit(b.Concurrency)
	}
	for i, d := range downloads {
		g.Go(func() error {
			entry, err := EntryName(d.URL)
			if err == nil {
				target := filepath.Join(stageDir, fmt.Sprintf("%04d", i))
				err = b.fetch(gctx, d, target)
				if err == nil {
					mu.Lock()
					files = append(files, staged{download: d, entry: entry, file: target, fetchedAt: time.Now()})
					mu.Unlock()
					b.Progress.emit(Event{Kind: EventFetched, Stage: StageArchive, Name: entry})
					return nil
				}
			}
			if !bestEffort || gctx.Err() != nil {
				return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, d.URL, err)
			}
			log.Warnw("Skipping failed download", zap.String("url", d.URL), zap.Error(err))
			skip := Skip{Stage: StageArchive, Name: d.ProjectID, ProjectID: d.ProjectID, Reason: err.Error()}
			mu.Lock()
			skipped = append(skipped, skip)
			mu.Unlock()
			b.Progress.emit(Event{Kind: EventSkipped, Stage: StageArchive, Name: d.ProjectID, Message: skip.Reason})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].download.URL < files[j].download.URL })
	archivePath := filepath.Join(b.Dir, name)
	if err := writeArchive(archivePath, files, log); err != nil {
		return "", nil, err
	}
	return archivePath, skipped, nil
}

func (b *ArchiveBuilder) fetch(ctx context.Context, d Download, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", target, err)
	}
	if err := b.Fetcher.Download(ctx, d.URL, out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return verifySHA1(target, d.SHA1)
}

// writeArchive writes files into a temporary zip next to archivePath and
// renames it into place once complete.
func writeArchive(archivePath string, files []staged, log *zap.SugaredLogger) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(archivePath), filepath.Base(archivePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	seen := make(map[string]string)
	for _, f := range files {
		if prev, dup := seen[f.entry]; dup {
			log.Warnw("Duplicate archive entry, keeping first",
				zap.String("entry", f.entry),
				zap.String("kept", prev),
				zap.String("dropped", f.download.URL),
			)
			continue
		}
		seen[f.entry] = f.download.URL
		if err := addFile(zw, f.file, f.entry, f.fetchedAt); err != nil {
			return fmt.Errorf("failed to add '%s' to archive: %w", f.entry, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), archivePath); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, src, entry string, modified time.Time) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: entry, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}
